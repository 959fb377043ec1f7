package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "mcpchat/middlewares/autoload" // Auto-load all middlewares
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
