// Package gateway wires configuration, the completion provider, the MCP
// tool server and the agent into one chat session, and drives it from a
// terminal.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"mcpchat/internal/agent"
	"mcpchat/internal/config"
	"mcpchat/internal/llm"
	"mcpchat/internal/middleware"
	"mcpchat/internal/tools"
	"mcpchat/internal/tools/mcp"
)

type Gateway struct {
	session *agent.Session
	catalog *tools.Catalog

	provider string
	model    string
	server   string

	turnTimeout time.Duration
	log         *log.Logger
	closers     []io.Closer
}

type Option func(*Gateway)

// WithTurnTimeout bounds a whole turn. Zero waits indefinitely.
func WithTurnTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.turnTimeout = d
	}
}

func WithLogger(l *log.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

// WithInfo sets what the REPL banner reports.
func WithInfo(provider, model, server string) Option {
	return func(g *Gateway) {
		g.provider, g.model, g.server = provider, model, server
	}
}

func withClosers(c ...io.Closer) Option {
	return func(g *Gateway) {
		g.closers = append(g.closers, c...)
	}
}

// New drives a fresh session of a.
func New(a *agent.Agent, opts ...Option) *Gateway {
	g := &Gateway{
		session: agent.NewSession(a),
		catalog: a.Catalog(),
		log:     log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Open validates cfg, connects to the MCP server, discovers its tools and
// builds the session. The caller must Close the returned Gateway.
func Open(ctx context.Context, cfg *config.Config) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var closers []io.Closer
	fail := func(err error) (*Gateway, error) {
		closeAll(closers)
		return nil, err
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if f, err := openAppend(cfg.LogPath); err == nil {
		logger = log.New(f, "", log.LstdFlags)
		closers = append(closers, f)
	}
	// Middleware plugins log through the standard logger until Close.
	closers = append(closers, redirectStdLog(logger.Writer()))

	// Middleware debug log (JSONL)
	var debugW io.Writer
	if cfg.DebugLogPath != "" {
		f, err := openAppend(cfg.DebugLogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to open middleware log file (%s): %v\n", cfg.DebugLogPath, err)
		} else {
			debugW = f
			closers = append(closers, f)
		}
	}
	chain := middleware.NewChainFromRegistry(debugW, cfg.DisabledMiddlewares)

	adapter, err := llm.NewAdapter(cfg.Settings())
	if err != nil {
		return fail(fmt.Errorf("failed to initialize adapter: %w", err))
	}

	client := mcp.NewClient(cfg.Server, cfg.ServerEnviron()...)
	logger.Printf("[gateway] connecting to MCP server: %s", cfg.Server)
	if err := client.Connect(ctx); err != nil {
		return fail(fmt.Errorf("connect to MCP server: %w", err))
	}
	closers = append(closers, client)

	catalog, err := tools.Discover(ctx, client, cfg.ExcludeTools)
	if err != nil {
		return fail(err)
	}
	logger.Printf("[gateway] %d tools available: %v", catalog.Len(), catalog.Names())

	a := agent.New(adapter, catalog,
		agent.WithModel(adapter.Model()),
		agent.WithMaxTokens(cfg.MaxTokens),
		agent.WithTemperature(cfg.Temperature),
		agent.WithCompletionTimeout(time.Duration(cfg.CompletionTimeout)),
		agent.WithToolTimeout(time.Duration(cfg.ToolTimeout)),
		agent.WithMiddlewareChain(chain),
		agent.WithLogger(logger),
	)
	return New(a,
		WithLogger(logger),
		WithTurnTimeout(time.Duration(cfg.TurnTimeout)),
		WithInfo(string(adapter.Provider()), adapter.Model(), cfg.Server),
		withClosers(closers...),
	), nil
}

// Close shuts the MCP session down and closes the log files.
func (g *Gateway) Close() error {
	err := closeAll(g.closers)
	g.closers = nil
	return err
}

// Session returns the conversation the gateway drives.
func (g *Gateway) Session() *agent.Session { return g.session }

func (g *Gateway) turn(ctx context.Context, input string) (string, error) {
	if g.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.turnTimeout)
		defer cancel()
	}
	start := time.Now()
	reply, err := g.session.Send(ctx, input)
	if err != nil {
		g.log.Printf("[gateway] turn failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		return "", err
	}
	g.log.Printf("[gateway] turn done in %s (history=%d)", time.Since(start).Round(time.Millisecond), len(g.session.History()))
	return reply, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// redirectStdLog points the standard logger at w. Closing the result
// restores the previous output.
func redirectStdLog(w io.Writer) io.Closer {
	prev := log.Writer()
	log.SetOutput(w)
	return closerFunc(func() error {
		log.SetOutput(prev)
		return nil
	})
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// closeAll closes in reverse order of opening.
func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
