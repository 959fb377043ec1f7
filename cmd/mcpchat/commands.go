package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mcpchat/internal/config"
	"mcpchat/internal/gateway"
)

type flags struct {
	config   string
	provider string
	model    string
	server   string
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "mcpchat",
		Short:         "Chat with an LLM that can call the tools of an MCP server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withGateway(cmd, f, func(ctx context.Context, g *gateway.Gateway) error {
				go func() {
					<-ctx.Done()
					os.Stdin.Close() // Force read error to break loop
				}()
				return g.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", "", "config file (.json, .yaml or .yml)")
	pf.StringVarP(&f.provider, "provider", "p", "", "completion provider (huggingface, groq, ollama, openai, anthropic, gemini)")
	pf.StringVarP(&f.model, "model", "m", "", "model name")
	pf.StringVarP(&f.server, "server", "s", "", "MCP server command line or URL")

	root.AddCommand(newAskCmd(f), newToolsCmd(f), newInitCmd(f))
	return root
}

func newAskCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <query>",
		Short: "Answer a single query and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withGateway(cmd, f, func(ctx context.Context, g *gateway.Gateway) error {
				return g.Execute(ctx, query, cmd.OutOrStdout())
			})
		},
	}
}

func newToolsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools offered to the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withGateway(cmd, f, func(_ context.Context, g *gateway.Gateway) error {
				g.ListTools(cmd.OutOrStdout())
				return nil
			})
		},
	}
}

func newInitCmd(f *flags) *cobra.Command {
	var interactive bool
	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write the effective configuration to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			if interactive {
				cfg, err = config.NewWizard(cmd.InOrStdin(), cmd.OutOrStdout()).Run(cfg)
				if err != nil {
					return err
				}
			}
			if err := cfg.Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "ask for each setting")
	return cmd
}

// loadConfig layers command line flags over config.Load.
func loadConfig(f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, err
	}
	if f.provider != "" && !strings.EqualFold(f.provider, cfg.Provider) {
		// Model and credential configured for another provider do not carry over.
		cfg.Provider = f.provider
		cfg.Model = ""
		cfg.APIKey = config.Credential(f.provider)
	}
	if f.model != "" {
		cfg.Model = f.model
	}
	if f.server != "" {
		cfg.Server = f.server
	}
	return cfg, nil
}

func withGateway(cmd *cobra.Command, f *flags, fn func(context.Context, *gateway.Gateway) error) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	g, err := gateway.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer g.Close()
	return fn(ctx, g)
}
