package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mcpchat/internal/llm"
)

// Wizard asks for the settings a first session needs.
type Wizard struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewWizard(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{scanner: bufio.NewScanner(in), out: out}
}

// Run starts from base and returns the answered configuration. Empty answers
// keep the value shown as default.
func (w *Wizard) Run(base *Config) (*Config, error) {
	cfg := *base
	fmt.Fprintln(w.out, "mcpchat setup")
	fmt.Fprintln(w.out, strings.Repeat("-", 40))

	fmt.Fprintln(w.out, "\n[1/2] LLM Configuration")
	if err := w.askProvider(&cfg); err != nil {
		return nil, err
	}
	cfg.Model = w.ask("Model", valueOr(cfg.Model, llm.DefaultModel(llm.Provider(cfg.Provider))))
	if llm.Provider(cfg.Provider) == llm.ProviderOllama {
		cfg.BaseURL = w.ask("Base URL", valueOr(cfg.BaseURL, "http://localhost:11434"))
	}

	fmt.Fprintln(w.out, "\n[2/2] Tool Server")
	cfg.Server = w.ask("MCP server command or URL", cfg.Server)
	excluded := w.ask("Tools to hide from the model (comma separated, - for none)", strings.Join(cfg.ExcludeTools, ","))
	if excluded == "-" {
		cfg.ExcludeTools = []string{}
	} else {
		cfg.ExcludeTools = splitList(excluded)
	}
	if err := w.scanner.Err(); err != nil {
		return nil, err
	}

	w.summarize(&cfg)
	return &cfg, nil
}

func (w *Wizard) askProvider(cfg *Config) error {
	fmt.Fprintln(w.out, "Select LLM Provider:")
	def := 1
	for i, p := range llm.Providers {
		fmt.Fprintf(w.out, "%d) %s\n", i+1, p)
		if string(p) == cfg.Provider {
			def = i + 1
		}
	}

	for {
		fmt.Fprintf(w.out, "Choice (default: %d): ", def)
		if !w.scanner.Scan() {
			cfg.Provider = string(llm.Providers[def-1])
			return w.scanner.Err()
		}
		input := strings.TrimSpace(w.scanner.Text())
		if input == "" {
			cfg.Provider = string(llm.Providers[def-1])
			return nil
		}
		if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(llm.Providers) {
			if string(llm.Providers[n-1]) != cfg.Provider {
				cfg.Model = ""
			}
			cfg.Provider = string(llm.Providers[n-1])
			return nil
		}
		fmt.Fprintf(w.out, "Invalid choice. Please select 1-%d.\n", len(llm.Providers))
	}
}

func (w *Wizard) ask(label, def string) string {
	fmt.Fprintf(w.out, "%s (default: %s): ", label, def)
	if !w.scanner.Scan() {
		return def
	}
	if input := strings.TrimSpace(w.scanner.Text()); input != "" {
		return input
	}
	return def
}

func (w *Wizard) summarize(cfg *Config) {
	fmt.Fprintln(w.out, "\n"+strings.Repeat("=", 40))
	fmt.Fprintln(w.out, "Setup Summary:")
	fmt.Fprintf(w.out, "Provider: %s\n", cfg.Provider)
	fmt.Fprintf(w.out, "Model:    %s\n", cfg.Model)
	fmt.Fprintf(w.out, "Server:   %s\n", cfg.Server)
	fmt.Fprintln(w.out, strings.Repeat("=", 40))

	p := llm.Provider(cfg.Provider)
	if llm.NeedsAPIKey(p) {
		fmt.Fprintf(w.out, "\nAPI keys are not written to the config file. Export %s or %s%s_API_KEY.\n",
			credentialVars[p], envPrefix, strings.ToUpper(cfg.Provider))
	}
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
