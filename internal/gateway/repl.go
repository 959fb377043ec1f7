package gateway

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mcpchat/internal/agent"
)

// Prompt is printed before every line the REPL reads.
const Prompt = "Enter your prompt (or 'quit' to exit): "

type styles struct {
	title lipgloss.Style
	info  lipgloss.Style
	label lipgloss.Style
	err   lipgloss.Style
	tool  lipgloss.Style
}

// newStyles binds styles to out so plain writers get plain text.
func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		info:  r.NewStyle().Foreground(lipgloss.Color("241")),
		label: r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		err:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		tool:  r.NewStyle().Foreground(lipgloss.Color("205")),
	}
}

// Run reads prompts from in until EOF, a quit word or ctx is done. A failed
// turn is reported and the loop goes on with the history it had before.
func (g *Gateway) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	st := newStyles(out)

	fmt.Fprintln(out, st.title.Render("mcpchat"))
	fmt.Fprintln(out, st.info.Render(fmt.Sprintf("model=%s, provider=%s, tools=%d", valueOrDefault(g.model, "default"), valueOrDefault(g.provider, "default"), g.catalog.Len())))
	if g.server != "" {
		fmt.Fprintln(out, st.info.Render("server="+g.server))
	}
	fmt.Fprintln(out, st.info.Render("Type quit to exit, /clear to reset context, /tools to list tools."))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if isExit(input) {
			return nil
		}
		switch input {
		case "/clear":
			g.session.Clear()
			fmt.Fprintln(out, st.info.Render("context cleared"))
			continue
		case "/tools":
			g.ListTools(out)
			continue
		}

		reply, err := g.turn(ctx, input)
		if err != nil {
			fmt.Fprintf(out, "\n%s %v\n", st.err.Render("Error occurred:"), err)
			continue
		}
		fmt.Fprintf(out, "\n%s %s\n", st.label.Render("Response:"), reply)
	}
}

// Execute runs a single turn and prints the answer.
func (g *Gateway) Execute(ctx context.Context, query string, out io.Writer) error {
	reply, err := g.turn(ctx, query)
	if err != nil {
		if errors.Is(err, agent.ErrEmptyInput) {
			return fmt.Errorf("no query given: %w", err)
		}
		return err
	}
	fmt.Fprintln(out, reply)
	return nil
}

// ListTools prints the catalog offered to the model.
func (g *Gateway) ListTools(out io.Writer) {
	st := newStyles(out)
	if g.catalog.Len() == 0 {
		fmt.Fprintln(out, st.info.Render("no tools available"))
		return
	}
	for _, t := range g.catalog.Tools() {
		fmt.Fprintf(out, "%s: %s\n", st.tool.Render(t.Name), t.Description)
	}
}

func isExit(input string) bool {
	switch strings.ToLower(input) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

func valueOrDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
