package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mcpchat/internal/tools"
)

type stubTransport struct{}

func (stubTransport) Connected() bool { return true }
func (stubTransport) ListTools(context.Context) ([]tools.Descriptor, error) {
	return nil, nil
}
func (stubTransport) CallTool(context.Context, string, map[string]any) (any, error) {
	return nil, nil
}

func catalog(t *testing.T, descs ...tools.Descriptor) *tools.Catalog {
	t.Helper()
	c, err := tools.New(descs, stubTransport{}, nil)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return c
}

func TestComposeListsToolsInOrder(t *testing.T) {
	c := catalog(t,
		tools.Descriptor{Name: "write_query", Description: "Run an INSERT"},
		tools.Descriptor{Name: "add_row", Description: "Inserts a row"},
	)
	got, err := Compose("Tools:\n{tools}\nEnd", c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Tools:\nwrite_query: Run an INSERT\nadd_row: Inserts a row\nEnd"
	if got != want {
		t.Fatalf("unexpected prompt:\n%s\nwant:\n%s", got, want)
	}
}

func TestComposeDefaultTemplate(t *testing.T) {
	c := catalog(t, tools.Descriptor{Name: "add_row", Description: "Inserts a row"})
	got, err := Compose(DefaultTemplate, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, Placeholder) {
		t.Fatalf("placeholder left in prompt")
	}
	if !strings.Contains(got, "# Tools\n\nadd_row: Inserts a row\n\n# Notes") {
		t.Fatalf("tool list not substituted:\n%s", got)
	}
}

func TestComposeEmptyCatalog(t *testing.T) {
	got, err := Compose("[{tools}]", catalog(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "[]" {
		t.Fatalf("expected empty tool list, got %q", got)
	}
}

func TestComposeMissingPlaceholder(t *testing.T) {
	_, err := Compose("no tools here", catalog(t))
	if !errors.Is(err, ErrTemplate) {
		t.Fatalf("expected ErrTemplate, got %v", err)
	}
}
