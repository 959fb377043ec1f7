package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Descriptor is a tool as advertised by a tool server.
type Descriptor struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// Transport lists and invokes tools on a tool server.
type Transport interface {
	// Connected reports whether the transport can serve requests.
	Connected() bool
	// ListTools returns every tool the server exposes.
	ListTools(ctx context.Context) ([]Descriptor, error)
	// CallTool invokes a named tool and returns its result.
	CallTool(ctx context.Context, name string, args map[string]any) (any, error)
}

// Callable invokes one bound tool.
type Callable func(ctx context.Context, args map[string]any) (any, error)

// Tool is a descriptor bound to its transport.
type Tool struct {
	Name        string
	Description string
	Call        Callable

	// Schema is the function schema handed to the model.
	Schema llms.Tool
}

// Catalog is the immutable, ordered set of tools offered to the model.
type Catalog struct {
	tools []Tool
	index map[string]int
}

// Discover lists the transport's tools and builds a catalog from them.
func Discover(ctx context.Context, t Transport, exclude []string) (*Catalog, error) {
	if t == nil || !t.Connected() {
		return nil, fmt.Errorf("%w: %w", ErrToolBuild, ErrNotConnected)
	}
	descs, err := t.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list tools: %w", ErrTransport, err)
	}
	return New(descs, t, exclude)
}

// New binds every descriptor not named in exclude to t. No tool is invoked.
func New(descs []Descriptor, t Transport, exclude []string) (*Catalog, error) {
	if t == nil || !t.Connected() {
		return nil, fmt.Errorf("%w: %w", ErrToolBuild, ErrNotConnected)
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[strings.TrimSpace(name)] = struct{}{}
	}

	c := &Catalog{
		tools: make([]Tool, 0, len(descs)),
		index: make(map[string]int, len(descs)),
	}
	for _, d := range descs {
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("%w: tool without a name", ErrToolBuild)
		}
		if _, ok := skip[d.Name]; ok {
			continue
		}
		if _, dup := c.index[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate tool %q", ErrToolBuild, d.Name)
		}
		tool, err := bind(d, t)
		if err != nil {
			return nil, err
		}
		c.index[d.Name] = len(c.tools)
		c.tools = append(c.tools, tool)
	}
	return c, nil
}

func bind(d Descriptor, t Transport) (Tool, error) {
	name := d.Name
	params, err := parameters(d.InputSchema)
	if err != nil {
		return Tool{}, fmt.Errorf("%w: tool %q: input schema: %v", ErrToolBuild, name, err)
	}
	return Tool{
		Name:        name,
		Description: d.Description,
		Call: func(ctx context.Context, args map[string]any) (any, error) {
			res, err := t.CallTool(ctx, name, args)
			if err != nil {
				return nil, &TransportError{Tool: name, Err: err}
			}
			return res, nil
		},
		Schema: llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        name,
				Description: d.Description,
				Parameters:  params,
			},
		},
	}, nil
}

// parameters decodes an input schema. Only an absent or null schema gets the
// empty object schema; anything else must be a JSON object.
func parameters(schema json.RawMessage) (map[string]any, error) {
	raw := bytes.TrimSpace(schema)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	params, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
	return params, nil
}

// Lookup returns the tool with the given name.
func (c *Catalog) Lookup(name string) (Tool, bool) {
	if c == nil {
		return Tool{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return Tool{}, false
	}
	return c.tools[i], true
}

// Tools returns the tools in discovery order.
func (c *Catalog) Tools() []Tool {
	if c == nil {
		return nil
	}
	out := make([]Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

// Schemas returns the function schemas in discovery order.
func (c *Catalog) Schemas() []llms.Tool {
	if c == nil {
		return []llms.Tool{}
	}
	out := make([]llms.Tool, 0, len(c.tools))
	for _, t := range c.tools {
		out = append(out, t.Schema)
	}
	return out
}

// Names returns the tool names in discovery order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.tools))
	for _, t := range c.tools {
		out = append(out, t.Name)
	}
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tools)
}
