// Package mcp connects to a Model Context Protocol server and exposes its
// tools through the tools.Transport contract.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"mcpchat/internal/tools"
)

// Client wraps an MCP client session.
type Client struct {
	spec string
	env  []string
	impl *mcpsdk.Client

	mu      sync.Mutex
	session *mcpsdk.ClientSession
}

var _ tools.Transport = (*Client)(nil)

// NewClient prepares a client for the server described by spec. Extra
// environment entries (KEY=value) are passed to spawned server processes.
func NewClient(spec string, env ...string) *Client {
	impl := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "MCPClient", Version: "1.0.0"}, nil)
	return &Client{spec: spec, env: env, impl: impl}
}

// Connect starts the server (for stdio specs) and performs the MCP handshake.
func (c *Client) Connect(ctx context.Context) error {
	transport, err := transportBuilder(ctx, c.spec, c.env)
	if err != nil {
		return fmt.Errorf("%w: %w", tools.ErrTransport, err)
	}
	return c.ConnectTransport(ctx, transport)
}

// ConnectTransport performs the MCP handshake over an existing transport.
func (c *Client) ConnectTransport(ctx context.Context, transport mcpsdk.Transport) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return nil
	}
	session, err := c.impl.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("%w: connect: %w", tools.ErrTransport, err)
	}
	c.session = session
	return nil
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// ListTools follows pagination cursors until the server's list is exhausted.
func (c *Client) ListTools(ctx context.Context) ([]tools.Descriptor, error) {
	session, err := c.current()
	if err != nil {
		return nil, err
	}

	var (
		cursor string
		out    []tools.Descriptor
	)
	for {
		params := &mcpsdk.ListToolsParams{}
		if cursor != "" {
			params.Cursor = cursor
		}
		res, err := session.ListTools(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("%w: list tools: %w", tools.ErrTransport, err)
		}
		for _, t := range res.Tools {
			if t == nil {
				continue
			}
			out = append(out, toDescriptor(t))
		}
		if strings.TrimSpace(res.NextCursor) == "" {
			return out, nil
		}
		cursor = res.NextCursor
	}
}

// CallTool invokes a tool. A result flagged as an error by the server is
// returned as an error carrying the tool's text output.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	session, err := c.current()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("mcp: tool name is required")
	}

	res, err := session.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("%w: call %s: %w", tools.ErrTransport, name, err)
	}
	if res.IsError {
		msg := Text(res)
		if msg == "" {
			msg = "tool reported an error"
		}
		return nil, fmt.Errorf("%w: tool %s failed: %s", tools.ErrTransport, name, msg)
	}
	return res, nil
}

// Close ends the session. Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}

func (c *Client) current() (*mcpsdk.ClientSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, fmt.Errorf("%w: %w", tools.ErrTransport, tools.ErrNotConnected)
	}
	return c.session, nil
}

func toDescriptor(t *mcpsdk.Tool) tools.Descriptor {
	d := tools.Descriptor{Name: t.Name, Description: t.Description}
	if t.InputSchema != nil {
		if b, err := json.Marshal(t.InputSchema); err == nil {
			d.InputSchema = b
		}
	}
	return d
}

// Text joins the text parts of a tool result.
func Text(res *mcpsdk.CallToolResult) string {
	if res == nil {
		return ""
	}
	var parts []string
	for _, c := range res.Content {
		if text, ok := c.(*mcpsdk.TextContent); ok {
			if trimmed := strings.TrimSpace(text.Text); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
	}
	return strings.Join(parts, "\n")
}
