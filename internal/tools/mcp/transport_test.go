package mcp

import (
	"context"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestBuildTransportStdioVariants(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		spec     string
		expected []string
	}{
		{name: "ExplicitPrefix", spec: "stdio://echo hello", expected: []string{"echo", "hello"}},
		{name: "DefaultCommand", spec: "./server --flag value", expected: []string{"./server", "--flag", "value"}},
		{name: "UppercasePrefix", spec: "STDIO://python main.py", expected: []string{"python", "main.py"}},
		{name: "DefaultServer", spec: DefaultServer, expected: []string{"docker", "run", "--rm", "-i", "-v", "mcp-test:/mcp", "mcp/sqlite", "--db-path", "/mcp/test.db"}},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tr, err := buildTransport(context.Background(), tc.spec, nil)
			if err != nil {
				t.Fatalf("buildTransport returned error: %v", err)
			}
			cmdTr, ok := tr.(*mcpsdk.CommandTransport)
			if !ok {
				t.Fatalf("transport is %T, want *CommandTransport", tr)
			}
			if len(cmdTr.Command.Args) != len(tc.expected) {
				t.Fatalf("command args mismatch: got %v want %v", cmdTr.Command.Args, tc.expected)
			}
			for i, arg := range tc.expected {
				if cmdTr.Command.Args[i] != arg {
					t.Fatalf("arg[%d] mismatch: got %q want %q", i, cmdTr.Command.Args[i], arg)
				}
			}
		})
	}
}

func TestBuildTransportPassesEnv(t *testing.T) {
	tr, err := buildTransport(context.Background(), "server", []string{"DB_PATH=/tmp/x.db"})
	if err != nil {
		t.Fatalf("buildTransport returned error: %v", err)
	}
	cmd := tr.(*mcpsdk.CommandTransport).Command
	if len(cmd.Env) == 0 || cmd.Env[len(cmd.Env)-1] != "DB_PATH=/tmp/x.db" {
		t.Fatalf("expected extra env entry last, got %v", cmd.Env)
	}
}

func TestBuildTransportSSEVariants(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		spec string
		want string
	}{
		{name: "SSEShorthandAddsScheme", spec: "sse://mcp.example/tools", want: "https://mcp.example/tools"},
		{name: "SSEHint", spec: "http+sse://mcp.example/tools", want: "http://mcp.example/tools"},
		{name: "SecureSSEHint", spec: "HTTPS+SSE://mcp.example/tools", want: "https://mcp.example/tools"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tr, err := buildTransport(context.Background(), tc.spec, nil)
			if err != nil {
				t.Fatalf("buildTransport returned error: %v", err)
			}
			sseTr, ok := tr.(*mcpsdk.SSEClientTransport)
			if !ok {
				t.Fatalf("transport is %T, want *SSEClientTransport", tr)
			}
			if sseTr.Endpoint != tc.want {
				t.Fatalf("unexpected endpoint: got %q want %q", sseTr.Endpoint, tc.want)
			}
		})
	}
}

func TestBuildTransportStreamableHTTP(t *testing.T) {
	tr, err := buildTransport(context.Background(), "HTTPS://Example.com/mcp?trace=1", nil)
	if err != nil {
		t.Fatalf("buildTransport returned error: %v", err)
	}
	httpTr, ok := tr.(*mcpsdk.StreamableClientTransport)
	if !ok {
		t.Fatalf("transport is %T, want *StreamableClientTransport", tr)
	}
	if httpTr.Endpoint != "https://Example.com/mcp?trace=1" {
		t.Fatalf("unexpected endpoint: %q", httpTr.Endpoint)
	}
}

func TestBuildTransportErrors(t *testing.T) {
	for _, spec := range []string{"", "   ", "stdio://", "sse://", "http+sse://"} {
		if _, err := buildTransport(context.Background(), spec, nil); err == nil {
			t.Fatalf("expected error for spec %q", spec)
		}
	}
}
