package mcp

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	stdioSchemePrefix = "stdio://"
	sseSchemePrefix   = "sse://"
)

// DefaultServer runs the SQLite reference server in Docker, keeping the
// database in the mcp-test volume.
const DefaultServer = "docker run --rm -i -v mcp-test:/mcp mcp/sqlite --db-path /mcp/test.db"

// transportBuilder is overridden in tests to stub the transport factory.
var transportBuilder = buildTransport

// buildTransport turns a server spec into a go-sdk transport:
//
//	stdio://cmd args | cmd args      spawn a process and speak over stdin/stdout
//	sse://host/path  | http(s)+sse:// SSE endpoint
//	http(s)://host/path              streamable HTTP endpoint
func buildTransport(ctx context.Context, spec string, env []string) (mcpsdk.Transport, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("mcp: server spec is empty")
	}

	lowered := strings.ToLower(spec)
	switch {
	case strings.HasPrefix(lowered, stdioSchemePrefix):
		return buildStdioTransport(ctx, spec[len(stdioSchemePrefix):], env)
	case strings.HasPrefix(lowered, sseSchemePrefix):
		endpoint, err := normalizeHTTPURL(spec[len(sseSchemePrefix):], true)
		if err != nil {
			return nil, fmt.Errorf("mcp: invalid SSE endpoint: %w", err)
		}
		return &mcpsdk.SSEClientTransport{Endpoint: endpoint}, nil
	case strings.HasPrefix(lowered, "http+sse://"), strings.HasPrefix(lowered, "https+sse://"):
		scheme, rest, _ := strings.Cut(spec, "://")
		endpoint, err := normalizeHTTPURL(strings.TrimSuffix(strings.ToLower(scheme), "+sse")+"://"+rest, false)
		if err != nil {
			return nil, fmt.Errorf("mcp: invalid SSE endpoint: %w", err)
		}
		return &mcpsdk.SSEClientTransport{Endpoint: endpoint}, nil
	case strings.HasPrefix(lowered, "http://"), strings.HasPrefix(lowered, "https://"):
		endpoint, err := normalizeHTTPURL(spec, false)
		if err != nil {
			return nil, fmt.Errorf("mcp: invalid HTTP endpoint: %w", err)
		}
		return &mcpsdk.StreamableClientTransport{Endpoint: endpoint}, nil
	}

	return buildStdioTransport(ctx, spec, env)
}

func buildStdioTransport(ctx context.Context, cmdSpec string, env []string) (mcpsdk.Transport, error) {
	parts := strings.Fields(cmdSpec)
	if len(parts) == 0 {
		return nil, fmt.Errorf("mcp: stdio command is empty")
	}
	// #nosec G204 -- the command comes from the operator's configuration
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	cmd.Stderr = os.Stderr
	return &mcpsdk.CommandTransport{Command: cmd}, nil
}

func normalizeHTTPURL(raw string, allowSchemeGuess bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("endpoint is empty")
	}
	if allowSchemeGuess && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	parsed.Scheme = scheme
	return parsed.String(), nil
}
