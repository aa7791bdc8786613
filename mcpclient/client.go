// Package mcpclient connects to MCP tool servers over stdio and exposes
// their tools to the agent loop.
package mcpclient

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

var logger = xlog.NewPackageLogger("github.com/MichaelAnckaert/go-agents", "mcpclient")

var (
	// ErrConnection is returned when the server process cannot be
	// started or the protocol handshake fails. The error is fatal to
	// the client, a new one must be created to retry.
	ErrConnection = errors.New("mcp: connection failed")
	// ErrClosed is returned when operating on a closed client.
	ErrClosed = errors.New("mcp: client closed")
	// ErrNotConnected is returned when the client has not completed the
	// handshake yet.
	ErrNotConnected = errors.New("mcp: client not connected")
)

// State is the lifecycle state of a client.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateReady        State = "ready"
	StateClosed       State = "closed"
)

const DefaultHandshakeTimeout = 30 * time.Second

type Options struct {
	Env              []string
	HandshakeTimeout time.Duration
	ClientInfo       mcp.Implementation
}

type Option func(*Options)

// WithEnv sets extra environment variables for the server process,
// in KEY=VALUE form.
func WithEnv(env ...string) Option {
	return func(opts *Options) {
		opts.Env = append(opts.Env, env...)
	}
}

// WithHandshakeTimeout bounds the initialize handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(opts *Options) {
		opts.HandshakeTimeout = d
	}
}

// WithClientInfo sets the client identity sent during the handshake.
func WithClientInfo(name, version string) Option {
	return func(opts *Options) {
		opts.ClientInfo = mcp.Implementation{Name: name, Version: version}
	}
}

// Client manages a single MCP server subprocess. It moves through
// disconnected, connecting, ready and closed states; once closed it
// cannot be reused.
type Client struct {
	command string
	args    []string
	options *Options

	mu         sync.Mutex
	state      State
	cli        *client.Client
	serverInfo mcp.Implementation
}

// New creates a client for a stdio MCP server. The server process is
// not started until Connect is called.
func New(command string, args []string, opts ...Option) *Client {
	options := &Options{
		HandshakeTimeout: DefaultHandshakeTimeout,
		ClientInfo: mcp.Implementation{
			Name:    "go-agents",
			Version: "1.0.0",
		},
	}
	for _, opt := range opts {
		opt(options)
	}
	return &Client{
		command: command,
		args:    args,
		options: options,
		state:   StateDisconnected,
	}
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ServerInfo returns the server identity reported during the handshake.
func (c *Client) ServerInfo() mcp.Implementation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverInfo
}

// Connect starts the server process and performs the protocol
// handshake. Connecting an already ready client is a no-op. A failed
// connect closes the client, retrying requires a new one.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return errors.WithStack(ErrClosed)
	case StateReady, StateConnecting:
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	cli, err := client.NewStdioMCPClient(c.command, c.options.Env, c.args...)
	if err != nil {
		c.fail()
		return errors.WithMessagef(ErrConnection, "failed to start %q: %s", c.command, err.Error())
	}

	hctx, cancel := context.WithTimeout(ctx, c.options.HandshakeTimeout)
	defer cancel()

	initReq := mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo:      c.options.ClientInfo,
		},
	}
	initRes, err := cli.Initialize(hctx, initReq)
	if err != nil {
		_ = cli.Close()
		c.fail()
		return errors.WithMessagef(ErrConnection, "failed to initialize %q: %s", c.command, err.Error())
	}

	if err := c.commit(cli, initRes.ServerInfo); err != nil {
		_ = cli.Close()
		return err
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "connected",
		"command", c.command,
		"server", initRes.ServerInfo.Name,
		"server_version", initRes.ServerInfo.Version,
	)
	return nil
}

// commit installs the connected client. Close may have raced the
// handshake; in that case the state stays closed and the caller must
// terminate the server process.
func (c *Client) commit(cli *client.Client, info mcp.Implementation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return errors.WithStack(ErrClosed)
	}
	c.cli = cli
	c.serverInfo = info
	c.state = StateReady
	return nil
}

func (c *Client) fail() {
	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()
}

func (c *Client) ready() (*client.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateClosed:
		return nil, errors.WithStack(ErrClosed)
	case StateReady:
		return c.cli, nil
	default:
		return nil, errors.WithStack(ErrNotConnected)
	}
}

// ListTools returns the tools advertised by the server.
func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	cli, err := c.ready()
	if err != nil {
		return nil, err
	}
	res, err := cli.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, errors.WithMessagef(ErrConnection, "failed to list tools: %s", err.Error())
	}
	return res.Tools, nil
}

// CallTool invokes a tool on the server and returns its textual output.
// A result the server flags as an error is returned as a Go error so
// callers can surface it to the model.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	cli, err := c.ready()
	if err != nil {
		return "", err
	}

	res, err := cli.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return "", errors.WithMessagef(err, "failed to call tool %s", name)
	}

	content := flattenContent(res.Content)
	if res.IsError {
		return "", errors.Newf("%s", content)
	}
	return content, nil
}

func flattenContent(content []mcp.Content) string {
	var parts []string
	for _, item := range content {
		if tc, ok := mcp.AsTextContent(item); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Close terminates the server process. Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	cli := c.cli
	c.cli = nil
	c.state = StateClosed
	c.mu.Unlock()

	if cli != nil {
		if err := cli.Close(); err != nil {
			return errors.WithMessage(err, "mcp: failed to close client")
		}
	}
	return nil
}
