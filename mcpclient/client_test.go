package mcpclient_test

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelAnckaert/go-agents/mcpclient"
	"github.com/MichaelAnckaert/go-agents/tools"
)

func Test_Client_Lifecycle(t *testing.T) {
	c := mcpclient.New("server-binary", []string{"--stdio"})
	assert.Equal(t, mcpclient.StateDisconnected, c.State())

	// operations require a completed handshake
	_, err := c.ListTools(context.Background())
	assert.ErrorIs(t, err, mcpclient.ErrNotConnected)

	_, err = c.CallTool(context.Background(), "lookup", nil)
	assert.ErrorIs(t, err, mcpclient.ErrNotConnected)

	require.NoError(t, c.Close())
	assert.Equal(t, mcpclient.StateClosed, c.State())

	// Close is idempotent
	require.NoError(t, c.Close())

	// a closed client cannot be reused
	err = c.Connect(context.Background())
	assert.ErrorIs(t, err, mcpclient.ErrClosed)

	_, err = c.ListTools(context.Background())
	assert.ErrorIs(t, err, mcpclient.ErrClosed)

	_, err = c.CallTool(context.Background(), "lookup", nil)
	assert.ErrorIs(t, err, mcpclient.ErrClosed)
}

func Test_Client_ConnectFailure(t *testing.T) {
	c := mcpclient.New("/nonexistent/mcp-server", nil,
		mcpclient.WithHandshakeTimeout(2*time.Second),
		mcpclient.WithClientInfo("go-agents-test", "0.0.1"),
	)

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, mcpclient.ErrConnection)

	// a failed connect is fatal
	assert.Equal(t, mcpclient.StateClosed, c.State())
	err = c.Connect(context.Background())
	assert.ErrorIs(t, err, mcpclient.ErrClosed)
}

func Test_NewTool(t *testing.T) {
	c := mcpclient.New("server-binary", nil)

	tool, err := mcpclient.NewTool(c, mcp.Tool{
		Name:        "lookup",
		Description: "Look up a record by key.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"key": map[string]any{
					"type":        "string",
					"description": "Record key",
				},
			},
			Required: []string{"key"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "lookup", tool.Name())
	assert.Equal(t, "Look up a record by key.", tool.Description())

	params, ok := tool.Parameters().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", params["type"])

	dt, ok := tool.(tools.IDescribedTool)
	require.True(t, ok)
	assert.Error(t, dt.Descriptor().Validate(map[string]any{}))
	assert.NoError(t, dt.Descriptor().Validate(map[string]any{"key": "abc"}))

	// calls are routed through the client, which is not connected
	_, err = tool.Call(context.Background(), `{"key": "abc"}`)
	assert.ErrorIs(t, err, mcpclient.ErrNotConnected)
}

func Test_Pool(t *testing.T) {
	p := mcpclient.NewPool()

	c1 := mcpclient.New("server-one", nil)
	c2 := mcpclient.New("server-two", nil)
	require.NoError(t, p.Add("one", c1))
	require.NoError(t, p.Add("two", c2))

	err := p.Add("one", mcpclient.New("server-dup", nil))
	assert.Error(t, err)

	got, ok := p.Get("one")
	require.True(t, ok)
	assert.Same(t, c1, got)

	require.NoError(t, p.Shutdown())
	assert.Equal(t, mcpclient.StateClosed, c1.State())
	assert.Equal(t, mcpclient.StateClosed, c2.State())

	_, ok = p.Get("one")
	assert.False(t, ok)
}
