package mcpclient

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A Close that lands while the handshake is in flight wins: the
// connect must not resurrect a closed client.
func Test_Client_CloseDuringConnect(t *testing.T) {
	c := New("server-binary", nil)
	c.mu.Lock()
	c.state = StateConnecting
	c.mu.Unlock()

	require.NoError(t, c.Close())
	assert.Equal(t, StateClosed, c.State())

	err := c.commit(nil, mcp.Implementation{Name: "late-server"})
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, StateClosed, c.State())
	assert.Nil(t, c.cli)
	assert.Empty(t, c.ServerInfo().Name)
}

func Test_Client_Commit(t *testing.T) {
	c := New("server-binary", nil)
	c.mu.Lock()
	c.state = StateConnecting
	c.mu.Unlock()

	require.NoError(t, c.commit(nil, mcp.Implementation{Name: "server", Version: "1.2.0"}))
	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, "server", c.ServerInfo().Name)
}
