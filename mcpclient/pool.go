package mcpclient

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// Pool manages a set of named MCP clients and shuts them down together.
type Pool struct {
	mu      sync.Mutex
	clients map[string]*Client
}

func NewPool() *Pool {
	return &Pool{
		clients: map[string]*Client{},
	}
}

// Add registers a client under name. The name must be unique.
func (p *Pool) Add(name string, c *Client) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.clients[name]; ok {
		return errors.Newf("mcp: client %q already added", name)
	}
	p.clients[name] = c
	return nil
}

// Get returns the client registered under name.
func (p *Pool) Get(name string) (*Client, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.clients[name]
	return c, ok
}

// Connect connects every client in the pool. The first failure stops
// the rollout and is returned.
func (p *Pool) Connect(ctx context.Context) error {
	p.mu.Lock()
	clients := make([]*Client, 0, len(p.clients))
	for _, c := range p.clients {
		clients = append(clients, c)
	}
	p.mu.Unlock()

	for _, c := range clients {
		if err := c.Connect(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown closes all clients in parallel and returns the first error.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	clients := make([]*Client, 0, len(p.clients))
	for _, c := range p.clients {
		clients = append(clients, c)
	}
	p.clients = map[string]*Client{}
	p.mu.Unlock()

	var wg sync.WaitGroup
	errChan := make(chan error, len(clients))
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			if err := c.Close(); err != nil {
				errChan <- err
			}
		}(c)
	}
	wg.Wait()
	close(errChan)

	for err := range errChan {
		return err
	}
	return nil
}
