package restclient

import (
	"fmt"
	"sync"

	"github.com/kbukum/restclient/errors"
)

// Registry holds named clients built from a ClientsConfig.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRegistry builds every client in cfg. opts are applied to each client.
func NewRegistry(cfg ClientsConfig, opts ...Option) (*Registry, error) {
	r := &Registry{clients: make(map[string]*Client, len(cfg.Clients))}
	for _, name := range cfg.Names() {
		cc := cfg.Clients[name]
		if cc.Name == "" {
			cc.Name = name
		}
		client, err := NewFromConfig(cc, opts...)
		if err != nil {
			return nil, fmt.Errorf("client %q: %w", name, err)
		}
		r.clients[name] = client
	}
	return r, nil
}

// Register adds or replaces a client.
func (r *Registry) Register(name string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = c
}

// Client returns the client registered under name.
func (r *Registry) Client(name string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[name]
	if !ok {
		return nil, errors.Configuration(fmt.Sprintf("no client named %q", name)).WithDetail("client", name)
	}
	return c, nil
}

// MustClient is like Client but panics when name is unknown.
func (r *Registry) MustClient(name string) *Client {
	c, err := r.Client(name)
	if err != nil {
		panic(err)
	}
	return c
}
