package products

import (
	"context"
	"sync"
)

// InMemoryCatalog is the process-local catalog used in tests and single-node
// deployments. Products are registered at startup and read-mostly afterwards.
type InMemoryCatalog struct {
	mu       sync.RWMutex
	products map[string]Product
}

func NewInMemoryCatalog() *InMemoryCatalog {
	return &InMemoryCatalog{products: make(map[string]Product)}
}

// Register adds or replaces a product. Call during startup wiring.
func (c *InMemoryCatalog) Register(product Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[product.Identifier] = product
}

func (c *InMemoryCatalog) FindByIdentifier(_ context.Context, productIdentifier string) (*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	product, ok := c.products[productIdentifier]
	if !ok {
		return nil, ErrNotFound
	}
	copied := product
	copied.ChargeDefinitions = append([]ChargeDefinition{}, product.ChargeDefinitions...)
	return &copied, nil
}

func (c *InMemoryCatalog) Exists(_ context.Context, productIdentifier string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.products[productIdentifier]
	return ok, nil
}
