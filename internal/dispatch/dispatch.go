// Package dispatch holds the per-product command dispatcher contract and the
// registry that resolves a product identifier to its dispatcher. Each product
// pattern supplies its own Dispatcher implementation; the registry never
// inspects dispatcher internals.
package dispatch

import (
	"context"

	"portfolio/internal/cases"
	domainerrors "portfolio/pkg/domain-errors"
)

// Dispatcher executes an accepted command against a case. It is invoked only
// after the caller has confirmed the case exists, the product exists, and the
// command's action is legal from the case's current state. A dispatcher may
// still reject with CodeDispatchRejected when a product-specific precondition
// not visible to the generic lifecycle table fails.
type Dispatcher interface {
	Dispatch(ctx context.Context, productIdentifier, caseIdentifier string, command cases.Command) error
}

// Rejected builds the error a dispatcher returns for a product-specific
// precondition failure. The reason must be actionable for the caller.
func Rejected(reason string) error {
	return domainerrors.New(domainerrors.CodeDispatchRejected, reason)
}

// Registry maps product identifiers to their dispatchers. It is populated
// during startup wiring and treated as immutable afterwards, so concurrent
// resolution needs no locking.
type Registry struct {
	dispatchers map[string]Dispatcher
}

func NewRegistry() *Registry {
	return &Registry{dispatchers: make(map[string]Dispatcher)}
}

// Register binds a product identifier to its dispatcher. Not safe to call
// once the service is serving requests.
func (r *Registry) Register(productIdentifier string, dispatcher Dispatcher) {
	r.dispatchers[productIdentifier] = dispatcher
}

// Resolve returns the dispatcher for a product, or CodeNotFound when no
// product is registered under that identifier.
func (r *Registry) Resolve(productIdentifier string) (Dispatcher, error) {
	dispatcher, ok := r.dispatchers[productIdentifier]
	if !ok {
		return nil, domainerrors.Newf(domainerrors.CodeNotFound,
			"no dispatcher registered for product %s", productIdentifier)
	}
	return dispatcher, nil
}
