package products

import (
	"context"

	domainerrors "portfolio/pkg/domain-errors"
)

// ErrNotFound keeps catalog 404s consistent across implementations.
var ErrNotFound = domainerrors.New(domainerrors.CodeNotFound, "product not found")

// Catalog is the read surface the case service needs from the product catalog.
type Catalog interface {
	FindByIdentifier(ctx context.Context, productIdentifier string) (*Product, error)
	Exists(ctx context.Context, productIdentifier string) (bool, error)
}
