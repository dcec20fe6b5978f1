package store

import (
	"context"
	"time"

	"portfolio/internal/cases"
	domainerrors "portfolio/pkg/domain-errors"
)

// ErrNotFound keeps store-specific 404s consistent across the in-memory and
// PostgreSQL implementations.
var ErrNotFound = domainerrors.New(domainerrors.CodeNotFound, "case not found")

// ErrDuplicate signals an insert against an already-taken compound identity.
var ErrDuplicate = domainerrors.New(domainerrors.CodeConflict, "case already exists")

// Store persists case records. Cases are never physically deleted; closure is
// a terminal state, not removal.
type Store interface {
	Create(ctx context.Context, record cases.Case) error
	Update(ctx context.Context, record cases.Case) error
	// UpdateState moves a case to a new lifecycle state and stamps the
	// modification audit fields in a single write.
	UpdateState(ctx context.Context, productIdentifier, caseIdentifier string,
		state cases.State, modifiedBy string, modifiedOn time.Time) error
	FindByIdentifier(ctx context.Context, productIdentifier, caseIdentifier string) (*cases.Case, error)
	FindAllForProduct(ctx context.Context, productIdentifier string, includeClosed bool) ([]cases.Case, error)
}
