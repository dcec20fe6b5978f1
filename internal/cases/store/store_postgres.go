package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"portfolio/internal/cases"
	txcontext "portfolio/pkg/platform/tx"
)

// PostgresStore persists case records in PostgreSQL. Writes run against a
// transaction from context when one is present so the command gateway can
// apply a command and its outbox entry atomically.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, record cases.Case) error {
	const query = `
		INSERT INTO cases (
			product_identifier, identifier, current_state, parameters,
			created_by, created_on, last_modified_by, last_modified_on
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		record.ProductIdentifier,
		record.Identifier,
		string(record.CurrentState),
		record.Parameters,
		record.CreatedBy,
		record.CreatedOn,
		record.LastModifiedBy,
		record.LastModifiedOn,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicate
		}
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, record cases.Case) error {
	const query = `
		UPDATE cases
		SET parameters = $3, last_modified_by = $4, last_modified_on = $5
		WHERE product_identifier = $1 AND identifier = $2
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		record.ProductIdentifier,
		record.Identifier,
		record.Parameters,
		record.LastModifiedBy,
		record.LastModifiedOn,
	)
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) UpdateState(ctx context.Context, productIdentifier, caseIdentifier string,
	state cases.State, modifiedBy string, modifiedOn time.Time) error {
	const query = `
		UPDATE cases
		SET current_state = $3, last_modified_by = $4, last_modified_on = $5
		WHERE product_identifier = $1 AND identifier = $2
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		productIdentifier,
		caseIdentifier,
		string(state),
		modifiedBy,
		modifiedOn,
	)
	if err != nil {
		return fmt.Errorf("update case state: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) FindByIdentifier(ctx context.Context, productIdentifier, caseIdentifier string) (*cases.Case, error) {
	const query = `
		SELECT product_identifier, identifier, current_state, parameters,
		       created_by, created_on, last_modified_by, last_modified_on
		FROM cases
		WHERE product_identifier = $1 AND identifier = $2
	`
	record, err := scanCase(s.db.QueryRowContext(ctx, query, productIdentifier, caseIdentifier))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find case: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) FindAllForProduct(ctx context.Context, productIdentifier string, includeClosed bool) ([]cases.Case, error) {
	const query = `
		SELECT product_identifier, identifier, current_state, parameters,
		       created_by, created_on, last_modified_by, last_modified_on
		FROM cases
		WHERE product_identifier = $1
		  AND ($2 OR current_state <> 'CLOSED')
		ORDER BY identifier
	`
	rows, err := s.db.QueryContext(ctx, query, productIdentifier, includeClosed)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	var result []cases.Case
	for rows.Next() {
		record, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		result = append(result, *record)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*cases.Case, error) {
	var record cases.Case
	var state string
	var createdOn sql.NullTime
	var lastModifiedBy sql.NullString
	var lastModifiedOn sql.NullTime
	err := row.Scan(
		&record.ProductIdentifier,
		&record.Identifier,
		&state,
		&record.Parameters,
		&record.CreatedBy,
		&createdOn,
		&lastModifiedBy,
		&lastModifiedOn,
	)
	if err != nil {
		return nil, err
	}
	record.CurrentState = cases.State(state)
	if createdOn.Valid {
		created := createdOn.Time
		record.CreatedOn = &created
	}
	if lastModifiedBy.Valid {
		record.LastModifiedBy = lastModifiedBy.String
	}
	if lastModifiedOn.Valid {
		modified := lastModifiedOn.Time
		record.LastModifiedOn = &modified
	}
	return &record, nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
