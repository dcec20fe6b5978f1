package events

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	txcontext "portfolio/pkg/platform/tx"
)

// PostgresStore persists case events in PostgreSQL. Append joins a caller
// transaction from context when present, so a state change and its event land
// atomically.
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

// Append inserts an event. Duplicate IDs are ignored so redelivered commands
// cannot double-write their trail.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	const query = `
		INSERT INTO case_events (
			id, event_type, timestamp, product_identifier, case_identifier,
			action, actor, outcome, reason, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		event.ID,
		string(event.Type),
		event.Timestamp,
		event.ProductIdentifier,
		event.CaseIdentifier,
		event.Action,
		event.Actor,
		event.Outcome,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert case event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCase(ctx context.Context, productIdentifier, caseIdentifier string) ([]Event, error) {
	const query = `
		SELECT id, event_type, timestamp, product_identifier, case_identifier,
		       action, actor, outcome, reason, request_id
		FROM case_events
		WHERE product_identifier = $1 AND case_identifier = $2
		ORDER BY timestamp
	`
	rows, err := s.db.QueryContext(ctx, query, productIdentifier, caseIdentifier)
	if err != nil {
		return nil, fmt.Errorf("query case events: %w", err)
	}
	defer rows.Close()

	var result []Event
	for rows.Next() {
		var event Event
		var eventType string
		var timestamp time.Time
		if err := rows.Scan(
			&event.ID,
			&eventType,
			&timestamp,
			&event.ProductIdentifier,
			&event.CaseIdentifier,
			&event.Action,
			&event.Actor,
			&event.Outcome,
			&event.Reason,
			&event.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan case event: %w", err)
		}
		event.Type = Type(eventType)
		event.Timestamp = timestamp
		result = append(result, event)
	}
	return result, rows.Err()
}
