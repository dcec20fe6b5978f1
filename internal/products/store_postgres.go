package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// PostgresCatalog reads products and their charge definitions from PostgreSQL.
type PostgresCatalog struct {
	db *sql.DB
}

func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

func (c *PostgresCatalog) FindByIdentifier(ctx context.Context, productIdentifier string) (*Product, error) {
	const query = `
		SELECT identifier, name, pattern_package, term_range_maximum, enabled
		FROM products
		WHERE identifier = $1
	`
	var product Product
	err := c.db.QueryRowContext(ctx, query, productIdentifier).Scan(
		&product.Identifier,
		&product.Name,
		&product.PatternPackage,
		&product.TermRangeMaximum,
		&product.Enabled,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	charges, err := c.chargeDefinitions(ctx, productIdentifier)
	if err != nil {
		return nil, err
	}
	product.ChargeDefinitions = charges
	return &product, nil
}

func (c *PostgresCatalog) Exists(ctx context.Context, productIdentifier string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM products WHERE identifier = $1)`
	var exists bool
	if err := c.db.QueryRowContext(ctx, query, productIdentifier).Scan(&exists); err != nil {
		return false, fmt.Errorf("product exists: %w", err)
	}
	return exists, nil
}

func (c *PostgresCatalog) chargeDefinitions(ctx context.Context, productIdentifier string) ([]ChargeDefinition, error) {
	const query = `
		SELECT identifier, name, charge_method, amount,
		       from_account, to_account, reduces_balance
		FROM charge_definitions
		WHERE product_identifier = $1
		ORDER BY identifier
	`
	rows, err := c.db.QueryContext(ctx, query, productIdentifier)
	if err != nil {
		return nil, fmt.Errorf("query charge definitions: %w", err)
	}
	defer rows.Close()

	var charges []ChargeDefinition
	for rows.Next() {
		var charge ChargeDefinition
		var amount string
		if err := rows.Scan(
			&charge.Identifier,
			&charge.Name,
			&charge.Method,
			&amount,
			&charge.FromAccount,
			&charge.ToAccount,
			&charge.ReducesBalance,
		); err != nil {
			return nil, fmt.Errorf("scan charge definition: %w", err)
		}
		charge.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse charge amount: %w", err)
		}
		charges = append(charges, charge)
	}
	return charges, rows.Err()
}
