//go:build integration

package products_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"portfolio/internal/products"
	"portfolio/pkg/testutil/containers"
)

const productsSchema = `
	CREATE TABLE IF NOT EXISTS products (
		identifier         TEXT    NOT NULL PRIMARY KEY,
		name               TEXT    NOT NULL,
		pattern_package    TEXT    NOT NULL,
		term_range_maximum INTEGER NOT NULL,
		enabled            BOOLEAN NOT NULL DEFAULT FALSE
	);
	CREATE TABLE IF NOT EXISTS charge_definitions (
		product_identifier TEXT           NOT NULL REFERENCES products (identifier),
		identifier         TEXT           NOT NULL,
		name               TEXT           NOT NULL,
		charge_method      TEXT           NOT NULL,
		amount             NUMERIC(19, 4) NOT NULL,
		from_account       TEXT           NOT NULL,
		to_account         TEXT           NOT NULL,
		reduces_balance    BOOLEAN        NOT NULL DEFAULT FALSE,
		PRIMARY KEY (product_identifier, identifier)
	)
`

type PostgresCatalogSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	catalog  *products.PostgresCatalog
}

func TestPostgresCatalogSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresCatalogSuite))
}

func (s *PostgresCatalogSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.postgres.Exec(s.T(), productsSchema)
	s.catalog = products.NewPostgresCatalog(s.postgres.DB)
}

func (s *PostgresCatalogSuite) SetupTest() {
	s.postgres.Exec(s.T(), "TRUNCATE charge_definitions, products")
}

func (s *PostgresCatalogSuite) seedProduct() {
	s.postgres.Exec(s.T(), `
		INSERT INTO products (identifier, name, pattern_package, term_range_maximum, enabled)
		VALUES ('individual-lending', 'Individual Lending', 'individuallending', 12, TRUE)
	`)
	s.postgres.Exec(s.T(), `
		INSERT INTO charge_definitions
			(product_identifier, identifier, name, charge_method, amount, from_account, to_account, reduces_balance)
		VALUES
			('individual-lending', 'loan-interest', 'Interest', 'PROPORTIONAL', 1.0000, 'customer-loan', 'interest-income', FALSE),
			('individual-lending', 'processing-fee', 'Processing fee', 'FIXED', 10.0000, 'customer-loan', 'fee-income', FALSE)
	`)
}

func (s *PostgresCatalogSuite) TestFindByIdentifierLoadsCharges() {
	s.seedProduct()

	product, err := s.catalog.FindByIdentifier(context.Background(), "individual-lending")
	s.Require().NoError(err)
	s.Equal("Individual Lending", product.Name)
	s.Equal("individuallending", product.PatternPackage)
	s.True(product.Enabled)
	s.Require().Len(product.ChargeDefinitions, 2)

	interest := product.ChargeDefinitions[0]
	s.Equal("loan-interest", interest.Identifier)
	s.Equal(products.ChargeProportional, interest.Method)
	s.Equal("1", interest.Amount.String())
}

func (s *PostgresCatalogSuite) TestFindMissingProduct() {
	_, err := s.catalog.FindByIdentifier(context.Background(), "ghost")
	s.ErrorIs(err, products.ErrNotFound)
}

func (s *PostgresCatalogSuite) TestExists() {
	s.seedProduct()

	exists, err := s.catalog.Exists(context.Background(), "individual-lending")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.catalog.Exists(context.Background(), "ghost")
	s.Require().NoError(err)
	s.False(exists)
}
