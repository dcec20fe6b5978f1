//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"portfolio/internal/cases"
	"portfolio/internal/cases/store"
	"portfolio/pkg/platform/tx"
	"portfolio/pkg/testutil/containers"
)

const casesSchema = `
	CREATE TABLE IF NOT EXISTS cases (
		product_identifier TEXT        NOT NULL,
		identifier         TEXT        NOT NULL,
		current_state      TEXT        NOT NULL,
		parameters         TEXT        NOT NULL DEFAULT '',
		created_by         TEXT        NOT NULL,
		created_on         TIMESTAMPTZ,
		last_modified_by   TEXT,
		last_modified_on   TIMESTAMPTZ,
		PRIMARY KEY (product_identifier, identifier)
	)
`

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.postgres.Exec(s.T(), casesSchema)
	s.store = store.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.postgres.Exec(s.T(), "TRUNCATE cases")
}

func newTestCase(caseIdentifier string, state cases.State) cases.Case {
	createdOn := time.Now().UTC().Truncate(time.Microsecond)
	return cases.Case{
		ProductIdentifier: "individual-lending",
		Identifier:        caseIdentifier,
		CurrentState:      state,
		Parameters:        `{"maximumBalance":"1000"}`,
		CreatedBy:         "fen",
		CreatedOn:         &createdOn,
		LastModifiedBy:    "fen",
		LastModifiedOn:    &createdOn,
	}
}

func (s *PostgresStoreSuite) TestCreateAndFindRoundTrip() {
	ctx := context.Background()
	record := newTestCase("loan-1", cases.StateCreated)
	s.Require().NoError(s.store.Create(ctx, record))

	found, err := s.store.FindByIdentifier(ctx, "individual-lending", "loan-1")
	s.Require().NoError(err)
	s.Equal(record.Identifier, found.Identifier)
	s.Equal(record.CurrentState, found.CurrentState)
	s.Equal(record.Parameters, found.Parameters)
	s.Equal(record.CreatedBy, found.CreatedBy)
	s.Require().NotNil(found.CreatedOn)
	s.True(record.CreatedOn.Equal(*found.CreatedOn))
}

func (s *PostgresStoreSuite) TestConcurrentCreateSameIdentity() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(ctx, newTestCase("loan-race", cases.StateCreated))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, store.ErrDuplicate):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

func (s *PostgresStoreSuite) TestUpdateStateStampsAudit() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newTestCase("loan-1", cases.StateCreated)))

	modifiedOn := time.Now().UTC().Truncate(time.Microsecond)
	err := s.store.UpdateState(ctx, "individual-lending", "loan-1",
		cases.StateApproved, "supervisor", modifiedOn)
	s.Require().NoError(err)

	found, err := s.store.FindByIdentifier(ctx, "individual-lending", "loan-1")
	s.Require().NoError(err)
	s.Equal(cases.StateApproved, found.CurrentState)
	s.Equal("supervisor", found.LastModifiedBy)
	s.Require().NotNil(found.LastModifiedOn)
	s.True(modifiedOn.Equal(*found.LastModifiedOn))
	s.Equal("fen", found.CreatedBy)
}

func (s *PostgresStoreSuite) TestUpdateStateMissingCase() {
	err := s.store.UpdateState(context.Background(), "individual-lending", "ghost",
		cases.StateApproved, "supervisor", time.Now().UTC())
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFindAllFiltersClosed() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newTestCase("loan-1", cases.StateActive)))
	s.Require().NoError(s.store.Create(ctx, newTestCase("loan-2", cases.StateClosed)))
	s.Require().NoError(s.store.Create(ctx, newTestCase("loan-3", cases.StateCreated)))

	open, err := s.store.FindAllForProduct(ctx, "individual-lending", false)
	s.Require().NoError(err)
	s.Len(open, 2)

	all, err := s.store.FindAllForProduct(ctx, "individual-lending", true)
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal("loan-1", all[0].Identifier, "ordered by identifier")
}

func (s *PostgresStoreSuite) TestWritesJoinCallerTransaction() {
	ctx := context.Background()

	err := tx.Run(ctx, s.postgres.DB, func(txCtx context.Context) error {
		if err := s.store.Create(txCtx, newTestCase("loan-tx", cases.StateCreated)); err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	s.Require().Error(err)

	_, err = s.store.FindByIdentifier(ctx, "individual-lending", "loan-tx")
	s.ErrorIs(err, store.ErrNotFound, "rolled-back create must not be visible")
}
