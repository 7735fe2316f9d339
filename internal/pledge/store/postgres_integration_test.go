//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pledge/internal/pledge/models"
	"pledge/internal/pledge/store"
	"pledge/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())

	schema, err := os.ReadFile("schema.sql")
	s.Require().NoError(err)
	s.Require().NoError(s.postgres.Exec(context.Background(), string(schema)))

	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "pledges"))
}

func (s *PostgresStoreSuite) newPledge(cents int64) *models.Pledge {
	p, err := models.New(models.Params{
		FundraisingRound: "1",
		Email:            "a@b.com",
		Occupation:       "eng",
		Employer:         "acme",
		Phone:            "555",
		Target:           "t1",
		AmountCents:      cents,
		Customer:         "cus_1234",
		Note:             "keep going",
	}, time.Now().UTC())
	s.Require().NoError(err)
	return p
}

func (s *PostgresStoreSuite) TestCreateAndSum() {
	ctx := context.Background()

	sum, err := s.store.SumAmounts(ctx)
	s.Require().NoError(err)
	s.Equal(int64(0), sum)

	s.Require().NoError(s.store.Create(ctx, s.newPledge(5000)))
	s.Require().NoError(s.store.Create(ctx, s.newPledge(2500)))

	sum, err = s.store.SumAmounts(ctx)
	s.Require().NoError(err)
	s.Equal(int64(7500), sum)
}

func (s *PostgresStoreSuite) TestCreateRejectsDuplicateID() {
	ctx := context.Background()

	p := s.newPledge(5000)
	s.Require().NoError(s.store.Create(ctx, p))
	s.Error(s.store.Create(ctx, p))
}
