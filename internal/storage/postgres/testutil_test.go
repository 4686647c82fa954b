package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage/migrations"
)

// setupTestDB creates a PostgreSQL container, applies the embedded
// migrations and returns a pool plus cleanup function.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	require.NoError(t, migrations.RunPostgresMigrations(ctx, pool), "failed to run migrations")

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// seedPool inserts a pool row and returns its id.
func seedPool(t *testing.T, pool *Pool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO pools (id, name) VALUES ($1, $2)`, id, "Test Pool")
	require.NoError(t, err)
	return id
}

// seedRoster inserts a roster row and returns its id.
func seedRoster(t *testing.T, pool *Pool, poolID uuid.UUID, season, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO rosters (id, pool_id, season, name) VALUES ($1, $2, $3, $4)`,
		id, poolID, season, name)
	require.NoError(t, err)
	return id
}

// seedTeam inserts a team row and returns its id.
func seedTeam(t *testing.T, pool *Pool, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO teams (id, league, name, abbreviation) VALUES ($1, $2, $3, $4)`,
		id, string(domain.LeagueNBA), name, name[:3])
	require.NoError(t, err)
	return id
}

// seedAuction inserts an auction via the store and returns it.
func seedAuction(t *testing.T, pool *Pool, poolID uuid.UUID, season string) *domain.Auction {
	t.Helper()

	a := &domain.Auction{
		ID:                        uuid.New(),
		PoolID:                    poolID,
		Season:                    season,
		Status:                    domain.AuctionNotStarted,
		MaxLotsPerParticipant:     2,
		MinBidIncrement:           decimal.NewFromInt(1),
		StartingParticipantBudget: decimal.NewFromInt(10),
		CreatedAt:                 time.Now().UTC(),
	}
	require.NoError(t, NewAuctionStore(pool).Insert(context.Background(), a))
	return a
}

// ptr is a helper to create pointers to values.
func ptr[T any](v T) *T {
	return &v
}
