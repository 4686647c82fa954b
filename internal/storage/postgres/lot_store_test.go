package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

func newTestLot(auctionID, teamID uuid.UUID) *domain.AuctionLot {
	return &domain.AuctionLot{
		ID:        uuid.New(),
		AuctionID: auctionID,
		TeamID:    teamID,
		Status:    domain.LotReady,
		CreatedAt: time.Now().UTC(),
	}
}

func TestLotStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLotStore(pool)
	ctx := context.Background()

	poolID := seedPool(t, pool)
	a := seedAuction(t, pool, poolID, "2025-26")
	teamID := seedTeam(t, pool, "Celtics")

	lot := newTestLot(a.ID, teamID)
	require.NoError(t, store.Insert(ctx, lot))

	got, err := store.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, lot.ID, got.ID)
	assert.Equal(t, a.ID, got.AuctionID)
	assert.Equal(t, teamID, got.TeamID)
	assert.Equal(t, domain.LotReady, got.Status)
	assert.Nil(t, got.WinningBidID)
	assert.Nil(t, got.OpenedAt)
	assert.Nil(t, got.ClosedAt)
}

func TestLotStore_InsertDuplicateTeam(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLotStore(pool)
	ctx := context.Background()

	poolID := seedPool(t, pool)
	a := seedAuction(t, pool, poolID, "2025-26")
	teamID := seedTeam(t, pool, "Celtics")

	require.NoError(t, store.Insert(ctx, newTestLot(a.ID, teamID)))
	err := store.Insert(ctx, newTestLot(a.ID, teamID))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestLotStore_InsertBulkAndListByAuction(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLotStore(pool)
	ctx := context.Background()

	poolID := seedPool(t, pool)
	a := seedAuction(t, pool, poolID, "2025-26")

	lots := []*domain.AuctionLot{
		newTestLot(a.ID, seedTeam(t, pool, "Celtics")),
		newTestLot(a.ID, seedTeam(t, pool, "Lakers")),
		newTestLot(a.ID, seedTeam(t, pool, "Nuggets")),
	}
	require.NoError(t, store.InsertBulk(ctx, lots))

	got, err := store.ListByAuction(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestLotStore_Update(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLotStore(pool)
	ctx := context.Background()

	poolID := seedPool(t, pool)
	a := seedAuction(t, pool, poolID, "2025-26")
	lot := newTestLot(a.ID, seedTeam(t, pool, "Celtics"))
	require.NoError(t, store.Insert(ctx, lot))

	now := time.Now().UTC().Truncate(time.Millisecond)
	lot.Status = domain.LotOpen
	lot.OpenedAt = &now
	require.NoError(t, store.Update(ctx, lot))

	got, err := store.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LotOpen, got.Status)
	require.NotNil(t, got.OpenedAt)
	assert.WithinDuration(t, now, *got.OpenedAt, time.Second)
}

func TestLotStore_GetForUpdateNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewLotStore(pool).GetForUpdate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
