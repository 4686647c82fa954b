package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

func newTestParticipant(auctionID, rosterID uuid.UUID, name string) *domain.AuctionParticipant {
	return &domain.AuctionParticipant{
		ID:        uuid.New(),
		AuctionID: auctionID,
		RosterID:  rosterID,
		Name:      name,
		Budget:    decimal.NewFromInt(10),
		CreatedAt: time.Now().UTC(),
	}
}

func TestParticipantStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewParticipantStore(pool)
	ctx := context.Background()

	poolID := seedPool(t, pool)
	a := seedAuction(t, pool, poolID, "2025-26")
	rosterID := seedRoster(t, pool, poolID, "2025-26", "Alice")

	p := newTestParticipant(a.ID, rosterID, "Alice")
	require.NoError(t, store.Insert(ctx, p))

	got, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Alice", got.Name)
	assert.True(t, got.Budget.Equal(decimal.NewFromInt(10)))
	assert.Zero(t, got.NumLotsWon)
}

func TestParticipantStore_InsertDuplicateRoster(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewParticipantStore(pool)
	ctx := context.Background()

	poolID := seedPool(t, pool)
	a := seedAuction(t, pool, poolID, "2025-26")
	rosterID := seedRoster(t, pool, poolID, "2025-26", "Alice")

	require.NoError(t, store.Insert(ctx, newTestParticipant(a.ID, rosterID, "Alice")))
	err := store.Insert(ctx, newTestParticipant(a.ID, rosterID, "Alice again"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestParticipantStore_UpdateBudgetAndWins(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewParticipantStore(pool)
	ctx := context.Background()

	poolID := seedPool(t, pool)
	a := seedAuction(t, pool, poolID, "2025-26")
	rosterID := seedRoster(t, pool, poolID, "2025-26", "Alice")

	p := newTestParticipant(a.ID, rosterID, "Alice")
	require.NoError(t, store.Insert(ctx, p))

	p.Budget = decimal.RequireFromString("4.50")
	p.NumLotsWon = 1
	require.NoError(t, store.Update(ctx, p))

	got, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Budget.Equal(decimal.RequireFromString("4.50")))
	assert.Equal(t, 1, got.NumLotsWon)
}

func TestParticipantStore_ListByAuctionAndDelete(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewParticipantStore(pool)
	ctx := context.Background()

	poolID := seedPool(t, pool)
	a := seedAuction(t, pool, poolID, "2025-26")
	alice := newTestParticipant(a.ID, seedRoster(t, pool, poolID, "2025-26", "Alice"), "Alice")
	bob := newTestParticipant(a.ID, seedRoster(t, pool, poolID, "2025-26", "Bob"), "Bob")
	require.NoError(t, store.InsertBulk(ctx, []*domain.AuctionParticipant{alice, bob}))

	got, err := store.ListByAuction(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, store.Delete(ctx, bob.ID))
	got, err = store.ListByAuction(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, alice.ID, got[0].ID)

	assert.ErrorIs(t, store.Delete(ctx, bob.ID), storage.ErrNotFound)
}
