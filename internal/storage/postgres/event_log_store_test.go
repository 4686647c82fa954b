package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

func TestEventLogStore_AppendAndListByAuction(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventLogStore(pool)
	ctx := context.Background()

	poolID := seedPool(t, pool)
	a := seedAuction(t, pool, poolID, "2025-26")

	// Same timestamp on purpose: ordering must come from append order,
	// not created_at.
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		entry := &domain.EventLogEntry{
			ID:        uuid.New(),
			AuctionID: a.ID,
			EventType: domain.EventBidAccepted,
			Payload:   json.RawMessage(fmt.Sprintf(`{"type":"bid_accepted","n":%d}`, i)),
			CreatedAt: now,
		}
		require.NoError(t, store.Append(ctx, entry))
	}

	entries, err := store.ListByAuction(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Most recent first.
	for i, entry := range entries {
		var body struct {
			N int `json:"n"`
		}
		require.NoError(t, json.Unmarshal(entry.Payload, &body))
		assert.Equal(t, 2-i, body.N)
	}
}

func TestEventLogStore_AppendDuplicateID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventLogStore(pool)
	ctx := context.Background()

	poolID := seedPool(t, pool)
	a := seedAuction(t, pool, poolID, "2025-26")

	entry := &domain.EventLogEntry{
		ID:        uuid.New(),
		AuctionID: a.ID,
		EventType: domain.EventAuctionStarted,
		Payload:   json.RawMessage(`{"type":"auction_started"}`),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Append(ctx, entry))
	assert.ErrorIs(t, store.Append(ctx, entry), storage.ErrDuplicateKey)
}

func TestEventLogStore_ListByAuctionEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	entries, err := NewEventLogStore(pool).ListByAuction(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
