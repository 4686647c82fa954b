package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

func newAuction(poolID uuid.UUID, season string) *domain.Auction {
	return &domain.Auction{
		ID:                        uuid.New(),
		PoolID:                    poolID,
		Season:                    season,
		Status:                    domain.AuctionNotStarted,
		MaxLotsPerParticipant:     2,
		MinBidIncrement:           decimal.NewFromInt(1),
		StartingParticipantBudget: decimal.NewFromInt(10),
		CreatedAt:                 time.Now().UTC(),
	}
}

func TestAuctionStore_DuplicatePoolSeason(t *testing.T) {
	stores, _ := New()
	ctx := context.Background()

	poolID := uuid.New()
	if err := stores.Auctions.Insert(ctx, newAuction(poolID, "2025-26")); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := stores.Auctions.Insert(ctx, newAuction(poolID, "2025-26"))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if err := stores.Auctions.Insert(ctx, newAuction(poolID, "2026-27")); err != nil {
		t.Fatalf("different season should insert: %v", err)
	}
}

func TestStores_CopyOnRead(t *testing.T) {
	stores, _ := New()
	ctx := context.Background()

	a := newAuction(uuid.New(), "2025-26")
	if err := stores.Auctions.Insert(ctx, a); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := stores.Auctions.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Status = domain.AuctionCompleted

	again, err := stores.Auctions.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.Status != domain.AuctionNotStarted {
		t.Fatal("mutating a returned copy leaked into the store")
	}
}

func TestTxManager_RollbackRestoresAllStores(t *testing.T) {
	stores, tm := New()
	ctx := context.Background()

	a := newAuction(uuid.New(), "2025-26")
	if err := stores.Auctions.Insert(ctx, a); err != nil {
		t.Fatalf("insert auction: %v", err)
	}
	p := &domain.AuctionParticipant{
		ID:        uuid.New(),
		AuctionID: a.ID,
		RosterID:  uuid.New(),
		Name:      "Alice",
		Budget:    decimal.NewFromInt(10),
		CreatedAt: time.Now().UTC(),
	}
	if err := stores.Participants.Insert(ctx, p); err != nil {
		t.Fatalf("insert participant: %v", err)
	}

	boom := errors.New("boom")
	err := tm.InTx(ctx, func(ctx context.Context, st storage.Stores) error {
		locked, err := st.Participants.GetForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		locked.Budget = decimal.Zero
		if err := st.Participants.Update(ctx, locked); err != nil {
			return err
		}

		bid := &domain.Bid{
			ID:            uuid.New(),
			LotID:         uuid.New(),
			ParticipantID: p.ID,
			Amount:        decimal.NewFromInt(3),
			CreatedAt:     time.Now().UTC(),
		}
		if err := st.Bids.Insert(ctx, bid); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := stores.Participants.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get participant: %v", err)
	}
	if !got.Budget.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("budget write survived rollback: %s", got.Budget)
	}
	bids, err := stores.Bids.List(ctx, domain.BidFilter{ParticipantID: &p.ID})
	if err != nil {
		t.Fatalf("list bids: %v", err)
	}
	if len(bids) != 0 {
		t.Fatalf("bid insert survived rollback: %d bids", len(bids))
	}
}

func TestTxManager_CommitKeepsWrites(t *testing.T) {
	stores, tm := New()
	ctx := context.Background()

	a := newAuction(uuid.New(), "2025-26")
	if err := stores.Auctions.Insert(ctx, a); err != nil {
		t.Fatalf("insert auction: %v", err)
	}

	err := tm.InTx(ctx, func(ctx context.Context, st storage.Stores) error {
		locked, err := st.Auctions.GetForUpdate(ctx, a.ID)
		if err != nil {
			return err
		}
		locked.Status = domain.AuctionActive
		return st.Auctions.Update(ctx, locked)
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}

	got, err := stores.Auctions.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get auction: %v", err)
	}
	if got.Status != domain.AuctionActive {
		t.Fatalf("committed write missing, status %s", got.Status)
	}
}

func TestEventLogStore_MostRecentFirst(t *testing.T) {
	stores, _ := New()
	ctx := context.Background()

	auctionID := uuid.New()
	for i := 0; i < 3; i++ {
		entry := &domain.EventLogEntry{
			ID:        uuid.New(),
			AuctionID: auctionID,
			EventType: domain.EventBidAccepted,
			Payload:   []byte{byte('0' + i)},
			CreatedAt: time.Now().UTC(),
		}
		if err := stores.EventLog.Append(ctx, entry); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries, err := stores.EventLog.ListByAuction(ctx, auctionID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, entry := range entries {
		if want := byte('0' + 2 - i); entry.Payload[0] != want {
			t.Fatalf("entry %d: payload %q, want %q", i, entry.Payload[0], want)
		}
	}
}

func TestLotStore_InsertBulkIsAtomic(t *testing.T) {
	stores, _ := New()
	ctx := context.Background()

	auctionID := uuid.New()
	teamID := uuid.New()
	existing := &domain.AuctionLot{
		ID:        uuid.New(),
		AuctionID: auctionID,
		TeamID:    teamID,
		Status:    domain.LotReady,
		CreatedAt: time.Now().UTC(),
	}
	if err := stores.Lots.Insert(ctx, existing); err != nil {
		t.Fatalf("insert: %v", err)
	}

	batch := []*domain.AuctionLot{
		{ID: uuid.New(), AuctionID: auctionID, TeamID: uuid.New(), Status: domain.LotReady, CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), AuctionID: auctionID, TeamID: teamID, Status: domain.LotReady, CreatedAt: time.Now().UTC()},
	}
	err := stores.Lots.InsertBulk(ctx, batch)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	lots, err := stores.Lots.ListByAuction(ctx, auctionID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lots) != 1 {
		t.Fatalf("partial batch persisted: %d lots", len(lots))
	}
}
