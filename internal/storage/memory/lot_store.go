package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

// LotStore is an in-memory implementation of storage.LotStore.
type LotStore struct {
	mu   sync.RWMutex
	data map[uuid.UUID]*domain.AuctionLot
}

// NewLotStore creates a new in-memory lot store.
func NewLotStore() *LotStore {
	return &LotStore{data: make(map[uuid.UUID]*domain.AuctionLot)}
}

var _ storage.LotStore = (*LotStore)(nil)

func (s *LotStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[uuid.UUID]*domain.AuctionLot, len(s.data))
	for k, v := range s.data {
		copy := *v
		saved[k] = &copy
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.data = saved
	}
}

func (s *LotStore) insertLocked(l *domain.AuctionLot) error {
	if l == nil || l.ID == uuid.Nil {
		return storage.ErrInvalidInput
	}
	if _, exists := s.data[l.ID]; exists {
		return storage.ErrDuplicateKey
	}
	for _, existing := range s.data {
		if existing.AuctionID == l.AuctionID && existing.TeamID == l.TeamID {
			return storage.ErrDuplicateKey
		}
	}

	copy := *l
	s.data[l.ID] = &copy
	return nil
}

// Insert adds a new lot. Returns ErrDuplicateKey if the team already has a
// lot in the auction.
func (s *LotStore) Insert(_ context.Context, l *domain.AuctionLot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(l)
}

// InsertBulk adds multiple lots atomically. Fails entire batch on any
// duplicate.
func (s *LotStore) InsertBulk(_ context.Context, lots []*domain.AuctionLot) error {
	if len(lots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := make([]uuid.UUID, 0, len(lots))
	for _, l := range lots {
		if err := s.insertLocked(l); err != nil {
			for _, id := range inserted {
				delete(s.data, id)
			}
			return err
		}
		inserted = append(inserted, l.ID)
	}
	return nil
}

// GetByID retrieves a lot. Returns ErrNotFound if not exists.
func (s *LotStore) GetByID(_ context.Context, id uuid.UUID) (*domain.AuctionLot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *l
	return &copy, nil
}

// GetForUpdate retrieves a lot. The TxManager's mutex provides the
// isolation a row lock gives the postgres store.
func (s *LotStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.AuctionLot, error) {
	return s.GetByID(ctx, id)
}

// ListByAuction retrieves all lots for an auction, ordered by created_at ASC.
func (s *LotStore) ListByAuction(_ context.Context, auctionID uuid.UUID) ([]*domain.AuctionLot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AuctionLot
	for _, l := range s.data {
		if l.AuctionID == auctionID {
			copy := *l
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

// Update persists the lot's mutable fields.
func (s *LotStore) Update(_ context.Context, l *domain.AuctionLot) error {
	if l == nil || l.ID == uuid.Nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[l.ID]; !exists {
		return storage.ErrNotFound
	}

	copy := *l
	s.data[l.ID] = &copy
	return nil
}
