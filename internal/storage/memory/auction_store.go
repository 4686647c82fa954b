package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

// AuctionStore is an in-memory implementation of storage.AuctionStore.
type AuctionStore struct {
	mu   sync.RWMutex
	data map[uuid.UUID]*domain.Auction
}

// NewAuctionStore creates a new in-memory auction store.
func NewAuctionStore() *AuctionStore {
	return &AuctionStore{data: make(map[uuid.UUID]*domain.Auction)}
}

var _ storage.AuctionStore = (*AuctionStore)(nil)

func (s *AuctionStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[uuid.UUID]*domain.Auction, len(s.data))
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

// Insert adds a new auction. Returns ErrDuplicateKey if an auction already
// exists for the same pool and season.
func (s *AuctionStore) Insert(_ context.Context, a *domain.Auction) error {
	if a == nil || a.ID == uuid.Nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.ID]; exists {
		return storage.ErrDuplicateKey
	}
	for _, existing := range s.data {
		if existing.PoolID == a.PoolID && existing.Season == a.Season {
			return storage.ErrDuplicateKey
		}
	}

	copy := *a
	s.data[a.ID] = &copy
	return nil
}

// GetByID retrieves an auction. Returns ErrNotFound if not exists.
func (s *AuctionStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *a
	return &copy, nil
}

// GetForUpdate retrieves an auction. The TxManager's mutex provides the
// isolation a row lock gives the postgres store.
func (s *AuctionStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	return s.GetByID(ctx, id)
}

// List retrieves auctions matching the filter, ordered by created_at ASC.
func (s *AuctionStore) List(_ context.Context, filter domain.AuctionFilter) ([]*domain.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Auction
	for _, a := range s.data {
		if filter.PoolID != nil && a.PoolID != *filter.PoolID {
			continue
		}
		if filter.Season != "" && a.Season != filter.Season {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		copy := *a
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Update persists the auction's mutable fields.
func (s *AuctionStore) Update(_ context.Context, a *domain.Auction) error {
	if a == nil || a.ID == uuid.Nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.ID]; !exists {
		return storage.ErrNotFound
	}

	copy := *a
	s.data[a.ID] = &copy
	return nil
}

// Delete removes an auction.
func (s *AuctionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[id]; !exists {
		return storage.ErrNotFound
	}
	delete(s.data, id)
	return nil
}
