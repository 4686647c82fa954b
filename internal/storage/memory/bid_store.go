package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

// BidStore is an in-memory implementation of storage.BidStore. Bids are
// append-only.
type BidStore struct {
	mu   sync.RWMutex
	data map[uuid.UUID]*domain.Bid
}

// NewBidStore creates a new in-memory bid store.
func NewBidStore() *BidStore {
	return &BidStore{data: make(map[uuid.UUID]*domain.Bid)}
}

var _ storage.BidStore = (*BidStore)(nil)

func (s *BidStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[uuid.UUID]*domain.Bid, len(s.data))
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

// Insert adds a new bid. Returns ErrDuplicateKey if the id already exists.
func (s *BidStore) Insert(_ context.Context, b *domain.Bid) error {
	if b == nil || b.ID == uuid.Nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[b.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *b
	s.data[b.ID] = &copy
	return nil
}

// GetByID retrieves a bid. Returns ErrNotFound if not exists.
func (s *BidStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *b
	return &copy, nil
}

// GetByIDs retrieves the bids whose ids appear in the given set. Missing
// ids are skipped, not errors.
func (s *BidStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Bid, 0, len(ids))
	for _, id := range ids {
		if b, exists := s.data[id]; exists {
			copy := *b
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

// List retrieves bids matching the filter, ordered by created_at ASC.
func (s *BidStore) List(_ context.Context, filter domain.BidFilter) ([]*domain.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Bid
	for _, b := range s.data {
		if filter.LotID != nil && b.LotID != *filter.LotID {
			continue
		}
		if filter.ParticipantID != nil && b.ParticipantID != *filter.ParticipantID {
			continue
		}
		copy := *b
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}
