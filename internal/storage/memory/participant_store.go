package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

// ParticipantStore is an in-memory implementation of storage.ParticipantStore.
type ParticipantStore struct {
	mu   sync.RWMutex
	data map[uuid.UUID]*domain.AuctionParticipant
}

// NewParticipantStore creates a new in-memory participant store.
func NewParticipantStore() *ParticipantStore {
	return &ParticipantStore{data: make(map[uuid.UUID]*domain.AuctionParticipant)}
}

var _ storage.ParticipantStore = (*ParticipantStore)(nil)

func (s *ParticipantStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[uuid.UUID]*domain.AuctionParticipant, len(s.data))
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

func (s *ParticipantStore) insertLocked(p *domain.AuctionParticipant) error {
	if p == nil || p.ID == uuid.Nil {
		return storage.ErrInvalidInput
	}
	if _, exists := s.data[p.ID]; exists {
		return storage.ErrDuplicateKey
	}
	for _, existing := range s.data {
		if existing.AuctionID == p.AuctionID && existing.RosterID == p.RosterID {
			return storage.ErrDuplicateKey
		}
	}

	copy := *p
	s.data[p.ID] = &copy
	return nil
}

// Insert adds a new participant. Returns ErrDuplicateKey if the roster
// already joined the auction.
func (s *ParticipantStore) Insert(_ context.Context, p *domain.AuctionParticipant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(p)
}

// InsertBulk adds multiple participants atomically.
func (s *ParticipantStore) InsertBulk(_ context.Context, participants []*domain.AuctionParticipant) error {
	if len(participants) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		if err := s.insertLocked(p); err != nil {
			for _, id := range inserted {
				delete(s.data, id)
			}
			return err
		}
		inserted = append(inserted, p.ID)
	}
	return nil
}

// GetByID retrieves a participant. Returns ErrNotFound if not exists.
func (s *ParticipantStore) GetByID(_ context.Context, id uuid.UUID) (*domain.AuctionParticipant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *p
	return &copy, nil
}

// GetForUpdate retrieves a participant. The TxManager's mutex provides the
// isolation a row lock gives the postgres store.
func (s *ParticipantStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.AuctionParticipant, error) {
	return s.GetByID(ctx, id)
}

// ListByAuction retrieves all participants for an auction, ordered by
// created_at ASC.
func (s *ParticipantStore) ListByAuction(_ context.Context, auctionID uuid.UUID) ([]*domain.AuctionParticipant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AuctionParticipant
	for _, p := range s.data {
		if p.AuctionID == auctionID {
			copy := *p
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

// Update persists the participant's mutable fields.
func (s *ParticipantStore) Update(_ context.Context, p *domain.AuctionParticipant) error {
	if p == nil || p.ID == uuid.Nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.ID]; !exists {
		return storage.ErrNotFound
	}

	copy := *p
	s.data[p.ID] = &copy
	return nil
}

// Delete removes a participant. Returns ErrNotFound if not exists.
func (s *ParticipantStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[id]; !exists {
		return storage.ErrNotFound
	}

	delete(s.data, id)
	return nil
}
