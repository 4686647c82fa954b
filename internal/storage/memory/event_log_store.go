package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

// EventLogStore is an in-memory implementation of storage.EventLogStore.
// Entries are kept in append order.
type EventLogStore struct {
	mu      sync.RWMutex
	entries []*domain.EventLogEntry
}

// NewEventLogStore creates a new in-memory event log store.
func NewEventLogStore() *EventLogStore {
	return &EventLogStore{}
}

var _ storage.EventLogStore = (*EventLogStore)(nil)

func (s *EventLogStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make([]*domain.EventLogEntry, len(s.entries))
	copy(saved, s.entries)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.entries = saved
	}
}

// Append adds an entry to the log. Returns ErrDuplicateKey if the id
// already exists.
func (s *EventLogStore) Append(_ context.Context, entry *domain.EventLogEntry) error {
	if entry == nil || entry.ID == uuid.Nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.entries {
		if existing.ID == entry.ID {
			return storage.ErrDuplicateKey
		}
	}

	clone := *entry
	clone.Payload = append([]byte(nil), entry.Payload...)
	s.entries = append(s.entries, &clone)
	return nil
}

// ListByAuction retrieves the entries for an auction, most recent first.
func (s *EventLogStore) ListByAuction(_ context.Context, auctionID uuid.UUID) ([]*domain.EventLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.EventLogEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]
		if entry.AuctionID != auctionID {
			continue
		}
		clone := *entry
		clone.Payload = append([]byte(nil), entry.Payload...)
		result = append(result, &clone)
	}
	return result, nil
}
