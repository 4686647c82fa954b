package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

// The collaborator stores hold the pool, roster and team rows the draft
// engine reads but does not own. Put methods let tests and memory-backed
// runs seed them.

// PoolStore is an in-memory implementation of storage.PoolStore.
type PoolStore struct {
	mu   sync.RWMutex
	data map[uuid.UUID]*domain.Pool
}

// NewPoolStore creates a new in-memory pool store.
func NewPoolStore() *PoolStore {
	return &PoolStore{data: make(map[uuid.UUID]*domain.Pool)}
}

var _ storage.PoolStore = (*PoolStore)(nil)

// Put seeds or replaces a pool.
func (s *PoolStore) Put(p *domain.Pool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *p
	s.data[p.ID] = &copy
}

// GetByID retrieves a pool. Returns ErrNotFound if not exists.
func (s *PoolStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *p
	return &copy, nil
}

// RosterStore is an in-memory implementation of storage.RosterStore.
type RosterStore struct {
	mu   sync.RWMutex
	data map[uuid.UUID]*domain.Roster
}

// NewRosterStore creates a new in-memory roster store.
func NewRosterStore() *RosterStore {
	return &RosterStore{data: make(map[uuid.UUID]*domain.Roster)}
}

var _ storage.RosterStore = (*RosterStore)(nil)

// Put seeds or replaces a roster.
func (s *RosterStore) Put(r *domain.Roster) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *r
	s.data[r.ID] = &copy
}

// GetByID retrieves a roster. Returns ErrNotFound if not exists.
func (s *RosterStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Roster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *r
	return &copy, nil
}

// ListByPoolSeason retrieves all rosters for a pool and season.
func (s *RosterStore) ListByPoolSeason(_ context.Context, poolID uuid.UUID, season string) ([]*domain.Roster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Roster
	for _, r := range s.data {
		if r.PoolID == poolID && r.Season == season {
			copy := *r
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

// TeamStore is an in-memory implementation of storage.TeamStore.
type TeamStore struct {
	mu   sync.RWMutex
	data map[uuid.UUID]*domain.Team
}

// NewTeamStore creates a new in-memory team store.
func NewTeamStore() *TeamStore {
	return &TeamStore{data: make(map[uuid.UUID]*domain.Team)}
}

var _ storage.TeamStore = (*TeamStore)(nil)

// Put seeds or replaces a team.
func (s *TeamStore) Put(t *domain.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *t
	s.data[t.ID] = &copy
}

// GetByID retrieves a team. Returns ErrNotFound if not exists.
func (s *TeamStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *t
	return &copy, nil
}

// GetByIDs retrieves the teams for the given ids. Missing ids are skipped.
func (s *TeamStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Team, 0, len(ids))
	for _, id := range ids {
		if t, exists := s.data[id]; exists {
			copy := *t
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// ListByLeague retrieves all teams in a league, ordered by name ASC.
func (s *TeamStore) ListByLeague(_ context.Context, league domain.LeagueSlug) ([]*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Team
	for _, t := range s.data {
		if t.League == league {
			copy := *t
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// RosterSlotStore is an in-memory implementation of storage.RosterSlotStore.
type RosterSlotStore struct {
	mu   sync.RWMutex
	data map[uuid.UUID]*domain.RosterSlot
}

// NewRosterSlotStore creates a new in-memory roster slot store.
func NewRosterSlotStore() *RosterSlotStore {
	return &RosterSlotStore{data: make(map[uuid.UUID]*domain.RosterSlot)}
}

var _ storage.RosterSlotStore = (*RosterSlotStore)(nil)

func (s *RosterSlotStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[uuid.UUID]*domain.RosterSlot, len(s.data))
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

// InsertBulk adds multiple slots atomically. Returns ErrDuplicateKey if a
// roster already holds a slot for the same team.
func (s *RosterSlotStore) InsertBulk(_ context.Context, slots []*domain.RosterSlot) error {
	if len(slots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := make([]uuid.UUID, 0, len(slots))
	for _, slot := range slots {
		if slot == nil || slot.ID == uuid.Nil {
			err := storage.ErrInvalidInput
			for _, id := range inserted {
				delete(s.data, id)
			}
			return err
		}
		dup := false
		if _, exists := s.data[slot.ID]; exists {
			dup = true
		}
		for _, existing := range s.data {
			if existing.RosterID == slot.RosterID && existing.TeamID == slot.TeamID {
				dup = true
				break
			}
		}
		if dup {
			for _, id := range inserted {
				delete(s.data, id)
			}
			return storage.ErrDuplicateKey
		}

		copy := *slot
		s.data[slot.ID] = &copy
		inserted = append(inserted, slot.ID)
	}
	return nil
}

// ListByRosterIDs retrieves all slots belonging to the given rosters.
func (s *RosterSlotStore) ListByRosterIDs(_ context.Context, rosterIDs []uuid.UUID) ([]*domain.RosterSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[uuid.UUID]struct{}, len(rosterIDs))
	for _, id := range rosterIDs {
		want[id] = struct{}{}
	}

	var result []*domain.RosterSlot
	for _, slot := range s.data {
		if _, ok := want[slot.RosterID]; ok {
			copy := *slot
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

// DeleteByRosterIDs removes all slots belonging to the given rosters.
func (s *RosterSlotStore) DeleteByRosterIDs(_ context.Context, rosterIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[uuid.UUID]struct{}, len(rosterIDs))
	for _, id := range rosterIDs {
		want[id] = struct{}{}
	}

	for id, slot := range s.data {
		if _, ok := want[slot.RosterID]; ok {
			delete(s.data, id)
		}
	}
	return nil
}
