// Package memory provides in-memory store implementations used for local
// runs and unit tests. Semantics mirror the postgres package.
package memory

import (
	"context"
	"sync"

	"wins-pool/internal/storage"
)

// snapshotter captures a store's state and returns the function that
// restores it.
type snapshotter interface {
	snapshot() (restore func())
}

// New creates the full in-memory store set plus the TxManager bound to it.
func New() (storage.Stores, *TxManager) {
	auctions := NewAuctionStore()
	lots := NewLotStore()
	participants := NewParticipantStore()
	bids := NewBidStore()
	eventLog := NewEventLogStore()
	pools := NewPoolStore()
	rosters := NewRosterStore()
	teams := NewTeamStore()
	rosterSlots := NewRosterSlotStore()

	stores := storage.Stores{
		Auctions:     auctions,
		Lots:         lots,
		Participants: participants,
		Bids:         bids,
		EventLog:     eventLog,
		Pools:        pools,
		Rosters:      rosters,
		Teams:        teams,
		RosterSlots:  rosterSlots,
	}

	tm := &TxManager{
		stores: stores,
		snaps:  []snapshotter{auctions, lots, participants, bids, eventLog, rosterSlots},
	}
	return stores, tm
}

// TxManager implements storage.TxManager for the in-memory stores. One
// mutex serializes closures, and each mutable store is snapshotted before
// the closure runs so a failed closure leaves no partial writes.
type TxManager struct {
	mu     sync.Mutex
	stores storage.Stores
	snaps  []snapshotter
}

var _ storage.TxManager = (*TxManager)(nil)

// InTx runs fn atomically against the store set.
func (m *TxManager) InTx(ctx context.Context, fn func(ctx context.Context, s storage.Stores) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	restores := make([]func(), 0, len(m.snaps))
	for _, s := range m.snaps {
		restores = append(restores, s.snapshot())
	}

	if err := fn(ctx, m.stores); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}
