package storage

import (
	"context"

	"github.com/google/uuid"

	"wins-pool/internal/domain"
)

// AuctionStore provides access to auction storage.
type AuctionStore interface {
	// Insert adds a new auction. Returns ErrDuplicateKey if an auction
	// already exists for the same pool and season.
	Insert(ctx context.Context, a *domain.Auction) error

	// GetByID retrieves an auction. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error)

	// GetForUpdate retrieves an auction with a row lock when called inside
	// a transaction. Returns ErrNotFound if not exists.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Auction, error)

	// List retrieves auctions matching the filter, ordered by created_at ASC.
	List(ctx context.Context, filter domain.AuctionFilter) ([]*domain.Auction, error)

	// Update persists the auction's mutable fields. Returns ErrNotFound
	// if not exists.
	Update(ctx context.Context, a *domain.Auction) error

	// Delete removes an auction. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, id uuid.UUID) error
}

// LotStore provides access to auction lot storage.
type LotStore interface {
	// Insert adds a new lot. Returns ErrDuplicateKey if the team already
	// has a lot in the auction.
	Insert(ctx context.Context, l *domain.AuctionLot) error

	// InsertBulk adds multiple lots atomically. Fails entire batch on any
	// duplicate.
	InsertBulk(ctx context.Context, lots []*domain.AuctionLot) error

	// GetByID retrieves a lot. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AuctionLot, error)

	// GetForUpdate retrieves a lot with a row lock when called inside a
	// transaction. Returns ErrNotFound if not exists.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.AuctionLot, error)

	// ListByAuction retrieves all lots for an auction, ordered by
	// created_at ASC.
	ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.AuctionLot, error)

	// Update persists the lot's mutable fields. Returns ErrNotFound if
	// not exists.
	Update(ctx context.Context, l *domain.AuctionLot) error
}

// ParticipantStore provides access to auction participant storage.
type ParticipantStore interface {
	// Insert adds a new participant. Returns ErrDuplicateKey if the roster
	// is already registered in the auction.
	Insert(ctx context.Context, p *domain.AuctionParticipant) error

	// InsertBulk adds multiple participants atomically. Fails entire batch
	// on any duplicate.
	InsertBulk(ctx context.Context, participants []*domain.AuctionParticipant) error

	// GetByID retrieves a participant. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AuctionParticipant, error)

	// GetForUpdate retrieves a participant with a row lock when called
	// inside a transaction. Returns ErrNotFound if not exists.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.AuctionParticipant, error)

	// ListByAuction retrieves all participants for an auction, ordered by
	// created_at ASC.
	ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.AuctionParticipant, error)

	// Update persists the participant's mutable fields. Returns
	// ErrNotFound if not exists.
	Update(ctx context.Context, p *domain.AuctionParticipant) error

	// Delete removes a participant. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, id uuid.UUID) error
}

// BidStore provides access to bid storage. Bids are append-only.
type BidStore interface {
	// Insert adds a new bid. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, b *domain.Bid) error

	// GetByID retrieves a bid. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bid, error)

	// GetByIDs retrieves the bids for the given ids. Missing ids are
	// skipped.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Bid, error)

	// List retrieves bids matching the filter, ordered by created_at ASC.
	List(ctx context.Context, filter domain.BidFilter) ([]*domain.Bid, error)
}

// EventLogStore provides access to the append-only auction event log.
// Entries are never mutated or deleted.
type EventLogStore interface {
	// Append adds a new log entry.
	Append(ctx context.Context, e *domain.EventLogEntry) error

	// ListByAuction retrieves all entries for an auction, most recent
	// first.
	ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.EventLogEntry, error)
}

// PoolStore is the read-only pool collaborator.
type PoolStore interface {
	// GetByID retrieves a pool. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Pool, error)
}

// RosterStore is the read-only roster collaborator.
type RosterStore interface {
	// GetByID retrieves a roster. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Roster, error)

	// ListByPoolSeason retrieves all rosters for a pool and season.
	ListByPoolSeason(ctx context.Context, poolID uuid.UUID, season string) ([]*domain.Roster, error)
}

// TeamStore is the read-only team collaborator.
type TeamStore interface {
	// GetByID retrieves a team. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error)

	// GetByIDs retrieves the teams for the given ids. Missing ids are
	// skipped.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Team, error)

	// ListByLeague retrieves all teams in a league, ordered by name ASC.
	ListByLeague(ctx context.Context, league domain.LeagueSlug) ([]*domain.Team, error)
}

// RosterSlotStore is the write target for post-completion materialization.
type RosterSlotStore interface {
	// InsertBulk adds multiple roster slots atomically.
	InsertBulk(ctx context.Context, slots []*domain.RosterSlot) error

	// ListByRosterIDs retrieves all slots belonging to the given rosters.
	ListByRosterIDs(ctx context.Context, rosterIDs []uuid.UUID) ([]*domain.RosterSlot, error)

	// DeleteByRosterIDs removes all slots belonging to the given rosters.
	DeleteByRosterIDs(ctx context.Context, rosterIDs []uuid.UUID) error
}

// Stores bundles every gateway. The same bundle shape is used for the
// root (pool-backed) set and for the transaction-bound set handed to
// InTx closures.
type Stores struct {
	Auctions     AuctionStore
	Lots         LotStore
	Participants ParticipantStore
	Bids         BidStore
	EventLog     EventLogStore
	Pools        PoolStore
	Rosters      RosterStore
	Teams        TeamStore
	RosterSlots  RosterSlotStore
}

// TxManager executes a closure as one atomic unit of work. Every mutation
// that moves money or changes lot/participant ownership runs through InTx;
// the implementation's isolation (row locks for PostgreSQL, a global mutex
// for the in-memory stores) serializes conflicting writes.
type TxManager interface {
	// InTx runs fn with a transaction-bound store set. Returning an error
	// rolls back all writes made through those stores.
	InTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
