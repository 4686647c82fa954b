package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionStatus is the lifecycle state of an auction draft.
// Transitions are monotonic: not_started -> active -> completed.
type AuctionStatus string

const (
	AuctionNotStarted AuctionStatus = "not_started"
	AuctionActive     AuctionStatus = "active"
	AuctionCompleted  AuctionStatus = "completed"
)

// Auction is a live draft for one pool and season. At most one lot is open
// for bidding at a time; CurrentLotID tracks it once the first bid lands.
type Auction struct {
	ID     uuid.UUID `json:"id"`
	PoolID uuid.UUID `json:"pool_id"`
	Season string    `json:"season"`

	Status       AuctionStatus `json:"status"`
	CurrentLotID *uuid.UUID    `json:"current_lot_id,omitempty"`

	MaxLotsPerParticipant     int             `json:"max_lots_per_participant"`
	MinBidIncrement           decimal.Decimal `json:"min_bid_increment"`
	StartingParticipantBudget decimal.Decimal `json:"starting_participant_budget"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// AuctionDraft carries the fields an organizer supplies to create an auction.
type AuctionDraft struct {
	PoolID                    uuid.UUID       `json:"pool_id"`
	Season                    string          `json:"season"`
	MaxLotsPerParticipant     int             `json:"max_lots_per_participant"`
	MinBidIncrement           decimal.Decimal `json:"min_bid_increment"`
	StartingParticipantBudget decimal.Decimal `json:"starting_participant_budget"`
}

// AuctionConfigPatch updates auction configuration before the draft starts.
// Nil fields are left unchanged.
type AuctionConfigPatch struct {
	MaxLotsPerParticipant     *int             `json:"max_lots_per_participant,omitempty"`
	MinBidIncrement           *decimal.Decimal `json:"min_bid_increment,omitempty"`
	StartingParticipantBudget *decimal.Decimal `json:"starting_participant_budget,omitempty"`
}

// AuctionFilter narrows auction listings. Zero values match everything.
type AuctionFilter struct {
	PoolID *uuid.UUID
	Season string
	Status AuctionStatus
}
