package domain

import (
	"time"

	"github.com/google/uuid"
)

// LotStatus is the lifecycle state of an auction lot.
// ready -> open on first accepted bid, open -> closed on explicit close.
type LotStatus string

const (
	LotReady  LotStatus = "ready"
	LotOpen   LotStatus = "open"
	LotClosed LotStatus = "closed"
)

// AuctionLot is a single auctionable team within an auction.
type AuctionLot struct {
	ID        uuid.UUID `json:"id"`
	AuctionID uuid.UUID `json:"auction_id"`
	TeamID    uuid.UUID `json:"team_id"`

	Status       LotStatus  `json:"status"`
	WinningBidID *uuid.UUID `json:"winning_bid_id,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	OpenedAt  *time.Time `json:"opened_at,omitempty"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// LotDraft carries the fields needed to add a lot while the auction is
// still configurable.
type LotDraft struct {
	AuctionID uuid.UUID `json:"auction_id"`
	TeamID    uuid.UUID `json:"team_id"`
}
