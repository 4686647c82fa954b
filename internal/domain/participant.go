package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionParticipant is a bidder in an auction, backed by a pool roster.
// Budget moves between available and committed as bids are accepted; it is
// never negative. NumLotsWon is capped at the auction's MaxLotsPerParticipant.
type AuctionParticipant struct {
	ID        uuid.UUID `json:"id"`
	AuctionID uuid.UUID `json:"auction_id"`
	RosterID  uuid.UUID `json:"roster_id"`
	Name      string    `json:"name"`

	Budget     decimal.Decimal `json:"budget"`
	NumLotsWon int             `json:"num_lots_won"`

	CreatedAt time.Time `json:"created_at"`
}

// ParticipantDraft carries the fields needed to register a participant
// while the auction is still configurable.
type ParticipantDraft struct {
	AuctionID uuid.UUID `json:"auction_id"`
	RosterID  uuid.UUID `json:"roster_id"`
	Name      string    `json:"name"`
}
