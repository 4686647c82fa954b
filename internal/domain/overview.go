package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OverviewTeam is the team summary embedded in overview lots.
type OverviewTeam struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Abbreviation string    `json:"abbreviation"`
	LogoURL      string    `json:"logo_url"`
}

// OverviewBid is the winning-bid summary embedded in overview lots.
type OverviewBid struct {
	BidderName string          `json:"bidder_name"`
	Amount     decimal.Decimal `json:"amount"`
}

// OverviewLot is a denormalized lot: team plus the current winning bid,
// if any.
type OverviewLot struct {
	ID         uuid.UUID    `json:"id"`
	Status     LotStatus    `json:"status"`
	Team       OverviewTeam `json:"team"`
	WinningBid *OverviewBid `json:"winning_bid,omitempty"`
}

// OverviewParticipant is a participant with their running budget and the
// closed lots they have won.
type OverviewParticipant struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Budget  decimal.Decimal `json:"budget"`
	LotsWon []OverviewLot   `json:"lots_won"`
}

// AuctionOverview is the read-only projection a live frontend renders:
// the auction, every lot, every participant, and the currently open lot.
type AuctionOverview struct {
	ID           uuid.UUID             `json:"id"`
	PoolID       uuid.UUID             `json:"pool_id"`
	Season       string                `json:"season"`
	Status       AuctionStatus         `json:"status"`
	Lots         []OverviewLot         `json:"lots"`
	Participants []OverviewParticipant `json:"participants"`
	CurrentLot   *OverviewLot          `json:"current_lot,omitempty"`
	StartedAt    *time.Time            `json:"started_at,omitempty"`
	CompletedAt  *time.Time            `json:"completed_at,omitempty"`

	MaxLotsPerParticipant     int             `json:"max_lots_per_participant"`
	MinBidIncrement           decimal.Decimal `json:"min_bid_increment"`
	StartingParticipantBudget decimal.Decimal `json:"starting_participant_budget"`
}
