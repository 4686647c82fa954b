package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid is a monetary offer by a participant on a lot. Bids are immutable
// once created; a lot's WinningBidID always points at the highest accepted
// bid for that lot.
type Bid struct {
	ID            uuid.UUID       `json:"id"`
	LotID         uuid.UUID       `json:"lot_id"`
	ParticipantID uuid.UUID       `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// BidDraft carries the fields a bidder supplies.
type BidDraft struct {
	LotID         uuid.UUID       `json:"lot_id"`
	ParticipantID uuid.UUID       `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// BidFilter narrows bid listings. Nil fields match everything.
type BidFilter struct {
	LotID         *uuid.UUID
	ParticipantID *uuid.UUID
}
