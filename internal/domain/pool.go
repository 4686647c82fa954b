package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pool is a wins pool. The auction engine only checks its existence.
type Pool struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Roster is one member's team collection within a pool and season.
type Roster struct {
	ID        uuid.UUID `json:"id"`
	PoolID    uuid.UUID `json:"pool_id"`
	Season    string    `json:"season"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// LeagueSlug identifies the league a team belongs to.
type LeagueSlug string

const LeagueNBA LeagueSlug = "nba"

// Team is a league team that can be auctioned as a lot.
type Team struct {
	ID           uuid.UUID  `json:"id"`
	League       LeagueSlug `json:"league"`
	Name         string     `json:"name"`
	Abbreviation string     `json:"abbreviation"`
	LogoURL      string     `json:"logo_url"`
}

// RosterSlot records that a team belongs to a roster, materialized from a
// closed, won lot after the auction completes.
type RosterSlot struct {
	ID           uuid.UUID       `json:"id"`
	RosterID     uuid.UUID       `json:"roster_id"`
	TeamID       uuid.UUID       `json:"team_id"`
	AuctionLotID *uuid.UUID      `json:"auction_lot_id,omitempty"`
	AuctionPrice decimal.Decimal `json:"auction_price"`
	CreatedAt    time.Time       `json:"created_at"`
}
