package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

// AuctionStore implements storage.AuctionStore using PostgreSQL.
type AuctionStore struct {
	db DB
}

// NewAuctionStore creates a new AuctionStore.
func NewAuctionStore(pool *Pool) *AuctionStore {
	return &AuctionStore{db: pool}
}

// Compile-time interface check.
var _ storage.AuctionStore = (*AuctionStore)(nil)

const auctionColumns = `
	id, pool_id, season, status, current_lot_id,
	max_lots_per_participant, min_bid_increment, starting_participant_budget,
	created_at, started_at, completed_at
`

// Insert adds a new auction. Returns ErrDuplicateKey if an auction already
// exists for the same pool and season.
func (s *AuctionStore) Insert(ctx context.Context, a *domain.Auction) error {
	query := `
		INSERT INTO auctions (
			id, pool_id, season, status, current_lot_id,
			max_lots_per_participant, min_bid_increment, starting_participant_budget,
			created_at, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.Exec(ctx, query,
		a.ID,
		a.PoolID,
		a.Season,
		string(a.Status),
		a.CurrentLotID,
		a.MaxLotsPerParticipant,
		a.MinBidIncrement,
		a.StartingParticipantBudget,
		a.CreatedAt,
		a.StartedAt,
		a.CompletedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert auction: %w", err)
	}
	return nil
}

// GetByID retrieves an auction. Returns ErrNotFound if not exists.
func (s *AuctionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`

	a, err := scanAuction(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get auction by id: %w", err)
	}
	return a, nil
}

// GetForUpdate retrieves an auction with a row lock. Only meaningful inside
// a transaction.
func (s *AuctionStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1 FOR UPDATE`

	a, err := scanAuction(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get auction for update: %w", err)
	}
	return a, nil
}

// List retrieves auctions matching the filter, ordered by created_at ASC.
func (s *AuctionStore) List(ctx context.Context, filter domain.AuctionFilter) ([]*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE 1=1`
	var args []any

	if filter.PoolID != nil {
		args = append(args, *filter.PoolID)
		query += fmt.Sprintf(" AND pool_id = $%d", len(args))
	}
	if filter.Season != "" {
		args = append(args, filter.Season)
		query += fmt.Sprintf(" AND season = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan auction row: %w", err)
		}
		auctions = append(auctions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate auction rows: %w", err)
	}
	return auctions, nil
}

// Update persists the auction's mutable fields.
func (s *AuctionStore) Update(ctx context.Context, a *domain.Auction) error {
	query := `
		UPDATE auctions SET
			status = $2,
			current_lot_id = $3,
			max_lots_per_participant = $4,
			min_bid_increment = $5,
			starting_participant_budget = $6,
			started_at = $7,
			completed_at = $8
		WHERE id = $1
	`

	tag, err := s.db.Exec(ctx, query,
		a.ID,
		string(a.Status),
		a.CurrentLotID,
		a.MaxLotsPerParticipant,
		a.MinBidIncrement,
		a.StartingParticipantBudget,
		a.StartedAt,
		a.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update auction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes an auction.
func (s *AuctionStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM auctions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete auction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanAuction scans a single row into an Auction.
func scanAuction(row pgx.Row) (*domain.Auction, error) {
	var a domain.Auction
	var statusStr string

	err := row.Scan(
		&a.ID,
		&a.PoolID,
		&a.Season,
		&statusStr,
		&a.CurrentLotID,
		&a.MaxLotsPerParticipant,
		&a.MinBidIncrement,
		&a.StartingParticipantBudget,
		&a.CreatedAt,
		&a.StartedAt,
		&a.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Status = domain.AuctionStatus(statusStr)
	return &a, nil
}
