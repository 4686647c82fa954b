package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

// LotStore implements storage.LotStore using PostgreSQL.
type LotStore struct {
	db DB
}

// NewLotStore creates a new LotStore.
func NewLotStore(pool *Pool) *LotStore {
	return &LotStore{db: pool}
}

// Compile-time interface check.
var _ storage.LotStore = (*LotStore)(nil)

const lotColumns = `
	id, auction_id, team_id, status, winning_bid_id, created_at, opened_at, closed_at
`

const insertLotQuery = `
	INSERT INTO auction_lots (
		id, auction_id, team_id, status, winning_bid_id, created_at, opened_at, closed_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// Insert adds a new lot. Returns ErrDuplicateKey if the team already has a
// lot in the auction.
func (s *LotStore) Insert(ctx context.Context, l *domain.AuctionLot) error {
	_, err := s.db.Exec(ctx, insertLotQuery,
		l.ID,
		l.AuctionID,
		l.TeamID,
		string(l.Status),
		l.WinningBidID,
		l.CreatedAt,
		l.OpenedAt,
		l.ClosedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// InsertBulk adds multiple lots. Run inside a transaction for all-or-nothing
// semantics; fails the entire batch on any duplicate.
func (s *LotStore) InsertBulk(ctx context.Context, lots []*domain.AuctionLot) error {
	for _, l := range lots {
		_, err := s.db.Exec(ctx, insertLotQuery,
			l.ID,
			l.AuctionID,
			l.TeamID,
			string(l.Status),
			l.WinningBidID,
			l.CreatedAt,
			l.OpenedAt,
			l.ClosedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert lot in bulk: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a lot. Returns ErrNotFound if not exists.
func (s *LotStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuctionLot, error) {
	query := `SELECT ` + lotColumns + ` FROM auction_lots WHERE id = $1`

	l, err := scanLot(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get lot by id: %w", err)
	}
	return l, nil
}

// GetForUpdate retrieves a lot with a row lock. Only meaningful inside a
// transaction.
func (s *LotStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.AuctionLot, error) {
	query := `SELECT ` + lotColumns + ` FROM auction_lots WHERE id = $1 FOR UPDATE`

	l, err := scanLot(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get lot for update: %w", err)
	}
	return l, nil
}

// ListByAuction retrieves all lots for an auction, ordered by created_at ASC.
func (s *LotStore) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.AuctionLot, error) {
	query := `SELECT ` + lotColumns + ` FROM auction_lots WHERE auction_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list lots by auction: %w", err)
	}
	defer rows.Close()

	var lots []*domain.AuctionLot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot row: %w", err)
		}
		lots = append(lots, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lot rows: %w", err)
	}
	return lots, nil
}

// Update persists the lot's mutable fields.
func (s *LotStore) Update(ctx context.Context, l *domain.AuctionLot) error {
	query := `
		UPDATE auction_lots SET
			status = $2,
			winning_bid_id = $3,
			opened_at = $4,
			closed_at = $5
		WHERE id = $1
	`

	tag, err := s.db.Exec(ctx, query,
		l.ID,
		string(l.Status),
		l.WinningBidID,
		l.OpenedAt,
		l.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanLot scans a single row into an AuctionLot.
func scanLot(row pgx.Row) (*domain.AuctionLot, error) {
	var l domain.AuctionLot
	var statusStr string

	err := row.Scan(
		&l.ID,
		&l.AuctionID,
		&l.TeamID,
		&statusStr,
		&l.WinningBidID,
		&l.CreatedAt,
		&l.OpenedAt,
		&l.ClosedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Status = domain.LotStatus(statusStr)
	return &l, nil
}
