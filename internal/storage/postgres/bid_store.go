package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

// BidStore implements storage.BidStore using PostgreSQL. Bids are
// append-only; there is no update path.
type BidStore struct {
	db DB
}

// NewBidStore creates a new BidStore.
func NewBidStore(pool *Pool) *BidStore {
	return &BidStore{db: pool}
}

// Compile-time interface check.
var _ storage.BidStore = (*BidStore)(nil)

const bidColumns = `
	id, lot_id, participant_id, amount, created_at
`

// Insert adds a new bid. Returns ErrDuplicateKey if the id exists.
func (s *BidStore) Insert(ctx context.Context, b *domain.Bid) error {
	query := `
		INSERT INTO bids (id, lot_id, participant_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.Exec(ctx, query, b.ID, b.LotID, b.ParticipantID, b.Amount, b.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert bid: %w", err)
	}
	return nil
}

// GetByID retrieves a bid. Returns ErrNotFound if not exists.
func (s *BidStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`

	b, err := scanBid(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get bid by id: %w", err)
	}
	return b, nil
}

// GetByIDs retrieves the bids for the given ids. Missing ids are skipped.
func (s *BidStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Bid, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = ANY($1) ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get bids by ids: %w", err)
	}
	defer rows.Close()

	return scanBids(rows)
}

// List retrieves bids matching the filter, ordered by created_at ASC.
func (s *BidStore) List(ctx context.Context, filter domain.BidFilter) ([]*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE 1=1`
	var args []any

	if filter.LotID != nil {
		args = append(args, *filter.LotID)
		query += fmt.Sprintf(" AND lot_id = $%d", len(args))
	}
	if filter.ParticipantID != nil {
		args = append(args, *filter.ParticipantID)
		query += fmt.Sprintf(" AND participant_id = $%d", len(args))
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	defer rows.Close()

	return scanBids(rows)
}

// scanBid scans a single row into a Bid.
func scanBid(row pgx.Row) (*domain.Bid, error) {
	var b domain.Bid

	err := row.Scan(&b.ID, &b.LotID, &b.ParticipantID, &b.Amount, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// scanBids scans multiple rows into a slice of Bid.
func scanBids(rows pgx.Rows) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bid row: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bid rows: %w", err)
	}
	return bids, nil
}
