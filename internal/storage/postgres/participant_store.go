package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

// ParticipantStore implements storage.ParticipantStore using PostgreSQL.
type ParticipantStore struct {
	db DB
}

// NewParticipantStore creates a new ParticipantStore.
func NewParticipantStore(pool *Pool) *ParticipantStore {
	return &ParticipantStore{db: pool}
}

// Compile-time interface check.
var _ storage.ParticipantStore = (*ParticipantStore)(nil)

const participantColumns = `
	id, auction_id, roster_id, name, budget, num_lots_won, created_at
`

const insertParticipantQuery = `
	INSERT INTO auction_participants (
		id, auction_id, roster_id, name, budget, num_lots_won, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// Insert adds a new participant. Returns ErrDuplicateKey if the roster is
// already registered in the auction.
func (s *ParticipantStore) Insert(ctx context.Context, p *domain.AuctionParticipant) error {
	_, err := s.db.Exec(ctx, insertParticipantQuery,
		p.ID,
		p.AuctionID,
		p.RosterID,
		p.Name,
		p.Budget,
		p.NumLotsWon,
		p.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// InsertBulk adds multiple participants. Run inside a transaction for
// all-or-nothing semantics; fails the entire batch on any duplicate.
func (s *ParticipantStore) InsertBulk(ctx context.Context, participants []*domain.AuctionParticipant) error {
	for _, p := range participants {
		_, err := s.db.Exec(ctx, insertParticipantQuery,
			p.ID,
			p.AuctionID,
			p.RosterID,
			p.Name,
			p.Budget,
			p.NumLotsWon,
			p.CreatedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert participant in bulk: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a participant. Returns ErrNotFound if not exists.
func (s *ParticipantStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuctionParticipant, error) {
	query := `SELECT ` + participantColumns + ` FROM auction_participants WHERE id = $1`

	p, err := scanParticipant(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get participant by id: %w", err)
	}
	return p, nil
}

// GetForUpdate retrieves a participant with a row lock. Only meaningful
// inside a transaction.
func (s *ParticipantStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.AuctionParticipant, error) {
	query := `SELECT ` + participantColumns + ` FROM auction_participants WHERE id = $1 FOR UPDATE`

	p, err := scanParticipant(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get participant for update: %w", err)
	}
	return p, nil
}

// ListByAuction retrieves all participants for an auction, ordered by
// created_at ASC.
func (s *ParticipantStore) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.AuctionParticipant, error) {
	query := `SELECT ` + participantColumns + ` FROM auction_participants WHERE auction_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list participants by auction: %w", err)
	}
	defer rows.Close()

	var participants []*domain.AuctionParticipant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participant rows: %w", err)
	}
	return participants, nil
}

// Update persists the participant's mutable fields.
func (s *ParticipantStore) Update(ctx context.Context, p *domain.AuctionParticipant) error {
	query := `
		UPDATE auction_participants SET
			name = $2,
			budget = $3,
			num_lots_won = $4
		WHERE id = $1
	`

	tag, err := s.db.Exec(ctx, query, p.ID, p.Name, p.Budget, p.NumLotsWon)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes a participant.
func (s *ParticipantStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM auction_participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanParticipant scans a single row into an AuctionParticipant.
func scanParticipant(row pgx.Row) (*domain.AuctionParticipant, error) {
	var p domain.AuctionParticipant

	err := row.Scan(
		&p.ID,
		&p.AuctionID,
		&p.RosterID,
		&p.Name,
		&p.Budget,
		&p.NumLotsWon,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
