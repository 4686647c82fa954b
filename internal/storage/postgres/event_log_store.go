package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

// EventLogStore implements storage.EventLogStore using PostgreSQL. The log
// is append-only; a serial sequence column gives a stable most-recent-first
// ordering even when timestamps collide.
type EventLogStore struct {
	db DB
}

// NewEventLogStore creates a new EventLogStore.
func NewEventLogStore(pool *Pool) *EventLogStore {
	return &EventLogStore{db: pool}
}

// Compile-time interface check.
var _ storage.EventLogStore = (*EventLogStore)(nil)

// Append adds a new log entry.
func (s *EventLogStore) Append(ctx context.Context, e *domain.EventLogEntry) error {
	query := `
		INSERT INTO auction_event_log (id, auction_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.Exec(ctx, query,
		e.ID,
		e.AuctionID,
		string(e.EventType),
		[]byte(e.Payload),
		e.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("append event log entry: %w", err)
	}
	return nil
}

// ListByAuction retrieves all entries for an auction, most recent first.
func (s *EventLogStore) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.EventLogEntry, error) {
	query := `
		SELECT id, auction_id, event_type, payload, created_at
		FROM auction_event_log
		WHERE auction_id = $1
		ORDER BY seq DESC
	`

	rows, err := s.db.Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list event log by auction: %w", err)
	}
	defer rows.Close()

	var entries []*domain.EventLogEntry
	for rows.Next() {
		var e domain.EventLogEntry
		var typeStr string
		var payload []byte

		err := rows.Scan(&e.ID, &e.AuctionID, &typeStr, &payload, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan event log row: %w", err)
		}

		e.EventType = domain.EventType(typeStr)
		e.Payload = payload
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event log rows: %w", err)
	}
	return entries, nil
}
