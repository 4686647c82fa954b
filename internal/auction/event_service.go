// Package auction implements the live draft engine: auction, lot,
// participant and bid lifecycle, the bidding algorithm, and the
// persist-then-publish event pipeline.
package auction

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"wins-pool/internal/domain"
	"wins-pool/internal/event"
	"wins-pool/internal/observability"
	"wins-pool/internal/storage"
)

// EventService records auction events durably and fans them out to live
// subscribers. The log append is the source of truth; broker delivery is
// best effort.
type EventService struct {
	logger   *log.Logger
	eventLog storage.EventLogStore
	broker   event.Broker
}

// NewEventService creates an event service. A nil logger discards logs.
func NewEventService(logger *log.Logger, eventLog storage.EventLogStore, broker event.Broker) *EventService {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &EventService{
		logger:   logger,
		eventLog: eventLog,
		broker:   broker,
	}
}

// PublishAndPersist appends the event to the durable log and then publishes
// it under the auction's topic. A log append failure fails the call; a
// delivery failure is only logged, the persisted record is never rolled
// back.
func (s *EventService) PublishAndPersist(ctx context.Context, ev domain.Event) error {
	payload, err := domain.EncodeEvent(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Type(), err)
	}

	entry := &domain.EventLogEntry{
		ID:        uuid.New(),
		AuctionID: ev.Auction(),
		EventType: ev.Type(),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.eventLog.Append(ctx, entry); err != nil {
		observability.RecordEventPersistError()
		return fmt.Errorf("append %s event to log: %w", ev.Type(), err)
	}
	observability.RecordEventPersisted(string(ev.Type()))

	s.broker.Publish(domain.AuctionTopic{AuctionID: ev.Auction()}, ev)
	observability.RecordEventPublished(string(ev.Type()))

	return nil
}

// History returns the verbatim payloads logged for an auction, most recent
// first.
func (s *EventService) History(ctx context.Context, auctionID uuid.UUID) ([]*domain.EventLogEntry, error) {
	entries, err := s.eventLog.ListByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list event log for auction %s: %w", auctionID, err)
	}
	return entries, nil
}
