package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType is the stable string discriminator used in the durable log and
// on the wire. The set of types is closed.
type EventType string

const (
	EventAuctionStarted   EventType = "auction_started"
	EventAuctionCompleted EventType = "auction_completed"
	EventBidAccepted      EventType = "bid_accepted"
	EventLotClosed        EventType = "lot_closed"
)

// Event is one auction domain event. Implementations form a closed union:
// AuctionStartedEvent, AuctionCompletedEvent, BidAcceptedEvent,
// LotClosedEvent.
type Event interface {
	Type() EventType
	Auction() uuid.UUID
	OccurredAt() time.Time
}

// AuctionStartedEvent marks the transition to active.
type AuctionStartedEvent struct {
	AuctionID uuid.UUID `json:"auction_id"`
	CreatedAt time.Time `json:"created_at"`
	StartedAt time.Time `json:"started_at"`
}

func (e AuctionStartedEvent) Type() EventType       { return EventAuctionStarted }
func (e AuctionStartedEvent) Auction() uuid.UUID    { return e.AuctionID }
func (e AuctionStartedEvent) OccurredAt() time.Time { return e.CreatedAt }

// AuctionCompletedEvent marks the transition to completed.
type AuctionCompletedEvent struct {
	AuctionID   uuid.UUID `json:"auction_id"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at"`
}

func (e AuctionCompletedEvent) Type() EventType       { return EventAuctionCompleted }
func (e AuctionCompletedEvent) Auction() uuid.UUID    { return e.AuctionID }
func (e AuctionCompletedEvent) OccurredAt() time.Time { return e.CreatedAt }

// BidAcceptedEvent carries the lot snapshot after a bid was accepted.
type BidAcceptedEvent struct {
	AuctionID uuid.UUID   `json:"auction_id"`
	CreatedAt time.Time   `json:"created_at"`
	Lot       OverviewLot `json:"lot"`
}

func (e BidAcceptedEvent) Type() EventType       { return EventBidAccepted }
func (e BidAcceptedEvent) Auction() uuid.UUID    { return e.AuctionID }
func (e BidAcceptedEvent) OccurredAt() time.Time { return e.CreatedAt }

// LotClosedEvent carries the lot snapshot at close time.
type LotClosedEvent struct {
	AuctionID uuid.UUID   `json:"auction_id"`
	CreatedAt time.Time   `json:"created_at"`
	Lot       OverviewLot `json:"lot"`
}

func (e LotClosedEvent) Type() EventType       { return EventLotClosed }
func (e LotClosedEvent) Auction() uuid.UUID    { return e.AuctionID }
func (e LotClosedEvent) OccurredAt() time.Time { return e.CreatedAt }

// EncodeEvent serializes an event to the flat JSON form stored in the log
// and sent to clients: the event's own fields plus a "type" discriminator.
func EncodeEvent(ev Event) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", ev.Type(), err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("flatten %s event: %w", ev.Type(), err)
	}
	typ, _ := json.Marshal(ev.Type())
	fields["type"] = typ

	return json.Marshal(fields)
}

// DecodeEvent parses the flat JSON form back into its concrete event type.
// Unknown discriminators are an error: the union is closed.
func DecodeEvent(data []byte) (Event, error) {
	var probe struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("probe event type: %w", err)
	}

	switch probe.Type {
	case EventAuctionStarted:
		var e AuctionStartedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode %s event: %w", probe.Type, err)
		}
		return e, nil
	case EventAuctionCompleted:
		var e AuctionCompletedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode %s event: %w", probe.Type, err)
		}
		return e, nil
	case EventBidAccepted:
		var e BidAcceptedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode %s event: %w", probe.Type, err)
		}
		return e, nil
	case EventLotClosed:
		var e LotClosedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode %s event: %w", probe.Type, err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", probe.Type)
	}
}

// AuctionTopic scopes broker subscriptions to one auction.
type AuctionTopic struct {
	AuctionID uuid.UUID
}

func (t AuctionTopic) String() string {
	return "auction:" + t.AuctionID.String()
}

// EventLogEntry is one row of the append-only auction event log. Payload is
// the verbatim encoded event, the single source of truth for auction history.
type EventLogEntry struct {
	ID        uuid.UUID       `json:"id"`
	AuctionID uuid.UUID       `json:"auction_id"`
	EventType EventType       `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
