// Package event provides in-process topic-scoped publish/subscribe for the
// auction engine. The local broker is single-process only; multi-instance
// deployments need a distributed transport in its place.
package event

import (
	"fmt"
	"io"
	"log"
	"sync"

	"wins-pool/internal/domain"
	"wins-pool/internal/observability"
)

// Topic keys subscriptions. Topics are value types whose string form is
// the key.
type Topic interface {
	fmt.Stringer
}

// Handler receives published events. Handlers run on their own goroutine
// per publish; a slow or panicking handler cannot block other subscribers
// or the publisher.
type Handler func(ev domain.Event)

// Broker is the fan-out primitive the auction services publish through.
type Broker interface {
	// Subscribe registers a handler under a topic and returns the token
	// used to remove it.
	Subscribe(topic Topic, h Handler) *Subscription

	// Unsubscribe removes a previously registered handler. Safe to call
	// more than once.
	Unsubscribe(sub *Subscription)

	// Publish delivers an event to every handler currently registered
	// under the topic. Delivery is best effort and non-blocking.
	Publish(topic Topic, ev domain.Event)
}

// Subscription identifies one registered handler.
type Subscription struct {
	topic string
	id    uint64
}

// LocalBroker is an in-memory Broker for a single server instance. It is
// constructed at the application root and injected into the services that
// need it.
type LocalBroker struct {
	logger *log.Logger

	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]Handler
}

// NewLocalBroker creates an empty broker. A nil logger discards broker logs.
func NewLocalBroker(logger *log.Logger) *LocalBroker {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &LocalBroker{
		logger: logger,
		subs:   make(map[string]map[uint64]Handler),
	}
}

var _ Broker = (*LocalBroker)(nil)

func (b *LocalBroker) Subscribe(topic Topic, h Handler) *Subscription {
	key := topic.String()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{topic: key, id: b.nextID}
	if b.subs[key] == nil {
		b.subs[key] = make(map[uint64]Handler)
	}
	b.subs[key][sub.id] = h

	b.logger.Printf("Subscribed to topic %q, total subscribers: %d", key, len(b.subs[key]))
	return sub
}

func (b *LocalBroker) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	handlers, ok := b.subs[sub.topic]
	if !ok {
		return
	}
	delete(handlers, sub.id)
	if len(handlers) == 0 {
		delete(b.subs, sub.topic)
	}

	b.logger.Printf("Unsubscribed from topic %q, total subscribers: %d", sub.topic, len(handlers))
}

func (b *LocalBroker) Publish(topic Topic, ev domain.Event) {
	key := topic.String()

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[key]))
	for _, h := range b.subs[key] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		go b.dispatch(key, h, ev)
	}

	b.logger.Printf("Published event %q to topic %q, total subscribers: %d", ev.Type(), key, len(handlers))
}

// dispatch runs one handler, capturing panics so a failing subscriber
// cannot affect others.
func (b *LocalBroker) dispatch(topic string, h Handler, ev domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			observability.RecordSubscriberPanic()
			b.logger.Printf("Subscriber panic on topic %q for event %q: %v", topic, ev.Type(), r)
		}
	}()
	h(ev)
}
