package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"wins-pool/internal/domain"
	"wins-pool/internal/observability"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = 30 * time.Second

	// Events queued per connection before a slow client starts losing
	// deliveries. Clients recover gaps from the history endpoint.
	streamSendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleEventStream upgrades the connection and forwards every event
// published under the auction's topic until the client disconnects. The
// stream carries no history; reconnecting clients replay via
// /auctions/{id}/events/history.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("Websocket upgrade for auction %s: %v", id, err)
		return
	}
	defer conn.Close()

	observability.StreamClientConnected()
	defer observability.StreamClientDisconnected()

	send := make(chan []byte, streamSendBuffer)
	sub := s.broker.Subscribe(domain.AuctionTopic{AuctionID: id}, func(ev domain.Event) {
		payload, err := domain.EncodeEvent(ev)
		if err != nil {
			s.logger.Printf("Encode %s event for stream: %v", ev.Type(), err)
			return
		}
		select {
		case send <- payload:
		default:
			s.logger.Printf("Dropping %s event for slow stream client on auction %s", ev.Type(), id)
		}
	})
	defer s.broker.Unsubscribe(sub)

	done := make(chan struct{})

	// Writer: events and pings share one goroutine, reads detect
	// disconnect on the other.
	go func() {
		ticker := time.NewTicker(streamPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case payload := <-send:
				conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(streamPongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	close(done)
}
