// Package server exposes the auction engine over HTTP and WebSocket.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"wins-pool/internal/auction"
	"wins-pool/internal/event"
	"wins-pool/internal/observability"
	"wins-pool/internal/storage"
)

// Server wires the draft and event services to the HTTP surface.
type Server struct {
	logger *log.Logger
	draft  *auction.DraftService
	events *auction.EventService
	broker event.Broker
}

// New creates a server. A nil logger discards logs.
func New(logger *log.Logger, draft *auction.DraftService, events *auction.EventService, broker event.Broker) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		logger: logger,
		draft:  draft,
		events: events,
		broker: broker,
	}
}

// Routes builds the route table.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auctions", s.handleCreateAuction)
	mux.HandleFunc("GET /auctions", s.handleListAuctions)
	mux.HandleFunc("PATCH /auctions/{id}", s.handlePatchAuction)
	mux.HandleFunc("DELETE /auctions/{id}", s.handleDeleteAuction)
	mux.HandleFunc("GET /auctions/{id}/overview", s.handleOverview)
	mux.HandleFunc("GET /auctions/{id}/events", s.handleEventStream)
	mux.HandleFunc("GET /auctions/{id}/events/history", s.handleEventHistory)

	mux.HandleFunc("POST /auction-participants", s.handleAddParticipant)
	mux.HandleFunc("POST /auction-participants/batch", s.handleAddParticipantsBatch)
	mux.HandleFunc("DELETE /auction-participants/{id}", s.handleRemoveParticipant)

	mux.HandleFunc("POST /auction-lots", s.handleCreateLot)
	mux.HandleFunc("POST /auction-lots/batch", s.handleAddLotsBatch)
	mux.HandleFunc("PATCH /auction-lots/{id}", s.handlePatchLot)

	mux.HandleFunc("POST /bids", s.handlePlaceBid)
	mux.HandleFunc("GET /bids", s.handleListBids)

	mux.HandleFunc("POST /roster-slots/batch", s.handleCreateRosterSlotsBatch)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())

	return mux
}

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Printf("Encode response: %v", err)
	}
}

// respondError maps errors to HTTP statuses: rule violations carry their
// kind, duplicates conflict, everything else is a server fault.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	var de *auction.Error
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		switch de.Kind {
		case auction.KindNotFound:
			status = http.StatusNotFound
		case auction.KindInvalidState:
			status = http.StatusConflict
		}
		s.respondJSON(w, status, errorResponse{Error: de.Reason, Kind: string(de.Kind)})
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		s.respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	if errors.Is(err, storage.ErrDuplicateKey) {
		s.respondJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
		return
	}

	s.logger.Printf("Internal error: %v", err)
	s.respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}
