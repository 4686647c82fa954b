package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"wins-pool/internal/domain"
)

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id: " + r.PathValue("id")})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleCreateAuction(w http.ResponseWriter, r *http.Request) {
	var draft domain.AuctionDraft
	if !s.decodeJSON(w, r, &draft) {
		return
	}

	a, err := s.draft.CreateAuction(r.Context(), draft)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListAuctions(w http.ResponseWriter, r *http.Request) {
	var filter domain.AuctionFilter

	q := r.URL.Query()
	if v := q.Get("pool_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid pool_id: " + v})
			return
		}
		filter.PoolID = &id
	}
	filter.Season = q.Get("season")
	filter.Status = domain.AuctionStatus(q.Get("status"))

	auctions, err := s.draft.ListAuctions(r.Context(), filter)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if auctions == nil {
		auctions = []*domain.Auction{}
	}
	s.respondJSON(w, http.StatusOK, auctions)
}

// auctionPatch is the PATCH /auctions/{id} body: either a lifecycle action
// ("start" or "complete") or a config update, not both.
type auctionPatch struct {
	Action string `json:"action,omitempty"`
	domain.AuctionConfigPatch
}

func (s *Server) handlePatchAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var patch auctionPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}

	var (
		a   *domain.Auction
		err error
	)
	switch patch.Action {
	case "start":
		a, err = s.draft.StartAuction(r.Context(), id)
	case "complete":
		a, err = s.draft.CompleteAuction(r.Context(), id)
	case "":
		a, err = s.draft.UpdateAuctionConfig(r.Context(), id, patch.AuctionConfigPatch)
	default:
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown action: " + patch.Action})
		return
	}
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.draft.DeleteAuction(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	overview, err := s.draft.GetAuctionOverview(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, overview)
}

func (s *Server) handleEventHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	entries, err := s.events.History(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}

	// The stored payloads are returned verbatim, most recent first.
	payloads := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		payloads = append(payloads, e.Payload)
	}
	s.respondJSON(w, http.StatusOK, payloads)
}

func (s *Server) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	var draft domain.ParticipantDraft
	if !s.decodeJSON(w, r, &draft) {
		return
	}

	p, err := s.draft.AddParticipant(r.Context(), draft)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, p)
}

// participantBatchRequest bulk-adds participants from a source. The only
// supported source is "pool": one participant per roster in the auction's
// pool and season.
type participantBatchRequest struct {
	Source    string    `json:"source"`
	AuctionID uuid.UUID `json:"auction_id"`
}

func (s *Server) handleAddParticipantsBatch(w http.ResponseWriter, r *http.Request) {
	var req participantBatchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Source != "pool" {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown source: " + req.Source})
		return
	}

	created, err := s.draft.AddParticipantsByPool(r.Context(), req.AuctionID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if created == nil {
		created = []*domain.AuctionParticipant{}
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.draft.RemoveParticipant(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleCreateLot(w http.ResponseWriter, r *http.Request) {
	var draft domain.LotDraft
	if !s.decodeJSON(w, r, &draft) {
		return
	}

	l, err := s.draft.CreateLot(r.Context(), draft)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, l)
}

// lotBatchRequest bulk-adds lots from a source. The only supported source
// is "league": one lot per team in the league.
type lotBatchRequest struct {
	Source    string            `json:"source"`
	AuctionID uuid.UUID         `json:"auction_id"`
	League    domain.LeagueSlug `json:"league"`
}

func (s *Server) handleAddLotsBatch(w http.ResponseWriter, r *http.Request) {
	var req lotBatchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Source != "league" {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown source: " + req.Source})
		return
	}

	created, err := s.draft.AddLotsByLeague(r.Context(), req.AuctionID, req.League)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if created == nil {
		created = []*domain.AuctionLot{}
	}
	s.respondJSON(w, http.StatusCreated, created)
}

// lotPatch is the PATCH /auction-lots/{id} body. Closing is the only
// supported mutation.
type lotPatch struct {
	Action string `json:"action"`
}

func (s *Server) handlePatchLot(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var patch lotPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}
	if patch.Action != "close" {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown action: " + patch.Action})
		return
	}

	l, err := s.draft.CloseLot(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, l)
}

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	var draft domain.BidDraft
	if !s.decodeJSON(w, r, &draft) {
		return
	}

	b, err := s.draft.PlaceBid(r.Context(), draft)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBids(w http.ResponseWriter, r *http.Request) {
	var filter domain.BidFilter

	q := r.URL.Query()
	if v := q.Get("lot_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid lot_id: " + v})
			return
		}
		filter.LotID = &id
	}
	if v := q.Get("participant_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid participant_id: " + v})
			return
		}
		filter.ParticipantID = &id
	}

	bids, err := s.draft.ListBids(r.Context(), filter)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if bids == nil {
		bids = []*domain.Bid{}
	}
	s.respondJSON(w, http.StatusOK, bids)
}

// rosterSlotBatchRequest materializes roster slots from a source. The only
// supported source is "auction": one slot per won lot of a completed
// auction.
type rosterSlotBatchRequest struct {
	Source    string    `json:"source"`
	AuctionID uuid.UUID `json:"auction_id"`
	Replace   bool      `json:"replace"`
}

func (s *Server) handleCreateRosterSlotsBatch(w http.ResponseWriter, r *http.Request) {
	var req rosterSlotBatchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Source != "auction" {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown source: " + req.Source})
		return
	}

	created, err := s.draft.CreateRosterSlotsFromLotsWon(r.Context(), req.AuctionID, req.Replace)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if created == nil {
		created = []*domain.RosterSlot{}
	}
	s.respondJSON(w, http.StatusCreated, created)
}
