package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"wins-pool/internal/auction"
	"wins-pool/internal/domain"
	"wins-pool/internal/event"
	"wins-pool/internal/storage"
	"wins-pool/internal/storage/memory"
)

// serverFixture runs the full HTTP surface against memory stores with one
// pool, two rosters and four teams seeded.
type serverFixture struct {
	ts     *httptest.Server
	stores storage.Stores
	draft  *auction.DraftService

	pool    *domain.Pool
	rosters []*domain.Roster
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	stores, tm := memory.New()
	broker := event.NewLocalBroker(nil)
	events := auction.NewEventService(nil, stores.EventLog, broker)
	draft := auction.NewDraftService(nil, stores, tm, events)
	srv := New(nil, draft, events, broker)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	pool := &domain.Pool{ID: uuid.New(), Name: "Test Pool", CreatedAt: time.Now().UTC()}
	stores.Pools.(*memory.PoolStore).Put(pool)

	var rosters []*domain.Roster
	for _, name := range []string{"Alice", "Bob"} {
		roster := &domain.Roster{ID: uuid.New(), PoolID: pool.ID, Season: "2025-26", Name: name, CreatedAt: time.Now().UTC()}
		stores.Rosters.(*memory.RosterStore).Put(roster)
		rosters = append(rosters, roster)
	}
	for _, name := range []string{"Celtics", "Lakers", "Nuggets", "Thunder"} {
		stores.Teams.(*memory.TeamStore).Put(&domain.Team{
			ID:           uuid.New(),
			League:       domain.LeagueNBA,
			Name:         name,
			Abbreviation: name[:3],
		})
	}

	return &serverFixture{ts: ts, stores: stores, draft: draft, pool: pool, rosters: rosters}
}

// do issues a request with a JSON body and decodes the JSON response into
// out when out is non-nil.
func (f *serverFixture) do(t *testing.T, method, path string, body, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req, err := http.NewRequest(method, f.ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp
}

func mustStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want)
	}
}

// createActiveAuction drives the setup endpoints: create, batch
// participants, batch lots, start.
func (f *serverFixture) createActiveAuction(t *testing.T) (*domain.Auction, []*domain.AuctionParticipant, []*domain.AuctionLot) {
	t.Helper()

	var a domain.Auction
	resp := f.do(t, http.MethodPost, "/auctions", domain.AuctionDraft{
		PoolID:                    f.pool.ID,
		Season:                    "2025-26",
		MaxLotsPerParticipant:     2,
		MinBidIncrement:           decimal.NewFromInt(1),
		StartingParticipantBudget: decimal.NewFromInt(10),
	}, &a)
	mustStatus(t, resp, http.StatusCreated)

	var participants []*domain.AuctionParticipant
	resp = f.do(t, http.MethodPost, "/auction-participants/batch", participantBatchRequest{
		Source:    "pool",
		AuctionID: a.ID,
	}, &participants)
	mustStatus(t, resp, http.StatusCreated)
	if len(participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(participants))
	}

	var lots []*domain.AuctionLot
	resp = f.do(t, http.MethodPost, "/auction-lots/batch", lotBatchRequest{
		Source:    "league",
		AuctionID: a.ID,
		League:    domain.LeagueNBA,
	}, &lots)
	mustStatus(t, resp, http.StatusCreated)
	if len(lots) != 4 {
		t.Fatalf("expected 4 lots, got %d", len(lots))
	}

	var started domain.Auction
	resp = f.do(t, http.MethodPatch, "/auctions/"+a.ID.String(), auctionPatch{Action: "start"}, &started)
	mustStatus(t, resp, http.StatusOK)
	if started.Status != domain.AuctionActive {
		t.Fatalf("auction status %s after start", started.Status)
	}

	return &started, participants, lots
}

func TestServer_DraftLifecycle(t *testing.T) {
	f := newServerFixture(t)
	a, participants, lots := f.createActiveAuction(t)
	alice, bob := participants[0], participants[1]

	// Bid, outbid, close.
	var bid domain.Bid
	resp := f.do(t, http.MethodPost, "/bids", domain.BidDraft{
		LotID:         lots[0].ID,
		ParticipantID: alice.ID,
		Amount:        decimal.NewFromInt(3),
	}, &bid)
	mustStatus(t, resp, http.StatusCreated)
	if !bid.Amount.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("bid amount %s", bid.Amount)
	}

	resp = f.do(t, http.MethodPost, "/bids", domain.BidDraft{
		LotID:         lots[0].ID,
		ParticipantID: bob.ID,
		Amount:        decimal.NewFromInt(5),
	}, nil)
	mustStatus(t, resp, http.StatusCreated)

	var closed domain.AuctionLot
	resp = f.do(t, http.MethodPatch, "/auction-lots/"+lots[0].ID.String(), lotPatch{Action: "close"}, &closed)
	mustStatus(t, resp, http.StatusOK)
	if closed.Status != domain.LotClosed {
		t.Fatalf("lot status %s after close", closed.Status)
	}

	// Overview reflects the state.
	var overview domain.AuctionOverview
	resp = f.do(t, http.MethodGet, "/auctions/"+a.ID.String()+"/overview", nil, &overview)
	mustStatus(t, resp, http.StatusOK)
	if len(overview.Lots) != 4 || len(overview.Participants) != 2 {
		t.Fatalf("overview has %d lots, %d participants", len(overview.Lots), len(overview.Participants))
	}

	// Bids are filterable.
	var bids []*domain.Bid
	resp = f.do(t, http.MethodGet, "/bids?lot_id="+lots[0].ID.String(), nil, &bids)
	mustStatus(t, resp, http.StatusOK)
	if len(bids) != 2 {
		t.Fatalf("expected 2 bids on lot, got %d", len(bids))
	}

	// Complete and materialize roster slots.
	var completed domain.Auction
	resp = f.do(t, http.MethodPatch, "/auctions/"+a.ID.String(), auctionPatch{Action: "complete"}, &completed)
	mustStatus(t, resp, http.StatusOK)
	if completed.Status != domain.AuctionCompleted {
		t.Fatalf("auction status %s after complete", completed.Status)
	}

	var slots []*domain.RosterSlot
	resp = f.do(t, http.MethodPost, "/roster-slots/batch", rosterSlotBatchRequest{
		Source:    "auction",
		AuctionID: a.ID,
	}, &slots)
	mustStatus(t, resp, http.StatusCreated)
	if len(slots) != 1 {
		t.Fatalf("expected 1 roster slot, got %d", len(slots))
	}
	if !slots[0].AuctionPrice.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("slot price %s, want 5", slots[0].AuctionPrice)
	}

	// History holds every event, newest first, as raw payloads.
	var payloads []json.RawMessage
	resp = f.do(t, http.MethodGet, "/auctions/"+a.ID.String()+"/events/history", nil, &payloads)
	mustStatus(t, resp, http.StatusOK)
	// start + 2 bids + close + complete.
	if len(payloads) != 5 {
		t.Fatalf("expected 5 history payloads, got %d", len(payloads))
	}
	newest, err := domain.DecodeEvent(payloads[0])
	if err != nil {
		t.Fatalf("decode newest payload: %v", err)
	}
	if newest.Type() != domain.EventAuctionCompleted {
		t.Fatalf("newest event %s, want %s", newest.Type(), domain.EventAuctionCompleted)
	}
}

func TestServer_ErrorMapping(t *testing.T) {
	f := newServerFixture(t)

	t.Run("unknown auction is 404 with kind", func(t *testing.T) {
		var body errorResponse
		resp := f.do(t, http.MethodGet, "/auctions/"+uuid.NewString()+"/overview", nil, &body)
		mustStatus(t, resp, http.StatusNotFound)
		if body.Kind != string(auction.KindNotFound) {
			t.Fatalf("kind %q", body.Kind)
		}
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/auctions/not-a-uuid/overview", nil, nil)
		mustStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, f.ts.URL+"/auctions", strings.NewReader("{"))
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		resp, err := f.ts.Client().Do(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		defer resp.Body.Close()
		mustStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("invalid draft config is 400", func(t *testing.T) {
		var body errorResponse
		resp := f.do(t, http.MethodPost, "/auctions", domain.AuctionDraft{
			PoolID:                    f.pool.ID,
			Season:                    "2025-26",
			MaxLotsPerParticipant:     0,
			StartingParticipantBudget: decimal.NewFromInt(10),
		}, &body)
		mustStatus(t, resp, http.StatusBadRequest)
		if body.Kind != string(auction.KindInvalidInput) {
			t.Fatalf("kind %q", body.Kind)
		}
	})

	t.Run("unknown patch action is 400", func(t *testing.T) {
		resp := f.do(t, http.MethodPatch, "/auctions/"+uuid.NewString(), auctionPatch{Action: "pause"}, nil)
		mustStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("unknown batch source is 400", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/auction-participants/batch", participantBatchRequest{
			Source:    "csv",
			AuctionID: uuid.New(),
		}, nil)
		mustStatus(t, resp, http.StatusBadRequest)
	})
}

func TestServer_StateConflicts(t *testing.T) {
	f := newServerFixture(t)
	a, participants, lots := f.createActiveAuction(t)

	// Starting twice conflicts.
	var body errorResponse
	resp := f.do(t, http.MethodPatch, "/auctions/"+a.ID.String(), auctionPatch{Action: "start"}, &body)
	mustStatus(t, resp, http.StatusConflict)
	if body.Kind != string(auction.KindInvalidState) {
		t.Fatalf("kind %q", body.Kind)
	}

	// An active auction cannot be deleted or reconfigured.
	resp = f.do(t, http.MethodDelete, "/auctions/"+a.ID.String(), nil, nil)
	mustStatus(t, resp, http.StatusConflict)

	three := 3
	resp = f.do(t, http.MethodPatch, "/auctions/"+a.ID.String(), auctionPatch{
		AuctionConfigPatch: domain.AuctionConfigPatch{MaxLotsPerParticipant: &three},
	}, nil)
	mustStatus(t, resp, http.StatusConflict)

	// A rule violation carries its kind at 400.
	body = errorResponse{}
	resp = f.do(t, http.MethodPost, "/bids", domain.BidDraft{
		LotID:         lots[0].ID,
		ParticipantID: participants[0].ID,
		Amount:        decimal.RequireFromString("0.50"),
	}, &body)
	mustStatus(t, resp, http.StatusBadRequest)
	if body.Kind != string(auction.KindBidTooLow) {
		t.Fatalf("kind %q", body.Kind)
	}

	// Removing a participant mid-draft conflicts.
	resp = f.do(t, http.MethodDelete, "/auction-participants/"+participants[0].ID.String(), nil, nil)
	mustStatus(t, resp, http.StatusConflict)
}

func TestServer_DeleteAuction(t *testing.T) {
	f := newServerFixture(t)

	var a domain.Auction
	resp := f.do(t, http.MethodPost, "/auctions", domain.AuctionDraft{
		PoolID:                    f.pool.ID,
		Season:                    "2025-26",
		MaxLotsPerParticipant:     2,
		StartingParticipantBudget: decimal.NewFromInt(10),
	}, &a)
	mustStatus(t, resp, http.StatusCreated)

	resp = f.do(t, http.MethodDelete, "/auctions/"+a.ID.String(), nil, nil)
	mustStatus(t, resp, http.StatusNoContent)

	var auctions []*domain.Auction
	resp = f.do(t, http.MethodGet, "/auctions?pool_id="+f.pool.ID.String(), nil, &auctions)
	mustStatus(t, resp, http.StatusOK)
	if len(auctions) != 0 {
		t.Fatalf("expected no auctions after delete, got %d", len(auctions))
	}
}

func TestServer_EventStream(t *testing.T) {
	f := newServerFixture(t)
	a, participants, lots := f.createActiveAuction(t)

	wsURL := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/auctions/" + a.ID.String() + "/events"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	defer conn.Close()
	resp.Body.Close()

	// Bid after connecting so the subscription is already registered.
	httpResp := f.do(t, http.MethodPost, "/bids", domain.BidDraft{
		LotID:         lots[0].ID,
		ParticipantID: participants[0].ID,
		Amount:        decimal.NewFromInt(2),
	}, nil)
	mustStatus(t, httpResp, http.StatusCreated)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read stream message: %v", err)
	}

	ev, err := domain.DecodeEvent(payload)
	if err != nil {
		t.Fatalf("decode stream payload: %v", err)
	}
	accepted, ok := ev.(domain.BidAcceptedEvent)
	if !ok {
		t.Fatalf("expected bid_accepted, got %T", ev)
	}
	if accepted.AuctionID != a.ID {
		t.Fatalf("event auction %s, want %s", accepted.AuctionID, a.ID)
	}
	if accepted.Lot.WinningBid == nil || !accepted.Lot.WinningBid.Amount.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("stream event winning bid: %+v", accepted.Lot.WinningBid)
	}
}

func TestServer_Health(t *testing.T) {
	f := newServerFixture(t)
	resp, err := f.ts.Client().Get(f.ts.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status %d", resp.StatusCode)
	}
}
