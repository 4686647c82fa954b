package auction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wins-pool/internal/domain"
	"wins-pool/internal/observability"
	"wins-pool/internal/storage"
)

// defaultMinBidIncrement is used when an auction draft omits the increment.
var defaultMinBidIncrement = decimal.NewFromInt(1)

// DraftService enforces the auction, lot, participant and bid lifecycle
// rules. It is the sole writer of auction-scoped mutable state. Mutations
// that move money run inside one transaction with row locks.
type DraftService struct {
	logger *log.Logger
	stores storage.Stores
	tx     storage.TxManager
	events *EventService
}

// NewDraftService creates a draft service. A nil logger discards logs.
func NewDraftService(logger *log.Logger, stores storage.Stores, tx storage.TxManager, events *EventService) *DraftService {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &DraftService{
		logger: logger,
		stores: stores,
		tx:     tx,
		events: events,
	}
}

// CreateAuction creates a draft for a pool and season. At most one auction
// may exist per pool+season.
func (s *DraftService) CreateAuction(ctx context.Context, draft domain.AuctionDraft) (*domain.Auction, error) {
	if draft.MaxLotsPerParticipant <= 0 {
		return nil, Errf(KindInvalidInput, "max_lots_per_participant must be positive, got %d", draft.MaxLotsPerParticipant)
	}
	if draft.StartingParticipantBudget.LessThanOrEqual(decimal.Zero) {
		return nil, Errf(KindInvalidInput, "starting_participant_budget must be positive, got %s", draft.StartingParticipantBudget)
	}
	increment := draft.MinBidIncrement
	if increment.IsZero() {
		increment = defaultMinBidIncrement
	}
	if increment.LessThanOrEqual(decimal.Zero) {
		return nil, Errf(KindInvalidInput, "min_bid_increment must be positive, got %s", draft.MinBidIncrement)
	}
	if draft.Season == "" {
		return nil, Errf(KindInvalidInput, "season is required")
	}

	if _, err := s.stores.Pools.GetByID(ctx, draft.PoolID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, Errf(KindNotFound, "pool %s not found", draft.PoolID)
		}
		return nil, fmt.Errorf("look up pool %s: %w", draft.PoolID, err)
	}

	a := &domain.Auction{
		ID:                        uuid.New(),
		PoolID:                    draft.PoolID,
		Season:                    draft.Season,
		Status:                    domain.AuctionNotStarted,
		MaxLotsPerParticipant:     draft.MaxLotsPerParticipant,
		MinBidIncrement:           increment,
		StartingParticipantBudget: draft.StartingParticipantBudget,
		CreatedAt:                 time.Now().UTC(),
	}
	if err := s.stores.Auctions.Insert(ctx, a); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, Errf(KindInvalidState, "auction already exists for pool %s season %s", draft.PoolID, draft.Season)
		}
		return nil, fmt.Errorf("insert auction: %w", err)
	}

	s.logger.Printf("Created auction %s for pool %s season %s", a.ID, a.PoolID, a.Season)
	return a, nil
}

// ListAuctions retrieves auctions matching the filter.
func (s *DraftService) ListAuctions(ctx context.Context, filter domain.AuctionFilter) ([]*domain.Auction, error) {
	auctions, err := s.stores.Auctions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	return auctions, nil
}

// GetAuction retrieves one auction.
func (s *DraftService) GetAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	a, err := s.stores.Auctions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, Errf(KindNotFound, "auction %s not found", id)
		}
		return nil, fmt.Errorf("get auction %s: %w", id, err)
	}
	return a, nil
}

// UpdateAuctionConfig updates configuration fields. Allowed only while the
// auction has not started.
func (s *DraftService) UpdateAuctionConfig(ctx context.Context, id uuid.UUID, patch domain.AuctionConfigPatch) (*domain.Auction, error) {
	a, err := s.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AuctionNotStarted {
		return nil, Errf(KindInvalidState, "auction %s is %s, config is mutable only before start", id, a.Status)
	}

	if patch.MaxLotsPerParticipant != nil {
		if *patch.MaxLotsPerParticipant <= 0 {
			return nil, Errf(KindInvalidInput, "max_lots_per_participant must be positive, got %d", *patch.MaxLotsPerParticipant)
		}
		a.MaxLotsPerParticipant = *patch.MaxLotsPerParticipant
	}
	if patch.MinBidIncrement != nil {
		if patch.MinBidIncrement.LessThanOrEqual(decimal.Zero) {
			return nil, Errf(KindInvalidInput, "min_bid_increment must be positive, got %s", *patch.MinBidIncrement)
		}
		a.MinBidIncrement = *patch.MinBidIncrement
	}
	if patch.StartingParticipantBudget != nil {
		if patch.StartingParticipantBudget.LessThanOrEqual(decimal.Zero) {
			return nil, Errf(KindInvalidInput, "starting_participant_budget must be positive, got %s", *patch.StartingParticipantBudget)
		}
		a.StartingParticipantBudget = *patch.StartingParticipantBudget
	}

	if err := s.stores.Auctions.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update auction %s: %w", id, err)
	}
	return a, nil
}

// DeleteAuction removes an auction that has not started.
func (s *DraftService) DeleteAuction(ctx context.Context, id uuid.UUID) error {
	a, err := s.GetAuction(ctx, id)
	if err != nil {
		return err
	}
	if a.Status != domain.AuctionNotStarted {
		return Errf(KindInvalidState, "auction %s is %s, only drafts that have not started can be deleted", id, a.Status)
	}
	if err := s.stores.Auctions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete auction %s: %w", id, err)
	}
	s.logger.Printf("Deleted auction %s", id)
	return nil
}

// AddParticipant registers a roster as a bidder, seeded with the starting
// budget. Allowed only before the auction starts.
func (s *DraftService) AddParticipant(ctx context.Context, draft domain.ParticipantDraft) (*domain.AuctionParticipant, error) {
	a, err := s.GetAuction(ctx, draft.AuctionID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AuctionNotStarted {
		return nil, Errf(KindInvalidState, "auction %s is %s, participants can only join before start", a.ID, a.Status)
	}

	roster, err := s.stores.Rosters.GetByID(ctx, draft.RosterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, Errf(KindNotFound, "roster %s not found", draft.RosterID)
		}
		return nil, fmt.Errorf("look up roster %s: %w", draft.RosterID, err)
	}
	if roster.PoolID != a.PoolID || roster.Season != a.Season {
		return nil, Errf(KindInvalidInput, "roster %s does not belong to pool %s season %s", roster.ID, a.PoolID, a.Season)
	}

	name := draft.Name
	if name == "" {
		name = roster.Name
	}

	p := &domain.AuctionParticipant{
		ID:        uuid.New(),
		AuctionID: a.ID,
		RosterID:  roster.ID,
		Name:      name,
		Budget:    a.StartingParticipantBudget,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.stores.Participants.Insert(ctx, p); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, Errf(KindInvalidState, "roster %s already joined auction %s", roster.ID, a.ID)
		}
		return nil, fmt.Errorf("insert participant: %w", err)
	}
	return p, nil
}

// AddParticipantsByPool bulk-registers one participant per roster in the
// auction's pool and season. Rosters that already joined are skipped.
func (s *DraftService) AddParticipantsByPool(ctx context.Context, auctionID uuid.UUID) ([]*domain.AuctionParticipant, error) {
	a, err := s.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AuctionNotStarted {
		return nil, Errf(KindInvalidState, "auction %s is %s, participants can only join before start", a.ID, a.Status)
	}

	rosters, err := s.stores.Rosters.ListByPoolSeason(ctx, a.PoolID, a.Season)
	if err != nil {
		return nil, fmt.Errorf("list rosters for pool %s season %s: %w", a.PoolID, a.Season, err)
	}

	existing, err := s.stores.Participants.ListByAuction(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants for auction %s: %w", a.ID, err)
	}
	joined := make(map[uuid.UUID]struct{}, len(existing))
	for _, p := range existing {
		joined[p.RosterID] = struct{}{}
	}

	now := time.Now().UTC()
	var created []*domain.AuctionParticipant
	for _, r := range rosters {
		if _, ok := joined[r.ID]; ok {
			continue
		}
		created = append(created, &domain.AuctionParticipant{
			ID:        uuid.New(),
			AuctionID: a.ID,
			RosterID:  r.ID,
			Name:      r.Name,
			Budget:    a.StartingParticipantBudget,
			CreatedAt: now,
		})
	}
	if len(created) == 0 {
		return nil, nil
	}

	if err := s.tx.InTx(ctx, func(ctx context.Context, st storage.Stores) error {
		return st.Participants.InsertBulk(ctx, created)
	}); err != nil {
		return nil, fmt.Errorf("bulk insert participants: %w", err)
	}
	return created, nil
}

// RemoveParticipant removes a bidder. Fails once the auction started.
func (s *DraftService) RemoveParticipant(ctx context.Context, id uuid.UUID) error {
	p, err := s.stores.Participants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Errf(KindNotFound, "participant %s not found", id)
		}
		return fmt.Errorf("get participant %s: %w", id, err)
	}

	a, err := s.GetAuction(ctx, p.AuctionID)
	if err != nil {
		return err
	}
	if a.Status != domain.AuctionNotStarted {
		return Errf(KindInvalidState, "auction %s is %s, participants can only leave before start", a.ID, a.Status)
	}

	if err := s.stores.Participants.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete participant %s: %w", id, err)
	}
	return nil
}

// CreateLot adds one auctionable team. Allowed only before the auction
// starts.
func (s *DraftService) CreateLot(ctx context.Context, draft domain.LotDraft) (*domain.AuctionLot, error) {
	a, err := s.GetAuction(ctx, draft.AuctionID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AuctionNotStarted {
		return nil, Errf(KindInvalidState, "auction %s is %s, lots can only be added before start", a.ID, a.Status)
	}

	if _, err := s.stores.Teams.GetByID(ctx, draft.TeamID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, Errf(KindNotFound, "team %s not found", draft.TeamID)
		}
		return nil, fmt.Errorf("look up team %s: %w", draft.TeamID, err)
	}

	l := &domain.AuctionLot{
		ID:        uuid.New(),
		AuctionID: a.ID,
		TeamID:    draft.TeamID,
		Status:    domain.LotReady,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.stores.Lots.Insert(ctx, l); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, Errf(KindInvalidState, "team %s already has a lot in auction %s", draft.TeamID, a.ID)
		}
		return nil, fmt.Errorf("insert lot: %w", err)
	}
	return l, nil
}

// AddLotsByLeague bulk-adds one lot per team in the league. Teams that
// already have a lot in the auction are skipped.
func (s *DraftService) AddLotsByLeague(ctx context.Context, auctionID uuid.UUID, league domain.LeagueSlug) ([]*domain.AuctionLot, error) {
	a, err := s.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AuctionNotStarted {
		return nil, Errf(KindInvalidState, "auction %s is %s, lots can only be added before start", a.ID, a.Status)
	}

	teams, err := s.stores.Teams.ListByLeague(ctx, league)
	if err != nil {
		return nil, fmt.Errorf("list teams for league %s: %w", league, err)
	}
	if len(teams) == 0 {
		return nil, Errf(KindNotFound, "no teams found for league %s", league)
	}

	existing, err := s.stores.Lots.ListByAuction(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list lots for auction %s: %w", a.ID, err)
	}
	taken := make(map[uuid.UUID]struct{}, len(existing))
	for _, l := range existing {
		taken[l.TeamID] = struct{}{}
	}

	now := time.Now().UTC()
	var created []*domain.AuctionLot
	for _, t := range teams {
		if _, ok := taken[t.ID]; ok {
			continue
		}
		created = append(created, &domain.AuctionLot{
			ID:        uuid.New(),
			AuctionID: a.ID,
			TeamID:    t.ID,
			Status:    domain.LotReady,
			CreatedAt: now,
		})
	}
	if len(created) == 0 {
		return nil, nil
	}

	if err := s.tx.InTx(ctx, func(ctx context.Context, st storage.Stores) error {
		return st.Lots.InsertBulk(ctx, created)
	}); err != nil {
		return nil, fmt.Errorf("bulk insert lots: %w", err)
	}
	return created, nil
}

// StartAuction transitions a draft to active after checking every start
// precondition. Each failed check reports its specific reason.
func (s *DraftService) StartAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	var started *domain.Auction
	err := s.tx.InTx(ctx, func(ctx context.Context, st storage.Stores) error {
		a, err := st.Auctions.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return Errf(KindNotFound, "auction %s not found", id)
			}
			return fmt.Errorf("lock auction %s: %w", id, err)
		}
		if a.Status != domain.AuctionNotStarted {
			return Errf(KindInvalidState, "auction %s is %s, only drafts that have not started can start", id, a.Status)
		}

		participants, err := st.Participants.ListByAuction(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("list participants: %w", err)
		}
		if len(participants) < 2 {
			return Errf(KindCapacityExceeded, "auction needs at least 2 participants, has %d", len(participants))
		}

		reserve := a.MinBidIncrement.Mul(decimal.NewFromInt(int64(a.MaxLotsPerParticipant)))
		if a.StartingParticipantBudget.LessThan(reserve) {
			return Errf(KindInsufficientFunds, "starting budget %s cannot cover %d lots at increment %s", a.StartingParticipantBudget, a.MaxLotsPerParticipant, a.MinBidIncrement)
		}
		for _, p := range participants {
			if p.Budget.LessThan(reserve) {
				return Errf(KindInsufficientFunds, "participant %s budget %s cannot cover %d lots at increment %s", p.Name, p.Budget, a.MaxLotsPerParticipant, a.MinBidIncrement)
			}
		}

		lots, err := st.Lots.ListByAuction(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("list lots: %w", err)
		}
		required := len(participants) * a.MaxLotsPerParticipant
		if len(lots) < required {
			return Errf(KindCapacityExceeded, "auction needs at least %d lots for %d participants, has %d", required, len(participants), len(lots))
		}

		now := time.Now().UTC()
		a.Status = domain.AuctionActive
		a.StartedAt = &now
		if err := st.Auctions.Update(ctx, a); err != nil {
			return fmt.Errorf("update auction %s: %w", id, err)
		}
		started = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RecordAuctionTransition(string(domain.AuctionActive))
	s.logger.Printf("Started auction %s", started.ID)

	ev := domain.AuctionStartedEvent{
		AuctionID: started.ID,
		CreatedAt: time.Now().UTC(),
		StartedAt: *started.StartedAt,
	}
	if err := s.events.PublishAndPersist(ctx, ev); err != nil {
		return nil, err
	}
	return started, nil
}

// PlaceBid validates and applies one bid as an atomic unit of work. Row
// locks on the lot, auction and affected participants serialize concurrent
// bids on the same lot.
func (s *DraftService) PlaceBid(ctx context.Context, draft domain.BidDraft) (*domain.Bid, error) {
	var (
		bid *domain.Bid
		lot *domain.AuctionLot
	)
	err := s.tx.InTx(ctx, func(ctx context.Context, st storage.Stores) error {
		var err error
		lot, err = st.Lots.GetForUpdate(ctx, draft.LotID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return Errf(KindNotFound, "lot %s not found", draft.LotID)
			}
			return fmt.Errorf("lock lot %s: %w", draft.LotID, err)
		}
		if lot.Status == domain.LotClosed {
			return Errf(KindInvalidState, "lot %s is closed", lot.ID)
		}

		a, err := st.Auctions.GetForUpdate(ctx, lot.AuctionID)
		if err != nil {
			return fmt.Errorf("lock auction %s: %w", lot.AuctionID, err)
		}
		if a.Status != domain.AuctionActive {
			return Errf(KindInvalidState, "auction %s is %s, bidding requires an active auction", a.ID, a.Status)
		}

		p, err := st.Participants.GetForUpdate(ctx, draft.ParticipantID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return Errf(KindNotFound, "participant %s not found", draft.ParticipantID)
			}
			return fmt.Errorf("lock participant %s: %w", draft.ParticipantID, err)
		}
		if p.AuctionID != a.ID {
			return Errf(KindInvalidInput, "participant %s does not belong to auction %s", p.ID, a.ID)
		}
		if p.NumLotsWon >= a.MaxLotsPerParticipant {
			return Errf(KindCapacityExceeded, "participant %s already won %d of %d lots", p.Name, p.NumLotsWon, a.MaxLotsPerParticipant)
		}

		// Only one lot may be actively bid on at a time.
		if a.CurrentLotID != nil && *a.CurrentLotID != lot.ID {
			current, err := st.Lots.GetByID(ctx, *a.CurrentLotID)
			if err != nil {
				return fmt.Errorf("get current lot %s: %w", *a.CurrentLotID, err)
			}
			if current.Status != domain.LotClosed {
				return Errf(KindInvalidState, "lot %s is still open, close it before bidding on another lot", current.ID)
			}
		}

		amount := draft.Amount
		if !amount.Equal(amount.Round(2)) {
			return Errf(KindInvalidInput, "bid amount %s is not a whole-cent value", amount)
		}

		// Reserve enough for every remaining required purchase after
		// this one.
		remaining := int64(a.MaxLotsPerParticipant - p.NumLotsWon - 1)
		maxBid := p.Budget.Sub(a.MinBidIncrement.Mul(decimal.NewFromInt(remaining)))
		if amount.GreaterThan(maxBid) {
			return Errf(KindInsufficientFunds, "bid %s exceeds max bid %s for participant %s", amount, maxBid, p.Name)
		}

		minBid := a.MinBidIncrement
		var prev *domain.Bid
		if lot.WinningBidID != nil {
			prev, err = st.Bids.GetByID(ctx, *lot.WinningBidID)
			if err != nil {
				return fmt.Errorf("get winning bid %s: %w", *lot.WinningBidID, err)
			}
			minBid = prev.Amount.Add(a.MinBidIncrement)
		}
		if amount.LessThan(minBid) {
			return Errf(KindBidTooLow, "bid %s is below minimum %s", amount, minBid)
		}

		now := time.Now().UTC()
		bid = &domain.Bid{
			ID:            uuid.New(),
			LotID:         lot.ID,
			ParticipantID: p.ID,
			Amount:        amount,
			CreatedAt:     now,
		}
		if err := st.Bids.Insert(ctx, bid); err != nil {
			return fmt.Errorf("insert bid: %w", err)
		}

		lot.WinningBidID = &bid.ID
		if lot.Status == domain.LotReady {
			lot.Status = domain.LotOpen
			lot.OpenedAt = &now
		}
		if err := st.Lots.Update(ctx, lot); err != nil {
			return fmt.Errorf("update lot %s: %w", lot.ID, err)
		}

		a.CurrentLotID = &lot.ID
		if err := st.Auctions.Update(ctx, a); err != nil {
			return fmt.Errorf("update auction %s: %w", a.ID, err)
		}

		// Refund the outbid participant before debiting the new one.
		if prev != nil {
			if prev.ParticipantID == p.ID {
				p.Budget = p.Budget.Add(prev.Amount)
			} else {
				outbid, err := st.Participants.GetForUpdate(ctx, prev.ParticipantID)
				if err != nil {
					return fmt.Errorf("lock outbid participant %s: %w", prev.ParticipantID, err)
				}
				outbid.Budget = outbid.Budget.Add(prev.Amount)
				if err := st.Participants.Update(ctx, outbid); err != nil {
					return fmt.Errorf("refund participant %s: %w", outbid.ID, err)
				}
			}
		}
		p.Budget = p.Budget.Sub(amount)
		if err := st.Participants.Update(ctx, p); err != nil {
			return fmt.Errorf("debit participant %s: %w", p.ID, err)
		}
		return nil
	})
	if err != nil {
		if kind := KindOf(err); kind != "" {
			observability.RecordBidRejected(string(kind))
		}
		return nil, err
	}

	observability.RecordBidAccepted()
	s.logger.Printf("Accepted bid %s of %s on lot %s", bid.ID, bid.Amount, bid.LotID)

	snapshot, err := s.lotSnapshot(ctx, lot)
	if err != nil {
		return nil, err
	}
	ev := domain.BidAcceptedEvent{
		AuctionID: lot.AuctionID,
		CreatedAt: time.Now().UTC(),
		Lot:       snapshot,
	}
	if err := s.events.PublishAndPersist(ctx, ev); err != nil {
		return nil, err
	}
	return bid, nil
}

// CloseLot finalizes an open lot. A close with no bids is permitted: the
// lot still transitions to closed, it just has no winner.
func (s *DraftService) CloseLot(ctx context.Context, lotID uuid.UUID) (*domain.AuctionLot, error) {
	var (
		lot    *domain.AuctionLot
		winner *domain.AuctionParticipant
	)
	err := s.tx.InTx(ctx, func(ctx context.Context, st storage.Stores) error {
		var err error
		lot, err = st.Lots.GetForUpdate(ctx, lotID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return Errf(KindNotFound, "lot %s not found", lotID)
			}
			return fmt.Errorf("lock lot %s: %w", lotID, err)
		}
		if lot.Status != domain.LotOpen {
			return Errf(KindInvalidState, "lot %s is %s, only open lots can close", lot.ID, lot.Status)
		}

		if lot.WinningBidID != nil {
			win, err := st.Bids.GetByID(ctx, *lot.WinningBidID)
			if err != nil {
				return fmt.Errorf("get winning bid %s: %w", *lot.WinningBidID, err)
			}
			winner, err = st.Participants.GetForUpdate(ctx, win.ParticipantID)
			if err != nil {
				return fmt.Errorf("lock participant %s: %w", win.ParticipantID, err)
			}
			winner.NumLotsWon++
			if err := st.Participants.Update(ctx, winner); err != nil {
				return fmt.Errorf("update participant %s: %w", winner.ID, err)
			}
		}

		now := time.Now().UTC()
		lot.Status = domain.LotClosed
		lot.ClosedAt = &now
		if err := st.Lots.Update(ctx, lot); err != nil {
			return fmt.Errorf("update lot %s: %w", lot.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if winner != nil {
		observability.RecordLotClosed("won")
		s.logger.Printf("Closed lot %s, won by %s", lot.ID, winner.Name)
	} else {
		observability.RecordLotClosed("unsold")
		s.logger.Printf("Closed lot %s with no bids", lot.ID)
	}

	snapshot, err := s.lotSnapshot(ctx, lot)
	if err != nil {
		return nil, err
	}
	ev := domain.LotClosedEvent{
		AuctionID: lot.AuctionID,
		CreatedAt: time.Now().UTC(),
		Lot:       snapshot,
	}
	if err := s.events.PublishAndPersist(ctx, ev); err != nil {
		return nil, err
	}
	return lot, nil
}

// CompleteAuction transitions an active auction to completed. The current
// lot, if any, must already be closed.
func (s *DraftService) CompleteAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	var completed *domain.Auction
	err := s.tx.InTx(ctx, func(ctx context.Context, st storage.Stores) error {
		a, err := st.Auctions.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return Errf(KindNotFound, "auction %s not found", id)
			}
			return fmt.Errorf("lock auction %s: %w", id, err)
		}
		if a.Status != domain.AuctionActive {
			return Errf(KindInvalidState, "auction %s is %s, only active auctions can complete", id, a.Status)
		}

		if a.CurrentLotID != nil {
			current, err := st.Lots.GetByID(ctx, *a.CurrentLotID)
			if err != nil {
				return fmt.Errorf("get current lot %s: %w", *a.CurrentLotID, err)
			}
			if current.Status != domain.LotClosed {
				return Errf(KindInvalidState, "lot %s is still %s, close it before completing the auction", current.ID, current.Status)
			}
		}

		now := time.Now().UTC()
		a.Status = domain.AuctionCompleted
		a.CompletedAt = &now
		if err := st.Auctions.Update(ctx, a); err != nil {
			return fmt.Errorf("update auction %s: %w", id, err)
		}
		completed = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RecordAuctionTransition(string(domain.AuctionCompleted))
	s.logger.Printf("Completed auction %s", completed.ID)

	ev := domain.AuctionCompletedEvent{
		AuctionID:   completed.ID,
		CreatedAt:   time.Now().UTC(),
		CompletedAt: *completed.CompletedAt,
	}
	if err := s.events.PublishAndPersist(ctx, ev); err != nil {
		return nil, err
	}
	return completed, nil
}

// ListBids retrieves bids matching the filter.
func (s *DraftService) ListBids(ctx context.Context, filter domain.BidFilter) ([]*domain.Bid, error) {
	bids, err := s.stores.Bids.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	return bids, nil
}

// CreateRosterSlotsFromLotsWon materializes one roster slot per won lot of
// a completed auction. With replace, existing slots for the involved
// rosters are rebuilt; without, teams already present on a target roster
// are skipped.
func (s *DraftService) CreateRosterSlotsFromLotsWon(ctx context.Context, auctionID uuid.UUID, replace bool) ([]*domain.RosterSlot, error) {
	a, err := s.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AuctionCompleted {
		return nil, Errf(KindInvalidState, "auction %s is %s, roster slots materialize only after completion", a.ID, a.Status)
	}

	lots, err := s.stores.Lots.ListByAuction(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list lots for auction %s: %w", a.ID, err)
	}

	var winningIDs []uuid.UUID
	for _, l := range lots {
		if l.Status == domain.LotClosed && l.WinningBidID != nil {
			winningIDs = append(winningIDs, *l.WinningBidID)
		}
	}
	if len(winningIDs) == 0 {
		return nil, nil
	}

	bids, err := s.stores.Bids.GetByIDs(ctx, winningIDs)
	if err != nil {
		return nil, fmt.Errorf("get winning bids: %w", err)
	}
	bidByID := make(map[uuid.UUID]*domain.Bid, len(bids))
	for _, b := range bids {
		bidByID[b.ID] = b
	}

	participants, err := s.stores.Participants.ListByAuction(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants for auction %s: %w", a.ID, err)
	}
	rosterByParticipant := make(map[uuid.UUID]uuid.UUID, len(participants))
	for _, p := range participants {
		rosterByParticipant[p.ID] = p.RosterID
	}

	now := time.Now().UTC()
	var slots []*domain.RosterSlot
	rosterSet := make(map[uuid.UUID]struct{})
	for _, l := range lots {
		if l.Status != domain.LotClosed || l.WinningBidID == nil {
			continue
		}
		bid, ok := bidByID[*l.WinningBidID]
		if !ok {
			return nil, fmt.Errorf("winning bid %s for lot %s not found", *l.WinningBidID, l.ID)
		}
		rosterID, ok := rosterByParticipant[bid.ParticipantID]
		if !ok {
			return nil, fmt.Errorf("participant %s for winning bid %s not found", bid.ParticipantID, bid.ID)
		}

		lotID := l.ID
		slots = append(slots, &domain.RosterSlot{
			ID:           uuid.New(),
			RosterID:     rosterID,
			TeamID:       l.TeamID,
			AuctionLotID: &lotID,
			AuctionPrice: bid.Amount,
			CreatedAt:    now,
		})
		rosterSet[rosterID] = struct{}{}
	}

	rosterIDs := make([]uuid.UUID, 0, len(rosterSet))
	for id := range rosterSet {
		rosterIDs = append(rosterIDs, id)
	}

	var created []*domain.RosterSlot
	err = s.tx.InTx(ctx, func(ctx context.Context, st storage.Stores) error {
		if replace {
			if err := st.RosterSlots.DeleteByRosterIDs(ctx, rosterIDs); err != nil {
				return fmt.Errorf("delete existing roster slots: %w", err)
			}
			created = slots
			return st.RosterSlots.InsertBulk(ctx, created)
		}

		existing, err := st.RosterSlots.ListByRosterIDs(ctx, rosterIDs)
		if err != nil {
			return fmt.Errorf("list existing roster slots: %w", err)
		}
		type ownership struct{ roster, team uuid.UUID }
		owned := make(map[ownership]struct{}, len(existing))
		for _, slot := range existing {
			owned[ownership{slot.RosterID, slot.TeamID}] = struct{}{}
		}

		created = created[:0]
		for _, slot := range slots {
			if _, ok := owned[ownership{slot.RosterID, slot.TeamID}]; ok {
				continue
			}
			created = append(created, slot)
		}
		if len(created) == 0 {
			return nil
		}
		return st.RosterSlots.InsertBulk(ctx, created)
	})
	if err != nil {
		return nil, fmt.Errorf("materialize roster slots for auction %s: %w", a.ID, err)
	}

	s.logger.Printf("Materialized %d roster slots for auction %s (replace=%t)", len(created), a.ID, replace)
	return created, nil
}
