package auction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

// GetAuctionOverview assembles the denormalized projection a live frontend
// renders: the auction, every lot with its team and winning bid, every
// participant with budget and lots won, and the currently open lot.
func (s *DraftService) GetAuctionOverview(ctx context.Context, id uuid.UUID) (*domain.AuctionOverview, error) {
	a, err := s.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}

	lots, err := s.stores.Lots.ListByAuction(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list lots for auction %s: %w", a.ID, err)
	}
	participants, err := s.stores.Participants.ListByAuction(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants for auction %s: %w", a.ID, err)
	}

	teamIDs := make([]uuid.UUID, 0, len(lots))
	var bidIDs []uuid.UUID
	for _, l := range lots {
		teamIDs = append(teamIDs, l.TeamID)
		if l.WinningBidID != nil {
			bidIDs = append(bidIDs, *l.WinningBidID)
		}
	}

	teams, err := s.stores.Teams.GetByIDs(ctx, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("get teams: %w", err)
	}
	teamByID := make(map[uuid.UUID]*domain.Team, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = t
	}

	bids, err := s.stores.Bids.GetByIDs(ctx, bidIDs)
	if err != nil {
		return nil, fmt.Errorf("get winning bids: %w", err)
	}
	bidByID := make(map[uuid.UUID]*domain.Bid, len(bids))
	for _, b := range bids {
		bidByID[b.ID] = b
	}

	nameByParticipant := make(map[uuid.UUID]string, len(participants))
	for _, p := range participants {
		nameByParticipant[p.ID] = p.Name
	}

	overviewLots := make([]domain.OverviewLot, 0, len(lots))
	wonByParticipant := make(map[uuid.UUID][]domain.OverviewLot)
	var currentLot *domain.OverviewLot
	for _, l := range lots {
		team, ok := teamByID[l.TeamID]
		if !ok {
			return nil, fmt.Errorf("team %s for lot %s not found", l.TeamID, l.ID)
		}

		ol := domain.OverviewLot{
			ID:     l.ID,
			Status: l.Status,
			Team: domain.OverviewTeam{
				ID:           team.ID,
				Name:         team.Name,
				Abbreviation: team.Abbreviation,
				LogoURL:      team.LogoURL,
			},
		}

		var winnerID uuid.UUID
		if l.WinningBidID != nil {
			bid, ok := bidByID[*l.WinningBidID]
			if !ok {
				return nil, fmt.Errorf("winning bid %s for lot %s not found", *l.WinningBidID, l.ID)
			}
			ol.WinningBid = &domain.OverviewBid{
				BidderName: nameByParticipant[bid.ParticipantID],
				Amount:     bid.Amount,
			}
			winnerID = bid.ParticipantID
		}

		overviewLots = append(overviewLots, ol)
		if l.Status == domain.LotClosed && winnerID != uuid.Nil {
			wonByParticipant[winnerID] = append(wonByParticipant[winnerID], ol)
		}
		if a.CurrentLotID != nil && *a.CurrentLotID == l.ID {
			lotCopy := ol
			currentLot = &lotCopy
		}
	}

	overviewParticipants := make([]domain.OverviewParticipant, 0, len(participants))
	for _, p := range participants {
		overviewParticipants = append(overviewParticipants, domain.OverviewParticipant{
			ID:      p.ID,
			Name:    p.Name,
			Budget:  p.Budget,
			LotsWon: wonByParticipant[p.ID],
		})
	}

	return &domain.AuctionOverview{
		ID:                        a.ID,
		PoolID:                    a.PoolID,
		Season:                    a.Season,
		Status:                    a.Status,
		Lots:                      overviewLots,
		Participants:              overviewParticipants,
		CurrentLot:                currentLot,
		StartedAt:                 a.StartedAt,
		CompletedAt:               a.CompletedAt,
		MaxLotsPerParticipant:     a.MaxLotsPerParticipant,
		MinBidIncrement:           a.MinBidIncrement,
		StartingParticipantBudget: a.StartingParticipantBudget,
	}, nil
}

// lotSnapshot builds the denormalized lot view embedded in bid and close
// events.
func (s *DraftService) lotSnapshot(ctx context.Context, lot *domain.AuctionLot) (domain.OverviewLot, error) {
	team, err := s.stores.Teams.GetByID(ctx, lot.TeamID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.OverviewLot{}, fmt.Errorf("team %s for lot %s not found", lot.TeamID, lot.ID)
		}
		return domain.OverviewLot{}, fmt.Errorf("get team %s: %w", lot.TeamID, err)
	}

	ol := domain.OverviewLot{
		ID:     lot.ID,
		Status: lot.Status,
		Team: domain.OverviewTeam{
			ID:           team.ID,
			Name:         team.Name,
			Abbreviation: team.Abbreviation,
			LogoURL:      team.LogoURL,
		},
	}

	if lot.WinningBidID != nil {
		bid, err := s.stores.Bids.GetByID(ctx, *lot.WinningBidID)
		if err != nil {
			return domain.OverviewLot{}, fmt.Errorf("get winning bid %s: %w", *lot.WinningBidID, err)
		}
		bidder, err := s.stores.Participants.GetByID(ctx, bid.ParticipantID)
		if err != nil {
			return domain.OverviewLot{}, fmt.Errorf("get participant %s: %w", bid.ParticipantID, err)
		}
		ol.WinningBid = &domain.OverviewBid{
			BidderName: bidder.Name,
			Amount:     bid.Amount,
		}
	}
	return ol, nil
}
