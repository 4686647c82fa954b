package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wins-pool/internal/domain"
	"wins-pool/internal/storage"
)

// The pool, roster, team, and roster-slot gateways are external
// collaborators of the auction engine: read-only lookups, except for
// roster slots which are the write target of post-completion
// materialization.

// PoolStore implements storage.PoolStore using PostgreSQL.
type PoolStore struct {
	db DB
}

// NewPoolStore creates a new PoolStore.
func NewPoolStore(pool *Pool) *PoolStore {
	return &PoolStore{db: pool}
}

var _ storage.PoolStore = (*PoolStore)(nil)

// GetByID retrieves a pool. Returns ErrNotFound if not exists.
func (s *PoolStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Pool, error) {
	query := `SELECT id, name, created_at FROM pools WHERE id = $1`

	var p domain.Pool
	err := s.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pool by id: %w", err)
	}
	return &p, nil
}

// RosterStore implements storage.RosterStore using PostgreSQL.
type RosterStore struct {
	db DB
}

// NewRosterStore creates a new RosterStore.
func NewRosterStore(pool *Pool) *RosterStore {
	return &RosterStore{db: pool}
}

var _ storage.RosterStore = (*RosterStore)(nil)

// GetByID retrieves a roster. Returns ErrNotFound if not exists.
func (s *RosterStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Roster, error) {
	query := `SELECT id, pool_id, season, name, created_at FROM rosters WHERE id = $1`

	var r domain.Roster
	err := s.db.QueryRow(ctx, query, id).Scan(&r.ID, &r.PoolID, &r.Season, &r.Name, &r.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get roster by id: %w", err)
	}
	return &r, nil
}

// ListByPoolSeason retrieves all rosters for a pool and season.
func (s *RosterStore) ListByPoolSeason(ctx context.Context, poolID uuid.UUID, season string) ([]*domain.Roster, error) {
	query := `
		SELECT id, pool_id, season, name, created_at
		FROM rosters
		WHERE pool_id = $1 AND season = $2
		ORDER BY name ASC, id ASC
	`

	rows, err := s.db.Query(ctx, query, poolID, season)
	if err != nil {
		return nil, fmt.Errorf("list rosters by pool and season: %w", err)
	}
	defer rows.Close()

	var rosters []*domain.Roster
	for rows.Next() {
		var r domain.Roster
		if err := rows.Scan(&r.ID, &r.PoolID, &r.Season, &r.Name, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan roster row: %w", err)
		}
		rosters = append(rosters, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster rows: %w", err)
	}
	return rosters, nil
}

// TeamStore implements storage.TeamStore using PostgreSQL.
type TeamStore struct {
	db DB
}

// NewTeamStore creates a new TeamStore.
func NewTeamStore(pool *Pool) *TeamStore {
	return &TeamStore{db: pool}
}

var _ storage.TeamStore = (*TeamStore)(nil)

const teamColumns = `id, league, name, abbreviation, logo_url`

// GetByID retrieves a team. Returns ErrNotFound if not exists.
func (s *TeamStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	t, err := scanTeam(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get team by id: %w", err)
	}
	return t, nil
}

// GetByIDs retrieves the teams for the given ids. Missing ids are skipped.
func (s *TeamStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = ANY($1) ORDER BY name ASC`

	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get teams by ids: %w", err)
	}
	defer rows.Close()

	return scanTeams(rows)
}

// ListByLeague retrieves all teams in a league, ordered by name ASC.
func (s *TeamStore) ListByLeague(ctx context.Context, league domain.LeagueSlug) ([]*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE league = $1 ORDER BY name ASC`

	rows, err := s.db.Query(ctx, query, string(league))
	if err != nil {
		return nil, fmt.Errorf("list teams by league: %w", err)
	}
	defer rows.Close()

	return scanTeams(rows)
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var t domain.Team
	var leagueStr string

	err := row.Scan(&t.ID, &leagueStr, &t.Name, &t.Abbreviation, &t.LogoURL)
	if err != nil {
		return nil, err
	}

	t.League = domain.LeagueSlug(leagueStr)
	return &t, nil
}

func scanTeams(rows pgx.Rows) ([]*domain.Team, error) {
	var teams []*domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team rows: %w", err)
	}
	return teams, nil
}

// RosterSlotStore implements storage.RosterSlotStore using PostgreSQL.
type RosterSlotStore struct {
	db DB
}

// NewRosterSlotStore creates a new RosterSlotStore.
func NewRosterSlotStore(pool *Pool) *RosterSlotStore {
	return &RosterSlotStore{db: pool}
}

var _ storage.RosterSlotStore = (*RosterSlotStore)(nil)

// InsertBulk adds multiple roster slots. Run inside a transaction for
// all-or-nothing semantics.
func (s *RosterSlotStore) InsertBulk(ctx context.Context, slots []*domain.RosterSlot) error {
	query := `
		INSERT INTO roster_slots (id, roster_id, team_id, auction_lot_id, auction_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, slot := range slots {
		_, err := s.db.Exec(ctx, query,
			slot.ID,
			slot.RosterID,
			slot.TeamID,
			slot.AuctionLotID,
			slot.AuctionPrice,
			slot.CreatedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert roster slot in bulk: %w", err)
		}
	}
	return nil
}

// ListByRosterIDs retrieves all slots belonging to the given rosters.
func (s *RosterSlotStore) ListByRosterIDs(ctx context.Context, rosterIDs []uuid.UUID) ([]*domain.RosterSlot, error) {
	if len(rosterIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, roster_id, team_id, auction_lot_id, auction_price, created_at
		FROM roster_slots
		WHERE roster_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.Query(ctx, query, rosterIDs)
	if err != nil {
		return nil, fmt.Errorf("list roster slots: %w", err)
	}
	defer rows.Close()

	var slots []*domain.RosterSlot
	for rows.Next() {
		var slot domain.RosterSlot
		err := rows.Scan(&slot.ID, &slot.RosterID, &slot.TeamID, &slot.AuctionLotID, &slot.AuctionPrice, &slot.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan roster slot row: %w", err)
		}
		slots = append(slots, &slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster slot rows: %w", err)
	}
	return slots, nil
}

// DeleteByRosterIDs removes all slots belonging to the given rosters.
func (s *RosterSlotStore) DeleteByRosterIDs(ctx context.Context, rosterIDs []uuid.UUID) error {
	if len(rosterIDs) == 0 {
		return nil
	}

	_, err := s.db.Exec(ctx, `DELETE FROM roster_slots WHERE roster_id = ANY($1)`, rosterIDs)
	if err != nil {
		return fmt.Errorf("delete roster slots: %w", err)
	}
	return nil
}
