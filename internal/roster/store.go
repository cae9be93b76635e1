// Package roster persists teams and their players. Matches read rosters
// from here when they are created or joined.
package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/capture"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("invalid team credentials")
)

type Team struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type Player struct {
	ID     string `json:"id"`
	TeamID string `json:"teamId"`
	Name   string `json:"name"`
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateTeam stores a new team. Only a bcrypt hash of secret is kept.
func (s *Store) CreateTeam(ctx context.Context, name, secret string) (Team, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return Team{}, fmt.Errorf("hashing team secret: %w", err)
	}

	t := Team{ID: uuid.NewString(), Name: name}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO teams (id, name, secret_hash) VALUES (?, ?, ?)
		RETURNING created_at
	`, t.ID, name, string(hash)).Scan(&t.CreatedAt)
	if isUniqueViolation(err) {
		return Team{}, fmt.Errorf("team %q: %w", name, ErrConflict)
	}
	if err != nil {
		return Team{}, fmt.Errorf("inserting team: %w", err)
	}
	return t, nil
}

// Authenticate returns the team whose name and secret match.
func (s *Store) Authenticate(ctx context.Context, name, secret string) (Team, error) {
	var (
		t    Team
		hash string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, secret_hash FROM teams WHERE name = ?
	`, name).Scan(&t.ID, &t.Name, &t.CreatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return Team{}, ErrUnauthorized
	}
	if err != nil {
		return Team{}, fmt.Errorf("loading team: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) != nil {
		return Team{}, ErrUnauthorized
	}
	return t, nil
}

func (s *Store) Team(ctx context.Context, id string) (Team, error) {
	var t Team
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM teams WHERE id = ?
	`, id).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Team{}, fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	return t, err
}

func (s *Store) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM teams ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// AddPlayer adds a player to a team. Player names are unique across teams.
func (s *Store) AddPlayer(ctx context.Context, teamID, name string) (Player, error) {
	if _, err := s.Team(ctx, teamID); err != nil {
		return Player{}, err
	}

	p := Player{ID: uuid.NewString(), TeamID: teamID, Name: name}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (id, team_id, name) VALUES (?, ?, ?)
	`, p.ID, teamID, name)
	if isUniqueViolation(err) {
		return Player{}, fmt.Errorf("player %q: %w", name, ErrConflict)
	}
	if err != nil {
		return Player{}, fmt.Errorf("inserting player: %w", err)
	}
	return p, nil
}

// Players returns the team's players in the order they were added.
func (s *Store) Players(ctx context.Context, teamID string) ([]Player, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, team_id, name FROM players WHERE team_id = ? ORDER BY created_at, rowid
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Roster loads a team with its players as a match roster.
func (s *Store) Roster(ctx context.Context, teamID string) (capture.Roster, error) {
	t, err := s.Team(ctx, teamID)
	if err != nil {
		return capture.Roster{}, err
	}
	players, err := s.Players(ctx, teamID)
	if err != nil {
		return capture.Roster{}, fmt.Errorf("loading players: %w", err)
	}

	r := capture.Roster{ID: t.ID, Name: t.Name}
	for _, p := range players {
		r.Players = append(r.Players, capture.Player{ID: p.ID, Name: p.Name})
	}
	return r, nil
}

// DeleteAll removes every team and, by cascade, every player.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM players`); err != nil {
		return fmt.Errorf("deleting players: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM teams`); err != nil {
		return fmt.Errorf("deleting teams: %w", err)
	}
	return nil
}

// Check pings the database for health reporting.
func (s *Store) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
