package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/engine"
)

// SQLite is the default single-file catalog store.
type SQLite struct {
	db *sql.DB
}

// Safe to run on every start; uses IF NOT EXISTS throughout.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS players (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    role TEXT NOT NULL,
    points INTEGER NOT NULL,
    foreigner INTEGER NOT NULL,
    image TEXT DEFAULT NULL,
    sold INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS teams (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    budget INTEGER NOT NULL,
    initial_budget INTEGER NOT NULL,
    players TEXT DEFAULT '[]',
    logo TEXT DEFAULT NULL
);
`

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	for _, t := range defaultTeams {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO teams (id, name, budget, initial_budget, players, logo) VALUES (?, ?, ?, ?, '[]', ?)`,
			t.id, t.name, t.budget, t.budget, t.logo)
		if err != nil {
			return fmt.Errorf("seed team %d: %w", t.id, err)
		}
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context) ([]engine.Player, []engine.Team, error) {
	players, err := s.loadPlayers(ctx)
	if err != nil {
		return nil, nil, err
	}
	teams, err := s.loadTeams(ctx)
	if err != nil {
		return nil, nil, err
	}
	return players, teams, nil
}

func (s *SQLite) loadPlayers(ctx context.Context) ([]engine.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, points, foreigner, COALESCE(image, ''), sold FROM players ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	defer rows.Close()

	var players []engine.Player
	for rows.Next() {
		var p engine.Player
		var foreigner, sold int
		if err := rows.Scan(&p.ID, &p.Name, &p.Role, &p.Points, &foreigner, &p.Image, &sold); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		p.Foreigner = foreigner != 0
		p.Sold = sold != 0
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *SQLite) loadTeams(ctx context.Context) ([]engine.Team, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, budget, initial_budget, players, COALESCE(logo, '') FROM teams ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	defer rows.Close()

	var teams []engine.Team
	for rows.Next() {
		var t engine.Team
		var roster string
		if err := rows.Scan(&t.ID, &t.Name, &t.Budget, &t.InitialBudget, &roster, &t.Logo); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		if err := json.Unmarshal([]byte(roster), &t.Roster); err != nil {
			return nil, fmt.Errorf("decode roster for team %d: %w", t.ID, err)
		}
		if t.Roster == nil {
			t.Roster = []engine.RosterEntry{}
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *SQLite) SaveTeam(ctx context.Context, team engine.Team) error {
	roster, err := json.Marshal(team.Roster)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE teams SET budget = ?, players = ? WHERE id = ?`,
		team.Budget, string(roster), team.ID)
	if err != nil {
		return fmt.Errorf("save team %d: %w", team.ID, err)
	}
	return nil
}

func (s *SQLite) SavePlayerSold(ctx context.Context, playerID int64, sold bool) error {
	v := 0
	if sold {
		v = 1
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE players SET sold = ? WHERE id = ?`, v, playerID); err != nil {
		return fmt.Errorf("save player %d: %w", playerID, err)
	}
	return nil
}

func (s *SQLite) ResetAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `UPDATE teams SET budget = initial_budget, players = '[]'`); err != nil {
		return fmt.Errorf("reset teams: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE players SET sold = 0`); err != nil {
		return fmt.Errorf("reset players: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) Close() error { return s.db.Close() }

// InsertPlayer adds a catalog record, used by seeding and tests. The catalog
// is otherwise read-only at runtime apart from the sold flag.
func (s *SQLite) InsertPlayer(ctx context.Context, p engine.Player) (int64, error) {
	foreigner, sold := 0, 0
	if p.Foreigner {
		foreigner = 1
	}
	if p.Sold {
		sold = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO players (name, role, points, foreigner, image, sold) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Role, p.Points, foreigner, p.Image, sold)
	if err != nil {
		return 0, fmt.Errorf("insert player: %w", err)
	}
	return res.LastInsertId()
}
