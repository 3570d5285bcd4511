package store

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/engine"
)

type playerRow struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Role      string `gorm:"not null"`
	Points    int    `gorm:"not null"`
	Foreigner bool   `gorm:"not null"`
	Image     string
	Sold      bool `gorm:"default:false"`
}

func (playerRow) TableName() string { return "players" }

type teamRow struct {
	ID            int64  `gorm:"primaryKey"`
	Name          string `gorm:"not null"`
	Budget        int    `gorm:"not null"`
	InitialBudget int    `gorm:"not null"`
	Players       string `gorm:"type:text;default:'[]'"`
	Logo          string
}

func (teamRow) TableName() string { return "teams" }

// Postgres backs the catalog with a shared database, for deployments where
// the auction box is not the system of record.
type Postgres struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&playerRow{}, &teamRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	p := &Postgres{db: db}
	if err := p.seed(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Postgres) seed() error {
	for _, t := range defaultTeams {
		row := teamRow{ID: t.id, Name: t.name, Budget: t.budget, InitialBudget: t.budget, Players: "[]", Logo: t.logo}
		err := p.db.Where(teamRow{ID: t.id}).FirstOrCreate(&row).Error
		if err != nil {
			return fmt.Errorf("seed team %d: %w", t.id, err)
		}
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context) ([]engine.Player, []engine.Team, error) {
	var prows []playerRow
	if err := p.db.WithContext(ctx).Order("id").Find(&prows).Error; err != nil {
		return nil, nil, fmt.Errorf("load players: %w", err)
	}
	var trows []teamRow
	if err := p.db.WithContext(ctx).Order("id").Find(&trows).Error; err != nil {
		return nil, nil, fmt.Errorf("load teams: %w", err)
	}

	players := make([]engine.Player, 0, len(prows))
	for _, r := range prows {
		players = append(players, engine.Player{
			ID: r.ID, Name: r.Name, Role: engine.Role(r.Role),
			Points: r.Points, Foreigner: r.Foreigner, Image: r.Image, Sold: r.Sold,
		})
	}
	teams := make([]engine.Team, 0, len(trows))
	for _, r := range trows {
		t := engine.Team{ID: r.ID, Name: r.Name, Budget: r.Budget, InitialBudget: r.InitialBudget, Logo: r.Logo}
		if err := json.Unmarshal([]byte(r.Players), &t.Roster); err != nil {
			return nil, nil, fmt.Errorf("decode roster for team %d: %w", r.ID, err)
		}
		if t.Roster == nil {
			t.Roster = []engine.RosterEntry{}
		}
		teams = append(teams, t)
	}
	return players, teams, nil
}

func (p *Postgres) SaveTeam(ctx context.Context, team engine.Team) error {
	roster, err := json.Marshal(team.Roster)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	err = p.db.WithContext(ctx).Model(&teamRow{}).Where("id = ?", team.ID).
		Updates(map[string]any{"budget": team.Budget, "players": string(roster)}).Error
	if err != nil {
		return fmt.Errorf("save team %d: %w", team.ID, err)
	}
	return nil
}

func (p *Postgres) SavePlayerSold(ctx context.Context, playerID int64, sold bool) error {
	err := p.db.WithContext(ctx).Model(&playerRow{}).Where("id = ?", playerID).
		Update("sold", sold).Error
	if err != nil {
		return fmt.Errorf("save player %d: %w", playerID, err)
	}
	return nil
}

func (p *Postgres) ResetAll(ctx context.Context) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`UPDATE teams SET budget = initial_budget, players = '[]'`).Error; err != nil {
			return fmt.Errorf("reset teams: %w", err)
		}
		if err := tx.Exec(`UPDATE players SET sold = false`).Error; err != nil {
			return fmt.Errorf("reset players: %w", err)
		}
		return nil
	})
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
