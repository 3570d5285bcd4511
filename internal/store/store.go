// Package store is the catalog boundary: durable player and team records
// behind load/save calls. Two backends share the interface, sqlite for the
// single-binary default and postgres when DATABASE_URL is configured.
package store

import (
	"context"
	"errors"

	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/engine"
)

// ErrUnavailable wraps any backend failure. The room refuses to mutate
// in-memory state when the write behind it did not land.
var ErrUnavailable = errors.New("catalog store unavailable")

type Store interface {
	// Load returns all players and teams in catalog order.
	Load(ctx context.Context) ([]engine.Player, []engine.Team, error)
	// SaveTeam persists a team's budget and roster.
	SaveTeam(ctx context.Context, team engine.Team) error
	// SavePlayerSold persists a player's sold flag.
	SavePlayerSold(ctx context.Context, playerID int64, sold bool) error
	// ResetAll restores every team to its initial budget with an empty
	// roster and clears every sold flag.
	ResetAll(ctx context.Context) error
	Close() error
}

// defaultTeam seeds the catalog on first run, mirroring the fixtures the
// auction has always shipped with.
type defaultTeam struct {
	id     int64
	name   string
	budget int
	logo   string
}

var defaultTeams = []defaultTeam{
	{1, "Royal Challengers Bangalore", 10000, "https://i.pinimg.com/736x/54/96/c3/5496c328d02c848b352190a0eee94dc1.jpg"},
	{2, "Chennai Super Kings", 10000, "https://i.pinimg.com/736x/4e/e7/ac/4ee7ac144c048d64edcb30d3129a895f.jpg"},
	{3, "Mumbai Indians", 10000, "https://i.pinimg.com/736x/e8/87/a8/e887a81959a66337b7ccc7835c38470e.jpg"},
	{4, "Kolkata Knight Riders", 10000, "https://i.pinimg.com/736x/dd/ef/01/ddef0161a23be84b2e8f9e2ac715cb8e.jpg"},
	{5, "Delhi Capitals", 10000, "https://i.pinimg.com/736x/5d/a6/04/5da6045278a7a7dba53540a9226ac1c7.jpg"},
	{6, "Punjab Kings", 10000, "https://mir-s3-cdn-cf.behance.net/projects/404/614abb172278773.Y3JvcCwxNTAwLDExNzMsMCwxNA.png"},
	{7, "Rajasthan Royals", 10000, "https://i.pinimg.com/736x/44/b9/d2/44b9d2d691b2346d6a7c2a492f105dd1.jpg"},
	{8, "Sunrisers Hyderabad", 10000, "https://i.pinimg.com/736x/d2/a1/77/d2a177e722cd189ad6fca15fe2644d3e.jpg"},
	{9, "Lucknow Super Giants", 10000, "https://i.pinimg.com/736x/86/c6/14/86c61402da3732392321dc9f4c6375fb.jpg"},
	{10, "Gujarat Titans", 10000, "https://i.pinimg.com/736x/ea/df/52/eadf52ed1b962b079801ed8e912c7e10.jpg"},
}
