package types

import "github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/engine"

// ClientMessage is the inbound websocket envelope.
//
// Types: "selectTeam" | "selectPlayer" | "assignPlayer" | "removePlayer" |
// "resetTeams". Secret accompanies resetTeams only.
type ClientMessage struct {
	Type         string `json:"type"`
	TeamID       int64  `json:"teamId,omitempty"`
	PlayerID     int64  `json:"playerId,omitempty"`
	PurchasedFor int    `json:"purchasedFor,omitempty"`
	Secret       string `json:"secret,omitempty"`
}

// ServerMessage is the outbound envelope. Type names follow the event
// protocol: "players:update", "teams:update", "team:update",
// "selectedPlayer:update", "playerSold", "error". Version increments with
// every successful mutation so clients can discard stale snapshots.
type ServerMessage struct {
	Type    string              `json:"type"`
	Version int                 `json:"version,omitempty"`
	Players []engine.Player     `json:"players,omitempty"`
	Teams   []engine.Team       `json:"teams,omitempty"`
	Team    *engine.Team        `json:"team,omitempty"`
	Player  *engine.Player      `json:"player,omitempty"`
	Entry   *engine.RosterEntry `json:"entry,omitempty"`
	Error   string              `json:"error,omitempty"`
}

const (
	MsgSelectTeam   = "selectTeam"
	MsgSelectPlayer = "selectPlayer"
	MsgAssignPlayer = "assignPlayer"
	MsgRemovePlayer = "removePlayer"
	MsgResetTeams   = "resetTeams"

	MsgPlayersUpdate  = "players:update"
	MsgTeamsUpdate    = "teams:update"
	MsgTeamUpdate     = "team:update"
	MsgSelectedPlayer = "selectedPlayer:update"
	MsgPlayerSold     = "playerSold"
	MsgError          = "error"
)
