package engine

import (
	"errors"
	"fmt"
)

var ErrPlayerNotFound = errors.New("player not found")
var ErrTeamNotFound = errors.New("team not found")
var ErrPlayerAlreadySold = errors.New("player already sold")
var ErrInsufficientBudget = errors.New("insufficient budget")
var ErrInvalidPrice = errors.New("price must be a non-negative integer")
var ErrPlayerNotAssigned = errors.New("player not found in any team")
var ErrBudgetConservation = errors.New("budget conservation violated")
var ErrUnsupportedCommand = errors.New("unsupported command")

type CommandType string

const (
	CmdAssignPlayer CommandType = "AssignPlayer"
	CmdRemovePlayer CommandType = "RemovePlayer"
	CmdResetAuction CommandType = "ResetAuction"
)

type Command struct {
	Type     CommandType
	PlayerID int64
	TeamID   int64
	Price    int
}

type EventType string

const (
	EvtPlayerAssigned EventType = "PlayerAssigned"
	EvtPlayerRemoved  EventType = "PlayerRemoved"
	EvtAuctionReset   EventType = "AuctionReset"
)

type Event struct {
	Type     EventType
	PlayerID int64
	TeamID   int64
	Price    int
}

// Apply validates cmd against s and returns the resulting state. The input
// state is never mutated; on error the returned state is s unchanged, so a
// rejected operation has no observable effect.
func Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdAssignPlayer:
		return applyAssign(s, cmd)
	case CmdRemovePlayer:
		return applyRemove(s, cmd)
	case CmdResetAuction:
		return applyReset(s)
	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func applyAssign(s State, cmd Command) ([]Event, State, error) {
	player, ok := s.PlayerByID(cmd.PlayerID)
	if !ok {
		return nil, s, ErrPlayerNotFound
	}
	if player.Sold {
		return nil, s, ErrPlayerAlreadySold
	}
	team, ok := s.TeamByID(cmd.TeamID)
	if !ok {
		return nil, s, ErrTeamNotFound
	}
	if cmd.Price < 0 {
		return nil, s, ErrInvalidPrice
	}
	if cmd.Price > team.Budget {
		return nil, s, ErrInsufficientBudget
	}

	next := s.Clone()
	np, _ := next.PlayerByID(cmd.PlayerID)
	nt, _ := next.TeamByID(cmd.TeamID)
	np.Sold = true
	nt.Budget -= cmd.Price
	nt.Roster = append(nt.Roster, RosterEntry{Player: *np, PurchasedFor: cmd.Price})

	if err := checkConservation(nt); err != nil {
		return nil, s, err
	}

	events := []Event{
		{Type: EvtPlayerAssigned, PlayerID: cmd.PlayerID, TeamID: cmd.TeamID, Price: cmd.Price},
	}
	return events, next, nil
}

func applyRemove(s State, cmd Command) ([]Event, State, error) {
	ti, ei, ok := s.rosterIndex(cmd.PlayerID)
	if !ok {
		return nil, s, ErrPlayerNotAssigned
	}

	next := s.Clone()
	team := &next.Teams[ti]
	entry := team.Roster[ei]
	team.Roster = append(team.Roster[:ei], team.Roster[ei+1:]...)
	team.Budget += entry.PurchasedFor
	if np, ok := next.PlayerByID(cmd.PlayerID); ok {
		np.Sold = false
	}

	if err := checkConservation(team); err != nil {
		return nil, s, err
	}

	events := []Event{
		{Type: EvtPlayerRemoved, PlayerID: cmd.PlayerID, TeamID: team.ID, Price: entry.PurchasedFor},
	}
	return events, next, nil
}

func applyReset(s State) ([]Event, State, error) {
	next := s.Clone()
	for i := range next.Teams {
		next.Teams[i].Budget = next.Teams[i].InitialBudget
		next.Teams[i].Roster = []RosterEntry{}
	}
	for i := range next.Players {
		next.Players[i].Sold = false
	}
	return []Event{{Type: EvtAuctionReset}}, next, nil
}

// checkConservation rejects any mutation that would leave a team's budget out
// of line with its roster: budget + spent must equal the configured initial
// budget after every transition.
func checkConservation(t *Team) error {
	spent := 0
	for _, e := range t.Roster {
		spent += e.PurchasedFor
	}
	if t.Budget+spent != t.InitialBudget {
		return ErrBudgetConservation
	}
	return nil
}

// CheckInvariants verifies the whole state: conservation per team, sold flags
// matching roster membership, no player in two rosters. Run by the room at
// load time and by tests after every scenario.
func CheckInvariants(s State) error {
	seen := map[int64]int{}
	for i := range s.Teams {
		if err := checkConservation(&s.Teams[i]); err != nil {
			return err
		}
		for _, e := range s.Teams[i].Roster {
			seen[e.ID]++
		}
	}
	for _, p := range s.Players {
		n := seen[p.ID]
		if n > 1 {
			return fmt.Errorf("player %d appears in %d rosters", p.ID, n)
		}
		if p.Sold != (n == 1) {
			return fmt.Errorf("player %d sold flag does not match roster membership", p.ID)
		}
	}
	return nil
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
