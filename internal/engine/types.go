package engine

type Role string

const (
	RoleBatter       Role = "Batter"
	RoleBowler       Role = "Bowler"
	RoleAllRounder   Role = "All-Rounder"
	RoleWicketKeeper Role = "Wicket-Keeper"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleBatter, RoleBowler, RoleAllRounder, RoleWicketKeeper:
		return true
	}
	return false
}

type Player struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	Points    int    `json:"points"`
	Foreigner bool   `json:"foreigner"`
	Image     string `json:"image"`
	Sold      bool   `json:"sold"`
}

// RosterEntry is a player owned by a team, annotated with the hammer price.
type RosterEntry struct {
	Player
	PurchasedFor int `json:"purchasedFor"`
}

type Team struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Budget        int           `json:"budget"`
	InitialBudget int           `json:"initialBudget"`
	Roster        []RosterEntry `json:"players"`
	Logo          string        `json:"logo"`
}

// State is the authoritative auction snapshot. Slices preserve catalog load
// order; "first team" in the protocol means Teams[0].
type State struct {
	Players []Player
	Teams   []Team
}

func NewState(players []Player, teams []Team) State {
	s := State{
		Players: make([]Player, len(players)),
		Teams:   make([]Team, len(teams)),
	}
	copy(s.Players, players)
	copy(s.Teams, teams)
	for i := range s.Teams {
		if s.Teams[i].Roster == nil {
			s.Teams[i].Roster = []RosterEntry{}
		}
	}
	return s
}

// Clone deep-copies the state so a transition can mutate freely while the
// caller's copy stays untouched on failure.
func (s State) Clone() State {
	out := State{
		Players: make([]Player, len(s.Players)),
		Teams:   make([]Team, len(s.Teams)),
	}
	copy(out.Players, s.Players)
	for i, t := range s.Teams {
		nt := t
		nt.Roster = make([]RosterEntry, len(t.Roster))
		copy(nt.Roster, t.Roster)
		out.Teams[i] = nt
	}
	return out
}

func (s *State) PlayerByID(id int64) (*Player, bool) {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i], true
		}
	}
	return nil, false
}

func (s *State) TeamByID(id int64) (*Team, bool) {
	for i := range s.Teams {
		if s.Teams[i].ID == id {
			return &s.Teams[i], true
		}
	}
	return nil, false
}

// rosterIndex locates a player inside any roster.
func (s *State) rosterIndex(playerID int64) (teamIdx, entryIdx int, ok bool) {
	for ti := range s.Teams {
		for ei := range s.Teams[ti].Roster {
			if s.Teams[ti].Roster[ei].ID == playerID {
				return ti, ei, true
			}
		}
	}
	return 0, 0, false
}
