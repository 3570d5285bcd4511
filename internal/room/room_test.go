package room

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/engine"
	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/store"
	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/types"
)

func testState() engine.State {
	players := []engine.Player{
		{ID: 1, Name: "Virat Kohli", Role: engine.RoleBatter, Points: 95},
		{ID: 2, Name: "Jasprit Bumrah", Role: engine.RoleBowler, Points: 92},
	}
	teams := []engine.Team{
		{ID: 10, Name: "Royal Challengers Bangalore", Budget: 10000, InitialBudget: 10000},
		{ID: 11, Name: "Chennai Super Kings", Budget: 300, InitialBudget: 300},
	}
	return engine.NewState(players, teams)
}

// failingPersister simulates a dead catalog store.
type failingPersister struct{}

func (failingPersister) SaveTeam(context.Context, engine.Team) error {
	return errors.New("connection refused")
}
func (failingPersister) SavePlayerSold(context.Context, int64, bool) error {
	return errors.New("connection refused")
}
func (failingPersister) ResetAll(context.Context) error {
	return errors.New("connection refused")
}

const secret = "open-sesame"

func newTestRoom(t *testing.T, persist Persister) *Room {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, testState(), persist, secret, zap.NewNop())
}

// recvMsg receives one message with a timeout so tests never hang.
func recvMsg(t *testing.T, ch <-chan types.ServerMessage, within time.Duration) types.ServerMessage {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatalf("outbox closed unexpectedly")
		}
		return msg
	case <-time.After(within):
		t.Fatalf("timed out waiting for message")
		return types.ServerMessage{} // unreachable
	}
}

// recvUntil drains the outbox until a message of the wanted type arrives.
func recvUntil(t *testing.T, ch <-chan types.ServerMessage, msgType string) types.ServerMessage {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				t.Fatalf("outbox closed while waiting for %q", msgType)
			}
			if msg.Type == msgType {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", msgType)
		}
	}
}

func recvNothing(t *testing.T, ch <-chan types.ServerMessage, within time.Duration) {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			return
		}
		t.Fatalf("expected no message, got %q", msg.Type)
	case <-time.After(within):
	}
}

func join(t *testing.T, r *Room, sessionID string) chan types.ServerMessage {
	t.Helper()
	out := make(chan types.ServerMessage, 32)
	r.Inbox() <- Join{SessionID: sessionID, Outbox: out}
	// Joining yields the global lists plus the default team snapshot.
	players := recvMsg(t, out, time.Second)
	if players.Type != types.MsgPlayersUpdate {
		t.Fatalf("first join message: got %q, want %q", players.Type, types.MsgPlayersUpdate)
	}
	teams := recvMsg(t, out, time.Second)
	if teams.Type != types.MsgTeamsUpdate {
		t.Fatalf("second join message: got %q, want %q", teams.Type, types.MsgTeamsUpdate)
	}
	teamSnap := recvMsg(t, out, time.Second)
	if teamSnap.Type != types.MsgTeamUpdate || teamSnap.Team == nil || teamSnap.Team.ID != 10 {
		t.Fatalf("expected default team snapshot for team 10, got %+v", teamSnap)
	}
	return out
}

func getView(t *testing.T, r *Room) View {
	t.Helper()
	reply := make(chan View, 1)
	r.Inbox() <- GetView{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func TestAssignBroadcastsToAllSessions(t *testing.T) {
	r := newTestRoom(t, nil)
	operator := join(t, r, "operator")
	viewer := join(t, r, "viewer")

	r.Inbox() <- Do{SessionID: "operator", Cmd: engine.Command{
		Type: engine.CmdAssignPlayer, PlayerID: 1, TeamID: 10, Price: 500,
	}}

	for _, out := range []chan types.ServerMessage{operator, viewer} {
		players := recvUntil(t, out, types.MsgPlayersUpdate)
		if players.Version != 1 {
			t.Fatalf("version: got %d, want 1", players.Version)
		}
		sold := false
		for _, p := range players.Players {
			if p.ID == 1 {
				sold = p.Sold
			}
		}
		if !sold {
			t.Fatalf("players snapshot should mark player 1 sold")
		}

		teams := recvUntil(t, out, types.MsgTeamsUpdate)
		for _, tm := range teams.Teams {
			if tm.ID == 10 && tm.Budget != 9500 {
				t.Fatalf("team budget: got %d, want 9500", tm.Budget)
			}
		}

		// Both sessions view team 10 by default, so both get its snapshot.
		teamSnap := recvUntil(t, out, types.MsgTeamUpdate)
		if teamSnap.Team.ID != 10 || len(teamSnap.Team.Roster) != 1 {
			t.Fatalf("team snapshot: %+v", teamSnap.Team)
		}

		soldNotice := recvUntil(t, out, types.MsgPlayerSold)
		if soldNotice.Entry == nil || soldNotice.Entry.ID != 1 || soldNotice.Entry.PurchasedFor != 500 {
			t.Fatalf("playerSold notice: %+v", soldNotice.Entry)
		}
	}
}

func TestFailureReachesOnlyTheRequester(t *testing.T) {
	r := newTestRoom(t, nil)
	requester := join(t, r, "requester")
	bystander := join(t, r, "bystander")

	// Team 11 has budget 300; 500 is too much.
	r.Inbox() <- Do{SessionID: "requester", Cmd: engine.Command{
		Type: engine.CmdAssignPlayer, PlayerID: 1, TeamID: 11, Price: 500,
	}}

	errMsg := recvMsg(t, requester, time.Second)
	if errMsg.Type != types.MsgError || errMsg.Error != engine.ErrInsufficientBudget.Error() {
		t.Fatalf("requester should get the error, got %+v", errMsg)
	}
	recvNothing(t, bystander, 100*time.Millisecond)

	v := getView(t, r)
	if v.Version != 0 {
		t.Fatalf("rejected op must not bump version, got %d", v.Version)
	}
	team, _ := v.State.TeamByID(11)
	if team.Budget != 300 {
		t.Fatalf("budget: got %d, want 300", team.Budget)
	}
}

func TestConcurrentAssignsResolveFirstComeFirstApplied(t *testing.T) {
	r := newTestRoom(t, nil)
	alice := join(t, r, "alice")
	bob := join(t, r, "bob")

	// Both requests are queued before either broadcast is observed; the
	// single-writer loop applies them in receipt order.
	r.Inbox() <- Do{SessionID: "alice", Cmd: engine.Command{
		Type: engine.CmdAssignPlayer, PlayerID: 1, TeamID: 10, Price: 500,
	}}
	r.Inbox() <- Do{SessionID: "bob", Cmd: engine.Command{
		Type: engine.CmdAssignPlayer, PlayerID: 1, TeamID: 11, Price: 100,
	}}

	errMsg := recvUntil(t, bob, types.MsgError)
	if errMsg.Error != engine.ErrPlayerAlreadySold.Error() {
		t.Fatalf("loser should see already-sold, got %q", errMsg.Error)
	}
	recvUntil(t, alice, types.MsgPlayerSold)

	v := getView(t, r)
	if v.Version != 1 {
		t.Fatalf("exactly one mutation expected, version=%d", v.Version)
	}
	winner, _ := v.State.TeamByID(10)
	loser, _ := v.State.TeamByID(11)
	if len(winner.Roster) != 1 || winner.Budget != 9500 {
		t.Fatalf("winner state: budget=%d roster=%d", winner.Budget, len(winner.Roster))
	}
	if len(loser.Roster) != 0 || loser.Budget != 300 {
		t.Fatalf("loser state: budget=%d roster=%d", loser.Budget, len(loser.Roster))
	}
}

func TestResetRequiresSecret(t *testing.T) {
	r := newTestRoom(t, nil)
	operator := join(t, r, "operator")

	r.Inbox() <- Do{SessionID: "operator", Cmd: engine.Command{
		Type: engine.CmdAssignPlayer, PlayerID: 1, TeamID: 10, Price: 500,
	}}
	recvUntil(t, operator, types.MsgPlayerSold)

	r.Inbox() <- Do{SessionID: "operator", Secret: "wrong", Cmd: engine.Command{Type: engine.CmdResetAuction}}
	errMsg := recvUntil(t, operator, types.MsgError)
	if errMsg.Error != ErrUnauthorized.Error() {
		t.Fatalf("want unauthorized, got %q", errMsg.Error)
	}
	if v := getView(t, r); v.Version != 1 {
		t.Fatalf("unauthorized reset must not mutate, version=%d", v.Version)
	}

	r.Inbox() <- Do{SessionID: "operator", Secret: secret, Cmd: engine.Command{Type: engine.CmdResetAuction}}
	teams := recvUntil(t, operator, types.MsgTeamsUpdate)
	for _, tm := range teams.Teams {
		if tm.Budget != tm.InitialBudget || len(tm.Roster) != 0 {
			t.Fatalf("team %d not reset: %+v", tm.ID, tm)
		}
	}
	players := getView(t, r).State.Players
	for _, p := range players {
		if p.Sold {
			t.Fatalf("player %d still sold after reset", p.ID)
		}
	}
}

func TestStorageFailureBlocksMutationAndBroadcast(t *testing.T) {
	r := newTestRoom(t, failingPersister{})
	requester := join(t, r, "requester")
	bystander := join(t, r, "bystander")

	reply := make(chan error, 1)
	r.Inbox() <- Do{SessionID: "requester", Reply: reply, Cmd: engine.Command{
		Type: engine.CmdAssignPlayer, PlayerID: 1, TeamID: 10, Price: 500,
	}}

	select {
	case err := <-reply:
		if !errors.Is(err, store.ErrUnavailable) {
			t.Fatalf("want ErrUnavailable, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for reply")
	}
	recvUntil(t, requester, types.MsgError)
	recvNothing(t, bystander, 100*time.Millisecond)

	v := getView(t, r)
	if v.Version != 0 {
		t.Fatalf("failed persist must not mutate, version=%d", v.Version)
	}
	team, _ := v.State.TeamByID(10)
	if team.Budget != 10000 || len(team.Roster) != 0 {
		t.Fatalf("state mutated despite storage failure")
	}
}

func TestSelectTeamScopedSnapshot(t *testing.T) {
	r := newTestRoom(t, nil)
	watcher := join(t, r, "watcher")
	other := join(t, r, "other")

	r.Inbox() <- SelectTeam{SessionID: "watcher", TeamID: 11}
	snap := recvMsg(t, watcher, time.Second)
	if snap.Type != types.MsgTeamUpdate || snap.Team.ID != 11 {
		t.Fatalf("expected team 11 snapshot, got %+v", snap)
	}
	recvNothing(t, other, 100*time.Millisecond)

	// A mutation on team 11 now reaches the watcher's scoped feed but not
	// sessions still viewing team 10's detail.
	r.Inbox() <- Do{SessionID: "other", Cmd: engine.Command{
		Type: engine.CmdAssignPlayer, PlayerID: 2, TeamID: 11, Price: 200,
	}}
	teamSnap := recvUntil(t, watcher, types.MsgTeamUpdate)
	if teamSnap.Team.ID != 11 || teamSnap.Team.Budget != 100 {
		t.Fatalf("scoped snapshot: %+v", teamSnap.Team)
	}
	for {
		select {
		case msg := <-other:
			if msg.Type == types.MsgTeamUpdate {
				t.Fatalf("session viewing team 10 received team 11 detail")
			}
		case <-time.After(100 * time.Millisecond):
			return
		}
	}
}

func TestSelectTeamUnknownIDFailsScoped(t *testing.T) {
	r := newTestRoom(t, nil)
	watcher := join(t, r, "watcher")
	other := join(t, r, "other")

	r.Inbox() <- SelectTeam{SessionID: "watcher", TeamID: 99}
	errMsg := recvMsg(t, watcher, time.Second)
	if errMsg.Type != types.MsgError || errMsg.Error != engine.ErrTeamNotFound.Error() {
		t.Fatalf("want scoped team-not-found, got %+v", errMsg)
	}
	recvNothing(t, other, 100*time.Millisecond)
}

func TestSelectPlayerHighlightBroadcasts(t *testing.T) {
	r := newTestRoom(t, nil)
	operator := join(t, r, "operator")
	viewer := join(t, r, "viewer")

	r.Inbox() <- SelectPlayer{SessionID: "operator", PlayerID: 2}
	for _, out := range []chan types.ServerMessage{operator, viewer} {
		msg := recvUntil(t, out, types.MsgSelectedPlayer)
		if msg.Player == nil || msg.Player.ID != 2 {
			t.Fatalf("highlight: %+v", msg.Player)
		}
	}

	// Late joiners see the current highlight immediately.
	late := make(chan types.ServerMessage, 32)
	r.Inbox() <- Join{SessionID: "late", Outbox: late}
	msg := recvUntil(t, late, types.MsgSelectedPlayer)
	if msg.Player == nil || msg.Player.ID != 2 {
		t.Fatalf("late joiner highlight: %+v", msg.Player)
	}
}

func TestLeaveRemovesSubscription(t *testing.T) {
	r := newTestRoom(t, nil)
	join(t, r, "ghost")
	stayer := join(t, r, "stayer")

	r.Inbox() <- Leave{SessionID: "ghost"}
	r.Inbox() <- Do{SessionID: "stayer", Cmd: engine.Command{
		Type: engine.CmdAssignPlayer, PlayerID: 1, TeamID: 10, Price: 500,
	}}
	recvUntil(t, stayer, types.MsgPlayerSold)

	if v := getView(t, r); v.NumClients != 1 {
		t.Fatalf("clients: got %d, want 1", v.NumClients)
	}
}
