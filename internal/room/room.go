// Package room hosts the auction's single-writer loop. One goroutine owns
// the authoritative engine.State and the subscription registry; every
// mutation and view change arrives as a typed message on the inbox, so
// operations never interleave and no client can observe a partial write.
package room

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/engine"
	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/registry"
	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/store"
	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/types"
)

var ErrUnauthorized = errors.New("unauthorized")

// Persister is the slice of the catalog store the room writes through.
// Writes complete before any broadcast; a failed write keeps the old state.
type Persister interface {
	SaveTeam(ctx context.Context, team engine.Team) error
	SavePlayerSold(ctx context.Context, playerID int64, sold bool) error
	ResetAll(ctx context.Context) error
}

type Msg interface{ isRoomMsg() }

type Join struct {
	SessionID string
	Outbox    chan types.ServerMessage
}

func (Join) isRoomMsg() {}

type Leave struct{ SessionID string }

func (Leave) isRoomMsg() {}

// Do runs an engine command. Errors reach only the requester: its outbox if
// SessionID names a connected session, and Reply when the caller (the REST
// fallback path) wants a synchronous answer. Reply must be buffered.
type Do struct {
	SessionID string
	Cmd       engine.Command
	Secret    string
	Reply     chan error
}

func (Do) isRoomMsg() {}

type SelectTeam struct {
	SessionID string
	TeamID    int64
}

func (SelectTeam) isRoomMsg() {}

// SelectPlayer is the operator highlight; one per process, shown to everyone.
type SelectPlayer struct {
	SessionID string
	PlayerID  int64
}

func (SelectPlayer) isRoomMsg() {}

type GetView struct {
	Reply chan View
}

func (GetView) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// View reflects internal state without data races; for tests and REST reads.
type View struct {
	Version    int
	NumClients int
	State      engine.State
}

type Room struct {
	inbox   chan Msg
	state   engine.State
	version int
	subs    *registry.Registry
	clients map[string]chan types.ServerMessage
	persist Persister
	secret  string
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, initial engine.State, persist Persister, secret string, log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:   make(chan Msg, 64),
		state:   initial,
		subs:    registry.New(),
		clients: make(map[string]chan types.ServerMessage),
		persist: persist,
		secret:  secret,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)
			case Leave:
				r.subs.Unsubscribe(msg.SessionID)
				delete(r.clients, msg.SessionID)
			case Do:
				r.handleDo(msg)
			case SelectTeam:
				r.handleSelectTeam(msg)
			case SelectPlayer:
				r.handleSelectPlayer(msg)
			case GetView:
				msg.Reply <- View{
					Version:    r.version,
					NumClients: len(r.clients),
					State:      r.state.Clone(),
				}
			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
	r.cancel()
}

func (r *Room) handleJoin(msg Join) {
	r.clients[msg.SessionID] = msg.Outbox

	// New sessions view the first team in catalog order until they choose.
	var defaultTeam *engine.Team
	if len(r.state.Teams) > 0 {
		defaultTeam = &r.state.Teams[0]
	}
	if defaultTeam != nil {
		r.subs.Subscribe(msg.SessionID, defaultTeam.ID)
	} else {
		r.subs.Subscribe(msg.SessionID, 0)
	}

	snap := r.state.Clone()
	r.sendTo(msg.SessionID, types.ServerMessage{Type: types.MsgPlayersUpdate, Version: r.version, Players: snap.Players})
	r.sendTo(msg.SessionID, types.ServerMessage{Type: types.MsgTeamsUpdate, Version: r.version, Teams: snap.Teams})
	if defaultTeam != nil {
		if t, ok := snap.TeamByID(defaultTeam.ID); ok {
			r.sendTo(msg.SessionID, types.ServerMessage{Type: types.MsgTeamUpdate, Version: r.version, Team: t})
		}
	}
	if pid, ok := r.subs.Highlighted(); ok {
		if p, ok := snap.PlayerByID(pid); ok {
			r.sendTo(msg.SessionID, types.ServerMessage{Type: types.MsgSelectedPlayer, Version: r.version, Player: p})
		}
	}
}

func (r *Room) handleDo(msg Do) {
	if msg.Cmd.Type == engine.CmdResetAuction && msg.Secret != r.secret {
		r.fail(msg, ErrUnauthorized)
		return
	}

	events, next, err := engine.Apply(r.state, msg.Cmd)
	if err != nil {
		r.fail(msg, err)
		return
	}

	if err := r.persistEvents(next, events); err != nil {
		r.log.Error("persist failed, state unchanged",
			zap.String("cmd", string(msg.Cmd.Type)), zap.Error(err))
		r.fail(msg, fmt.Errorf("%w: %v", store.ErrUnavailable, err))
		return
	}

	r.state = next
	r.version++
	if engine.ContainsEvent(events, engine.EvtAuctionReset) {
		r.subs.ClearHighlight()
	}
	r.broadcastMutation(events)

	if msg.Reply != nil {
		msg.Reply <- nil
	}
}

func (r *Room) persistEvents(next engine.State, events []engine.Event) error {
	if r.persist == nil {
		return nil
	}
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtPlayerAssigned:
			team, _ := next.TeamByID(ev.TeamID)
			if err := r.persist.SaveTeam(r.ctx, *team); err != nil {
				return err
			}
			if err := r.persist.SavePlayerSold(r.ctx, ev.PlayerID, true); err != nil {
				return err
			}
		case engine.EvtPlayerRemoved:
			team, _ := next.TeamByID(ev.TeamID)
			if err := r.persist.SaveTeam(r.ctx, *team); err != nil {
				return err
			}
			if err := r.persist.SavePlayerSold(r.ctx, ev.PlayerID, false); err != nil {
				return err
			}
		case engine.EvtAuctionReset:
			if err := r.persist.ResetAll(r.ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// broadcastMutation fans out the post-mutation views: global player and team
// lists to everyone, per-team snapshots to the sessions viewing a changed
// team, and the sold notice on assignment.
func (r *Room) broadcastMutation(events []engine.Event) {
	snap := r.state.Clone()
	r.broadcast(types.ServerMessage{Type: types.MsgPlayersUpdate, Version: r.version, Players: snap.Players})
	r.broadcast(types.ServerMessage{Type: types.MsgTeamsUpdate, Version: r.version, Teams: snap.Teams})

	changed := map[int64]bool{}
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtPlayerAssigned, engine.EvtPlayerRemoved:
			changed[ev.TeamID] = true
		case engine.EvtAuctionReset:
			for _, t := range snap.Teams {
				changed[t.ID] = true
			}
		}
	}
	for teamID := range changed {
		t, ok := snap.TeamByID(teamID)
		if !ok {
			continue
		}
		msg := types.ServerMessage{Type: types.MsgTeamUpdate, Version: r.version, Team: t}
		for _, sid := range r.subs.Viewers(teamID) {
			r.sendTo(sid, msg)
		}
	}

	for _, ev := range events {
		if ev.Type != engine.EvtPlayerAssigned {
			continue
		}
		if t, ok := snap.TeamByID(ev.TeamID); ok {
			for i := range t.Roster {
				if t.Roster[i].ID == ev.PlayerID {
					entry := t.Roster[i]
					r.broadcast(types.ServerMessage{Type: types.MsgPlayerSold, Version: r.version, Entry: &entry})
					break
				}
			}
		}
	}
}

func (r *Room) handleSelectTeam(msg SelectTeam) {
	if _, ok := r.state.TeamByID(msg.TeamID); !ok {
		r.sendErr(msg.SessionID, engine.ErrTeamNotFound)
		return
	}
	r.subs.SelectTeam(msg.SessionID, msg.TeamID)
	snap := r.state.Clone()
	if t, ok := snap.TeamByID(msg.TeamID); ok {
		r.sendTo(msg.SessionID, types.ServerMessage{Type: types.MsgTeamUpdate, Version: r.version, Team: t})
	}
}

func (r *Room) handleSelectPlayer(msg SelectPlayer) {
	p, ok := r.state.PlayerByID(msg.PlayerID)
	if !ok {
		r.sendErr(msg.SessionID, engine.ErrPlayerNotFound)
		return
	}
	r.subs.Highlight(msg.PlayerID)
	highlighted := *p
	r.broadcast(types.ServerMessage{Type: types.MsgSelectedPlayer, Version: r.version, Player: &highlighted})
}

// fail reports err to the requester only; other sessions see nothing.
func (r *Room) fail(msg Do, err error) {
	r.sendErr(msg.SessionID, err)
	if msg.Reply != nil {
		msg.Reply <- err
	}
}

func (r *Room) sendErr(sessionID string, err error) {
	if sessionID == "" {
		return
	}
	r.sendTo(sessionID, types.ServerMessage{Type: types.MsgError, Error: err.Error()})
}

func (r *Room) sendTo(sessionID string, msg types.ServerMessage) {
	ch, ok := r.clients[sessionID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		// Slow or gone; drop the client rather than block the loop.
		close(ch)
		delete(r.clients, sessionID)
		r.subs.Unsubscribe(sessionID)
	}
}

func (r *Room) broadcast(msg types.ServerMessage) {
	for id, ch := range r.clients {
		select {
		case ch <- msg:
		default:
			close(ch)
			delete(r.clients, id)
			r.subs.Unsubscribe(id)
		}
	}
}
