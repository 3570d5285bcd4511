package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/engine"
	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/room"
	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	readTimeout  = 5 * time.Minute
)

// Handler upgrades the request and bridges the connection to the room: a
// writer goroutine drains the session outbox while the read loop turns
// client events into room messages.
func Handler(rm *room.Room, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			log.Warn("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		sessionID := uuid.NewString()
		out := make(chan types.ServerMessage, 16)

		rm.Inbox() <- room.Join{SessionID: sessionID, Outbox: out}
		defer func() { rm.Inbox() <- room.Leave{SessionID: sessionID} }()

		log.Info("session connected", zap.String("session", sessionID))

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("session read ended", zap.String("session", sessionID), zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			if !dispatch(rm, sessionID, cm) {
				writeError(r.Context(), conn, "unknown type")
			}
		}
	}
}

// dispatch maps a client event onto a room message. Returns false for an
// unrecognized event type.
func dispatch(rm *room.Room, sessionID string, cm types.ClientMessage) bool {
	switch cm.Type {
	case types.MsgSelectTeam:
		rm.Inbox() <- room.SelectTeam{SessionID: sessionID, TeamID: cm.TeamID}
	case types.MsgSelectPlayer:
		rm.Inbox() <- room.SelectPlayer{SessionID: sessionID, PlayerID: cm.PlayerID}
	case types.MsgAssignPlayer:
		rm.Inbox() <- room.Do{SessionID: sessionID, Cmd: engine.Command{
			Type:     engine.CmdAssignPlayer,
			PlayerID: cm.PlayerID,
			TeamID:   cm.TeamID,
			Price:    cm.PurchasedFor,
		}}
	case types.MsgRemovePlayer:
		rm.Inbox() <- room.Do{SessionID: sessionID, Cmd: engine.Command{
			Type:     engine.CmdRemovePlayer,
			PlayerID: cm.PlayerID,
		}}
	case types.MsgResetTeams:
		rm.Inbox() <- room.Do{SessionID: sessionID, Secret: cm.Secret, Cmd: engine.Command{
			Type: engine.CmdResetAuction,
		}}
	default:
		return false
	}
	return true
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: types.MsgError, Error: msg})
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
