package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/engine"
	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/room"
	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/store"
)

// SecretHeader carries the operator secret for the REST reset fallback.
const SecretHeader = "X-Auction-Secret"

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrPlayerNotFound),
		errors.Is(err, engine.ErrTeamNotFound),
		errors.Is(err, engine.ErrPlayerNotAssigned):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrPlayerAlreadySold),
		errors.Is(err, engine.ErrInsufficientBudget),
		errors.Is(err, engine.ErrInvalidPrice):
		return http.StatusBadRequest
	case errors.Is(err, room.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func view(rm *room.Room) room.View {
	reply := make(chan room.View, 1)
	rm.Inbox() <- room.GetView{Reply: reply}
	return <-reply
}

// do runs a command through the room with full validation and the same
// broadcast side effects as the websocket path.
func do(rm *room.Room, cmd engine.Command, secret string) error {
	reply := make(chan error, 1)
	rm.Inbox() <- room.Do{Cmd: cmd, Secret: secret, Reply: reply}
	return <-reply
}

func ListPlayers(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, view(rm).State.Players)
	}
}

func ListTeams(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, view(rm).State.Teams)
	}
}

func GetTeam(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid team id")
			return
		}
		v := view(rm)
		team, ok := v.State.TeamByID(id)
		if !ok {
			writeError(w, http.StatusNotFound, engine.ErrTeamNotFound.Error())
			return
		}
		writeJSON(w, http.StatusOK, team)
	}
}

type assignRequest struct {
	PlayerID     int64 `json:"playerId"`
	PurchasedFor int   `json:"purchasedFor"`
}

func AssignPlayer(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid team id")
			return
		}
		var req assignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		cmd := engine.Command{
			Type:     engine.CmdAssignPlayer,
			PlayerID: req.PlayerID,
			TeamID:   teamID,
			Price:    req.PurchasedFor,
		}
		if err := do(rm, cmd, ""); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		v := view(rm)
		team, _ := v.State.TeamByID(teamID)
		writeJSON(w, http.StatusOK, team)
	}
}

func RemovePlayer(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid team id")
			return
		}
		playerID, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid player id")
			return
		}
		cmd := engine.Command{Type: engine.CmdRemovePlayer, PlayerID: playerID}
		if err := do(rm, cmd, ""); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		v := view(rm)
		team, ok := v.State.TeamByID(teamID)
		if !ok {
			writeError(w, http.StatusNotFound, engine.ErrTeamNotFound.Error())
			return
		}
		writeJSON(w, http.StatusOK, team)
	}
}

func ResetTeams(rm *room.Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd := engine.Command{Type: engine.CmdResetAuction}
		if err := do(rm, cmd, r.Header.Get(SecretHeader)); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Teams have been reset!"})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
