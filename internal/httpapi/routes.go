package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/room"
	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/ws"
)

// SetupRoutes builds the router with the room injected. The REST mutations
// are fallbacks for non-websocket clients and share validation and broadcast
// side effects with the event channel.
func SetupRoutes(rm *room.Room, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(rm, log))

	r.Route("/api", func(r chi.Router) {
		r.Get("/players", ListPlayers(rm))
		r.Get("/teams", ListTeams(rm))
		r.Get("/teams/{id}", GetTeam(rm))
		r.Post("/teams/{id}/players", AssignPlayer(rm))
		r.Delete("/teams/{id}/players/{playerID}", RemovePlayer(rm))
		r.Post("/teams/reset", ResetTeams(rm))
	})
	return r
}
