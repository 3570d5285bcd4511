package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/config"
	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/engine"
	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/httpapi"
	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/room"
	"github.com/Yogeshwar-CM/IPL-Auction-Simulator/internal/store"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}
	defer st.Close()

	players, teams, err := st.Load(ctx)
	if err != nil {
		log.Fatal("load catalog", zap.Error(err))
	}
	state := engine.NewState(players, teams)
	if err := engine.CheckInvariants(state); err != nil {
		log.Fatal("catalog state is inconsistent", zap.Error(err))
	}
	log.Info("catalog loaded", zap.Int("players", len(players)), zap.Int("teams", len(teams)))

	rm := room.New(ctx, state, st, cfg.Secret, log)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(rm, log),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		rm.Inbox() <- room.Shutdown{}
	}()

	log.Info("listening", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server", zap.Error(err))
	}
	log.Info("server closed")
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		return store.OpenPostgres(cfg.DatabaseURL)
	}
	return store.OpenSQLite(ctx, cfg.SQLitePath)
}
