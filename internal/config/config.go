package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	SQLitePath  string
	DatabaseURL string // when set, the catalog lives in postgres
	Secret      string // operator secret required for resetTeams
}

// Load reads .env if present, then the environment. AUCTION_SECRET has no
// default: running a resettable auction without one is a misconfiguration.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:        envOr("ADDR", ":3000"),
		SQLitePath:  envOr("SQLITE_PATH", "auction.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Secret:      os.Getenv("AUCTION_SECRET"),
	}
	if cfg.Secret == "" {
		return Config{}, fmt.Errorf("AUCTION_SECRET must be set")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
