// cmd/migrate/main.go: aplica o revierte las migraciones embebidas.
// Uso: go run ./cmd/migrate  |  go run ./cmd/migrate -down 1
package main

import (
	"flag"
	"os"
	"time"

	"github.com/careguardpe-bit/careguard-backend/internal/config"
	"github.com/careguardpe-bit/careguard-backend/internal/infra"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	down := flag.Int("down", 0, "number of migrations to roll back")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if *down > 0 {
		if err := infra.RollbackMigrations(cfg.DatabaseURL, *down); err != nil {
			log.Fatal().Err(err).Msg("rollback failed")
		}
		return
	}
	if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
}
