package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"chess-bot/config"
	"chess-bot/engine"
	"chess-bot/logging"
	"chess-bot/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load-config")
	}
	if err := logging.Setup(cfg.Logs); err != nil {
		log.Fatal().Err(err).Msg("setup-logging")
	}

	srv := server.New(engine.New(cfg.Engine.Options()), cfg.Engine.Budget())
	router := server.NewRouter(srv, cfg.Server)

	log.Info().Str("addr", cfg.Server.Addr).Msg("listening")
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Error().Err(err).Msg("server-stopped")
		os.Exit(1)
	}
}
