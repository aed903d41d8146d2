package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wastetrack/internal/api"
	"wastetrack/internal/config"
	"wastetrack/internal/database"
	"wastetrack/internal/handlers"
	"wastetrack/internal/logger"
	"wastetrack/internal/server"
	"wastetrack/internal/session"
	"wastetrack/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(cfg.AppEnv, cfg.LogLevel)
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	var journal *database.Journal
	if cfg.DBDSN != "" {
		db, err := database.Open(cfg.DBDSN, log)
		if err != nil {
			log.Fatal().Err(err).Msg("connect audit database")
		}
		journal = database.NewJournal(db, log)
	} else {
		log.Info().Msg("DB_DSN is empty, audit journal disabled")
	}

	client := api.New(cfg.APIBaseURL, cfg.APITimeout, api.WithLoginPath(cfg.APILoginPath))

	r, err := server.NewRouter(cfg, handlers.Deps{
		API:       client,
		Sessions:  session.NewStore(client.Auth(), client.Users(), cfg.RestoreTimeout, log),
		Approvals: workflow.NewApprovals(client.Companies(), journal, log),
		Journal:   journal,
		Log:       log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build router")
	}

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Info().Str("addr", addr).Str("api", cfg.APIBaseURL).Msg("starting server")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
