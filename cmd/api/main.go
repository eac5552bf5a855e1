package main

import (
	"context"
	"os"
	"time"

	"upick/internal/config"
	"upick/internal/handler"
	"upick/internal/logger"
	"upick/internal/places"
	"upick/internal/repository"
	"upick/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//	@title			U-Pick API
//	@version		1.0
//	@description	Picks one random open restaurant near you.
//	@BasePath		/

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	logger.Setup(config.LogLevel, false, os.Stderr)

	if config.PlacesAPIKey == "" {
		log.Warn().Msg("PLACES_API_KEY is not set; every pick will fail")
	}

	// Session storage
	var repo service.SessionRepository
	if config.DBSource == "" {
		log.Warn().Msg("DB_SOURCE is not set; sessions are kept in memory")
		repo = repository.NewMemoryRepository()
	} else {
		conn, err := pgxpool.New(context.Background(), config.DBSource)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to db")
		}
		defer conn.Close()

		pg := repository.NewRepository(conn)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("cannot create schema")
		}
		repo = pg
	}

	// Initialize layers
	search := places.NewClient(places.Options{
		Endpoint: config.PlacesEndpoint,
		APIKey:   config.PlacesAPIKey,
		Radius:   config.PlacesRadius,
		Limit:    config.PlacesLimit,
		Timeout:  config.PlacesTimeout,
	})

	// A pick that outlives the search timeout by this margin was lost and may be retried.
	pickService := service.NewPickService(repo, search, service.WithStaleAfter(config.PlacesTimeout+5*time.Second))

	sessionHandler := handler.NewSessionHandler(pickService)
	pickHandler := handler.NewPickHandler(pickService)

	r := handler.NewRouter(sessionHandler, pickHandler)

	log.Info().Str("addr", config.ServerAddress).Msg("starting server")
	if err := r.Run(config.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
