package main

import (
	"context"
	"os"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, JSON: cfg.LogFormat == "json", Output: os.Stdout})
	log := logger.WithComponent("main")

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	deps := server.Deps{DB: db}

	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		deps.Redis = client
	} else {
		log.Warn().Msg("redis not configured: logout will not revoke tokens and recipe creation is not rate limited")
	}

	if cfg.S3Bucket != "" {
		s3Cfg, err := config.NewS3Config(context.Background(), cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure S3")
		}
		deps.Images = service.NewS3ImageStore(s3Cfg)
		log.Info().Str("bucket", s3Cfg.BucketName).Msg("storing recipe images in S3")
	}

	if err := server.NewServer(cfg, deps).Start(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}
