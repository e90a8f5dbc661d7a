package main

import (
	"context"
	"log"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/voiceclone-ai/voice-clone-backend/config"
	"github.com/voiceclone-ai/voice-clone-backend/internal/auth"
	"github.com/voiceclone-ai/voice-clone-backend/internal/bootstrap"
	"github.com/voiceclone-ai/voice-clone-backend/internal/db"
	"github.com/voiceclone-ai/voice-clone-backend/internal/metrics"
	"github.com/voiceclone-ai/voice-clone-backend/internal/migrations"
	"github.com/voiceclone-ai/voice-clone-backend/internal/outbox"
	"github.com/voiceclone-ai/voice-clone-backend/internal/storage/object"
	"github.com/voiceclone-ai/voice-clone-backend/internal/synthesis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg.App.Environment)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	bootstrap.SetGinMode(cfg.App.Environment)
	ctx := context.Background()

	if err := migrations.Run(cfg.Database.DSN(), logger); err != nil {
		logger.Fatal("migrations", zap.Error(err))
	}

	database, err := db.Open(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer database.Close()

	objects, err := object.New(ctx, &cfg.Storage)
	if err != nil {
		logger.Fatal("init object storage", zap.Error(err))
	}

	if cfg.ElevenLabs.APIKey == "" {
		logger.Warn("ELEVENLABS_API_KEY is not set; speech generation requests will fail")
	}
	synth := synthesis.NewClient(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.VoiceID)

	var authClient *fbauth.Client
	if cfg.Firebase.CredentialsPath != "" {
		authClient, err = auth.InitializeFirebase(&cfg.Firebase)
		if err != nil {
			logger.Fatal("init firebase", zap.Error(err))
		}
	} else {
		logger.Warn("firebase credentials not configured; falling back to X-User-Id header auth")
	}

	m := metrics.New(prometheus.NewRegistry())

	sweeper := outbox.NewSweeper(outbox.NewRepo(database.Pool), objects, cfg.Storage.OrphanMaxAge, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every "+cfg.Storage.SweepInterval.String(), func() {
		if _, err := sweeper.Sweep(context.Background()); err != nil {
			logger.Warn("outbox sweep", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("schedule outbox sweep", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:     "voice-clone-backend",
		Version:         cfg.App.Version,
		DB:              database.Pool,
		AuthClient:      authClient,
		Objects:         objects,
		Synth:           synth,
		Metrics:         m,
		Log:             logger,
		SampleBucket:    cfg.Storage.SampleBucket,
		GeneratedBucket: cfg.Storage.GeneratedBucket,
		RatePerMinute:   cfg.Server.RatePerMinute,
		RateBurst:       cfg.Server.RateBurst,
	})

	logger.Info("listening", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
