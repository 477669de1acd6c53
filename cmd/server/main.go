package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/luminaed/atrium/internal/api"
	"github.com/luminaed/atrium/internal/config"
	"github.com/luminaed/atrium/internal/mail"
	"github.com/luminaed/atrium/internal/pkg/backoff"
	"github.com/luminaed/atrium/internal/pkg/distlock"
	"github.com/luminaed/atrium/internal/pkg/logger"
	"github.com/luminaed/atrium/internal/repository/postgres"
	"github.com/luminaed/atrium/internal/service/dispatch"
	"github.com/luminaed/atrium/internal/service/reconcile"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func main() {
	if err := run(); err != nil {
		logger.Error("fatal", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	applyLogging(cfg.Logging)

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			// Advisory locks cover the single-host case.
			logger.Warn("redis unreachable, falling back to postgres advisory locks",
				"addr", cfg.Redis.Addr, "error", err.Error())
			redisClient = nil
		}
	}

	sender, err := buildSender(cfg.Mail)
	if err != nil {
		return err
	}

	reconciler := reconcile.NewService(postgres.NewPersonRepo(db), postgres.NewOrgRepo(db))
	dispatcher := dispatch.NewService(
		postgres.NewCampaignRepo(db),
		postgres.NewRecipientRepo(db),
		sender,
		backoff.TimerSleeper{},
		func(campaignID string) distlock.Lock {
			return distlock.New(redisClient, db, "campaign:"+campaignID, 15*time.Minute)
		},
		cfg.Mail.From,
	)

	router := api.NewRouter(api.Handlers{
		Reports:   api.NewReportsHandler(reconciler),
		Campaigns: api.NewCampaignHandler(dispatcher),
		Meetings:  api.NewMeetingHandler(postgres.NewMeetingRepo(db)),
	}, cfg.Server.AllowedOrigins)

	srv := api.NewServer(cfg.Server, router)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func applyLogging(cfg config.LoggingConfig) {
	switch cfg.Level {
	case "debug":
		logger.SetLevel(logger.DEBUG)
	case "warn":
		logger.SetLevel(logger.WARN)
	case "error":
		logger.SetLevel(logger.ERROR)
	default:
		logger.SetLevel(logger.INFO)
	}
	logger.SetRedactPII(cfg.RedactPII)
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is not configured")
	}
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

func buildSender(cfg config.MailConfig) (mail.Sender, error) {
	switch cfg.Provider {
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend api key is not configured")
		}
		return mail.NewResendClient(cfg.ResendAPIKey), nil
	case "ses":
		return mail.NewSESClient(context.Background(), cfg.SESRegion, cfg.SESAccessKey, cfg.SESSecretKey)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
