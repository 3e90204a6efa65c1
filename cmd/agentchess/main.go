package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/parkgb/agentchess/internal/agents"
	"github.com/parkgb/agentchess/internal/archive"
	appcfg "github.com/parkgb/agentchess/internal/config"
	"github.com/parkgb/agentchess/internal/httpapi"
	"github.com/parkgb/agentchess/internal/obslog"
	"github.com/parkgb/agentchess/internal/prompts"
	"github.com/parkgb/agentchess/internal/render"
	"github.com/parkgb/agentchess/internal/session"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()

	store, err := buildStore(cfg)
	if err != nil {
		logger.Fatal("session store init failed", zap.Error(err))
	}
	sessions, err := session.NewManager(store, logger.Named("session"))
	if err != nil {
		logger.Fatal("session manager init failed", zap.Error(err))
	}

	repo, err := buildArchive(cfg)
	if err != nil {
		logger.Fatal("archive init failed", zap.Error(err))
	}
	defer repo.Close()

	catalog, err := prompts.New(cfg.PromptDir)
	if err != nil {
		logger.Fatal("prompt catalog init failed", zap.Error(err))
	}

	white, err := agents.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.WhiteModel)
	if err != nil {
		logger.Fatal("white player init failed", zap.Error(err))
	}
	black, err := agents.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.BlackModel)
	if err != nil {
		logger.Fatal("black player init failed", zap.Error(err))
	}

	matchCfg := agents.MatchConfig{
		MaxTurns:      cfg.MaxTurns,
		MaxToolRounds: cfg.MaxToolRounds,
	}
	matchLogger := logger.Named("match")
	factory := func() (httpapi.MatchRunner, error) {
		return agents.NewMatch(sessions, catalog, white, black, matchCfg, matchLogger)
	}

	srv, err := httpapi.NewServer(sessions, render.NewBoardRenderer(), repo, factory, httpapi.Config{
		WhiteModel: cfg.WhiteModel,
		BlackModel: cfg.BlackModel,
	}, logger.Named("http"))
	if err != nil {
		logger.Fatal("server init failed", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(cfg.ListenAddr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		if err := srv.Shutdown(); err != nil {
			logger.Warn("shutdown error", zap.Error(err))
		}
	case err := <-errCh:
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func buildStore(cfg *appcfg.AppConfig) (session.Store, error) {
	if cfg.RedisURL == "" {
		return session.NewMemoryStore(), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	ttl := time.Duration(cfg.SessionTTLSec) * time.Second
	return session.NewRedisStore(rdb, ttl), nil
}

func buildArchive(cfg *appcfg.AppConfig) (archive.Repository, error) {
	if cfg.DatabaseURL == "" {
		return archive.NewMemoryRepository(), nil
	}
	return archive.NewPostgresRepository(cfg.DatabaseURL)
}
