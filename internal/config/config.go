package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	ListenAddr string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	WhiteModel    string
	BlackModel    string

	RedisURL    string
	DatabaseURL string

	MaxTurns      int
	MaxToolRounds int
	SessionTTLSec int

	PromptDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:    ":8080",
		WhiteModel:    "gpt-4o-mini",
		BlackModel:    "gpt-4o-mini",
		MaxTurns:      60,
		MaxToolRounds: 8,
		SessionTTLSec: 3600,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}

	cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.OpenAIBaseURL = strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if v := strings.TrimSpace(os.Getenv("WHITE_MODEL")); v != "" {
		cfg.WhiteModel = v
	}
	if v := strings.TrimSpace(os.Getenv("BLACK_MODEL")); v != "" {
		cfg.BlackModel = v
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("MAX_TURNS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTurns = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_TOOL_ROUNDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxToolRounds = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTLSec = n
		}
	}

	cfg.PromptDir = strings.TrimSpace(os.Getenv("PROMPT_DIR"))

	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}

	return cfg, nil
}
