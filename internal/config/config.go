package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    string
	SessionSecret string
	CookieSecure  bool

	APIBaseURL     string
	APILoginPath   string
	APITimeout     time.Duration
	RestoreTimeout time.Duration

	// пустой DSN — журнал решений отключён
	DBDSN string

	AppEnv   string
	LogLevel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:    os.Getenv("SERVER_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		APIBaseURL:    os.Getenv("API_BASE_URL"),
		APILoginPath:  os.Getenv("API_LOGIN_PATH"),
		DBDSN:         os.Getenv("DB_DSN"),
		AppEnv:        os.Getenv("APP_ENV"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is not set")
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:5000/api"
	}
	if cfg.APILoginPath == "" {
		cfg.APILoginPath = "/auth/token"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	var err error
	if cfg.APITimeout, err = duration("API_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RestoreTimeout, err = duration("RESTORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		cfg.CookieSecure, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("COOKIE_SECURE: %w", err)
		}
	}

	return cfg, nil
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
