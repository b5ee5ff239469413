package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	ListenAddr string

	RedisURL    string
	CacheTTLSec int

	SquareSize     int
	DelayCS        int
	FinalDelayCS   int
	LoopCount      int
	Coordinates    bool
	ThemeFile      string
	RenderWorkers  int
	MaxRequestPlys int
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:     ":8080",
		CacheTTLSec:    3600,
		SquareSize:     50,
		DelayCS:        62,
		FinalDelayCS:   500,
		MaxRequestPlys: 600,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.ThemeFile = strings.TrimSpace(os.Getenv("CHESSGIF_THEME_FILE"))

	if v := strings.TrimSpace(os.Getenv("CHESSGIF_CACHE_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESSGIF_SQUARE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SquareSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESSGIF_DELAY_CS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DelayCS = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESSGIF_FINAL_DELAY_CS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FinalDelayCS = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESSGIF_LOOP_COUNT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LoopCount = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESSGIF_COORDINATES")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Coordinates = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESSGIF_RENDER_WORKERS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RenderWorkers = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESSGIF_MAX_PLYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxRequestPlys = n
		}
	}

	if cfg.ListenAddr == "" {
		return nil, errors.New("LISTEN_ADDR is required")
	}
	return cfg, nil
}
