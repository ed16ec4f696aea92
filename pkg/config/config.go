// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds everything the HTTP service needs to start.
type AppConfig struct {
	Addr string

	ListingsTable  string
	PlayersTable   string
	InventoryTable string
	TradesTable    string
	QuotaTable     string
	CardsTable     string

	ReconcileQueueURL string

	LockTTL          time.Duration
	LegendaryCap     int64
	RateFeedURL      string
	FallbackCoinRate string
}

// LoadFromEnv reads the app configuration from environment variables.
// The six DynamoDB table names are required; everything else has a default.
func LoadFromEnv() (AppConfig, error) {
	addr := envDefault("HTTP_PORT", "8080")
	if !strings.HasPrefix(addr, ":") {
		addr = ":" + addr
	}

	cfg := AppConfig{
		Addr:              addr,
		ListingsTable:     os.Getenv("DYNAMODB_LISTINGS_TABLE_NAME"),
		PlayersTable:      os.Getenv("DYNAMODB_PLAYERS_TABLE_NAME"),
		InventoryTable:    os.Getenv("DYNAMODB_INVENTORY_TABLE_NAME"),
		TradesTable:       os.Getenv("DYNAMODB_TRADES_TABLE_NAME"),
		QuotaTable:        os.Getenv("DYNAMODB_QUOTA_TABLE_NAME"),
		CardsTable:        os.Getenv("DYNAMODB_CARDS_TABLE_NAME"),
		ReconcileQueueURL: os.Getenv("SQS_RECONCILE_QUEUE_URL"),
		LockTTL:           envDurationDefault("MARKET_LOCK_TTL", 30*time.Second),
		LegendaryCap:      envInt64Default("LEGENDARY_DAILY_CAP", 100),
		RateFeedURL:       os.Getenv("COIN_RATE_FEED_URL"),
		FallbackCoinRate:  envDefault("COIN_RATE_FALLBACK", "1.40"),
	}

	for name, v := range map[string]string{
		"DYNAMODB_LISTINGS_TABLE_NAME":  cfg.ListingsTable,
		"DYNAMODB_PLAYERS_TABLE_NAME":   cfg.PlayersTable,
		"DYNAMODB_INVENTORY_TABLE_NAME": cfg.InventoryTable,
		"DYNAMODB_TRADES_TABLE_NAME":    cfg.TradesTable,
		"DYNAMODB_QUOTA_TABLE_NAME":     cfg.QuotaTable,
		"DYNAMODB_CARDS_TABLE_NAME":     cfg.CardsTable,
	} {
		if v == "" {
			return cfg, fmt.Errorf("%s is required", name)
		}
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
