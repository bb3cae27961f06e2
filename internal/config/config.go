package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup from the environment, with a .env file
// honored when present.
type Config struct {
	Port        int
	RoomLimit   int           // LRU capacity bound on the registry
	RoomTTL     time.Duration // how long an empty room survives before GC
	GCInterval  time.Duration // sweep period
	FeedbackDSN string        // empty disables the external feedback sink
	LogLevel    string
}

func Load() Config {
	// Missing .env is the normal case in production.
	_ = godotenv.Load()

	return Config{
		Port:        envInt("PORT", 8080),
		RoomLimit:   envInt("ROOM_LIMIT", 500),
		RoomTTL:     time.Duration(envInt("ROOM_TTL_MS", 120_000)) * time.Millisecond,
		GCInterval:  time.Duration(envInt("ROOM_GC_INTERVAL_MS", 10_000)) * time.Millisecond,
		FeedbackDSN: os.Getenv("FEEDBACK_DB_DSN"),
		LogLevel:    envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
