package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default set of tracked Steam app ids: a mix of high-traffic titles used to
// seed the leaderboard when STEAM_APP_IDS is not configured.
var defaultAppIDs = []int{
	730,     // Counter-Strike 2
	570,     // Dota 2
	578080,  // PUBG
	1172470, // Apex Legends
	271590,  // GTA V
	1086940, // Baldur's Gate 3
	892970,  // Valheim
	739630,  // Phasmophobia
	413150,  // Stardew Valley
	105600,  // Terraria
}

// Config holds all configuration values for the application.
type Config struct {
	Port           string
	AllowedOrigins []string
	Environment    string
	LogLevel       string

	SteamAppIDs []int

	DatabaseURL string
	RedisURL    string

	ClerkPEMPublicKey      string
	ClerkAuthorizedParties []string

	// Standard limiter applied to every /api route.
	RateLimitWindow time.Duration
	RateLimitMax    int
	// Stricter limiter applied to the Steam proxy routes.
	SteamRateLimitWindow time.Duration
	SteamRateLimitMax    int
}

// Load reads configuration from environment variables, loading .env first if
// one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	appIDs, err := parseAppIDs(getEnv("STEAM_APP_IDS", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid STEAM_APP_IDS: %w", err)
	}
	if len(appIDs) == 0 {
		appIDs = defaultAppIDs
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		Environment:    getEnv("ENVIRONMENT", "production"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		SteamAppIDs: appIDs,

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		ClerkPEMPublicKey:      getEnv("CLERK_PEM_PUBLIC_KEY", ""),
		ClerkAuthorizedParties: parseList(getEnv("CLERK_AUTHORIZED_PARTIES", "")),

		RateLimitWindow:      getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitMax:         getIntEnv("RATE_LIMIT_MAX", 100),
		SteamRateLimitWindow: getDurationEnv("STEAM_RATE_LIMIT_WINDOW", time.Minute),
		SteamRateLimitMax:    getIntEnv("STEAM_RATE_LIMIT_MAX", 30),
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// parseList splits a comma-separated value, trimming whitespace and dropping
// empty parts.
func parseList(raw string) []string {
	if raw == "" {
		return []string{}
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// parseAppIDs parses a comma-separated list of Steam app ids.
func parseAppIDs(raw string) ([]int, error) {
	ids := make([]int, 0)
	for _, part := range parseList(raw) {
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("app id %q is not a number", part)
		}
		if id <= 0 {
			return nil, fmt.Errorf("app id %d is not positive", id)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
