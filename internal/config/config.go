// Package config collects server settings from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// DBPath is the SQLite database file path.
	DBPath string

	// CacheDir holds the freshness-windowed JSON cache entries.
	CacheDir string

	// AvatarDir holds uploaded avatar images, served at /avatars/.
	AvatarDir string

	// PublicBaseURL prefixes returned avatar URLs, e.g.
	// "https://api.example.com". Empty means relative URLs.
	PublicBaseURL string

	// JWTSecret signs session tokens. Required.
	JWTSecret string

	// TokenDuration is how long session tokens stay valid.
	TokenDuration time.Duration

	// DirectionsURL and PlacesURL point at the external mapping APIs.
	DirectionsURL string
	PlacesURL     string
	MapsAPIKey    string

	// JourneyInterval is the route recompute period while a journey is
	// active.
	JourneyInterval time.Duration
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:            ":" + getEnv("PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "./data/convoy.db"),
		CacheDir:        getEnv("CACHE_DIR", "./data/cache"),
		AvatarDir:       getEnv("AVATAR_DIR", "./data/avatars"),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", ""),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		DirectionsURL:   getEnv("DIRECTIONS_URL", "https://maps.googleapis.com/maps/api/directions/json"),
		PlacesURL:       getEnv("PLACES_URL", "https://maps.googleapis.com/maps/api/place"),
		MapsAPIKey:      os.Getenv("MAPS_API_KEY"),
		TokenDuration:   24 * time.Hour,
		JourneyInterval: 10 * time.Second,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if hours := os.Getenv("TOKEN_HOURS"); hours != "" {
		n, err := strconv.Atoi(hours)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid TOKEN_HOURS %q", hours)
		}
		cfg.TokenDuration = time.Duration(n) * time.Hour
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
