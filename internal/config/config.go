package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds everything the server reads from the environment. Secrets have
// no baked-in defaults; missing required values fail startup.
type Config struct {
	Port       string
	CORSOrigin string

	DatabaseURL   string
	DBMaxOpen     int
	DBMaxIdle     int
	DBMaxLifetime time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	YelpAPIKey string
	MapsAPIKey string

	UploadDir     string
	MaxUploadSize int64
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:          getenv("PORT", "4000"),
		CORSOrigin:    getenv("CORS_ORIGIN", "*"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBMaxOpen:     getenvInt("DB_MAX_OPEN", 25),
		DBMaxIdle:     getenvInt("DB_MAX_IDLE", 25),
		DBMaxLifetime: time.Duration(getenvInt("DB_MAX_LIFETIME", 300)) * time.Second,
		JWTSecret:     os.Getenv("JWT_SECRET"),
		YelpAPIKey:    os.Getenv("YELP_API_KEY"),
		MapsAPIKey:    os.Getenv("MAPS_API_KEY"),
		UploadDir:     getenv("UPLOAD_DIR", "uploads"),
		MaxUploadSize: int64(getenvInt("MAX_UPLOAD_MB", 5)) << 20,
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("config: DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET is required")
	}

	ttl, err := time.ParseDuration(getenv("JWT_TTL", "168h"))
	if err != nil {
		return nil, errors.New("config: JWT_TTL must be a duration such as 168h")
	}
	cfg.JWTTTL = ttl

	return cfg, nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
