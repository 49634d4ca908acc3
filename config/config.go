package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendNone     = "none"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Addr         string
	JWTSecret    string
	TokenTTL     time.Duration
	CORSOrigin   string
	SeedPath     string
	SaveInterval time.Duration
	LogLevel     string
	// Snapshot export
	SnapshotBackend string
	DatabaseURL     string
	RedisURL        string
	SnapshotTTL     time.Duration
}

// Load reads .env when present, then the process environment. The returned
// error only reports that no .env file was read; the Config is always usable.
func Load() (Config, error) {
	return LoadFrom()
}

// LoadFrom is Load with explicit dotenv files. Variables already set in the
// process win over the files.
func LoadFrom(files ...string) (Config, error) {
	err := godotenv.Load(files...)
	return FromEnv(), err
}

func FromEnv() Config {
	return Config{
		Addr:            getenv("API_ADDR", ":8080"),
		JWTSecret:       getenv("RESUME_JWT_SECRET", "resumebuilder-dev-secret"),
		TokenTTL:        getenvDuration("RESUME_TOKEN_TTL_SECONDS", 24*time.Hour),
		CORSOrigin:      getenv("RESUME_CORS_ORIGIN", "*"),
		SeedPath:        getenv("RESUME_SEED_PATH", ""),
		SaveInterval:    getenvDuration("RESUME_SAVE_INTERVAL_SECONDS", 10*time.Second),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		SnapshotBackend: strings.ToLower(getenv("SNAPSHOT_BACKEND", BackendNone)),
		DatabaseURL:     getenv("DATABASE_URL", ""),
		RedisURL:        getenv("REDIS_URL", "redis://localhost:6379/0"),
		SnapshotTTL:     getenvDuration("SNAPSHOT_TTL_SECONDS", 24*time.Hour),
	}
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getenvDuration reads a whole number of seconds.
func getenvDuration(key string, fallback time.Duration) time.Duration {
	secs := getenvInt(key, -1)
	if secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
