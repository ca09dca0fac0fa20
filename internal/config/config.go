package config

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const defaultProbeTimeout = 5 * time.Second

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return ""
	}

	cfg := Config{
		DBName:        getEnvDefault("DB_NAME", "courtside.db"),
		Port:          getEnv("PORT"),
		CoachPassword: getEnv("COACH_PASSWORD"),
		Turso: TursoConfig{
			PrimaryURL: os.Getenv("TURSO_PRIMARY_URL"),
			AuthToken:  os.Getenv("TURSO_AUTH_TOKEN"),
		},
		PostgresURL: os.Getenv("DATABASE_URL"),
		Slack: SlackConfig{
			Token:     os.Getenv("SLACK_BOT_TOKEN"),
			ChannelID: os.Getenv("SLACK_CHANNEL_ID"),
		},
		ProjectID:    os.Getenv("GCP_PROJECT"),
		ProbeTimeout: parseDuration(os.Getenv("PROBE_TIMEOUT"), defaultProbeTimeout),
	}
	return cfg
}

func getEnvDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warn("Invalid duration, using default", "value", raw, "default", fallback)
		return fallback
	}
	return d
}
