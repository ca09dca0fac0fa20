package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	Port          string
	CoachPassword string
	Turso         TursoConfig
	PostgresURL   string
	Slack         SlackConfig
	ProjectID     string
	ProbeTimeout  time.Duration
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// SlackEnabled reports whether enough Slack settings are present to post messages.
func (c Config) SlackEnabled() bool {
	return c.Slack.Token != "" && c.Slack.ChannelID != ""
}
