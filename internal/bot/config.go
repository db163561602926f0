package bot

import (
	"time"
)

// Config represents the configuration for the bot
type Config struct {
	// Long polling timeout in seconds
	UpdateTimeout int

	// Upper bound for a single update, storage round trips included
	HandlerTimeout time.Duration

	// Dates per page of the stats keyboard, newest page first
	MaxStatsButtons    int
	StatsButtonsPerRow int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() Config {
	return Config{
		UpdateTimeout:      60,
		HandlerTimeout:     30 * time.Second,
		MaxStatsButtons:    30,
		StatsButtonsPerRow: 3,
	}
}
