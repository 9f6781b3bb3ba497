package world

import "strings"

const (
	DefaultSeed        = "prototype"
	DefaultWidth       = 40.0
	DefaultDepth       = 30.0
	DefaultAgentRadius = 0.35
)

// Config captures the toggles used when generating a world.
type Config struct {
	Obstacles     bool    `json:"obstacles"`
	ObstacleCount int     `json:"obstacleCount"`
	Seed          string  `json:"seed"`
	Width         float64 `json:"width"`
	Depth         float64 `json:"depth"`
	AgentRadius   float64 `json:"agentRadius"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	if normalized.ObstacleCount < 0 {
		normalized.ObstacleCount = 0
	}
	if normalized.Width <= 0 {
		normalized.Width = DefaultWidth
	}
	if normalized.Depth <= 0 {
		normalized.Depth = DefaultDepth
	}
	if normalized.AgentRadius <= 0 {
		normalized.AgentRadius = DefaultAgentRadius
	}
	return normalized
}

// Normalized returns a config with defaults applied.
func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

// DefaultConfig enables obstacle generation with the default seed.
func DefaultConfig() Config {
	return Config{
		Obstacles:     true,
		ObstacleCount: 12,
		Seed:          DefaultSeed,
		Width:         DefaultWidth,
		Depth:         DefaultDepth,
		AgentRadius:   DefaultAgentRadius,
	}
}
