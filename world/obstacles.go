package world

import "fmt"

const (
	obstacleMinSize     = 1.5
	obstacleMaxSize     = 5.0
	obstacleSpawnMargin = 1.0

	spawnX          = 2.0
	spawnZ          = 2.0
	spawnSafeRadius = 2.5
)

// Obstacle is an axis-aligned blocking box on the XZ plane.
type Obstacle struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Z     float64 `json:"z"`
	Width float64 `json:"width"`
	Depth float64 `json:"depth"`
}

// GenerateObstacles scatters blocking boxes around the map, keeping the spawn
// region clear and rejecting overlaps.
func GenerateObstacles(cfg Config) []Obstacle {
	cfg = cfg.normalized()
	if !cfg.Obstacles || cfg.ObstacleCount <= 0 {
		return nil
	}

	rng := NewDeterministicRNG(cfg.Seed, "obstacles.base")
	obstacles := make([]Obstacle, 0, cfg.ObstacleCount)
	attempts := 0
	maxAttempts := cfg.ObstacleCount * 20

	for len(obstacles) < cfg.ObstacleCount && attempts < maxAttempts {
		attempts++

		width := obstacleMinSize + rng.Float64()*(obstacleMaxSize-obstacleMinSize)
		depth := obstacleMinSize + rng.Float64()*(obstacleMaxSize-obstacleMinSize)

		maxX := cfg.Width - obstacleSpawnMargin - width
		maxZ := cfg.Depth - obstacleSpawnMargin - depth
		if maxX <= obstacleSpawnMargin || maxZ <= obstacleSpawnMargin {
			break
		}

		candidate := Obstacle{
			ID:    fmt.Sprintf("obstacle-%d", len(obstacles)+1),
			X:     obstacleSpawnMargin + rng.Float64()*(maxX-obstacleSpawnMargin),
			Z:     obstacleSpawnMargin + rng.Float64()*(maxZ-obstacleSpawnMargin),
			Width: width,
			Depth: depth,
		}

		if CircleRectOverlap(spawnX, spawnZ, spawnSafeRadius, candidate) {
			continue
		}
		if overlapsAny(candidate, obstacles, cfg.AgentRadius) {
			continue
		}

		obstacles = append(obstacles, candidate)
	}

	return obstacles
}

func overlapsAny(candidate Obstacle, existing []Obstacle, padding float64) bool {
	for _, obs := range existing {
		if ObstaclesOverlap(candidate, obs, padding) {
			return true
		}
	}
	return false
}

// Clamp limits value to the range [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// CircleRectOverlap reports whether a circle on the XZ plane intersects an
// obstacle box.
func CircleRectOverlap(cx, cz, radius float64, obs Obstacle) bool {
	closestX := Clamp(cx, obs.X, obs.X+obs.Width)
	closestZ := Clamp(cz, obs.Z, obs.Z+obs.Depth)
	dx := cx - closestX
	dz := cz - closestZ
	return dx*dx+dz*dz < radius*radius
}

// ObstaclesOverlap checks for AABB overlap with optional padding.
func ObstaclesOverlap(a, b Obstacle, padding float64) bool {
	return a.X-padding < b.X+b.Width+padding &&
		a.X+a.Width+padding > b.X-padding &&
		a.Z-padding < b.Z+b.Depth+padding &&
		a.Z+a.Depth+padding > b.Z-padding
}
