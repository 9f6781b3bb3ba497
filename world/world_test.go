package world

import (
	"math"
	"testing"

	"wayfarer/nav/geom"
)

func TestGenerateObstaclesDeterministicForSeed(t *testing.T) {
	cfg := DefaultConfig()
	first := GenerateObstacles(cfg)
	second := GenerateObstacles(cfg)

	if len(first) == 0 {
		t.Fatal("expected obstacles for the default config, got none")
	}
	if len(first) != len(second) {
		t.Fatalf("expected identical layouts, got %d vs %d obstacles", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("obstacle %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGenerateObstaclesRespectsSpawnSafeRegion(t *testing.T) {
	cfg := DefaultConfig()
	for _, obs := range GenerateObstacles(cfg) {
		if CircleRectOverlap(spawnX, spawnZ, spawnSafeRadius, obs) {
			t.Fatalf("obstacle %s intrudes on the spawn region: %+v", obs.ID, obs)
		}
	}
}

func TestGenerateObstaclesDisabledReturnsNil(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Obstacles = false
	if obs := GenerateObstacles(cfg); obs != nil {
		t.Fatalf("expected nil layout with obstacles disabled, got %d", len(obs))
	}
}

func TestFieldCollidesAgainstObstacleAndBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Obstacles = false
	field := NewFieldWithObstacles(cfg, []Obstacle{
		{ID: "wall", X: 10, Z: 10, Width: 4, Depth: 2},
	})

	cases := []struct {
		name   string
		point  geom.Vec3
		radius float64
		want   bool
	}{
		{name: "open space", point: geom.Vec3{X: 5, Z: 5}, radius: 0.35, want: false},
		{name: "inside obstacle", point: geom.Vec3{X: 12, Z: 11}, radius: 0.35, want: true},
		{name: "grazing obstacle", point: geom.Vec3{X: 9.8, Z: 11}, radius: 0.35, want: true},
		{name: "outside bounds", point: geom.Vec3{X: -1, Z: 5}, radius: 0.35, want: true},
		{name: "hugging boundary", point: geom.Vec3{X: 0.2, Z: 5}, radius: 0.35, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := field.Collides(tc.point, tc.radius); got != tc.want {
				t.Fatalf("Collides(%+v, %.2f) = %v, want %v", tc.point, tc.radius, got, tc.want)
			}
		})
	}
}

func TestFieldNearestObstacleDistance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Obstacles = false
	field := NewFieldWithObstacles(cfg, []Obstacle{
		{ID: "wall", X: 10, Z: 10, Width: 4, Depth: 2},
	})

	// Point left of the box: distance to the box face.
	got := field.NearestObstacleDistance(geom.Vec3{X: 7, Z: 11})
	if math.Abs(got-3) > 1e-9 {
		t.Fatalf("expected clearance 3 next to the wall, got %f", got)
	}

	// Inside the box: zero clearance.
	if got := field.NearestObstacleDistance(geom.Vec3{X: 11, Z: 11}); got != 0 {
		t.Fatalf("expected zero clearance inside the wall, got %f", got)
	}

	// Near the boundary the world edge dominates.
	got = field.NearestObstacleDistance(geom.Vec3{X: 0.5, Z: 15})
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("expected boundary clearance 0.5, got %f", got)
	}
}

func TestConfigNormalizedAppliesDefaults(t *testing.T) {
	cfg := Config{Seed: "  ", ObstacleCount: -3}.Normalized()
	if cfg.Seed != DefaultSeed {
		t.Fatalf("expected default seed, got %q", cfg.Seed)
	}
	if cfg.ObstacleCount != 0 {
		t.Fatalf("expected negative count clamped to zero, got %d", cfg.ObstacleCount)
	}
	if cfg.Width != DefaultWidth || cfg.Depth != DefaultDepth {
		t.Fatalf("expected default dimensions, got %fx%f", cfg.Width, cfg.Depth)
	}
	if cfg.AgentRadius != DefaultAgentRadius {
		t.Fatalf("expected default agent radius, got %f", cfg.AgentRadius)
	}
}

func TestDeterministicSeedValueStableAndLabelled(t *testing.T) {
	a := DeterministicSeedValue("seed", "obstacles.base")
	b := DeterministicSeedValue("seed", "obstacles.base")
	c := DeterministicSeedValue("seed", "other")
	if a != b {
		t.Fatalf("same seed and label produced different values: %d vs %d", a, b)
	}
	if a == c {
		t.Fatal("different labels produced the same seed value")
	}
}
