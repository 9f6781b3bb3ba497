package world

import (
	"math"

	"wayfarer/nav/geom"
)

// Field is an immutable obstacle layout plus world bounds. It answers the
// collision and clearance queries the navigation stack needs.
type Field struct {
	cfg       Config
	obstacles []Obstacle
}

// NewField generates a field from the config's seed and obstacle toggles.
func NewField(cfg Config) *Field {
	cfg = cfg.normalized()
	return &Field{
		cfg:       cfg,
		obstacles: GenerateObstacles(cfg),
	}
}

// NewFieldWithObstacles builds a field around a fixed obstacle layout. Used by
// tests and by callers that load layouts instead of generating them.
func NewFieldWithObstacles(cfg Config, obstacles []Obstacle) *Field {
	cfg = cfg.normalized()
	return &Field{
		cfg:       cfg,
		obstacles: append([]Obstacle(nil), obstacles...),
	}
}

// Config returns the normalized config the field was built from.
func (f *Field) Config() Config {
	if f == nil {
		return Config{}.normalized()
	}
	return f.cfg
}

// Obstacles returns a copy of the obstacle layout.
func (f *Field) Obstacles() []Obstacle {
	if f == nil {
		return nil
	}
	return append([]Obstacle(nil), f.obstacles...)
}

// Bounds returns the world extents on the XZ plane.
func (f *Field) Bounds() (width, depth float64) {
	cfg := f.Config()
	return cfg.Width, cfg.Depth
}

// AgentRadius returns the body radius used for collision checks.
func (f *Field) AgentRadius() float64 {
	return f.Config().AgentRadius
}

// SpawnPoint returns the obstacle-free position agents start from.
func (f *Field) SpawnPoint() geom.Vec3 {
	return geom.Vec3{X: spawnX, Z: spawnZ}
}

// Collides reports whether a body of the given radius at p overlaps an
// obstacle or leaves the world bounds.
func (f *Field) Collides(p geom.Vec3, radius float64) bool {
	if f == nil {
		return true
	}
	width, depth := f.Bounds()
	if p.X < radius || p.X > width-radius || p.Z < radius || p.Z > depth-radius {
		return true
	}
	for _, obs := range f.obstacles {
		if CircleRectOverlap(p.X, p.Z, radius, obs) {
			return true
		}
	}
	return false
}

// NearestObstacleDistance returns the distance from p to the closest obstacle
// surface or world boundary. A point inside an obstacle reports zero.
func (f *Field) NearestObstacleDistance(p geom.Vec3) float64 {
	if f == nil {
		return 0
	}
	width, depth := f.Bounds()
	best := math.Min(
		math.Min(p.X, width-p.X),
		math.Min(p.Z, depth-p.Z),
	)
	if best < 0 {
		best = 0
	}
	for _, obs := range f.obstacles {
		if dist := pointBoxDistance(p.X, p.Z, obs); dist < best {
			best = dist
		}
	}
	return best
}

func pointBoxDistance(px, pz float64, obs Obstacle) float64 {
	dx := math.Max(math.Max(obs.X-px, 0), px-(obs.X+obs.Width))
	dz := math.Max(math.Max(obs.Z-pz, 0), pz-(obs.Z+obs.Depth))
	return math.Hypot(dx, dz)
}
