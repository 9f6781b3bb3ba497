package follower

import (
	"wayfarer/nav/geom"
	"wayfarer/nav/scene"
)

// Path is a geodesic shortest path as reported by the oracle: the waypoints
// from start to goal and the total traversable length. Length is +Inf when no
// path connects the endpoints.
type Path struct {
	Waypoints []geom.Vec3
	Length    float64
}

// PathOracle answers geodesic shortest-path queries through navigable space.
// The follower never computes paths itself.
type PathOracle interface {
	ShortestPath(start, goal geom.Vec3) Path
}

// ObstacleSource answers nearest-obstacle clearance queries for a position.
type ObstacleSource interface {
	NearestObstacleDistance(p geom.Vec3) float64
}

// MoveFn applies one movement primitive to a pose-bearing node and reports
// whether the step collided. The follower only ever invokes these against its
// own disposable proxies; the caller applies them to the live agent.
type MoveFn func(*scene.Node) bool

// SixDofPose is the follower's pose encoding: a unit-quaternion orientation
// plus a world-space position.
type SixDofPose struct {
	Rotation    geom.Quat
	Translation geom.Vec3
}
