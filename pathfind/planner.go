package pathfind

import (
	"math"

	"wayfarer/nav/follower"
	"wayfarer/nav/geom"
	"wayfarer/nav/world"
)

// Planner answers shortest-path queries against a fixed grid. It satisfies
// the follower's path-oracle contract: an unreachable goal is reported as a
// path of infinite length, never as an error value.
//
// A Planner is immutable after construction and safe for concurrent queries.
type Planner struct {
	grid *Grid
}

// NewPlanner rasterizes the field and returns a planner over it. cellSize
// follows the same defaulting as NewGrid.
func NewPlanner(field *world.Field, cellSize float64) *Planner {
	return &Planner{grid: NewGrid(field, cellSize)}
}

// ShortestPath returns the geodesic path from start to goal, ignoring
// dynamic blockers.
func (p *Planner) ShortestPath(start, goal geom.Vec3) follower.Path {
	return p.ShortestPathAvoiding(start, goal, nil)
}

// ShortestPathAvoiding plans around both static obstacles and the given set
// of temporarily blocked cell indexes.
func (p *Planner) ShortestPathAvoiding(start, goal geom.Vec3, blocked map[int]struct{}) follower.Path {
	noPath := follower.Path{Length: math.Inf(1)}
	if p == nil || p.grid == nil {
		return noPath
	}
	g := p.grid

	startCol, startRow, ok := g.locate(start)
	if !ok {
		return noPath
	}
	goalCol, goalRow, ok := g.locate(goal)
	if !ok {
		return noPath
	}

	// The query position may sit inside an obstacle margin after a grazing
	// move; snap the start to the nearest open cell. The goal gets no such
	// forgiveness: an occluded goal is simply unreachable.
	if !g.isWalkable(startCol, startRow) || cellBlocked(blocked, g.index(startCol, startRow)) {
		sc, sr, ok := g.closestWalkable(startCol, startRow, blocked)
		if !ok {
			return noPath
		}
		startCol, startRow = sc, sr
	}
	if !g.isWalkable(goalCol, goalRow) || cellBlocked(blocked, g.index(goalCol, goalRow)) {
		return noPath
	}

	cells, ok := g.astar(gridPoint{col: startCol, row: startRow}, gridPoint{col: goalCol, row: goalRow}, blocked)
	if !ok || len(cells) == 0 {
		return noPath
	}

	waypoints := assembleWaypoints(g, cells, start, goal)
	return follower.Path{
		Waypoints: waypoints,
		Length:    polylineLength(waypoints),
	}
}

// ShortestPathNear plans to goal, and when the goal cell itself is blocked,
// retries against a ring of nearby alternatives. It returns the path, the
// goal actually used, and whether any plan succeeded.
func (p *Planner) ShortestPathNear(start, goal geom.Vec3, blocked map[int]struct{}) (follower.Path, geom.Vec3, bool) {
	path := p.ShortestPathAvoiding(start, goal, blocked)
	if !math.IsInf(path.Length, 1) {
		return path, goal, true
	}
	if p == nil || p.grid == nil {
		return path, goal, false
	}

	step := p.grid.cellSize
	offsets := []geom.Vec3{
		{X: step}, {X: -step}, {Z: step}, {Z: -step},
		{X: step, Z: step}, {X: step, Z: -step},
		{X: -step, Z: step}, {X: -step, Z: -step},
		{X: 2 * step}, {X: -2 * step}, {Z: 2 * step}, {Z: -2 * step},
	}

	margin := p.grid.radius
	bestScore := math.MaxFloat64
	var bestPath follower.Path
	var bestGoal geom.Vec3
	for _, offset := range offsets {
		alt := geom.Vec3{
			X: world.Clamp(goal.X+offset.X, margin, p.grid.width-margin),
			Z: world.Clamp(goal.Z+offset.Z, margin, p.grid.depth-margin),
		}
		if alt.Dist(goal) < step/2 {
			continue
		}
		candidate := p.ShortestPathAvoiding(start, alt, blocked)
		if math.IsInf(candidate.Length, 1) {
			continue
		}
		score := alt.Dist(goal) + candidate.Length
		if score < bestScore {
			bestScore = score
			bestGoal = alt
			bestPath = candidate
		}
	}
	if len(bestPath.Waypoints) == 0 {
		return follower.Path{Length: math.Inf(1)}, goal, false
	}
	return bestPath, bestGoal, true
}

// BlockersAround marks the walkable cells covered by other agents' discs,
// for planning queries that should route around live traffic. Returns nil
// when nothing is blocked.
func (p *Planner) BlockersAround(positions []geom.Vec3, radius float64) map[int]struct{} {
	if p == nil || p.grid == nil {
		return nil
	}
	g := p.grid
	blocked := make(map[int]struct{})
	for _, pos := range positions {
		minCol := int(math.Floor((pos.X - radius) / g.cellSize))
		maxCol := int(math.Ceil((pos.X + radius) / g.cellSize))
		minRow := int(math.Floor((pos.Z - radius) / g.cellSize))
		maxRow := int(math.Ceil((pos.Z + radius) / g.cellSize))
		for row := minRow; row <= maxRow; row++ {
			for col := minCol; col <= maxCol; col++ {
				if !g.inBounds(col, row) {
					continue
				}
				idx := g.index(col, row)
				if !g.walkable[idx] {
					continue
				}
				center := g.worldPos(col, row)
				if math.Hypot(center.X-pos.X, center.Z-pos.Z) <= radius {
					blocked[idx] = struct{}{}
				}
			}
		}
	}
	if len(blocked) == 0 {
		return nil
	}
	return blocked
}

func cellBlocked(blocked map[int]struct{}, idx int) bool {
	if blocked == nil {
		return false
	}
	_, exists := blocked[idx]
	return exists
}

// assembleWaypoints converts a cell path to world space. The exact start and
// goal positions bracket the interior cell centers so the polyline length
// reflects the true endpoints rather than their cell centers.
func assembleWaypoints(g *Grid, cells []gridPoint, start, goal geom.Vec3) []geom.Vec3 {
	waypoints := make([]geom.Vec3, 0, len(cells)+1)
	waypoints = append(waypoints, geom.Vec3{X: start.X, Z: start.Z})
	for i := 1; i < len(cells)-1; i++ {
		waypoints = append(waypoints, g.worldPos(cells[i].col, cells[i].row))
	}
	waypoints = append(waypoints, geom.Vec3{X: goal.X, Z: goal.Z})
	return waypoints
}

func polylineLength(waypoints []geom.Vec3) float64 {
	total := 0.0
	for i := 1; i < len(waypoints); i++ {
		total += waypoints[i].Dist(waypoints[i-1])
	}
	return total
}
