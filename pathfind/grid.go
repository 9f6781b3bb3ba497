// Package pathfind plans shortest paths over a rasterized walkability grid.
// It provides the geodesic-distance oracle the follower package consumes:
// obstacles and field bounds are baked into a cell grid at construction, and
// queries run 8-connected A* with an octile heuristic over it.
package pathfind

import (
	"math"

	"wayfarer/nav/geom"
	"wayfarer/nav/world"
)

// DefaultCellSize is the grid resolution in world units. Half a meter keeps
// the rasterization comfortably below the default forward step.
const DefaultCellSize = 0.5

type gridNeighbor struct {
	col      int
	row      int
	cost     float64
	diagonal bool
}

var gridNeighborOffsets = [...]gridNeighbor{
	{col: 0, row: -1, cost: 1, diagonal: false},
	{col: 1, row: 0, cost: 1, diagonal: false},
	{col: 0, row: 1, cost: 1, diagonal: false},
	{col: -1, row: 0, cost: 1, diagonal: false},
	{col: 1, row: -1, cost: math.Sqrt2, diagonal: true},
	{col: 1, row: 1, cost: math.Sqrt2, diagonal: true},
	{col: -1, row: 1, cost: math.Sqrt2, diagonal: true},
	{col: -1, row: -1, cost: math.Sqrt2, diagonal: true},
}

// Grid is the rasterized walkability mask of a field. Columns run along the
// X axis, rows along Z. A cell is walkable when an agent disc centered on the
// cell center fits without touching an obstacle or the field boundary.
type Grid struct {
	cols, rows int
	cellSize   float64
	walkable   []bool
	width      float64
	depth      float64
	radius     float64
}

// NewGrid rasterizes the field at the given resolution. A non-positive
// cellSize falls back to DefaultCellSize.
func NewGrid(field *world.Field, cellSize float64) *Grid {
	if field == nil {
		return nil
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	width, depth := field.Bounds()
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(depth / cellSize))
	if cols <= 0 {
		cols = 1
	}
	if rows <= 0 {
		rows = 1
	}
	grid := &Grid{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		walkable: make([]bool, cols*rows),
		width:    width,
		depth:    depth,
		radius:   field.AgentRadius(),
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			center := grid.worldPos(col, row)
			if !field.Collides(center, grid.radius) {
				grid.walkable[row*cols+col] = true
			}
		}
	}

	return grid
}

func (g *Grid) inBounds(col, row int) bool {
	return g != nil && col >= 0 && row >= 0 && col < g.cols && row < g.rows
}

func (g *Grid) index(col, row int) int {
	return row*g.cols + col
}

func (g *Grid) isWalkable(col, row int) bool {
	if !g.inBounds(col, row) {
		return false
	}
	return g.walkable[g.index(col, row)]
}

// worldPos returns the world-space center of a cell on the ground plane.
func (g *Grid) worldPos(col, row int) geom.Vec3 {
	return geom.Vec3{
		X: (float64(col) + 0.5) * g.cellSize,
		Z: (float64(row) + 0.5) * g.cellSize,
	}
}

// locate maps a world position to its containing cell, clamping to the field.
func (g *Grid) locate(p geom.Vec3) (int, int, bool) {
	if g == nil || g.cols == 0 || g.rows == 0 {
		return 0, 0, false
	}
	x := world.Clamp(p.X, 0, math.Nextafter(g.width, 0))
	z := world.Clamp(p.Z, 0, math.Nextafter(g.depth, 0))
	col := int(x / g.cellSize)
	row := int(z / g.cellSize)
	if col >= g.cols {
		col = g.cols - 1
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	if !g.inBounds(col, row) {
		return 0, 0, false
	}
	return col, row, true
}

// canTraverseDiagonal rejects diagonal moves that would cut the corner of a
// blocked cell: both adjacent cardinal cells must be open.
func (g *Grid) canTraverseDiagonal(current gridPoint, delta gridNeighbor, blocked map[int]struct{}) bool {
	if g == nil || !delta.diagonal {
		return true
	}
	horizCol := current.col + delta.col
	horizRow := current.row
	vertCol := current.col
	vertRow := current.row + delta.row
	if !g.isWalkable(horizCol, horizRow) || !g.isWalkable(vertCol, vertRow) {
		return false
	}
	if blocked == nil {
		return true
	}
	if _, exists := blocked[g.index(horizCol, horizRow)]; exists {
		return false
	}
	if _, exists := blocked[g.index(vertCol, vertRow)]; exists {
		return false
	}
	return true
}

// closestWalkable breadth-first searches outward for the nearest open cell.
func (g *Grid) closestWalkable(col, row int, blocked map[int]struct{}) (int, int, bool) {
	if !g.inBounds(col, row) {
		return 0, 0, false
	}
	startIdx := g.index(col, row)
	visited := make(map[int]struct{})
	queue := []gridPoint{{col: col, row: row}}
	visited[startIdx] = struct{}{}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		idx := g.index(current.col, current.row)
		if g.walkable[idx] {
			if blocked == nil {
				return current.col, current.row, true
			}
			if _, exists := blocked[idx]; !exists {
				return current.col, current.row, true
			}
		}
		for _, delta := range gridNeighborOffsets {
			nc := current.col + delta.col
			nr := current.row + delta.row
			if delta.diagonal && !g.canTraverseDiagonal(current, delta, blocked) {
				continue
			}
			if !g.inBounds(nc, nr) {
				continue
			}
			nIdx := g.index(nc, nr)
			if _, seen := visited[nIdx]; seen {
				continue
			}
			visited[nIdx] = struct{}{}
			queue = append(queue, gridPoint{col: nc, row: nr})
		}
	}
	return 0, 0, false
}
