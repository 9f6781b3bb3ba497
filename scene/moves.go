package scene

import (
	"math"

	"wayfarer/nav/geom"
	"wayfarer/nav/world"
)

// collideEps is the tolerance below which a shortened forward step still
// counts as collision free.
const collideEps = 1e-6

// MoveForward returns a movement callback that advances a node by amount along
// its forward direction, stopping at obstacle boundaries. The callback reports
// whether the step collided.
func MoveForward(field *world.Field, amount float64) func(*Node) bool {
	return func(n *Node) bool {
		if n == nil || field == nil {
			return true
		}
		start := n.Translation()
		dir := n.Forward()
		dir.Y = 0
		length := math.Hypot(dir.X, dir.Z)
		if length == 0 {
			return true
		}
		dir = dir.Scale(1 / length)

		target := start.Add(dir.Scale(amount))
		resolved := resolveMove(field, start, target)
		resolved.Y = start.Y
		n.SetTranslation(resolved)

		return resolved.Dist(target) > collideEps
	}
}

// TurnLeft returns a movement callback rotating a node left by amount radians.
// Turns never collide.
func TurnLeft(amount float64) func(*Node) bool {
	return func(n *Node) bool {
		if n == nil {
			return true
		}
		n.RotateYLocal(amount)
		return false
	}
}

// TurnRight returns a movement callback rotating a node right by amount
// radians.
func TurnRight(amount float64) func(*Node) bool {
	return func(n *Node) bool {
		if n == nil {
			return true
		}
		n.RotateYLocal(-amount)
		return false
	}
}

// resolveMove advances from start toward target while clamping each axis at
// obstacle edges and world bounds.
func resolveMove(field *world.Field, start, target geom.Vec3) geom.Vec3 {
	radius := field.AgentRadius()
	width, depth := field.Bounds()
	obstacles := field.Obstacles()

	deltaX := target.X - start.X
	newX := world.Clamp(target.X, radius, width-radius)
	if deltaX != 0 {
		newX = resolveAxisX(start.X, start.Z, newX, deltaX, obstacles, radius, width)
	} else {
		newX = start.X
	}

	deltaZ := target.Z - start.Z
	newZ := world.Clamp(target.Z, radius, depth-radius)
	if deltaZ != 0 {
		newZ = resolveAxisZ(newX, start.Z, newZ, deltaZ, obstacles, radius, depth)
	} else {
		newZ = start.Z
	}

	return geom.Vec3{X: newX, Y: start.Y, Z: newZ}
}

// resolveAxisX applies X movement while stopping at obstacle edges.
func resolveAxisX(oldX, oldZ, proposedX, deltaX float64, obstacles []world.Obstacle, radius, width float64) float64 {
	newX := proposedX
	for _, obs := range obstacles {
		minZ := obs.Z - radius
		maxZ := obs.Z + obs.Depth + radius
		if oldZ < minZ || oldZ > maxZ {
			continue
		}

		if deltaX > 0 {
			boundary := obs.X - radius
			if oldX <= boundary && newX > boundary {
				newX = boundary
			}
		} else if deltaX < 0 {
			boundary := obs.X + obs.Width + radius
			if oldX >= boundary && newX < boundary {
				newX = boundary
			}
		}
	}
	return world.Clamp(newX, radius, width-radius)
}

// resolveAxisZ applies Z movement while stopping at obstacle edges.
func resolveAxisZ(oldX, oldZ, proposedZ, deltaZ float64, obstacles []world.Obstacle, radius, depth float64) float64 {
	newZ := proposedZ
	for _, obs := range obstacles {
		minX := obs.X - radius
		maxX := obs.X + obs.Width + radius
		if oldX < minX || oldX > maxX {
			continue
		}

		if deltaZ > 0 {
			boundary := obs.Z - radius
			if oldZ <= boundary && newZ > boundary {
				newZ = boundary
			}
		} else if deltaZ < 0 {
			boundary := obs.Z + obs.Depth + radius
			if oldZ >= boundary && newZ < boundary {
				newZ = boundary
			}
		}
	}
	return world.Clamp(newZ, radius, depth-radius)
}
