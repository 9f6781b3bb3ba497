package sim

import (
	"math"

	"wayfarer/nav/follower"
	"wayfarer/nav/geom"
	"wayfarer/nav/scene"
)

// Agent is one navigating body: a live scene node plus the follower deciding
// its moves. All access goes through the owning World's lock.
type Agent struct {
	ID string

	node     *scene.Node
	follower *follower.Follower

	// The exact callbacks handed to the follower, reapplied to the live
	// node so simulated and real movement cannot diverge.
	moveForward follower.MoveFn
	turnLeft    follower.MoveFn
	turnRight   follower.MoveFn

	goal       geom.Vec3
	hasGoal    bool
	lastAction follower.Action
}

// AgentSnapshot is the wire-facing view of an agent.
type AgentSnapshot struct {
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Z          float64 `json:"z"`
	Heading    float64 `json:"heading"`
	GoalX      float64 `json:"goalX,omitempty"`
	GoalZ      float64 `json:"goalZ,omitempty"`
	HasGoal    bool    `json:"hasGoal"`
	LastAction string  `json:"lastAction"`
}

func (a *Agent) snapshot() AgentSnapshot {
	pos := a.node.Translation()
	snap := AgentSnapshot{
		ID:         a.ID,
		X:          pos.X,
		Z:          pos.Z,
		Heading:    a.heading(),
		HasGoal:    a.hasGoal,
		LastAction: a.lastAction.String(),
	}
	if a.hasGoal {
		snap.GoalX = a.goal.X
		snap.GoalZ = a.goal.Z
	}
	return snap
}

// heading is the yaw in radians, zero facing -Z, positive turning left.
func (a *Agent) heading() float64 {
	fwd := a.node.Forward()
	return math.Atan2(-fwd.X, -fwd.Z)
}
