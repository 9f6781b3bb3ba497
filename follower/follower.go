// Package follower converts geodesic shortest-path queries into discrete
// movement primitives. Given a path oracle and fixed-size forward/turn
// callbacks, it greedily picks the primitive that best advances the agent
// toward a goal without colliding, detects oscillating left/right decisions,
// and can synthesize whole action sequences by repeated simulated stepping.
//
// A Follower instance is not safe for concurrent use; callers drive one
// instance from one simulation loop. Independent instances share no state.
package follower

import (
	"errors"
	"math"

	"wayfarer/nav/geom"
)

// Follower is the greedy decision engine. All tunables are fixed at
// construction; mutable state is limited to the action history and the
// private proxy sandbox.
type Follower struct {
	cfg       Config
	oracle    PathOracle
	obstacles ObstacleSource

	moveForward MoveFn
	turnLeft    MoveFn
	turnRight   MoveFn

	history *actionRing
	sandbox *sandbox
}

// New wires a follower from its collaborators. The movement callbacks are
// only ever invoked against the follower's own proxy nodes.
func New(oracle PathOracle, obstacles ObstacleSource, moveForward, turnLeft, turnRight MoveFn, cfg Config) (*Follower, error) {
	if oracle == nil {
		return nil, errors.New("follower: path oracle is required")
	}
	if obstacles == nil {
		return nil, errors.New("follower: obstacle source is required")
	}
	if moveForward == nil || turnLeft == nil || turnRight == nil {
		return nil, errors.New("follower: all three movement callbacks are required")
	}
	cfg = cfg.normalized()
	return &Follower{
		cfg:         cfg,
		oracle:      oracle,
		obstacles:   obstacles,
		moveForward: moveForward,
		turnLeft:    turnLeft,
		turnRight:   turnRight,
		history:     newActionRing(cfg.ThrashingThreshold),
		sandbox:     newSandbox(),
	}, nil
}

// Config returns the normalized configuration the follower runs with.
func (f *Follower) Config() Config {
	if f == nil {
		return Config{}.normalized()
	}
	return f.cfg
}

// NextActionAlong decides the single next action from pose toward goal.
// Stop means the goal radius has been reached; Error means the oracle found
// no path. Neither is recorded in the thrashing history.
func (f *Follower) NextActionAlong(pose SixDofPose, goal geom.Vec3) Action {
	if f == nil {
		return ActionError
	}
	if !pose.Translation.IsFinite() || !goal.IsFinite() {
		return ActionError
	}

	path := f.oracle.ShortestPath(pose.Translation, goal)
	if math.IsInf(path.Length, 1) || math.IsNaN(path.Length) {
		return ActionError
	}
	if path.Length <= f.cfg.GoalRadius {
		return ActionStop
	}

	action := f.nextBestPrimAlong(pose, path, goal)
	if f.cfg.FixThrashing && f.wouldThrash(action) {
		action = f.breakThrashing(pose, goal)
		if action == ActionStop {
			return ActionStop
		}
	}

	f.history.push(action)
	return action
}

// NextActionFrom is NextActionAlong with the positional pose encoding.
func (f *Follower) NextActionFrom(position geom.Vec3, rotation geom.Quat, goal geom.Vec3) Action {
	return f.NextActionAlong(SixDofPose{Rotation: rotation, Translation: position}, goal)
}

// FindPath synthesizes the whole action sequence from pose to goal by
// repeatedly deciding and applying primitives on an internal proxy. The
// returned sequence always ends with Stop or Error; if the step limit is
// exhausted first, a terminal Error is appended.
func (f *Follower) FindPath(pose SixDofPose, goal geom.Vec3) []Action {
	if f == nil {
		return []Action{ActionError}
	}

	actions := make([]Action, 0, 64)
	proxy := f.sandbox.stepProxy
	proxy.SetPose(pose.Rotation, pose.Translation)

	for i := 0; i < f.cfg.StepLimit; i++ {
		rotation, translation := proxy.Pose()
		action := f.NextActionAlong(SixDofPose{Rotation: rotation, Translation: translation}, goal)
		actions = append(actions, action)
		if action.Terminal() {
			return actions
		}

		switch action {
		case ActionForward:
			f.moveForward(proxy)
		case ActionLeft:
			f.turnLeft(proxy)
		case ActionRight:
			f.turnRight(proxy)
		}
	}

	return append(actions, ActionError)
}

// FindPathFrom is FindPath with the positional pose encoding.
func (f *Follower) FindPathFrom(position geom.Vec3, rotation geom.Quat, goal geom.Vec3) []Action {
	return f.FindPath(SixDofPose{Rotation: rotation, Translation: position}, goal)
}

// Reset clears the action history. Callers must reset whenever the goal
// changes or the live agent's pose diverges from the engine's expectation by
// more than one primitive step; the engine performs no staleness detection.
func (f *Follower) Reset() {
	if f == nil {
		return
	}
	f.history.clear()
}

// nextBestPrimAlong evaluates the three primitives through the sandbox and
// returns the best-scoring one. Non-colliding candidates always win over
// colliding ones; ties keep the fixed preference order forward, left, right.
func (f *Follower) nextBestPrimAlong(pose SixDofPose, path Path, goal geom.Vec3) Action {
	candidates := []struct {
		action Action
		move   MoveFn
		proxy  proxyID
	}{
		{action: ActionForward, move: f.moveForward, proxy: proxyForward},
		{action: ActionLeft, move: f.turnLeft, proxy: proxyLeft},
		{action: ActionRight, move: f.turnRight, proxy: proxyRight},
	}

	bestAction := ActionForward
	bestScore := math.Inf(-1)
	bestCollides := true

	for _, cand := range candidates {
		result := f.tryStep(f.sandbox.node(cand.proxy), pose, cand.move, goal)
		score := f.computeReward(result, path)

		betterClass := !result.didCollide && bestCollides
		sameClass := result.didCollide == bestCollides
		if betterClass || (sameClass && score > bestScore) {
			bestAction = cand.action
			bestScore = score
			bestCollides = result.didCollide
		}
	}

	return bestAction
}

// breakThrashing picks the cycle-breaking action: forward when it is
// passable, otherwise stop.
func (f *Follower) breakThrashing(pose SixDofPose, goal geom.Vec3) Action {
	result := f.tryStep(f.sandbox.node(proxyForward), pose, f.moveForward, goal)
	if result.didCollide {
		return ActionStop
	}
	return ActionForward
}
