// Package sim runs the live navigation simulation: a set of agents on a
// shared field, each driven by its own follower, advanced in lockstep ticks.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"wayfarer/nav/follower"
	"wayfarer/nav/geom"
	"wayfarer/nav/internal/telemetry"
	"wayfarer/nav/logging"
	"wayfarer/nav/logging/navevents"
	"wayfarer/nav/pathfind"
	"wayfarer/nav/scene"
	"wayfarer/nav/world"
)

// tickBudget is the soft per-tick time budget; ticks running longer emit an
// overrun event.
const tickBudget = 50 * time.Millisecond

// World owns the agents and advances them one decision per tick. All methods
// are safe for concurrent use.
type World struct {
	mu sync.Mutex

	field   *world.Field
	planner *pathfind.Planner
	cfg     follower.Config
	graph   *scene.Graph

	agents map[string]*Agent
	order  []string
	tick   uint64

	publisher logging.Publisher
	counters  *telemetry.Counters
}

// NewWorld wires a simulation over the given field. A nil publisher or
// counter set disables that concern.
func NewWorld(field *world.Field, planner *pathfind.Planner, cfg follower.Config, publisher logging.Publisher, counters *telemetry.Counters) *World {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	if counters == nil {
		counters = telemetry.NewCounters()
	}
	return &World{
		field:     field,
		planner:   planner,
		cfg:       cfg.Normalized(),
		graph:     scene.NewGraph(),
		agents:    make(map[string]*Agent),
		publisher: publisher,
		counters:  counters,
	}
}

// AddAgent registers a new agent at the spawn point. An empty id gets a
// generated one.
func (w *World) AddAgent(ctx context.Context, id string) (AgentSnapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := w.agents[id]; exists {
		return AgentSnapshot{}, fmt.Errorf("sim: agent %q already exists", id)
	}

	cfg := w.cfg
	node := w.graph.NewNode()
	node.SetPose(geom.QuatIdentity(), w.field.SpawnPoint())

	moveForward := scene.MoveForward(w.field, cfg.ForwardStep)
	turnLeft := scene.TurnLeft(cfg.TurnStep)
	turnRight := scene.TurnRight(cfg.TurnStep)

	f, err := follower.New(w.planner, w.field, moveForward, turnLeft, turnRight, cfg)
	if err != nil {
		return AgentSnapshot{}, fmt.Errorf("sim: build follower: %w", err)
	}

	agent := &Agent{
		ID:          id,
		node:        node,
		follower:    f,
		moveForward: moveForward,
		turnLeft:    turnLeft,
		turnRight:   turnRight,
		lastAction:  follower.ActionStop,
	}
	w.agents[id] = agent
	w.order = append(w.order, id)

	navevents.AgentJoined(ctx, w.publisher, w.tick, id)
	return agent.snapshot(), nil
}

// RemoveAgent drops an agent from the simulation.
func (w *World) RemoveAgent(ctx context.Context, id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.agents[id]; !exists {
		return false
	}
	delete(w.agents, id)
	for i, other := range w.order {
		if other == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	navevents.AgentLeft(ctx, w.publisher, w.tick, id)
	return true
}

// SetGoal assigns a navigation goal and resets the agent's decision history.
// The goal is accepted even when no path currently exists; the next tick
// reports the path error.
func (w *World) SetGoal(ctx context.Context, id string, goal geom.Vec3) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	agent, exists := w.agents[id]
	if !exists {
		return fmt.Errorf("sim: unknown agent %q", id)
	}
	if !goal.IsFinite() {
		return fmt.Errorf("sim: non-finite goal for agent %q", id)
	}

	agent.goal = goal
	agent.hasGoal = true
	agent.follower.Reset()

	navevents.GoalAssigned(ctx, w.publisher, w.tick, id, navevents.GoalPayload{GoalX: goal.X, GoalZ: goal.Z})
	return nil
}

// ClearGoal stops an agent without removing it.
func (w *World) ClearGoal(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	agent, exists := w.agents[id]
	if !exists {
		return fmt.Errorf("sim: unknown agent %q", id)
	}
	agent.hasGoal = false
	agent.follower.Reset()
	return nil
}

// PlanRoute synthesizes the whole primitive sequence from the agent's current
// pose to its goal without moving the live agent.
func (w *World) PlanRoute(id string) ([]follower.Action, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	agent, exists := w.agents[id]
	if !exists {
		return nil, fmt.Errorf("sim: unknown agent %q", id)
	}
	if !agent.hasGoal {
		return nil, fmt.Errorf("sim: agent %q has no goal", id)
	}

	rotation, translation := agent.node.Pose()
	actions := agent.follower.FindPathFrom(translation, rotation, agent.goal)
	agent.follower.Reset()

	if len(actions) > 0 && actions[len(actions)-1] == follower.ActionError {
		w.counters.RecordPathError()
	} else {
		w.counters.RecordPathPlanned()
	}
	return actions, nil
}

// Step advances every goal-driven agent by one decided primitive.
func (w *World) Step(ctx context.Context) {
	started := time.Now()

	w.mu.Lock()
	w.tick++
	for _, id := range w.order {
		w.stepAgent(ctx, w.agents[id])
	}
	w.mu.Unlock()

	elapsed := time.Since(started)
	w.counters.RecordTickDuration(elapsed)
	if elapsed > tickBudget {
		navevents.TickBudgetOverrun(ctx, w.publisher, w.Tick(), navevents.TickBudgetPayload{
			DurationMillis: elapsed.Milliseconds(),
			BudgetMillis:   tickBudget.Milliseconds(),
			Ratio:          float64(elapsed) / float64(tickBudget),
		})
	}
}

func (w *World) stepAgent(ctx context.Context, agent *Agent) {
	if agent == nil || !agent.hasGoal {
		return
	}

	wasThrashing := agent.follower.IsThrashing()
	rotation, translation := agent.node.Pose()
	action := agent.follower.NextActionFrom(translation, rotation, agent.goal)
	agent.lastAction = action
	navevents.ActionDecided(ctx, w.publisher, w.tick, agent.ID, navevents.ActionPayload{Action: action.String()})

	corrected := w.cfg.FixThrashing && wasThrashing &&
		(action == follower.ActionForward || action == follower.ActionStop)
	w.counters.RecordDecision(corrected)
	if corrected {
		navevents.ThrashingCorrected(ctx, w.publisher, w.tick, agent.ID, navevents.ThrashingPayload{
			RunLength: w.cfg.ThrashingThreshold,
			Corrected: action.String(),
		})
	}

	switch action {
	case follower.ActionForward:
		agent.moveForward(agent.node)
	case follower.ActionLeft:
		agent.turnLeft(agent.node)
	case follower.ActionRight:
		agent.turnRight(agent.node)
	case follower.ActionStop:
		w.finishGoal(ctx, agent)
	case follower.ActionError:
		agent.hasGoal = false
		agent.follower.Reset()
		w.counters.RecordPathError()
		navevents.PathError(ctx, w.publisher, w.tick, agent.ID, navevents.PathErrorPayload{
			Reason: "no_path",
			GoalX:  agent.goal.X,
			GoalZ:  agent.goal.Z,
		})
	}
}

// finishGoal resolves a stop decision: arrival inside the goal radius, or a
// blocked corrective stop.
func (w *World) finishGoal(ctx context.Context, agent *Agent) {
	agent.hasGoal = false
	agent.follower.Reset()

	remaining := w.planner.ShortestPath(agent.node.Translation(), agent.goal)
	if remaining.Length <= agent.follower.Config().GoalRadius {
		w.counters.RecordGoalReached()
		navevents.GoalReached(ctx, w.publisher, w.tick, agent.ID, navevents.GoalPayload{
			GoalX: agent.goal.X,
			GoalZ: agent.goal.Z,
		})
		return
	}
	w.counters.RecordPathError()
	navevents.PathError(ctx, w.publisher, w.tick, agent.ID, navevents.PathErrorPayload{
		Reason: "blocked",
		GoalX:  agent.goal.X,
		GoalZ:  agent.goal.Z,
	})
}

// Tick returns the current tick number.
func (w *World) Tick() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tick
}

// Snapshot returns the wire view of every agent in join order.
func (w *World) Snapshot() (uint64, []AgentSnapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	snaps := make([]AgentSnapshot, 0, len(w.order))
	for _, id := range w.order {
		if agent := w.agents[id]; agent != nil {
			snaps = append(snaps, agent.snapshot())
		}
	}
	return w.tick, snaps
}

// Field returns the field the simulation runs on.
func (w *World) Field() *world.Field {
	return w.field
}
