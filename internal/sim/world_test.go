package sim

import (
	"context"
	"math"
	"sync"
	"testing"

	"wayfarer/nav/follower"
	"wayfarer/nav/geom"
	"wayfarer/nav/internal/telemetry"
	"wayfarer/nav/logging"
	"wayfarer/nav/logging/navevents"
	"wayfarer/nav/pathfind"
	"wayfarer/nav/world"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []logging.Event
}

func (r *eventRecorder) Publish(_ context.Context, event logging.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) ofType(t logging.EventType) []logging.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []logging.Event
	for _, event := range r.events {
		if event.Type == t {
			matched = append(matched, event)
		}
	}
	return matched
}

func openWorld(t *testing.T, cfg follower.Config, obstacles ...world.Obstacle) (*World, *eventRecorder, *telemetry.Counters) {
	t.Helper()
	field := world.NewFieldWithObstacles(world.Config{Width: 20, Depth: 20, AgentRadius: 0.35}, obstacles)
	planner := pathfind.NewPlanner(field, pathfind.DefaultCellSize)
	recorder := &eventRecorder{}
	counters := telemetry.NewCounters()
	return NewWorld(field, planner, cfg, recorder, counters), recorder, counters
}

func TestAddAndRemoveAgent(t *testing.T) {
	w, recorder, _ := openWorld(t, follower.DefaultConfig())
	ctx := context.Background()

	snap, err := w.AddAgent(ctx, "")
	if err != nil {
		t.Fatalf("add agent: %v", err)
	}
	if snap.ID == "" {
		t.Fatal("expected a generated agent id")
	}
	spawn := w.Field().SpawnPoint()
	if snap.X != spawn.X || snap.Z != spawn.Z {
		t.Fatalf("agent spawned at (%f,%f), want (%f,%f)", snap.X, snap.Z, spawn.X, spawn.Z)
	}
	if snap.Heading != 0 {
		t.Fatalf("fresh agent heading = %f, want 0", snap.Heading)
	}

	if _, err := w.AddAgent(ctx, snap.ID); err == nil {
		t.Fatal("duplicate id should be rejected")
	}

	if !w.RemoveAgent(ctx, snap.ID) {
		t.Fatal("remove should succeed")
	}
	if w.RemoveAgent(ctx, snap.ID) {
		t.Fatal("second remove should fail")
	}

	if got := len(recorder.ofType(navevents.EventAgentJoined)); got != 1 {
		t.Fatalf("joined events = %d, want 1", got)
	}
	if got := len(recorder.ofType(navevents.EventAgentLeft)); got != 1 {
		t.Fatalf("left events = %d, want 1", got)
	}
}

func TestSetGoalValidation(t *testing.T) {
	w, _, _ := openWorld(t, follower.DefaultConfig())
	ctx := context.Background()

	if err := w.SetGoal(ctx, "missing", geom.Vec3{X: 5, Z: 5}); err == nil {
		t.Fatal("unknown agent should be rejected")
	}

	snap, err := w.AddAgent(ctx, "a1")
	if err != nil {
		t.Fatalf("add agent: %v", err)
	}
	if err := w.SetGoal(ctx, snap.ID, geom.Vec3{X: 5, Z: math.NaN()}); err == nil {
		t.Fatal("non-finite goal should be rejected")
	}
	if err := w.SetGoal(ctx, snap.ID, geom.Vec3{X: 5, Z: 5}); err != nil {
		t.Fatalf("valid goal rejected: %v", err)
	}
}

func runUntilIdle(t *testing.T, w *World, id string, maxTicks int) int {
	t.Helper()
	ctx := context.Background()
	for tick := 0; tick < maxTicks; tick++ {
		w.Step(ctx)
		_, snaps := w.Snapshot()
		for _, snap := range snaps {
			if snap.ID == id && !snap.HasGoal {
				return tick + 1
			}
		}
	}
	t.Fatalf("agent %s still navigating after %d ticks", id, maxTicks)
	return 0
}

func TestAgentWalksToGoal(t *testing.T) {
	cfg := follower.DefaultConfig()
	cfg.GoalRadius = 0.35
	w, recorder, counters := openWorld(t, cfg)
	ctx := context.Background()

	snap, err := w.AddAgent(ctx, "walker")
	if err != nil {
		t.Fatalf("add agent: %v", err)
	}
	goal := geom.Vec3{X: 2, Z: 8}
	if err := w.SetGoal(ctx, snap.ID, goal); err != nil {
		t.Fatalf("set goal: %v", err)
	}

	runUntilIdle(t, w, snap.ID, 500)

	if got := len(recorder.ofType(navevents.EventGoalReached)); got != 1 {
		t.Fatalf("goal reached events = %d, want 1", got)
	}
	if counters.Snapshot().GoalsReached != 1 {
		t.Fatalf("goal counter not incremented: %+v", counters.Snapshot())
	}

	_, snaps := w.Snapshot()
	final := snaps[0]
	dist := geom.Vec3{X: final.X, Z: final.Z}.Dist(goal)
	if dist > cfg.GoalRadius+cfg.ForwardStep {
		t.Fatalf("agent finished %f away from the goal", dist)
	}
}

func TestAgentRoutesAroundWall(t *testing.T) {
	cfg := follower.DefaultConfig()
	cfg.GoalRadius = 0.35
	wall := world.Obstacle{ID: "wall", X: 0, Z: 9, Width: 16, Depth: 2}
	w, recorder, _ := openWorld(t, cfg, wall)
	ctx := context.Background()

	snap, err := w.AddAgent(ctx, "router")
	if err != nil {
		t.Fatalf("add agent: %v", err)
	}
	goal := geom.Vec3{X: 2, Z: 18}
	if err := w.SetGoal(ctx, snap.ID, goal); err != nil {
		t.Fatalf("set goal: %v", err)
	}

	runUntilIdle(t, w, snap.ID, 3000)

	if got := len(recorder.ofType(navevents.EventGoalReached)); got != 1 {
		t.Fatalf("goal reached events = %d, want 1", got)
	}
	_, snaps := w.Snapshot()
	final := snaps[0]
	if dist := (geom.Vec3{X: final.X, Z: final.Z}).Dist(goal); dist > cfg.GoalRadius+cfg.ForwardStep {
		t.Fatalf("agent finished %f away from the goal", dist)
	}
}

func TestUnreachableGoalReportsPathError(t *testing.T) {
	box := world.Obstacle{ID: "box", X: 9, Z: 9, Width: 2, Depth: 2}
	w, recorder, counters := openWorld(t, follower.DefaultConfig(), box)
	ctx := context.Background()

	snap, err := w.AddAgent(ctx, "blocked")
	if err != nil {
		t.Fatalf("add agent: %v", err)
	}
	if err := w.SetGoal(ctx, snap.ID, geom.Vec3{X: 10, Z: 10}); err != nil {
		t.Fatalf("set goal: %v", err)
	}

	w.Step(ctx)

	_, snaps := w.Snapshot()
	if snaps[0].HasGoal {
		t.Fatal("agent should drop an unreachable goal")
	}
	if got := len(recorder.ofType(navevents.EventPathError)); got != 1 {
		t.Fatalf("path error events = %d, want 1", got)
	}
	if counters.Snapshot().PathErrors != 1 {
		t.Fatalf("path error counter not incremented: %+v", counters.Snapshot())
	}
	spawn := w.Field().SpawnPoint()
	if snaps[0].X != spawn.X || snaps[0].Z != spawn.Z {
		t.Fatal("agent should not move when no path exists")
	}
}

func TestPlanRouteDoesNotMoveAgent(t *testing.T) {
	cfg := follower.DefaultConfig()
	cfg.GoalRadius = 0.35
	w, _, counters := openWorld(t, cfg)
	ctx := context.Background()

	snap, err := w.AddAgent(ctx, "planner")
	if err != nil {
		t.Fatalf("add agent: %v", err)
	}
	if err := w.SetGoal(ctx, snap.ID, geom.Vec3{X: 2, Z: 8}); err != nil {
		t.Fatalf("set goal: %v", err)
	}

	actions, err := w.PlanRoute(snap.ID)
	if err != nil {
		t.Fatalf("plan route: %v", err)
	}
	if len(actions) == 0 {
		t.Fatal("expected a non-empty plan")
	}
	if last := actions[len(actions)-1]; last != follower.ActionStop {
		t.Fatalf("expected plan ending in stop, got %v", last)
	}
	if counters.Snapshot().PathsPlanned != 1 {
		t.Fatalf("plan counter not incremented: %+v", counters.Snapshot())
	}

	_, snaps := w.Snapshot()
	spawn := w.Field().SpawnPoint()
	if snaps[0].X != spawn.X || snaps[0].Z != spawn.Z {
		t.Fatal("planning must not move the live agent")
	}
	if !snaps[0].HasGoal {
		t.Fatal("planning must not consume the goal")
	}
}

func TestPlanRouteRequiresGoal(t *testing.T) {
	w, _, _ := openWorld(t, follower.DefaultConfig())
	ctx := context.Background()

	snap, err := w.AddAgent(ctx, "idle")
	if err != nil {
		t.Fatalf("add agent: %v", err)
	}
	if _, err := w.PlanRoute(snap.ID); err == nil {
		t.Fatal("plan without a goal should fail")
	}
}
