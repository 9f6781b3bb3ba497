package follower

import (
	"math"
	"testing"

	"wayfarer/nav/geom"
	"wayfarer/nav/scene"
)

type oracleFunc func(start, goal geom.Vec3) Path

func (f oracleFunc) ShortestPath(start, goal geom.Vec3) Path {
	return f(start, goal)
}

type obstacleFunc func(p geom.Vec3) float64

func (f obstacleFunc) NearestObstacleDistance(p geom.Vec3) float64 {
	return f(p)
}

// euclideanOracle treats the world as empty: the geodesic path is the
// straight segment between the endpoints.
func euclideanOracle() PathOracle {
	return oracleFunc(func(start, goal geom.Vec3) Path {
		return Path{
			Waypoints: []geom.Vec3{start, goal},
			Length:    start.Dist(goal),
		}
	})
}

func noPathOracle() PathOracle {
	return oracleFunc(func(start, goal geom.Vec3) Path {
		return Path{Length: math.Inf(1)}
	})
}

func openClearance() ObstacleSource {
	return obstacleFunc(func(geom.Vec3) float64 { return 10 })
}

// freeMoves returns primitive callbacks that never collide.
func freeMoves(forwardStep, turnStep float64) (MoveFn, MoveFn, MoveFn) {
	forward := func(n *scene.Node) bool {
		n.TranslateLocal(geom.Vec3{Z: -forwardStep})
		return false
	}
	left := func(n *scene.Node) bool {
		n.RotateYLocal(turnStep)
		return false
	}
	right := func(n *scene.Node) bool {
		n.RotateYLocal(-turnStep)
		return false
	}
	return forward, left, right
}

func newTestFollower(t *testing.T, oracle PathOracle, obstacles ObstacleSource, cfg Config) *Follower {
	t.Helper()
	forward, left, right := freeMoves(cfg.normalized().ForwardStep, cfg.normalized().TurnStep)
	f, err := New(oracle, obstacles, forward, left, right, cfg)
	if err != nil {
		t.Fatalf("failed to construct follower: %v", err)
	}
	return f
}

func TestNewRejectsMissingCollaborators(t *testing.T) {
	forward, left, right := freeMoves(0.25, 0.17)

	if _, err := New(nil, openClearance(), forward, left, right, Config{}); err == nil {
		t.Fatal("expected error for missing oracle")
	}
	if _, err := New(euclideanOracle(), nil, forward, left, right, Config{}); err == nil {
		t.Fatal("expected error for missing obstacle source")
	}
	if _, err := New(euclideanOracle(), openClearance(), forward, nil, right, Config{}); err == nil {
		t.Fatal("expected error for missing turn callback")
	}
}

func TestStopWithinGoalRadiusLeavesHistoryUntouched(t *testing.T) {
	f := newTestFollower(t, euclideanOracle(), openClearance(), DefaultConfig())

	pose := SixDofPose{Rotation: geom.QuatIdentity(), Translation: geom.Vec3{X: 5, Z: 5}}
	goal := geom.Vec3{X: 5, Z: 5.1}

	for i := 0; i < 3; i++ {
		if action := f.NextActionAlong(pose, goal); action != ActionStop {
			t.Fatalf("expected stop within goal radius, got %v", action)
		}
	}
	if f.history.size != 0 {
		t.Fatalf("stop decisions mutated the action history: size=%d", f.history.size)
	}
}

func TestErrorWhenOracleReportsNoPath(t *testing.T) {
	f := newTestFollower(t, noPathOracle(), openClearance(), DefaultConfig())

	pose := SixDofPose{Rotation: geom.QuatIdentity(), Translation: geom.Vec3{X: 5, Z: 5}}
	if action := f.NextActionAlong(pose, geom.Vec3{X: 20, Z: 20}); action != ActionError {
		t.Fatalf("expected error for unreachable goal, got %v", action)
	}
	if f.history.size != 0 {
		t.Fatalf("error decision was recorded in history: size=%d", f.history.size)
	}
}

func TestErrorForNonFinitePose(t *testing.T) {
	f := newTestFollower(t, euclideanOracle(), openClearance(), DefaultConfig())

	pose := SixDofPose{Rotation: geom.QuatIdentity(), Translation: geom.Vec3{X: math.NaN()}}
	if action := f.NextActionAlong(pose, geom.Vec3{X: 1}); action != ActionError {
		t.Fatalf("expected error for non-finite pose, got %v", action)
	}
}

func TestDecisionsAreDeterministic(t *testing.T) {
	pose := SixDofPose{Rotation: geom.QuatIdentity(), Translation: geom.Vec3{X: 10, Z: 10}}
	goal := geom.Vec3{X: 10, Z: 4}

	first := newTestFollower(t, euclideanOracle(), openClearance(), DefaultConfig()).
		NextActionAlong(pose, goal)
	for i := 0; i < 5; i++ {
		f := newTestFollower(t, euclideanOracle(), openClearance(), DefaultConfig())
		if action := f.NextActionAlong(pose, goal); action != first {
			t.Fatalf("identical inputs produced %v then %v", first, action)
		}
	}
}

func TestForwardPreferredWhenItMakesProgress(t *testing.T) {
	f := newTestFollower(t, euclideanOracle(), openClearance(), DefaultConfig())

	pose := SixDofPose{Rotation: geom.QuatIdentity(), Translation: geom.Vec3{X: 10, Z: 10}}
	goal := geom.Vec3{X: 10, Z: 4}

	if action := f.NextActionAlong(pose, goal); action != ActionForward {
		t.Fatalf("expected forward toward a goal straight ahead, got %v", action)
	}
}

func TestCollisionDominatesProgress(t *testing.T) {
	cfg := DefaultConfig()
	cfg = cfg.normalized()

	// Forward teleports nearly onto the goal but collides; right turn makes
	// no progress but is clean. The non-colliding candidate must win.
	forward := func(n *scene.Node) bool {
		n.TranslateLocal(geom.Vec3{Z: -5})
		return true
	}
	left := func(n *scene.Node) bool {
		n.RotateYLocal(cfg.TurnStep)
		return true
	}
	right := func(n *scene.Node) bool {
		n.RotateYLocal(-cfg.TurnStep)
		return false
	}

	f, err := New(euclideanOracle(), openClearance(), forward, left, right, cfg)
	if err != nil {
		t.Fatalf("failed to construct follower: %v", err)
	}

	pose := SixDofPose{Rotation: geom.QuatIdentity(), Translation: geom.Vec3{X: 10, Z: 10}}
	goal := geom.Vec3{X: 10, Z: 4.5}

	if action := f.NextActionAlong(pose, goal); action != ActionRight {
		t.Fatalf("expected the only clean primitive to win, got %v", action)
	}
}

func TestComputeRewardCollisionAlwaysScoresBelowClean(t *testing.T) {
	f := newTestFollower(t, euclideanOracle(), openClearance(), DefaultConfig())
	path := Path{Length: 5}

	colliding := f.computeReward(stepResult{
		postGeodesicDistance: 0, // maximal progress
		postObstacleDistance: 10,
		didCollide:           true,
	}, path)
	clean := f.computeReward(stepResult{
		postGeodesicDistance: 5.2, // negative progress
		postObstacleDistance: 0.05,
		didCollide:           false,
	}, path)

	if colliding >= clean {
		t.Fatalf("colliding candidate scored %f, clean candidate %f", colliding, clean)
	}
}

func TestComputeRewardPrefersLargerDistanceReduction(t *testing.T) {
	f := newTestFollower(t, euclideanOracle(), openClearance(), DefaultConfig())
	path := Path{Length: 5}

	better := f.computeReward(stepResult{postGeodesicDistance: 4.75, postObstacleDistance: 10}, path)
	worse := f.computeReward(stepResult{postGeodesicDistance: 5.0, postObstacleDistance: 10}, path)
	if better <= worse {
		t.Fatalf("larger reduction scored %f, smaller %f", better, worse)
	}
}

func TestComputeRewardPenalizesLowClearance(t *testing.T) {
	f := newTestFollower(t, euclideanOracle(), openClearance(), DefaultConfig())
	path := Path{Length: 5}

	clear := f.computeReward(stepResult{postGeodesicDistance: 4.75, postObstacleDistance: 10}, path)
	tight := f.computeReward(stepResult{postGeodesicDistance: 4.75, postObstacleDistance: 0.05}, path)
	if tight >= clear {
		t.Fatalf("low-clearance candidate scored %f, clear candidate %f", tight, clear)
	}
}

func seedAlternatingHistory(f *Follower, length int) {
	for i := 0; i < length; i++ {
		if i%2 == 0 {
			f.history.push(ActionLeft)
		} else {
			f.history.push(ActionRight)
		}
	}
}

func TestThrashingCorrectionBreaksTheCycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ThrashingThreshold = 4
	f := newTestFollower(t, euclideanOracle(), openClearance(), cfg)

	seedAlternatingHistory(f, 4)
	if !f.IsThrashing() {
		t.Fatal("expected thrashing detection after a full alternating window")
	}

	// Goal straight behind: greedy would keep turning, correction must not.
	pose := SixDofPose{Rotation: geom.QuatIdentity(), Translation: geom.Vec3{X: 10, Z: 10}}
	goal := geom.Vec3{X: 10, Z: 16}

	action := f.NextActionAlong(pose, goal)
	if action == ActionLeft || action == ActionRight {
		t.Fatalf("thrashing correction still returned a turn: %v", action)
	}
	if action != ActionForward {
		t.Fatalf("expected forward as the cycle breaker, got %v", action)
	}
}

func TestThrashingCorrectionStopsWhenForwardCollides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ThrashingThreshold = 4

	forward := func(n *scene.Node) bool { return true }
	left := func(n *scene.Node) bool {
		n.RotateYLocal(cfg.normalized().TurnStep)
		return false
	}
	right := func(n *scene.Node) bool {
		n.RotateYLocal(-cfg.normalized().TurnStep)
		return false
	}

	f, err := New(euclideanOracle(), openClearance(), forward, left, right, cfg)
	if err != nil {
		t.Fatalf("failed to construct follower: %v", err)
	}
	seedAlternatingHistory(f, 4)

	pose := SixDofPose{Rotation: geom.QuatIdentity(), Translation: geom.Vec3{X: 10, Z: 10}}
	if action := f.NextActionAlong(pose, geom.Vec3{X: 10, Z: 16}); action != ActionStop {
		t.Fatalf("expected stop when the cycle breaker collides, got %v", action)
	}
}

func TestThrashingDetectionWithoutCorrectionKeepsGreedyChoice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ThrashingThreshold = 4
	cfg.FixThrashing = false
	f := newTestFollower(t, euclideanOracle(), openClearance(), cfg)

	seedAlternatingHistory(f, 4)
	if !f.IsThrashing() {
		t.Fatal("detection should run even with correction disabled")
	}

	// Greedy choice for a goal straight behind is a left turn (turns tie,
	// forward regresses, preference order picks left).
	pose := SixDofPose{Rotation: geom.QuatIdentity(), Translation: geom.Vec3{X: 10, Z: 10}}
	if action := f.NextActionAlong(pose, geom.Vec3{X: 10, Z: 16}); action != ActionLeft {
		t.Fatalf("expected the unscored greedy turn with correction disabled, got %v", action)
	}
}

func TestResetClearsHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ThrashingThreshold = 4
	f := newTestFollower(t, euclideanOracle(), openClearance(), cfg)

	seedAlternatingHistory(f, 4)
	if !f.IsThrashing() {
		t.Fatal("expected thrashing before reset")
	}

	f.Reset()
	if f.history.size != 0 {
		t.Fatalf("reset left %d actions in history", f.history.size)
	}
	if f.IsThrashing() {
		t.Fatal("thrashing carried over across reset")
	}

	// A fresh window must again need the full threshold length.
	seedAlternatingHistory(f, 3)
	if f.IsThrashing() {
		t.Fatal("partial window reported thrashing after reset")
	}
	seedAlternatingHistory(f, 1)
	if !f.IsThrashing() {
		t.Fatal("full window after reset should report thrashing")
	}
}

func TestPoseEncodingsAgree(t *testing.T) {
	pose := SixDofPose{
		Rotation:    geom.AngleAxis(0.7, geom.Up),
		Translation: geom.Vec3{X: 12, Z: 8},
	}
	goal := geom.Vec3{X: 3, Z: 20}

	a := newTestFollower(t, euclideanOracle(), openClearance(), DefaultConfig()).
		NextActionAlong(pose, goal)
	b := newTestFollower(t, euclideanOracle(), openClearance(), DefaultConfig()).
		NextActionFrom(pose.Translation, pose.Rotation, goal)
	if a != b {
		t.Fatalf("pose encodings disagree: %v vs %v", a, b)
	}
}

func TestFindPathStraightAheadEndsWithStop(t *testing.T) {
	cfg := DefaultConfig()
	f := newTestFollower(t, euclideanOracle(), openClearance(), cfg)

	pose := SixDofPose{Rotation: geom.QuatIdentity(), Translation: geom.Vec3{X: 10, Z: 10}}
	goal := geom.Vec3{X: 10, Z: 5}

	actions := f.FindPath(pose, goal)
	if len(actions) == 0 {
		t.Fatal("expected a non-empty action sequence")
	}
	if last := actions[len(actions)-1]; last != ActionStop {
		t.Fatalf("expected terminal stop, got %v", last)
	}
	for i, action := range actions[:len(actions)-1] {
		if action != ActionForward {
			t.Fatalf("expected pure forward run, got %v at index %d", action, i)
		}
	}
	// 5.0 units at 0.25 per step, stopping inside the 0.2 goal radius.
	if got := len(actions) - 1; got != 20 {
		t.Fatalf("expected 20 forward steps, got %d", got)
	}
}

func TestFindPathTurnsAroundForGoalBehind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GoalRadius = 0.3
	f := newTestFollower(t, euclideanOracle(), openClearance(), cfg)

	pose := SixDofPose{Rotation: geom.QuatIdentity(), Translation: geom.Vec3{X: 20, Z: 15}}
	goal := geom.Vec3{X: 20, Z: 25}

	actions := f.FindPath(pose, goal)
	if last := actions[len(actions)-1]; last != ActionStop {
		t.Fatalf("expected terminal stop, got %v (sequence length %d)", last, len(actions))
	}
	var turns, forwards int
	for _, action := range actions {
		switch action {
		case ActionLeft, ActionRight:
			turns++
		case ActionForward:
			forwards++
		}
	}
	if turns == 0 || forwards == 0 {
		t.Fatalf("expected a mix of turns and forwards, got %d turns %d forwards", turns, forwards)
	}
}

func TestFindPathIterationBudgetEndsWithError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StepLimit = 50

	// A malformed oracle that never gets closer: the loop must hit the cap
	// and close the sequence with a terminal error.
	stuck := oracleFunc(func(start, goal geom.Vec3) Path {
		return Path{Length: 100}
	})
	f := newTestFollower(t, stuck, openClearance(), cfg)

	pose := SixDofPose{Rotation: geom.QuatIdentity(), Translation: geom.Vec3{X: 10, Z: 10}}
	actions := f.FindPath(pose, geom.Vec3{X: 30, Z: 20})

	if len(actions) != cfg.StepLimit+1 {
		t.Fatalf("expected %d actions, got %d", cfg.StepLimit+1, len(actions))
	}
	if last := actions[len(actions)-1]; last != ActionError {
		t.Fatalf("expected terminal error after exhausting the step limit, got %v", last)
	}
}

func TestFindPathUnreachableGoalReturnsImmediateError(t *testing.T) {
	f := newTestFollower(t, noPathOracle(), openClearance(), DefaultConfig())

	pose := SixDofPose{Rotation: geom.QuatIdentity(), Translation: geom.Vec3{X: 10, Z: 10}}
	actions := f.FindPath(pose, geom.Vec3{X: 30, Z: 20})
	if len(actions) != 1 || actions[0] != ActionError {
		t.Fatalf("expected a single terminal error, got %v", actions)
	}
}

func TestFindPathDoesNotMutateCallerPose(t *testing.T) {
	f := newTestFollower(t, euclideanOracle(), openClearance(), DefaultConfig())

	pose := SixDofPose{Rotation: geom.QuatIdentity(), Translation: geom.Vec3{X: 10, Z: 10}}
	f.FindPath(pose, geom.Vec3{X: 10, Z: 5})

	if pose.Translation != (geom.Vec3{X: 10, Z: 10}) {
		t.Fatalf("caller pose mutated: %+v", pose.Translation)
	}
	if pose.Rotation != geom.QuatIdentity() {
		t.Fatalf("caller rotation mutated: %+v", pose.Rotation)
	}
}
