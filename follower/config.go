package follower

const (
	DefaultGoalRadius               = 0.2
	DefaultForwardStep              = 0.25
	DefaultTurnStep                 = 0.1745 // ~10 degrees
	DefaultThrashingThreshold       = 16
	DefaultCloseToObstacleThreshold = 0.2
	DefaultObstacleCost             = 0.25
	DefaultCollisionCost            = 1000.0
	DefaultStepLimit                = 5000
)

// Config captures the tunables fixed at follower construction.
type Config struct {
	// GoalRadius is how close the agent must get before Stop is returned.
	GoalRadius float64 `json:"goalRadius"`
	// ForwardStep is the distance one forward primitive covers.
	ForwardStep float64 `json:"forwardStep"`
	// TurnStep is the angle in radians one turn primitive covers.
	TurnStep float64 `json:"turnStep"`
	// FixThrashing enables overriding the greedy choice when the recent
	// action history alternates between left and right turns.
	FixThrashing bool `json:"fixThrashing"`
	// ThrashingThreshold is the alternating-run length treated as thrashing.
	ThrashingThreshold int `json:"thrashingThreshold"`
	// CloseToObstacleThreshold is the clearance below which candidates are
	// penalized.
	CloseToObstacleThreshold float64 `json:"closeToObstacleThreshold"`
	// ObstacleCost scales the clearance penalty.
	ObstacleCost float64 `json:"obstacleCost"`
	// CollisionCost is subtracted from any colliding candidate's reward. It
	// must dwarf any plausible progress term.
	CollisionCost float64 `json:"collisionCost"`
	// StepLimit caps FindPath's simulation loop.
	StepLimit int `json:"stepLimit"`
}

// Normalized returns the config with zero-valued tunables replaced by their
// defaults, matching what a follower built from it will run with.
func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

func (cfg Config) normalized() Config {
	normalized := cfg
	if normalized.GoalRadius <= 0 {
		normalized.GoalRadius = DefaultGoalRadius
	}
	if normalized.ForwardStep <= 0 {
		normalized.ForwardStep = DefaultForwardStep
	}
	if normalized.TurnStep <= 0 {
		normalized.TurnStep = DefaultTurnStep
	}
	if normalized.ThrashingThreshold <= 0 {
		normalized.ThrashingThreshold = DefaultThrashingThreshold
	}
	if normalized.CloseToObstacleThreshold <= 0 {
		normalized.CloseToObstacleThreshold = DefaultCloseToObstacleThreshold
	}
	if normalized.ObstacleCost <= 0 {
		normalized.ObstacleCost = DefaultObstacleCost
	}
	if normalized.CollisionCost <= 0 {
		normalized.CollisionCost = DefaultCollisionCost
	}
	if normalized.StepLimit <= 0 {
		normalized.StepLimit = DefaultStepLimit
	}
	return normalized
}

// DefaultConfig returns the stock follower tuning with thrashing correction
// enabled.
func DefaultConfig() Config {
	return Config{FixThrashing: true}.normalized()
}
