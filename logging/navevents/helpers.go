// Package navevents defines the structured event vocabulary of the
// navigation stack and thin helpers for publishing it.
package navevents

import (
	"context"

	"wayfarer/nav/logging"
)

const (
	// EventAgentJoined is emitted when an agent is registered with the simulation.
	EventAgentJoined logging.EventType = "agent.joined"
	// EventAgentLeft is emitted when an agent is removed from the simulation.
	EventAgentLeft logging.EventType = "agent.left"
	// EventGoalAssigned is emitted when an agent receives a new navigation goal.
	EventGoalAssigned logging.EventType = "nav.goal_assigned"
	// EventActionDecided is emitted per follower decision at debug severity.
	EventActionDecided logging.EventType = "nav.action_decided"
	// EventGoalReached is emitted when the follower reports a stop inside the goal radius.
	EventGoalReached logging.EventType = "nav.goal_reached"
	// EventPathError is emitted when the follower cannot make progress toward a goal.
	EventPathError logging.EventType = "nav.path_error"
	// EventThrashingCorrected is emitted when an oscillating turn sequence is overridden.
	EventThrashingCorrected logging.EventType = "nav.thrashing_corrected"
	// EventTickBudgetOverrun is emitted when the simulation loop exceeds its tick budget.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
)

func agentRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindAgent}
}

// GoalPayload carries the goal position for assignment and arrival events.
type GoalPayload struct {
	GoalX float64 `json:"goalX"`
	GoalZ float64 `json:"goalZ"`
}

// AgentJoined publishes a lifecycle event for a freshly registered agent.
func AgentJoined(ctx context.Context, pub logging.Publisher, tick uint64, agentID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAgentJoined,
		Tick:     tick,
		Actor:    agentRef(agentID),
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
	})
}

// AgentLeft publishes a lifecycle event for a removed agent.
func AgentLeft(ctx context.Context, pub logging.Publisher, tick uint64, agentID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAgentLeft,
		Tick:     tick,
		Actor:    agentRef(agentID),
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
	})
}

// GoalAssigned publishes the new goal an agent will navigate toward.
func GoalAssigned(ctx context.Context, pub logging.Publisher, tick uint64, agentID string, payload GoalPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGoalAssigned,
		Tick:     tick,
		Actor:    agentRef(agentID),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}

// GoalReached publishes arrival inside the goal radius.
func GoalReached(ctx context.Context, pub logging.Publisher, tick uint64, agentID string, payload GoalPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGoalReached,
		Tick:     tick,
		Actor:    agentRef(agentID),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}

// ActionPayload carries one decided primitive.
type ActionPayload struct {
	Action string `json:"action"`
}

// ActionDecided publishes the primitive chosen for an agent this tick. Debug
// severity: filtered out unless a router opts in.
func ActionDecided(ctx context.Context, pub logging.Publisher, tick uint64, agentID string, payload ActionPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventActionDecided,
		Tick:     tick,
		Actor:    agentRef(agentID),
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}

// PathErrorPayload captures why an agent's navigation attempt failed.
type PathErrorPayload struct {
	Reason string  `json:"reason"`
	GoalX  float64 `json:"goalX"`
	GoalZ  float64 `json:"goalZ"`
}

// PathError publishes a navigation failure for an agent.
func PathError(ctx context.Context, pub logging.Publisher, tick uint64, agentID string, payload PathErrorPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPathError,
		Tick:     tick,
		Actor:    agentRef(agentID),
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}

// ThrashingPayload captures the state of a corrected oscillation.
type ThrashingPayload struct {
	RunLength int    `json:"runLength"`
	Corrected string `json:"corrected"`
}

// ThrashingCorrected publishes an overridden oscillating turn sequence.
func ThrashingCorrected(ctx context.Context, pub logging.Publisher, tick uint64, agentID string, payload ThrashingPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventThrashingCorrected,
		Tick:     tick,
		Actor:    agentRef(agentID),
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}

// TickBudgetPayload captures timing details for a tick budget breach.
type TickBudgetPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
}

// TickBudgetOverrun publishes a warning when the simulation loop runs long.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityWarn,
		Category: logging.CategorySystem,
		Payload:  payload,
	})
}
