// Package net exposes the navigation service over HTTP and WebSocket: agents
// join, receive goals, and subscribers watch state snapshots per tick.
package net

import (
	"wayfarer/nav/follower"
	"wayfarer/nav/internal/sim"
	"wayfarer/nav/internal/telemetry"
	"wayfarer/nav/world"
)

// ProtoVersion tags every server-to-client message.
const ProtoVersion = 1

type joinResponse struct {
	Ver            int                 `json:"ver"`
	ID             string              `json:"id"`
	Agents         []sim.AgentSnapshot `json:"agents"`
	Obstacles      []world.Obstacle    `json:"obstacles"`
	Config         world.Config        `json:"config"`
	FollowerConfig follower.Config     `json:"followerConfig"`
}

type stateMessage struct {
	Ver        int                 `json:"ver"`
	Type       string              `json:"type"`
	Tick       uint64              `json:"t"`
	Agents     []sim.AgentSnapshot `json:"agents"`
	ServerTime int64               `json:"serverTime"`
}

type planMessage struct {
	Ver     int      `json:"ver"`
	Type    string   `json:"type"`
	Actions []string `json:"actions"`
}

type errorMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// clientMessage is the envelope for everything a client sends over the
// socket. Type selects which fields are meaningful.
type clientMessage struct {
	Type   string  `json:"type"`
	GoalX  float64 `json:"goalX,omitempty"`
	GoalZ  float64 `json:"goalZ,omitempty"`
	SentAt int64   `json:"sentAt,omitempty"`
}

const (
	clientTypeGoal      = "goal"
	clientTypeClearGoal = "clear_goal"
	clientTypePlan      = "plan"
	clientTypeHeartbeat = "heartbeat"
)

type diagnosticsAgent struct {
	ID            string `json:"id"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}

type diagnosticsResponse struct {
	Ver       int                `json:"ver"`
	Tick      uint64             `json:"tick"`
	Telemetry telemetry.Snapshot `json:"telemetry"`
	Agents    []diagnosticsAgent `json:"agents"`
}
