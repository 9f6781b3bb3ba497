package net

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"wayfarer/nav/follower"
	"wayfarer/nav/geom"
	"wayfarer/nav/internal/sim"
	"wayfarer/nav/internal/telemetry"
)

const (
	tickRate        = 10
	writeWait       = 5 * time.Second
	disconnectAfter = 30 * time.Second
)

// Hub bridges the simulation and its WebSocket subscribers. Every joined
// client owns one agent; subscribers receive a state snapshot per tick.
type Hub struct {
	mu          sync.Mutex
	world       *sim.World
	subscribers map[string]*subscriber
	counters    *telemetry.Counters
}

type subscriber struct {
	conn          *websocket.Conn
	mu            sync.Mutex
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

// NewHub wires a hub over a simulation world.
func NewHub(world *sim.World, counters *telemetry.Counters) *Hub {
	if counters == nil {
		counters = telemetry.NewCounters()
	}
	return &Hub{
		world:       world,
		subscribers: make(map[string]*subscriber),
		counters:    counters,
	}
}

// Join creates a fresh agent and returns the snapshot a client needs to
// render the field.
func (h *Hub) Join(ctx context.Context) (joinResponse, error) {
	snap, err := h.world.AddAgent(ctx, "")
	if err != nil {
		return joinResponse{}, err
	}
	_, agents := h.world.Snapshot()
	field := h.world.Field()
	return joinResponse{
		Ver:            ProtoVersion,
		ID:             snap.ID,
		Agents:         agents,
		Obstacles:      field.Obstacles(),
		Config:         field.Config(),
		FollowerConfig: follower.DefaultConfig(),
	}, nil
}

// Subscribe attaches a socket to an existing agent, replacing any previous
// connection for the same agent.
func (h *Hub) Subscribe(agentID string, conn *websocket.Conn) (*subscriber, bool) {
	if !h.agentExists(agentID) {
		return nil, false
	}

	h.mu.Lock()
	if existing, ok := h.subscribers[agentID]; ok {
		existing.conn.Close()
	}
	sub := &subscriber{conn: conn, lastHeartbeat: time.Now()}
	h.subscribers[agentID] = sub
	h.mu.Unlock()
	return sub, true
}

func (h *Hub) agentExists(agentID string) bool {
	_, agents := h.world.Snapshot()
	for _, agent := range agents {
		if agent.ID == agentID {
			return true
		}
	}
	return false
}

// Disconnect removes the agent and closes its subscriber connection.
func (h *Hub) Disconnect(ctx context.Context, agentID string) {
	h.mu.Lock()
	sub, subOK := h.subscribers[agentID]
	if subOK {
		delete(h.subscribers, agentID)
	}
	h.mu.Unlock()

	if subOK {
		sub.conn.Close()
	}
	h.world.RemoveAgent(ctx, agentID)
}

// HandleClientMessage applies one decoded client command. The returned reply
// is nil when the command produces no direct response.
func (h *Hub) HandleClientMessage(ctx context.Context, agentID string, msg clientMessage) (any, error) {
	switch msg.Type {
	case clientTypeGoal:
		err := h.world.SetGoal(ctx, agentID, geom.Vec3{X: msg.GoalX, Z: msg.GoalZ})
		if err != nil {
			return errorMessage{Ver: ProtoVersion, Type: "error", Reason: err.Error()}, nil
		}
		return nil, nil
	case clientTypeClearGoal:
		if err := h.world.ClearGoal(agentID); err != nil {
			return errorMessage{Ver: ProtoVersion, Type: "error", Reason: err.Error()}, nil
		}
		return nil, nil
	case clientTypePlan:
		actions, err := h.world.PlanRoute(agentID)
		if err != nil {
			return errorMessage{Ver: ProtoVersion, Type: "error", Reason: err.Error()}, nil
		}
		names := make([]string, 0, len(actions))
		for _, action := range actions {
			names = append(names, action.String())
		}
		return planMessage{Ver: ProtoVersion, Type: "plan", Actions: names}, nil
	case clientTypeHeartbeat:
		h.recordHeartbeat(agentID, time.Now(), msg.SentAt)
		return nil, nil
	default:
		return nil, fmt.Errorf("net: unknown message type %q", msg.Type)
	}
}

func (h *Hub) recordHeartbeat(agentID string, receivedAt time.Time, clientSent int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subscribers[agentID]
	if !ok {
		return
	}
	sub.lastHeartbeat = receivedAt
	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			sub.lastRTT = rtt
		}
	}
}

// RunSimulation drives the fixed-rate tick loop until the stop channel
// closes: step the world, drop stale subscribers, broadcast state.
func (h *Hub) RunSimulation(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			h.world.Step(ctx)
			h.dropStale(ctx, now)
			h.BroadcastState()
		}
	}
}

func (h *Hub) dropStale(ctx context.Context, now time.Time) {
	h.mu.Lock()
	var stale []string
	for id, sub := range h.subscribers {
		if now.Sub(sub.lastHeartbeat) > disconnectAfter {
			stale = append(stale, id)
		}
	}
	h.mu.Unlock()

	for _, id := range stale {
		log.Printf("disconnecting %s due to heartbeat timeout", id)
		h.Disconnect(ctx, id)
	}
}

// BroadcastState sends the current snapshot to every subscriber.
func (h *Hub) BroadcastState() {
	tick, agents := h.world.Snapshot()
	msg := stateMessage{
		Ver:        ProtoVersion,
		Type:       "state",
		Tick:       tick,
		Agents:     agents,
		ServerTime: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal state message: %v", err)
		return
	}
	h.counters.RecordBroadcast(len(data), len(agents))

	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			log.Printf("failed to send update to %s: %v", id, err)
			h.Disconnect(context.Background(), id)
		}
	}
}

// DiagnosticsSnapshot assembles the diagnostics endpoint payload.
func (h *Hub) DiagnosticsSnapshot() diagnosticsResponse {
	tick, _ := h.world.Snapshot()

	h.mu.Lock()
	agents := make([]diagnosticsAgent, 0, len(h.subscribers))
	for id, sub := range h.subscribers {
		agents = append(agents, diagnosticsAgent{
			ID:            id,
			LastHeartbeat: sub.lastHeartbeat.UnixMilli(),
			RTTMillis:     sub.lastRTT.Milliseconds(),
		})
	}
	h.mu.Unlock()

	return diagnosticsResponse{
		Ver:       ProtoVersion,
		Tick:      tick,
		Telemetry: h.counters.Snapshot(),
		Agents:    agents,
	}
}
