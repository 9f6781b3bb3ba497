// Package telemetry keeps cheap atomic counters for the navigation service.
// Counters are written from the simulation and network paths and read from
// the diagnostics endpoint.
package telemetry

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

type Counters struct {
	decisions          atomic.Uint64
	corrections        atomic.Uint64
	pathsPlanned       atomic.Uint64
	pathErrors         atomic.Uint64
	goalsReached       atomic.Uint64
	bytesSent          atomic.Uint64
	agentsSent         atomic.Uint64
	lastBroadcastBytes atomic.Uint64
	tickDurationMillis atomic.Int64
	debug              bool
}

type Snapshot struct {
	Decisions          uint64 `json:"decisions"`
	Corrections        uint64 `json:"thrashingCorrections"`
	PathsPlanned       uint64 `json:"pathsPlanned"`
	PathErrors         uint64 `json:"pathErrors"`
	GoalsReached       uint64 `json:"goalsReached"`
	BytesSent          uint64 `json:"bytesSent"`
	AgentsSent         uint64 `json:"agentsSent"`
	TickDurationMillis int64  `json:"tickDurationMillis"`
}

func NewCounters() *Counters {
	c := &Counters{}
	if os.Getenv("DEBUG_TELEMETRY") == "1" {
		c.debug = true
	}
	return c
}

// RecordDecision counts one follower decision, plus whether a thrashing
// correction overrode the greedy choice.
func (c *Counters) RecordDecision(corrected bool) {
	c.decisions.Add(1)
	if corrected {
		c.corrections.Add(1)
	}
}

func (c *Counters) RecordPathPlanned() {
	c.pathsPlanned.Add(1)
}

func (c *Counters) RecordPathError() {
	c.pathErrors.Add(1)
}

func (c *Counters) RecordGoalReached() {
	c.goalsReached.Add(1)
}

func (c *Counters) RecordBroadcast(bytes, agents int) {
	if bytes < 0 {
		bytes = 0
	}
	if agents < 0 {
		agents = 0
	}
	c.bytesSent.Add(uint64(bytes))
	c.agentsSent.Add(uint64(agents))
	c.lastBroadcastBytes.Store(uint64(bytes))
}

func (c *Counters) RecordTickDuration(duration time.Duration) {
	millis := duration.Milliseconds()
	if millis < 0 {
		millis = 0
	}
	c.tickDurationMillis.Store(millis)
	if c.debug {
		fmt.Printf(
			"[telemetry] tick=%dms decisions=%d corrections=%d lastBroadcastBytes=%d\n",
			millis,
			c.decisions.Load(),
			c.corrections.Load(),
			c.lastBroadcastBytes.Load(),
		)
	}
}

func (c *Counters) DebugEnabled() bool {
	return c.debug
}

func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Decisions:          c.decisions.Load(),
		Corrections:        c.corrections.Load(),
		PathsPlanned:       c.pathsPlanned.Load(),
		PathErrors:         c.pathErrors.Load(),
		GoalsReached:       c.goalsReached.Load(),
		BytesSent:          c.bytesSent.Load(),
		AgentsSent:         c.agentsSent.Load(),
		TickDurationMillis: c.tickDurationMillis.Load(),
	}
}
