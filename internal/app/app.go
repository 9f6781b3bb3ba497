// Package app wires the navigation service together: field, planner,
// simulation, hub, logging, and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"wayfarer/nav/follower"
	"wayfarer/nav/internal/net"
	"wayfarer/nav/internal/sim"
	"wayfarer/nav/internal/telemetry"
	"wayfarer/nav/logging"
	"wayfarer/nav/logging/sinks"
	"wayfarer/nav/pathfind"
	"wayfarer/nav/world"
)

// Run builds the service from environment configuration and serves until the
// listener fails.
func Run(ctx context.Context) error {
	router, err := buildRouter()
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(ctx); cerr != nil {
			log.Printf("failed to close logging router: %v", cerr)
		}
	}()

	worldCfg := world.DefaultConfig()
	if seed := os.Getenv("NAV_SEED"); seed != "" {
		worldCfg.Seed = seed
	}
	if raw := os.Getenv("NAV_OBSTACLE_COUNT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			worldCfg.ObstacleCount = value
		} else {
			log.Printf("invalid NAV_OBSTACLE_COUNT=%q: %v", raw, err)
		}
	}

	followerCfg := follower.DefaultConfig()
	if raw := os.Getenv("NAV_FIX_THRASHING"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			followerCfg.FixThrashing = value
		} else {
			log.Printf("invalid NAV_FIX_THRASHING=%q: %v", raw, err)
		}
	}

	field := world.NewField(worldCfg)
	planner := pathfind.NewPlanner(field, pathfind.DefaultCellSize)
	counters := telemetry.NewCounters()

	simWorld := sim.NewWorld(field, planner, followerCfg, router, counters)
	hub := net.NewHub(simWorld, counters)

	stop := make(chan struct{})
	go hub.RunSimulation(ctx, stop)
	defer close(stop)

	addr := os.Getenv("NAV_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{Addr: addr, Handler: hub.Routes()}
	log.Printf("server listening on %s", addr)

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// buildRouter assembles the logging router from NAV_LOG_SINKS, defaulting to
// the console sink. A json sink writes to NAV_LOG_JSON_PATH.
func buildRouter() (*logging.Router, error) {
	cfg := logging.DefaultConfig()
	if raw := os.Getenv("NAV_LOG_SINKS"); raw != "" {
		cfg.EnabledSinks = splitCSV(raw)
	}

	var named []logging.NamedSink
	if cfg.HasSink("console") {
		named = append(named, logging.NamedSink{
			Name: "console",
			Sink: sinks.NewConsoleSink(os.Stdout, cfg.Console),
		})
	}
	if cfg.HasSink("json") {
		path := os.Getenv("NAV_LOG_JSON_PATH")
		if path == "" {
			path = "nav-events.ndjson"
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open json log %s: %w", path, err)
		}
		named = append(named, logging.NamedSink{
			Name: "json",
			Sink: sinks.NewJSON(file, cfg.JSON.FlushInterval),
		})
	}

	return logging.NewRouter(nil, cfg, named)
}

func splitCSV(raw string) []string {
	var parts []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
