// Package config loads the controller's JSON configuration, the network
// graph JSON (nodes, SDN-controllable nodes, link capacities), and the
// flows CSV, per spec.md §6.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config is the controller's JSON configuration file. Only the ambient
// server/timer knobs live here; the graph and flows have their own loaders
// below since spec.md treats them as distinct input files.
type Config struct {
	Server     ServerConfig     `json:"server"`
	Controller ControllerConfig `json:"controller"`
	Planner    PlannerConfig    `json:"planner"`
}

// ServerConfig contains the HTTP status/metrics server settings.
type ServerConfig struct {
	Listen       string `json:"listen"`
	ReadTimeout  int    `json:"readTimeout"`  // seconds
	WriteTimeout int    `json:"writeTimeout"` // seconds
	IdleTimeout  int    `json:"idleTimeout"`  // seconds
}

// ControllerConfig contains the OpenFlow session manager's listen address
// and timer periods.
type ControllerConfig struct {
	ListenAddr     string `json:"listenAddr"`
	LLDPPeriodMs   int    `json:"lldpPeriodMs"`
	StatsPeriodMs  int    `json:"statsPeriodMs"`
	TopologyExpiry int    `json:"topologyExpirySeconds"`
}

// PlannerConfig contains the joint TE/energy planning cycle's tunables.
type PlannerConfig struct {
	CycleIntervalSeconds int     `json:"cycleIntervalSeconds"`
	PathsPerPair         int     `json:"pathsPerPair"`
	SolverTimeLimit      float64 `json:"solverTimeLimitSeconds"`
}

// Load loads a controller configuration from a JSON file at path, applying
// defaults to any unset field.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset fields with the package defaults. Exported so
// a caller building a Config without a file on disk (e.g. relying solely
// on the CLI's positional port argument) can still start from a fully
// defaulted value.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Controller.ListenAddr == "" {
		cfg.Controller.ListenAddr = ":6633"
	}
	if cfg.Controller.LLDPPeriodMs == 0 {
		cfg.Controller.LLDPPeriodMs = 2000
	}
	if cfg.Controller.StatsPeriodMs == 0 {
		cfg.Controller.StatsPeriodMs = 3000
	}
	if cfg.Controller.TopologyExpiry == 0 {
		cfg.Controller.TopologyExpiry = 10
	}
	if cfg.Planner.CycleIntervalSeconds == 0 {
		cfg.Planner.CycleIntervalSeconds = 10
	}
	if cfg.Planner.PathsPerPair == 0 {
		cfg.Planner.PathsPerPair = 3
	}
}

// LLDPPeriod returns the configured LLDP emission period as a Duration.
func (cfg Config) LLDPPeriod() time.Duration {
	return time.Duration(cfg.Controller.LLDPPeriodMs) * time.Millisecond
}

// StatsPeriod returns the configured port-stats polling period as a
// Duration.
func (cfg Config) StatsPeriod() time.Duration {
	return time.Duration(cfg.Controller.StatsPeriodMs) * time.Millisecond
}

// TopologyExpiry returns the configured edge freshness window as a
// Duration.
func (cfg Config) TopologyExpiry() time.Duration {
	return time.Duration(cfg.Controller.TopologyExpiry) * time.Second
}

// PlannerCycleInterval returns the configured planning cycle period as a
// Duration.
func (cfg Config) PlannerCycleInterval() time.Duration {
	return time.Duration(cfg.Planner.CycleIntervalSeconds) * time.Second
}
