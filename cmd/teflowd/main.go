package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/netarch/teflow/internal/actuator"
	"github.com/netarch/teflow/internal/config"
	"github.com/netarch/teflow/internal/controller"
	"github.com/netarch/teflow/internal/enforcement"
	"github.com/netarch/teflow/internal/httpapi"
	"github.com/netarch/teflow/internal/metrics"
	"github.com/netarch/teflow/internal/model"
	"github.com/netarch/teflow/internal/monitor"
	"github.com/netarch/teflow/internal/planner"
	"github.com/netarch/teflow/internal/planning"
	"github.com/netarch/teflow/internal/topology"
)

// Build-time variables (set by -ldflags).
var (
	Version = "dev"
	Commit  = "unknown"
)

const (
	serverSignature = "teflowd"
	shutdownTimeout = 30 * time.Second
	defaultPort     = 6633
)

func main() {
	configFile := flag.String("config", "", "Path to controller configuration JSON (optional)")
	graphFile := flag.String("graph", "graph.json", "Path to network graph JSON")
	flowsFile := flag.String("flows", "flows.csv", "Path to flows CSV")
	showVersion := flag.Bool("v", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s (commit: %s)\n", serverSignature, Version, Commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configFile, flag.Arg(0))
	if err != nil {
		log.Printf("startup: %v", err)
		os.Exit(1)
	}

	graph, err := config.LoadGraph(*graphFile)
	if err != nil {
		log.Printf("startup: load graph: %v", err)
		os.Exit(1)
	}

	flows, err := config.LoadFlows(*flowsFile)
	if err != nil {
		log.Printf("startup: load flows: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.Get()

	mgr := controller.NewManager(controller.Config{
		ListenAddr:  cfg.Controller.ListenAddr,
		LLDPPeriod:  cfg.LLDPPeriod(),
		StatsPeriod: cfg.StatsPeriod(),
	}, 0, 0)
	if err := mgr.Listen(); err != nil {
		log.Printf("startup: %v", err)
		os.Exit(1)
	}

	viewer := topology.NewViewer(mgr, topology.IdentityMapper, cfg.LLDPPeriod(), cfg.TopologyExpiry())

	mon := monitor.NewMonitor(mgr, linkResolver(viewer), capacityFunc(graph.Caps), cfg.StatsPeriod())

	enforcer := enforcement.NewState()
	act := actuator.New(mgr, endpointLocator(viewer), enforcer)
	pl := planner.New()

	planCfg := planning.Config{
		Period:        cfg.PlannerCycleInterval(),
		PathsPerPair:  cfg.Planner.PathsPerPair,
		SolverTimeout: cfg.Planner.SolverTimeLimit,
	}
	loop := planning.NewLoop(planCfg, viewer, mon, planning.StaticFlows(flows), graph.Caps, pl,
		func(ctx context.Context, plan model.TEOutput) {
			res := act.Apply(ctx, plan)
			log.Printf("[planning] applied=%d failed=%d skipped=%d", len(res.Applied), len(res.Failed), len(res.Skipped))
		}, m)

	handler := httpapi.NewHandler(Version, enforcer, viewer, mon, mgr)
	server := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      handler.Mux(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(4)
	go mgr.Serve(ctx, &wg)
	go viewer.Run(ctx, &wg)
	go mon.Run(ctx, &wg)
	go loop.Run(ctx, &wg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("%s %s listening on %s (switches on %s)", serverSignature, Version, cfg.Server.Listen, cfg.Controller.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	case err := <-serverErr:
		log.Printf("http server error: %v", err)
	}

	log.Println("initiating graceful shutdown...")
	cancel()
	mgr.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http server shutdown error: %v", err)
	}

	waitChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitChan)
	}()

	select {
	case <-waitChan:
		log.Println("all background tasks completed")
	case <-shutdownCtx.Done():
		log.Println("shutdown timeout reached")
	}

	log.Printf("%s stopped", serverSignature)
}

// loadConfig loads the controller config file if given, else starts from
// defaults; a positional port argument, per spec.md §6, overrides the
// switch-facing listen address either way.
func loadConfig(configFile, portArg string) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}

	port := defaultPort
	if portArg != "" {
		p, err := strconv.Atoi(portArg)
		if err != nil {
			return nil, fmt.Errorf("invalid port argument %q: %w", portArg, err)
		}
		port = p
	}
	if configFile == "" || portArg != "" {
		cfg.Controller.ListenAddr = fmt.Sprintf(":%d", port)
	}
	return cfg, nil
}

// linkResolver adapts the topology viewer's live edge set into the
// monitor's switch/port coordinate system. With topology.IdentityMapper in
// use, a node id and a model.SwitchId are the same integer.
func linkResolver(v *topology.Viewer) monitor.LinkResolver {
	return func() map[model.LinkId][2]monitor.LinkEndpoint {
		edges := v.Snapshot()
		out := make(map[model.LinkId][2]monitor.LinkEndpoint, len(edges))
		for _, e := range edges {
			link := model.NewLinkId(e.U, e.V)
			out[link] = [2]monitor.LinkEndpoint{
				{Switch: model.SwitchId(e.U), Port: e.UPort},
				{Switch: model.SwitchId(e.V), Port: e.VPort},
			}
		}
		return out
	}
}

// endpointLocator is the actuator's analog of linkResolver.
func endpointLocator(v *topology.Viewer) actuator.EndpointLocator {
	return func(link model.LinkId) (u, v2 actuator.Endpoint, ok bool) {
		for _, e := range v.Snapshot() {
			if model.NewLinkId(e.U, e.V) != link {
				continue
			}
			return actuator.Endpoint{Switch: model.SwitchId(e.U), Port: e.UPort},
				actuator.Endpoint{Switch: model.SwitchId(e.V), Port: e.VPort}, true
		}
		return actuator.Endpoint{}, actuator.Endpoint{}, false
	}
}

// capacityFunc adapts the parsed graph's capacity map to monitor.CapacityFunc.
func capacityFunc(caps model.GraphCaps) monitor.CapacityFunc {
	return func(link model.LinkId) (float64, bool) {
		c, ok := caps.CapacityMbps[link]
		return c, ok
	}
}
