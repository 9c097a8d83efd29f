// Package planning runs the outer control cycle: forecast each link's
// near-future load, enumerate candidate paths over the live topology,
// solve the joint TE/energy MILP, and push the result through the
// actuator. It is the "application bootstrapping loop" SPEC_FULL.md §5
// requires to exist so the repo runs end to end; everything it calls is
// someone else's package.
package planning

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/netarch/teflow/internal/forecast"
	"github.com/netarch/teflow/internal/metrics"
	"github.com/netarch/teflow/internal/model"
	"github.com/netarch/teflow/internal/pathenum"
	"github.com/netarch/teflow/internal/planner"
)

// DefaultPeriod and DefaultPathsPerPair are the cycle cadence and path
// fan-out, per spec.md §6's planner defaults.
const (
	DefaultPeriod        = 10 * time.Second
	DefaultPathsPerPair  = 3
	DefaultSolverTimeout = 5.0
)

// Topology is the subset of topology.Viewer the loop depends on.
type Topology interface {
	Adjacency() map[int][]int
}

// Monitor is the subset of monitor.Monitor the loop depends on.
type Monitor interface {
	TotalSeries() map[model.LinkId][]float64
}

// FlowSource supplies the flow demands the cycle assigns candidate paths
// to. A static slice (loaded once at startup from the flows CSV) satisfies
// this; it is an interface so a future dynamic flow source can drop in.
type FlowSource interface {
	Flows() []model.Flow
}

// StaticFlows is a FlowSource over a fixed slice, the shape loaded from
// config.LoadFlows.
type StaticFlows []model.Flow

// Flows returns the underlying slice.
func (f StaticFlows) Flows() []model.Flow { return []model.Flow(f) }

// Config tunes one planning cycle.
type Config struct {
	Period        time.Duration
	PathsPerPair  int
	SolverTimeout float64
	Weights       forecast.Config
}

func (c Config) withDefaults() Config {
	if c.Period <= 0 {
		c.Period = DefaultPeriod
	}
	if c.PathsPerPair <= 0 {
		c.PathsPerPair = DefaultPathsPerPair
	}
	if c.SolverTimeout <= 0 {
		c.SolverTimeout = DefaultSolverTimeout
	}
	return c
}

// Loop owns one control cycle's dependencies. None of its own state is
// mutable outside Run, so it needs no lock of its own.
type Loop struct {
	cfg      Config
	topology Topology
	monitor  Monitor
	flows    FlowSource
	caps     model.GraphCaps
	planner  *planner.Planner
	apply    func(ctx context.Context, plan model.TEOutput)
	metrics  *metrics.Metrics
}

// NewLoop builds a Loop. apply is normally (*actuator.Actuator).Apply
// wrapped to discard its result, since the cycle only logs it.
func NewLoop(cfg Config, topology Topology, monitor Monitor, flows FlowSource, caps model.GraphCaps, pl *planner.Planner, apply func(ctx context.Context, plan model.TEOutput), m *metrics.Metrics) *Loop {
	return &Loop{
		cfg:      cfg.withDefaults(),
		topology: topology,
		monitor:  monitor,
		flows:    flows,
		caps:     caps,
		planner:  pl,
		apply:    apply,
		metrics:  m,
	}
}

// Run drives the cycle tick until ctx is cancelled, per the teacher's
// task.Heartbeat ticker idiom.
func (l *Loop) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(l.cfg.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.runCycle(ctx)
		}
	}
}

// runCycle performs one forecast -> enumerate -> solve -> actuate pass.
func (l *Loop) runCycle(ctx context.Context) {
	flows := l.flows.Flows()
	if len(flows) == 0 {
		return
	}

	adjacency := l.topology.Adjacency()
	pairs := pairsOf(flows)
	enumerated := pathenum.Enumerate(adjacency, pairs, l.cfg.PathsPerPair)

	assigned := assignCandidates(flows, enumerated)

	weights := l.deriveWeights(enumerated.Paths)

	plan, err := l.planner.Solve(ctx, assigned, enumerated.Paths, l.caps, weights, l.cfg.SolverTimeout)
	if err != nil {
		log.Printf("[planning] solve error: %v", err)
		l.metrics.RecordPlannerRun(false, 0)
		return
	}
	l.metrics.RecordPlannerRun(plan.Optimal, plan.Objective)
	if !plan.Optimal {
		log.Printf("[planning] cycle produced no feasible plan: %s", plan.Status)
		return
	}

	l.apply(ctx, plan)
}

// pairsOf derives the (src,dst) pairs, src<dst, the path enumerator needs
// from the flow set, de-duplicated.
func pairsOf(flows []model.Flow) []pathenum.Pair {
	seen := make(map[pathenum.Pair]bool, len(flows))
	var pairs []pathenum.Pair
	for _, f := range flows {
		src, dst := f.Src, f.Dst
		if src > dst {
			src, dst = dst, src
		}
		p := pathenum.Pair{Src: src, Dst: dst}
		if seen[p] {
			continue
		}
		seen[p] = true
		pairs = append(pairs, p)
	}
	return pairs
}

// assignCandidates attaches each flow's freshly enumerated candidate path
// ids, leaving a flow with no candidates (its pair is currently
// disconnected) with an empty set for the planner to report as infeasible.
func assignCandidates(flows []model.Flow, enumerated pathenum.Result) []model.Flow {
	out := make([]model.Flow, len(flows))
	for i, f := range flows {
		src, dst := f.Src, f.Dst
		if src > dst {
			src, dst = dst, src
		}
		f.CandidatePathIDs = enumerated.ByPair[pathenum.Pair{Src: src, Dst: dst}]
		out[i] = f
	}
	return out
}

// deriveWeights forecasts every known link's near-future load from the
// monitor's history and converts the worst-loaded SDN link's predicted
// peak, against its capacity, into the planner's EWr/LWr pair, per
// spec.md §4.6.
func (l *Loop) deriveWeights(paths map[int]model.Path) planner.Weights {
	series := l.monitor.TotalSeries()
	strSeries := make(map[string][]float64, len(series))
	for link, h := range series {
		strSeries[linkKey(link)] = h
	}
	forecasts := forecast.BatchPredict(strSeries, l.cfg.Weights)

	var worstRatio, worstPeak, worstCap float64
	for _, p := range paths {
		for _, e := range p.Edges {
			if !l.caps.IsSDN[e] {
				continue
			}
			cap := l.caps.CapacityMbps[e]
			if cap <= 0 {
				continue
			}
			lf, ok := forecasts[linkKey(e)]
			if !ok {
				continue
			}
			ratio := lf.Predicted / cap
			if ratio > worstRatio {
				worstRatio = ratio
				worstPeak = lf.Predicted
				worstCap = cap
			}
		}
	}

	ewr, lwr := forecast.Weights(worstPeak, worstCap, l.cfg.Weights)
	return planner.Weights{EWr: ewr, LWr: lwr}
}

func linkKey(e model.LinkId) string {
	return fmt.Sprintf("%d-%d", e.U, e.V)
}
