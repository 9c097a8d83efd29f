// Package planner builds and solves the joint traffic-engineering/energy
// MILP: which candidate path carries each flow, and which SDN-controlled
// links can be powered down.
package planner

import (
	"context"
	"fmt"
	"sort"

	"github.com/draffensperger/golp"
	"github.com/netarch/teflow/internal/circuitbreaker"
	"github.com/netarch/teflow/internal/model"
)

// Weights is the global energy-vs-load tradeoff pair the forecaster
// derives from predicted peak demand against a reference threshold.
type Weights struct {
	EWr float64
	LWr float64
}

// circuitBreakerThreshold is how many consecutive no-solution results trip
// the breaker, per SPEC_FULL.md §4.8.
const circuitBreakerThreshold = 3

// Planner owns the circuit breaker guarding the external solver from being
// hammered every control cycle once it's clearly wedged.
type Planner struct {
	breaker *circuitbreaker.CircuitBreaker
}

// New builds a Planner with a circuit breaker tuned to trip after
// circuitBreakerThreshold consecutive solver failures.
func New() *Planner {
	cfg := circuitbreaker.DefaultConfig()
	cfg.FailureThreshold = circuitBreakerThreshold
	return &Planner{breaker: circuitbreaker.New(cfg)}
}

// flowPathCol identifies one x[f,p] decision column.
type flowPathCol struct {
	flowID string
	pathID int
}

// Solve builds and solves the MILP described in SPEC_FULL.md §4.8 for the
// given flows, candidate paths, link capacities/SDN-ness, and energy/load
// weights. A non-zero timeLimit is translated into a solver-side time
// budget; ctx cancellation is not propagated mid-solve (golp offers no
// cooperative abort hook).
func (pl *Planner) Solve(ctx context.Context, flows []model.Flow, paths map[int]model.Path, caps model.GraphCaps, w Weights, timeLimit float64) (model.TEOutput, error) {
	if err := pl.breaker.Allow(); err != nil {
		return model.TEOutput{Optimal: false, Status: "solver unavailable"}, nil
	}

	out, err := pl.solveOnce(flows, paths, caps, w, timeLimit)
	if err != nil || !out.Optimal && out.Status == "no primal solution" {
		pl.breaker.RecordFailure()
	} else {
		pl.breaker.RecordSuccess()
	}
	return out, err
}

func (pl *Planner) solveOnce(flows []model.Flow, paths map[int]model.Path, caps model.GraphCaps, w Weights, timeLimit float64) (model.TEOutput, error) {
	// A flow with no candidate path cannot be assigned.
	for _, f := range flows {
		if len(f.CandidatePathIDs) == 0 {
			return model.TEOutput{Optimal: false, Status: "infeasible"}, nil
		}
	}

	// Stable column ordering: flow-path columns first, then one per SDN
	// link referenced by some candidate path.
	var cols []flowPathCol
	flowByID := make(map[string]model.Flow, len(flows))
	for _, f := range flows {
		flowByID[f.ID] = f
		cand := append([]int(nil), f.CandidatePathIDs...)
		sort.Ints(cand)
		for _, pid := range cand {
			cols = append(cols, flowPathCol{flowID: f.ID, pathID: pid})
		}
	}

	linkSet := make(map[model.LinkId]bool)
	for _, c := range cols {
		for _, e := range paths[c.pathID].Edges {
			linkSet[e] = true
		}
	}
	var sdnLinks, legacyLinks []model.LinkId
	for e := range linkSet {
		if caps.IsSDN[e] {
			sdnLinks = append(sdnLinks, e)
		} else {
			legacyLinks = append(legacyLinks, e)
		}
	}
	sort.Slice(sdnLinks, func(i, j int) bool { return lessLink(sdnLinks[i], sdnLinks[j]) })
	sort.Slice(legacyLinks, func(i, j int) bool { return lessLink(legacyLinks[i], legacyLinks[j]) })

	numX := len(cols)
	numBeta := len(sdnLinks)
	numCols := numX + numBeta
	if numCols == 0 {
		return model.TEOutput{ChosenPath: map[string]int{}, Beta: map[model.LinkId]int{}, LoadMbps: map[model.LinkId]float64{}, Optimal: true, Status: "no decisions to make"}, nil
	}

	betaCol := make(map[model.LinkId]int, numBeta)
	for i, e := range sdnLinks {
		betaCol[e] = numX + i
	}

	lp := golp.NewLP(0, numCols)
	for i, c := range cols {
		lp.SetColName(i, fmt.Sprintf("x_%s_%d", c.flowID, c.pathID))
		lp.SetInt(i, true)
		lp.SetBounds(i, 0, 1)
	}
	for e, i := range betaCol {
		lp.SetColName(i, fmt.Sprintf("beta_%d_%d", e.U, e.V))
		lp.SetInt(i, true)
		lp.SetBounds(i, 0, 1)
	}

	// Objective.
	obj := make([]float64, numCols)
	for i, c := range cols {
		f := flowByID[c.flowID]
		pathCost := 0.0
		for _, e := range paths[c.pathID].Edges {
			ce := caps.CapacityMbps[e]
			if ce > 0 {
				pathCost += f.DemandMbps / ce
			}
		}
		obj[i] = w.LWr * pathCost
	}
	for _, e := range sdnLinks {
		obj[betaCol[e]] = w.EWr * caps.PowerCostOf(e)
	}
	lp.SetObjFn(obj)
	lp.SetMinimize()

	// Constraint 1: unique assignment per flow.
	for _, f := range flows {
		if len(f.CandidatePathIDs) == 0 {
			continue
		}
		row := make([]float64, numCols)
		for i, c := range cols {
			if c.flowID == f.ID {
				row[i] = 1
			}
		}
		lp.AddConstraint(row, golp.EQ, 1)
	}

	// Constraint 2: SDN link capacity with on/off.
	for _, e := range sdnLinks {
		row := make([]float64, numCols)
		for i, c := range cols {
			if containsLink(paths[c.pathID], e) {
				row[i] = flowByID[c.flowID].DemandMbps
			}
		}
		row[betaCol[e]] = -caps.CapacityMbps[e]
		lp.AddConstraint(row, golp.LE, 0)
	}

	// Constraint 3: legacy link capacity.
	for _, e := range legacyLinks {
		row := make([]float64, numCols)
		for i, c := range cols {
			if containsLink(paths[c.pathID], e) {
				row[i] = flowByID[c.flowID].DemandMbps
			}
		}
		lp.AddConstraint(row, golp.LE, caps.CapacityMbps[e])
	}

	if timeLimit > 0 {
		lp.SetTimeout(timeLimit)
	}

	ret := lp.Solve()
	if !isSolved(ret) {
		return model.TEOutput{Optimal: false, Status: "no primal solution"}, nil
	}

	vars := lp.Variables()
	chosen := make(map[string]int)
	bestX := make(map[string]float64)
	for i, c := range cols {
		x := vars[i]
		if cur, ok := bestX[c.flowID]; !ok || x > cur || (x == cur && c.pathID < chosen[c.flowID]) {
			bestX[c.flowID] = x
			chosen[c.flowID] = c.pathID
		}
	}

	beta := make(map[model.LinkId]int, len(linkSet))
	for _, e := range legacyLinks {
		beta[e] = 1
	}
	for e, i := range betaCol {
		if vars[i] >= 0.5 {
			beta[e] = 1
		} else {
			beta[e] = 0
		}
	}

	load := make(map[model.LinkId]float64, len(linkSet))
	for i, c := range cols {
		for _, e := range paths[c.pathID].Edges {
			load[e] += flowByID[c.flowID].DemandMbps * vars[i]
		}
	}

	return model.TEOutput{
		ChosenPath: chosen,
		Beta:       beta,
		LoadMbps:   load,
		Objective:  lp.Objective(),
		Optimal:    ret == golp.OPTIMAL,
		Status:     statusText(ret),
	}, nil
}

func containsLink(p model.Path, e model.LinkId) bool {
	for _, pe := range p.Edges {
		if pe == e {
			return true
		}
	}
	return false
}

func lessLink(a, b model.LinkId) bool {
	if a.U != b.U {
		return a.U < b.U
	}
	return a.V < b.V
}

func isSolved(ret int) bool {
	switch ret {
	case golp.OPTIMAL, golp.SUBOPTIMAL, golp.FEASFOUND:
		return true
	default:
		return false
	}
}

func statusText(ret int) string {
	switch ret {
	case golp.OPTIMAL:
		return "optimal"
	case golp.SUBOPTIMAL:
		return "suboptimal"
	case golp.INFEASIBLE:
		return "infeasible"
	case golp.UNBOUNDED:
		return "unbounded"
	case golp.TIMEOUT:
		return "timeout"
	default:
		return "no primal solution"
	}
}
