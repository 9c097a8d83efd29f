package planning

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/netarch/teflow/internal/metrics"
	"github.com/netarch/teflow/internal/model"
	"github.com/netarch/teflow/internal/planner"
	"github.com/prometheus/client_golang/prometheus"
)

type fakeTopology struct{ adj map[int][]int }

func (f fakeTopology) Adjacency() map[int][]int { return f.adj }

type fakeMonitor struct{ series map[model.LinkId][]float64 }

func (f fakeMonitor) TotalSeries() map[model.LinkId][]float64 { return f.series }

func twoNodeCaps() model.GraphCaps {
	caps := model.NewGraphCaps()
	link := model.NewLinkId(1, 2)
	caps.CapacityMbps[link] = 1000
	caps.IsSDN[link] = true
	return caps
}

func TestRunCycleAppliesAPlanForAConnectedPair(t *testing.T) {
	topo := fakeTopology{adj: map[int][]int{1: {2}, 2: {1}}}
	mon := fakeMonitor{series: map[model.LinkId][]float64{
		model.NewLinkId(1, 2): {100, 110, 90, 120, 105, 95},
	}}
	flows := StaticFlows{{ID: "1", Src: 1, Dst: 2, DemandMbps: 200}}

	var applied *model.TEOutput
	l := NewLoop(Config{}, topo, mon, flows, twoNodeCaps(), planner.New(),
		func(ctx context.Context, plan model.TEOutput) { applied = &plan },
		metrics.New(prometheus.NewRegistry()))

	l.runCycle(context.Background())

	if applied == nil {
		t.Fatal("want a plan applied for a connected single-hop pair")
	}
	if !applied.Optimal {
		t.Fatalf("got non-optimal plan: %+v", applied)
	}
	if len(applied.ChosenPath) != 1 {
		t.Fatalf("got %d chosen paths, want 1", len(applied.ChosenPath))
	}
}

func TestRunCycleSkipsWhenNoFlows(t *testing.T) {
	l := NewLoop(Config{}, fakeTopology{}, fakeMonitor{}, StaticFlows{}, model.NewGraphCaps(), planner.New(),
		func(ctx context.Context, plan model.TEOutput) { t.Fatal("want apply not called for an empty flow set") },
		metrics.New(prometheus.NewRegistry()))

	l.runCycle(context.Background())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	l := NewLoop(Config{Period: time.Millisecond}, fakeTopology{}, fakeMonitor{}, StaticFlows{}, model.NewGraphCaps(), planner.New(),
		func(ctx context.Context, plan model.TEOutput) {}, metrics.New(prometheus.NewRegistry()))

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go l.Run(ctx, &wg)

	cancel()
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
