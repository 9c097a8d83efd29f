package metrics

import (
	"testing"

	"github.com/netarch/teflow/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetLinkRateUpdatesAllThreeGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	link := model.LinkId{U: 1, V: 2}
	m.SetLinkRate(link, model.LinkRate{RxMbps: 10, TxMbps: 20, Util: 0.5})

	if got := testutil.ToFloat64(m.LinkUtil.WithLabelValues("1-2")); got != 0.5 {
		t.Fatalf("got util %v, want 0.5", got)
	}
	if got := testutil.ToFloat64(m.LinkRxMbps.WithLabelValues("1-2")); got != 10 {
		t.Fatalf("got rx %v, want 10", got)
	}
	if got := testutil.ToFloat64(m.LinkTxMbps.WithLabelValues("1-2")); got != 20 {
		t.Fatalf("got tx %v, want 20", got)
	}
}

func TestRecordPlannerRunInfeasibleSkipsObjective(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordPlannerRun(false, 999)
	if got := testutil.ToFloat64(m.PlannerInfeasibleTotal); got != 1 {
		t.Fatalf("got infeasible count %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PlannerObjective); got != 0 {
		t.Fatalf("got objective %v, want 0 (untouched)", got)
	}

	m.RecordPlannerRun(true, 42)
	if got := testutil.ToFloat64(m.PlannerObjective); got != 42 {
		t.Fatalf("got objective %v, want 42", got)
	}
	if got := testutil.ToFloat64(m.PlannerRunsTotal); got != 2 {
		t.Fatalf("got runs %v, want 2", got)
	}
}
