// Package metrics registers and exposes the controller's Prometheus
// metrics, replacing a hand-rolled text exposition with real client_golang
// collectors.
package metrics

import (
	"fmt"
	"sync"

	"github.com/netarch/teflow/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the controller registers.
type Metrics struct {
	SwitchesConnected prometheus.Gauge
	PacketInTotal     prometheus.Counter
	FlowModTotal      prometheus.Counter

	LinkUtil   *prometheus.GaugeVec
	LinkRxMbps *prometheus.GaugeVec
	LinkTxMbps *prometheus.GaugeVec

	PlannerRunsTotal       prometheus.Counter
	PlannerInfeasibleTotal prometheus.Counter
	PlannerObjective       prometheus.Gauge
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide Metrics instance, registering its
// collectors with the default registry on first use.
func Get() *Metrics {
	once.Do(func() {
		instance = New(prometheus.DefaultRegisterer)
	})
	return instance
}

// New builds a Metrics and registers its collectors with reg. Passing a
// fresh prometheus.NewRegistry() is useful in tests to avoid colliding with
// the package-global instance.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SwitchesConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "teflow_switches_connected",
			Help: "Number of switches currently connected to the controller.",
		}),
		PacketInTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teflow_packet_in_total",
			Help: "Total PACKET_IN messages received across all switches.",
		}),
		FlowModTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teflow_flow_mod_total",
			Help: "Total FLOW_MOD messages installed across all switches.",
		}),
		LinkUtil: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "teflow_link_util",
			Help: "Most recently observed link utilization in [0,1].",
		}, []string{"link"}),
		LinkRxMbps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "teflow_link_rx_mbps",
			Help: "Most recently observed link receive rate in Mbps.",
		}, []string{"link"}),
		LinkTxMbps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "teflow_link_tx_mbps",
			Help: "Most recently observed link transmit rate in Mbps.",
		}, []string{"link"}),
		PlannerRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teflow_planner_runs_total",
			Help: "Total planning cycles attempted.",
		}),
		PlannerInfeasibleTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teflow_planner_infeasible_total",
			Help: "Total planning cycles that returned no feasible plan.",
		}),
		PlannerObjective: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "teflow_planner_objective",
			Help: "Objective value of the most recent feasible plan.",
		}),
	}

	reg.MustRegister(
		m.SwitchesConnected,
		m.PacketInTotal,
		m.FlowModTotal,
		m.LinkUtil,
		m.LinkRxMbps,
		m.LinkTxMbps,
		m.PlannerRunsTotal,
		m.PlannerInfeasibleTotal,
		m.PlannerObjective,
	)
	return m
}

// linkLabel formats a LinkId as the "u-v" label value shared by every
// per-link vector.
func linkLabel(link model.LinkId) string {
	return fmt.Sprintf("%d-%d", link.U, link.V)
}

// SetLinkRate updates the three per-link gauges from one monitor
// observation.
func (m *Metrics) SetLinkRate(link model.LinkId, rate model.LinkRate) {
	label := linkLabel(link)
	m.LinkUtil.WithLabelValues(label).Set(rate.Util)
	m.LinkRxMbps.WithLabelValues(label).Set(rate.RxMbps)
	m.LinkTxMbps.WithLabelValues(label).Set(rate.TxMbps)
}

// RecordPlannerRun updates the planner counters/gauge after one cycle.
func (m *Metrics) RecordPlannerRun(feasible bool, objective float64) {
	m.PlannerRunsTotal.Inc()
	if !feasible {
		m.PlannerInfeasibleTotal.Inc()
		return
	}
	m.PlannerObjective.Set(objective)
}
