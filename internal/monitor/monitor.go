// Package monitor differences raw port counters into per-link rates and
// utilization, and maintains an append-only time series for each link. The
// series are never trimmed; only WriteCSV's per-link limit caps what is
// exported.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/netarch/teflow/internal/model"
)

// DefaultPeriod is the sample cycle cadence, per spec.md §4.5's link with
// the session manager's stats polling.
const DefaultPeriod = 3 * time.Second

// DefaultStatsSettle is how long to wait after requesting stats before
// reading the aggregated snapshot back, mirroring the session manager's own
// settle window.
const DefaultStatsSettle = 150 * time.Millisecond

// Source is the subset of controller.Manager the monitor depends on.
type Source interface {
	PollPortStats(settle time.Duration) map[model.SwitchId]map[model.PortNo]model.PortStats
	SetStatsPeriod(time.Duration)
}

// LinkEndpoint locates one side of a link in switch/port coordinates.
type LinkEndpoint struct {
	Switch model.SwitchId
	Port   model.PortNo
}

// LinkResolver maps a LinkId to the switch/port pair on each side, the
// coordinates PollPortStats reports in. It is normally backed by
// topology.Viewer's edge set.
type LinkResolver func() map[model.LinkId][2]LinkEndpoint

// CapacityFunc returns the known capacity of a link in Mbps, or (0, false)
// if unknown.
type CapacityFunc func(model.LinkId) (float64, bool)

type linkState struct {
	lastSeen time.Time
	lastRx   uint64
	lastTx   uint64
	haveLast bool
	rate     model.LinkRate
	series   []model.Sample
}

// Monitor owns per-link rate state behind its own lock, independent of the
// controller's and the topology viewer's, per spec.md §5.
type Monitor struct {
	source   Source
	resolve  LinkResolver
	capacity CapacityFunc
	period   time.Duration

	mu    sync.RWMutex
	links map[model.LinkId]*linkState
}

// NewMonitor builds a Monitor. A non-positive period defaults to
// DefaultPeriod.
func NewMonitor(source Source, resolve LinkResolver, capacity CapacityFunc, period time.Duration) *Monitor {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Monitor{
		source:   source,
		resolve:  resolve,
		capacity: capacity,
		period:   period,
		links:    make(map[model.LinkId]*linkState),
	}
}

// Run drives the sample-cycle tick until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	m.source.SetStatsPeriod(m.period)
	ticker := time.NewTicker(m.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

// sample performs one full poll-difference-append cycle across every link
// the resolver currently reports.
func (m *Monitor) sample() {
	stats := m.source.PollPortStats(DefaultStatsSettle)
	endpoints := m.resolve()
	now := time.Now()

	for link, ends := range endpoints {
		u, v := ends[0], ends[1]
		uStats, uOK := stats[u.Switch][u.Port]
		vStats, vOK := stats[v.Switch][v.Port]
		if !uOK && !vOK {
			continue
		}
		rx := uStats.RxBytes + vStats.RxBytes
		tx := uStats.TxBytes + vStats.TxBytes
		m.observe(link, now, rx, tx)
	}
}

// observe applies one differenced observation to a single link's state.
// It is unexported; the package's tests call it directly to feed
// pre-aggregated stats without a full Source round trip.
func (m *Monitor) observe(link model.LinkId, at time.Time, rxBytes, txBytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.links[link]
	if !ok {
		st = &linkState{}
		m.links[link] = st
	}

	var drx, dtx uint64
	var dt time.Duration
	if st.haveLast {
		dt = at.Sub(st.lastSeen)
		drx = saturatingSub(rxBytes, st.lastRx)
		dtx = saturatingSub(txBytes, st.lastTx)
	}

	var rxMbps, txMbps float64
	if st.haveLast && dt > 0 {
		secs := dt.Seconds()
		rxMbps = 8 * float64(drx) / secs / 1e6
		txMbps = 8 * float64(dtx) / secs / 1e6
	}

	util := 0.0
	if capMbps, ok := m.capacity(link); ok && capMbps > 0 {
		util = clamp((rxMbps+txMbps)/capMbps, 0, 1)
	}

	st.lastSeen = at
	st.lastRx = rxBytes
	st.lastTx = txBytes
	st.haveLast = true
	st.rate = model.LinkRate{RxMbps: rxMbps, TxMbps: txMbps, Util: util}
	st.series = append(st.series, model.Sample{Link: link, Time: at, LinkRate: st.rate})
}

// saturatingSub returns a-b, or 0 if b > a (a counter reset).
func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Rates returns the most recently computed rate for every link observed at
// least once. After a link's first observation its rates are zero, since
// there is no earlier sample to difference against.
func (m *Monitor) Rates() map[model.LinkId]model.LinkRate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.LinkId]model.LinkRate, len(m.links))
	for link, st := range m.links {
		if st.haveLast {
			out[link] = st.rate
		}
	}
	return out
}

// TotalSeries returns each link's chronological rx+tx Mbps series, the
// input the forecaster predicts from.
func (m *Monitor) TotalSeries() map[model.LinkId][]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.LinkId][]float64, len(m.links))
	for link, st := range m.links {
		h := make([]float64, len(st.series))
		for i, s := range st.series {
			h[i] = s.RxMbps + s.TxMbps
		}
		out[link] = h
	}
	return out
}

// windowAccum accumulates per-link rate sums for WindowAverage.
type windowAccum struct {
	rxSum, txSum float64
	n            int
}

// WindowAverage blocks for dur, sampling at the monitor's own period, then
// returns the arithmetic mean rx/tx Mbps per link observed during the
// window with utilization re-derived from the averaged rates.
func (m *Monitor) WindowAverage(ctx context.Context, dur time.Duration) map[model.LinkId]model.LinkRate {
	sums := make(map[model.LinkId]*windowAccum)

	ticker := time.NewTicker(m.period)
	defer ticker.Stop()
	deadline := time.NewTimer(dur)
	defer deadline.Stop()

	collect := func() {
		for link, rate := range m.Rates() {
			a, ok := sums[link]
			if !ok {
				a = &windowAccum{}
				sums[link] = a
			}
			a.rxSum += rate.RxMbps
			a.txSum += rate.TxMbps
			a.n++
		}
	}

	m.sample()
	collect()
	for {
		select {
		case <-ctx.Done():
			return m.finalizeWindow(sums)
		case <-deadline.C:
			return m.finalizeWindow(sums)
		case <-ticker.C:
			m.sample()
			collect()
		}
	}
}

func (m *Monitor) finalizeWindow(sums map[model.LinkId]*windowAccum) map[model.LinkId]model.LinkRate {
	out := make(map[model.LinkId]model.LinkRate, len(sums))
	for link, a := range sums {
		if a.n == 0 {
			continue
		}
		rx := a.rxSum / float64(a.n)
		tx := a.txSum / float64(a.n)
		util := 0.0
		if capMbps, ok := m.capacity(link); ok && capMbps > 0 {
			util = clamp((rx+tx)/capMbps, 0, 1)
		}
		out[link] = model.LinkRate{RxMbps: rx, TxMbps: tx, Util: util}
	}
	return out
}
