// Package model holds the data types shared across the controller, topology
// viewer, monitor, forecaster, path enumerator, planner, and actuator. None
// of these types carry behavior beyond small invariant-preserving
// constructors; the packages that use them own the logic.
package model

import "time"

// SwitchId is a small integer assigned in connection order, stable for the
// lifetime of a session.
type SwitchId uint32

// DPID is the 64-bit datapath identifier a switch reports in FEATURES_REPLY.
type DPID uint64

// PortNo is a switch-local port number.
type PortNo uint16

// LinkId identifies a physical link by its two endpoint node IDs, stored
// canonically with the smaller id first so it can key a map directly.
type LinkId struct {
	U, V int
}

// NewLinkId builds a LinkId, swapping endpoints as needed so U < V. Self
// loops (a == b) are represented as-is; callers are expected to reject them
// before construction where a loop is meaningless.
func NewLinkId(a, b int) LinkId {
	if a <= b {
		return LinkId{U: a, V: b}
	}
	return LinkId{U: b, V: a}
}

// Edge is a live topology record. Invariant: U < V; UPort is the port on U,
// VPort the port on V.
type Edge struct {
	U, V     int
	UPort    PortNo
	VPort    PortNo
	LastSeen time.Time
}

// PortStats is a snapshot of a switch port's byte/speed counters as reported
// by STATS_REPLY(PORT). Counters are monotone non-decreasing within a
// session.
type PortStats struct {
	RxBytes   uint64
	TxBytes   uint64
	SpeedMbps float64
}

// LinkRate is the Monitor's derived per-link throughput and utilization.
// Util is always in [0,1].
type LinkRate struct {
	RxMbps float64
	TxMbps float64
	Util   float64
}

// Sample is one observation appended to a link's time series.
type Sample struct {
	Link LinkId
	Time time.Time
	LinkRate
}

// Flow is a traffic demand between two nodes plus the candidate paths the
// planner may assign it to.
type Flow struct {
	ID               string
	Src, Dst         int
	DemandMbps       float64
	CandidatePathIDs []int
}

// Path is a simple, bounded-depth sequence of links with a globally unique
// id.
type Path struct {
	ID    int
	Edges []LinkId
}

// GraphCaps holds the three partial link-level mappings the planner needs:
// capacity, SDN-controllability, and power cost.
type GraphCaps struct {
	CapacityMbps map[LinkId]float64
	IsSDN        map[LinkId]bool
	PowerCost    map[LinkId]float64
}

// NewGraphCaps returns a GraphCaps with all three maps allocated and ready
// to populate.
func NewGraphCaps() GraphCaps {
	return GraphCaps{
		CapacityMbps: make(map[LinkId]float64),
		IsSDN:        make(map[LinkId]bool),
		PowerCost:    make(map[LinkId]float64),
	}
}

// PowerCostOf returns the configured power cost for e, defaulting to
// capacity_mbps(e) * 0.1 when none was set explicitly.
func (g GraphCaps) PowerCostOf(e LinkId) float64 {
	if v, ok := g.PowerCost[e]; ok {
		return v
	}
	return g.CapacityMbps[e] * 0.1
}

// TEOutput is the planner's decision: a chosen path per flow, an on/off
// decision per link, and diagnostic load figures. Invariant: every flow has
// exactly one chosen path; Beta is 1 for every non-SDN link.
type TEOutput struct {
	ChosenPath map[string]int
	Beta       map[LinkId]int
	LoadMbps   map[LinkId]float64
	Objective  float64
	Optimal    bool
	Status     string
}
