// Package controller implements the OpenFlow 1.0 session manager: accepting
// switch connections, performing the HELLO/FEATURES/SET_CONFIG handshake,
// multiplexing per-switch state under a single shared lock, and running the
// L2 learning handler that reacts to PACKET_IN.
package controller

import (
	"time"

	"github.com/netarch/teflow/internal/model"
)

// Default timer periods, per spec.md §4.2.
const (
	DefaultLLDPPeriod  = 2 * time.Second
	DefaultStatsPeriod = 3 * time.Second
	DefaultStatsSettle = 150 * time.Millisecond
)

// bootstrapPorts is emitted LLDP on when a switch's FEATURES_REPLY reported
// zero ports. No LLDP is emitted to a switch before its FEATURES_REPLY has
// been processed — see DESIGN.md.
var bootstrapPorts = []uint16{1, 2, 3, 4}

// Config configures a Manager.
type Config struct {
	ListenAddr  string
	LLDPPeriod  time.Duration
	StatsPeriod time.Duration
	// StatsSettle is how long PollPortStats waits after issuing requests
	// before reading back accumulated replies.
	StatsSettle time.Duration
}

// withDefaults fills unset fields with the package defaults.
func (c Config) withDefaults() Config {
	if c.LLDPPeriod <= 0 {
		c.LLDPPeriod = DefaultLLDPPeriod
	}
	if c.StatsPeriod <= 0 {
		c.StatsPeriod = DefaultStatsPeriod
	}
	if c.StatsSettle <= 0 {
		c.StatsSettle = DefaultStatsSettle
	}
	return c
}

// ErrorEvent carries a switch-reported OFPT_ERROR up to the application.
type ErrorEvent struct {
	SwitchID model.SwitchId
	Type     uint16
	Code     uint16
	Data     []byte
}

// LLDPEvent is a decoded neighbor-discovery observation: switch LocalSwitch
// saw a frame emitted by RemoteSwitch on the given port pair.
type LLDPEvent struct {
	LocalSwitch  model.SwitchId
	LocalPort    model.PortNo
	RemoteSwitch model.SwitchId
	RemotePort   model.PortNo
}
