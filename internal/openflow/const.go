// Package openflow implements the OpenFlow 1.0 wire protocol: message
// framing, the match structure, actions, and the statistics/flow-mod/
// port-mod bodies the controller needs to drive OpenFlow 1.0 switches.
package openflow

// Version is the only protocol version this package understands.
const Version = 0x01

// Message types (ofp_type), in the order defined by the OpenFlow 1.0 spec.
const (
	TypeHello = iota
	TypeError
	TypeEchoRequest
	TypeEchoReply
	TypeVendor
	TypeFeaturesRequest
	TypeFeaturesReply
	TypeGetConfigRequest
	TypeGetConfigReply
	TypeSetConfig
	TypePacketIn
	TypeFlowRemoved
	TypePortStatus
	TypePacketOut
	TypeFlowMod
	TypePortMod
	TypeStatsRequest
	TypeStatsReply
	TypeBarrierRequest
	TypeBarrierReply
	TypeQueueGetConfigRequest
	TypeQueueGetConfigReply
)

// Action types (ofp_action_type).
const (
	ActionOutput = iota
	ActionSetVLANVID
	ActionSetVLANPCP
	ActionStripVLAN
	ActionSetDLSrc
	ActionSetDLDst
	ActionSetNWSrc
	ActionSetNWDst
	ActionSetNWTos
	ActionSetTPSrc
	ActionSetTPDst
	ActionEnqueue
	ActionVendor = 0xffff
)

// Reserved port numbers (ofp_port).
const (
	PortMax        = 0xff00
	PortInPort     = 0xfff8
	PortTable      = 0xfff9
	PortNormal     = 0xfffa
	PortFlood      = 0xfffb
	PortAll        = 0xfffc
	PortController = 0xfffd
	PortLocal      = 0xfffe
	PortNone       = 0xffff
)

// Match wildcard bits (ofp_flow_wildcards).
const (
	WildcardInPort  = 1 << 0
	WildcardDLVLAN  = 1 << 1
	WildcardDLSrc   = 1 << 2
	WildcardDLDst   = 1 << 3
	WildcardDLType  = 1 << 4
	WildcardNWProto = 1 << 5
	WildcardTPSrc   = 1 << 6
	WildcardTPDst   = 1 << 7
	// NW_SRC and NW_DST each occupy a 6-bit mask-length field; treated here
	// as fully wildcarded (all bits set) since the controller never matches
	// on IP addresses.
	WildcardNWSrcAll  = 0x3f << 8
	WildcardNWDstAll  = 0x3f << 14
	WildcardDLVLANPCP = 1 << 20
	WildcardNWTos     = 1 << 21
	WildcardAll       = (1 << 22) - 1
)

// Flow-mod commands (ofp_flow_mod_command).
const (
	FlowCmdAdd = iota
	FlowCmdModify
	FlowCmdModifyStrict
	FlowCmdDelete
	FlowCmdDeleteStrict
)

// Flow-mod flags (ofp_flow_mod_flags).
const (
	FlowFlagSendFlowRem = 1 << 0
	FlowFlagCheckOverlap = 1 << 1
	FlowFlagEmerg        = 1 << 2
)

// NoBuffer indicates a message carries no buffered packet.
const NoBuffer = 0xffffffff

// Stats types (ofp_stats_types). Only PORT is required by spec.md; the
// others are accepted on the wire so STATS_REPLY framing never breaks on an
// unexpected type.
const (
	StatsDesc = iota
	StatsFlow
	StatsAggregate
	StatsTable
	StatsPort
	StatsQueue
	StatsVendor = 0xffff
)

// Port config bits (ofp_port_config); only PortDown is used by the
// actuator's port_mod, but the rest round-trip through FeaturesReply.
const (
	PortConfigDown       = 1 << 0
	PortConfigNoSTP      = 1 << 1
	PortConfigNoRecv     = 1 << 2
	PortConfigNoRecvSTP  = 1 << 3
	PortConfigNoFlood    = 1 << 4
	PortConfigNoFwd      = 1 << 5
	PortConfigNoPacketIn = 1 << 6
)

// Port feature bits (ofp_port_features), used to encode port speed in
// port_mod's advertised-features field the way §4.9 requires (10Gbps up,
// 0 down).
const (
	Port10MbHD  = 1 << 0
	Port10MbFD  = 1 << 1
	Port100MbHD = 1 << 2
	Port100MbFD = 1 << 3
	Port1GbHD   = 1 << 4
	Port1GbFD   = 1 << 5
	Port10GbFD  = 1 << 6
)

// Error types (ofp_error_type), used by the ERROR message decoder and
// surfaced verbatim through the on_error callback.
const (
	ErrTypeHelloFailed = iota
	ErrTypeBadRequest
	ErrTypeBadAction
	ErrTypeFlowModFailed
	ErrTypePortModFailed
	ErrTypeQueueOpFailed
)
