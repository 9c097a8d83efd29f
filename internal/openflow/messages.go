package openflow

import (
	"encoding/binary"
	"fmt"
)

// Hello carries no body beyond the common header.
type Hello struct{}

// ErrorMsg is OFPT_ERROR: {type(2), code(2), data[]}.
type ErrorMsg struct {
	Type uint16
	Code uint16
	Data []byte
}

func (m ErrorMsg) marshal() []byte {
	buf := make([]byte, 4+len(m.Data))
	binary.BigEndian.PutUint16(buf[0:2], m.Type)
	binary.BigEndian.PutUint16(buf[2:4], m.Code)
	copy(buf[4:], m.Data)
	return buf
}

func unmarshalErrorMsg(buf []byte) (ErrorMsg, error) {
	if len(buf) < 4 {
		return ErrorMsg{}, ErrShortMessage
	}
	return ErrorMsg{
		Type: binary.BigEndian.Uint16(buf[0:2]),
		Code: binary.BigEndian.Uint16(buf[2:4]),
		Data: append([]byte(nil), buf[4:]...),
	}, nil
}

// Echo is the body of ECHO_REQUEST/ECHO_REPLY: an opaque payload that must
// be echoed back unchanged, correlated by xid per spec.md §5.
type Echo struct {
	Data []byte
}

func (m Echo) marshal() []byte { return append([]byte(nil), m.Data...) }

func unmarshalEcho(buf []byte) Echo { return Echo{Data: append([]byte(nil), buf...)} }

// FeaturesRequest carries no body.
type FeaturesRequest struct{}

// PortNameLen is the fixed width of a port's name field on the wire.
const PortNameLen = 16

// PhyPortLen is the fixed on-wire size of an ofp_phy_port entry.
const PhyPortLen = 48

// PhyPort describes a single switch port as reported in FEATURES_REPLY.
type PhyPort struct {
	PortNo     uint16
	HWAddr     [6]byte
	Name       string
	Config     uint32
	State      uint32
	Curr       uint32
	Advertised uint32
	Supported  uint32
	Peer       uint32
}

func (p PhyPort) marshal() []byte {
	buf := make([]byte, PhyPortLen)
	binary.BigEndian.PutUint16(buf[0:2], p.PortNo)
	copy(buf[2:8], p.HWAddr[:])
	nameBuf := make([]byte, PortNameLen)
	copy(nameBuf, p.Name)
	copy(buf[8:24], nameBuf)
	binary.BigEndian.PutUint32(buf[24:28], p.Config)
	binary.BigEndian.PutUint32(buf[28:32], p.State)
	binary.BigEndian.PutUint32(buf[32:36], p.Curr)
	binary.BigEndian.PutUint32(buf[36:40], p.Advertised)
	binary.BigEndian.PutUint32(buf[40:44], p.Supported)
	binary.BigEndian.PutUint32(buf[44:48], p.Peer)
	return buf
}

func unmarshalPhyPort(buf []byte) PhyPort {
	var p PhyPort
	p.PortNo = binary.BigEndian.Uint16(buf[0:2])
	copy(p.HWAddr[:], buf[2:8])
	end := 8
	for end < 24 && buf[end] != 0 {
		end++
	}
	p.Name = string(buf[8:end])
	p.Config = binary.BigEndian.Uint32(buf[24:28])
	p.State = binary.BigEndian.Uint32(buf[28:32])
	p.Curr = binary.BigEndian.Uint32(buf[32:36])
	p.Advertised = binary.BigEndian.Uint32(buf[36:40])
	p.Supported = binary.BigEndian.Uint32(buf[40:44])
	p.Peer = binary.BigEndian.Uint32(buf[44:48])
	return p
}

// FeaturesReply is OFPT_FEATURES_REPLY: datapath_id, buffer/table counts,
// capabilities, supported actions, and the port list.
type FeaturesReply struct {
	DatapathID   uint64
	NBuffers     uint32
	NTables      uint8
	Capabilities uint32
	Actions      uint32
	Ports        []PhyPort
}

func (m FeaturesReply) marshal() []byte {
	buf := make([]byte, 24+PhyPortLen*len(m.Ports))
	binary.BigEndian.PutUint64(buf[0:8], m.DatapathID)
	binary.BigEndian.PutUint32(buf[8:12], m.NBuffers)
	buf[12] = m.NTables
	// buf[13:16] padding.
	binary.BigEndian.PutUint32(buf[16:20], m.Capabilities)
	binary.BigEndian.PutUint32(buf[20:24], m.Actions)
	off := 24
	for _, p := range m.Ports {
		copy(buf[off:off+PhyPortLen], p.marshal())
		off += PhyPortLen
	}
	return buf
}

func unmarshalFeaturesReply(buf []byte) (FeaturesReply, error) {
	if len(buf) < 24 {
		return FeaturesReply{}, ErrShortMessage
	}
	m := FeaturesReply{
		DatapathID:   binary.BigEndian.Uint64(buf[0:8]),
		NBuffers:     binary.BigEndian.Uint32(buf[8:12]),
		NTables:      buf[12],
		Capabilities: binary.BigEndian.Uint32(buf[16:20]),
		Actions:      binary.BigEndian.Uint32(buf[20:24]),
	}
	rest := buf[24:]
	if len(rest)%PhyPortLen != 0 {
		return FeaturesReply{}, fmt.Errorf("openflow: trailing %d bytes in FEATURES_REPLY port list", len(rest)%PhyPortLen)
	}
	for off := 0; off < len(rest); off += PhyPortLen {
		m.Ports = append(m.Ports, unmarshalPhyPort(rest[off:off+PhyPortLen]))
	}
	return m, nil
}

// SwitchConfig is the shared body of GET_CONFIG_REPLY and SET_CONFIG:
// {flags(2), miss_send_len(2)}.
type SwitchConfig struct {
	Flags       uint16
	MissSendLen uint16
}

func (m SwitchConfig) marshal() []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint16(buf[0:2], m.Flags)
	binary.BigEndian.PutUint16(buf[2:4], m.MissSendLen)
	return buf
}

func unmarshalSwitchConfig(buf []byte) (SwitchConfig, error) {
	if len(buf) < 4 {
		return SwitchConfig{}, ErrShortMessage
	}
	return SwitchConfig{
		Flags:       binary.BigEndian.Uint16(buf[0:2]),
		MissSendLen: binary.BigEndian.Uint16(buf[2:4]),
	}, nil
}

// GetConfigRequest carries no body.
type GetConfigRequest struct{}

// PacketIn is OFPT_PACKET_IN: buffer_id, total_len, in_port, reason, and the
// captured frame (up to miss_send_len bytes, per spec.md §4.2 step 3).
type PacketIn struct {
	BufferID uint32
	TotalLen uint16
	InPort   uint16
	Reason   uint8
	Data     []byte
}

func (m PacketIn) marshal() []byte {
	buf := make([]byte, 10+len(m.Data))
	binary.BigEndian.PutUint32(buf[0:4], m.BufferID)
	binary.BigEndian.PutUint16(buf[4:6], m.TotalLen)
	binary.BigEndian.PutUint16(buf[6:8], m.InPort)
	buf[8] = m.Reason
	// buf[9] padding.
	copy(buf[10:], m.Data)
	return buf
}

func unmarshalPacketIn(buf []byte) (PacketIn, error) {
	if len(buf) < 10 {
		return PacketIn{}, ErrShortMessage
	}
	return PacketIn{
		BufferID: binary.BigEndian.Uint32(buf[0:4]),
		TotalLen: binary.BigEndian.Uint16(buf[4:6]),
		InPort:   binary.BigEndian.Uint16(buf[6:8]),
		Reason:   buf[8],
		Data:     append([]byte(nil), buf[10:]...),
	}, nil
}

// PacketOut is OFPT_PACKET_OUT: buffer_id, in_port, an action list, and
// (when BufferID == NoBuffer) the raw frame to send.
type PacketOut struct {
	BufferID uint32
	InPort   uint16
	Actions  []OutputAction
	Data     []byte
}

func (m PacketOut) marshal() []byte {
	actionsLen := len(m.Actions) * ActionOutputLen
	buf := make([]byte, 8+actionsLen+len(m.Data))
	binary.BigEndian.PutUint32(buf[0:4], m.BufferID)
	binary.BigEndian.PutUint16(buf[4:6], m.InPort)
	binary.BigEndian.PutUint16(buf[6:8], uint16(actionsLen))
	off := 8
	for _, a := range m.Actions {
		copy(buf[off:off+ActionOutputLen], a.marshal())
		off += ActionOutputLen
	}
	copy(buf[off:], m.Data)
	return buf
}

func unmarshalPacketOut(buf []byte) (PacketOut, error) {
	if len(buf) < 8 {
		return PacketOut{}, ErrShortMessage
	}
	m := PacketOut{
		BufferID: binary.BigEndian.Uint32(buf[0:4]),
		InPort:   binary.BigEndian.Uint16(buf[4:6]),
	}
	actionsLen := int(binary.BigEndian.Uint16(buf[6:8]))
	if 8+actionsLen > len(buf) {
		return PacketOut{}, ErrShortMessage
	}
	for off := 8; off < 8+actionsLen; off += ActionOutputLen {
		a, err := unmarshalOutputAction(buf[off : off+ActionOutputLen])
		if err != nil {
			return PacketOut{}, err
		}
		m.Actions = append(m.Actions, a)
	}
	m.Data = append([]byte(nil), buf[8+actionsLen:]...)
	return m, nil
}

// FlowModLen is the fixed size of everything in a FLOW_MOD before the
// trailing action list.
const FlowModLen = MatchLen + 24

// FlowMod is OFPT_FLOW_MOD, used for the L2 learning handler's reactive
// installs.
type FlowMod struct {
	Match       Match
	Cookie      uint64
	Command     uint16
	IdleTimeout uint16
	HardTimeout uint16
	Priority    uint16
	BufferID    uint32
	OutPort     uint16
	Flags       uint16
	Actions     []OutputAction
}

func (m FlowMod) marshal() []byte {
	actionsLen := len(m.Actions) * ActionOutputLen
	buf := make([]byte, FlowModLen+actionsLen)
	copy(buf[0:MatchLen], m.Match.marshal())
	off := MatchLen
	binary.BigEndian.PutUint64(buf[off:off+8], m.Cookie)
	off += 8
	binary.BigEndian.PutUint16(buf[off:off+2], m.Command)
	off += 2
	binary.BigEndian.PutUint16(buf[off:off+2], m.IdleTimeout)
	off += 2
	binary.BigEndian.PutUint16(buf[off:off+2], m.HardTimeout)
	off += 2
	binary.BigEndian.PutUint16(buf[off:off+2], m.Priority)
	off += 2
	binary.BigEndian.PutUint32(buf[off:off+4], m.BufferID)
	off += 4
	binary.BigEndian.PutUint16(buf[off:off+2], m.OutPort)
	off += 2
	binary.BigEndian.PutUint16(buf[off:off+2], m.Flags)
	off += 2
	for _, a := range m.Actions {
		copy(buf[off:off+ActionOutputLen], a.marshal())
		off += ActionOutputLen
	}
	return buf
}

func unmarshalFlowMod(buf []byte) (FlowMod, error) {
	if len(buf) < FlowModLen {
		return FlowMod{}, ErrShortMessage
	}
	m := FlowMod{Match: unmarshalMatch(buf[0:MatchLen])}
	off := MatchLen
	m.Cookie = binary.BigEndian.Uint64(buf[off : off+8])
	off += 8
	m.Command = binary.BigEndian.Uint16(buf[off : off+2])
	off += 2
	m.IdleTimeout = binary.BigEndian.Uint16(buf[off : off+2])
	off += 2
	m.HardTimeout = binary.BigEndian.Uint16(buf[off : off+2])
	off += 2
	m.Priority = binary.BigEndian.Uint16(buf[off : off+2])
	off += 2
	m.BufferID = binary.BigEndian.Uint32(buf[off : off+4])
	off += 4
	m.OutPort = binary.BigEndian.Uint16(buf[off : off+2])
	off += 2
	m.Flags = binary.BigEndian.Uint16(buf[off : off+2])
	off += 2
	for off < len(buf) {
		if off+ActionOutputLen > len(buf) {
			return FlowMod{}, ErrShortMessage
		}
		a, err := unmarshalOutputAction(buf[off : off+ActionOutputLen])
		if err != nil {
			return FlowMod{}, err
		}
		m.Actions = append(m.Actions, a)
		off += ActionOutputLen
	}
	return m, nil
}

// PortModLen is the fixed on-wire size of a PORT_MOD message.
const PortModLen = 24

// PortMod is OFPT_PORT_MOD, used by the actuator to toggle a link's
// administrative state, per spec.md §4.9.
type PortMod struct {
	PortNo    uint16
	HWAddr    [6]byte
	Config    uint32
	Mask      uint32
	Advertise uint32
}

func (m PortMod) marshal() []byte {
	buf := make([]byte, PortModLen)
	binary.BigEndian.PutUint16(buf[0:2], m.PortNo)
	copy(buf[2:8], m.HWAddr[:])
	binary.BigEndian.PutUint32(buf[8:12], m.Config)
	binary.BigEndian.PutUint32(buf[12:16], m.Mask)
	binary.BigEndian.PutUint32(buf[16:20], m.Advertise)
	// buf[20:24] padding.
	return buf
}

func unmarshalPortMod(buf []byte) (PortMod, error) {
	if len(buf) < PortModLen {
		return PortMod{}, ErrShortMessage
	}
	var m PortMod
	m.PortNo = binary.BigEndian.Uint16(buf[0:2])
	copy(m.HWAddr[:], buf[2:8])
	m.Config = binary.BigEndian.Uint32(buf[8:12])
	m.Mask = binary.BigEndian.Uint32(buf[12:16])
	m.Advertise = binary.BigEndian.Uint32(buf[16:20])
	return m, nil
}

// StatsRequestPort is the body of a STATS_REQUEST of type PORT: a stats
// header (type, flags) followed by {port_no(2), pad(6)}.
type StatsRequestPort struct {
	Flags  uint16
	PortNo uint16
}

func (m StatsRequestPort) marshal() []byte {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint16(buf[0:2], StatsPort)
	binary.BigEndian.PutUint16(buf[2:4], m.Flags)
	binary.BigEndian.PutUint16(buf[4:6], m.PortNo)
	return buf
}

func unmarshalStatsRequestPort(buf []byte) (StatsRequestPort, error) {
	if len(buf) < 12 {
		return StatsRequestPort{}, ErrShortMessage
	}
	typ := binary.BigEndian.Uint16(buf[0:2])
	if typ != StatsPort {
		return StatsRequestPort{}, fmt.Errorf("openflow: stats request type %d, want PORT", typ)
	}
	return StatsRequestPort{
		Flags:  binary.BigEndian.Uint16(buf[2:4]),
		PortNo: binary.BigEndian.Uint16(buf[4:6]),
	}, nil
}

// PortStatsEntryLen is the fixed on-wire size of one ofp_port_stats entry.
const PortStatsEntryLen = 104

// PortStatsEntry is a single switch port's counters, as reported in a
// STATS_REPLY of type PORT. Counters are 64-bit big-endian on the wire,
// per spec.md §9.
type PortStatsEntry struct {
	PortNo       uint16
	RxPackets    uint64
	TxPackets    uint64
	RxBytes      uint64
	TxBytes      uint64
	RxDropped    uint64
	TxDropped    uint64
	RxErrors     uint64
	TxErrors     uint64
	RxFrameErr   uint64
	RxOverErr    uint64
	RxCRCErr     uint64
	Collisions   uint64
}

func (e PortStatsEntry) marshal() []byte {
	buf := make([]byte, PortStatsEntryLen)
	binary.BigEndian.PutUint16(buf[0:2], e.PortNo)
	put64 := func(off int, v uint64) { binary.BigEndian.PutUint64(buf[off:off+8], v) }
	put64(8, e.RxPackets)
	put64(16, e.TxPackets)
	put64(24, e.RxBytes)
	put64(32, e.TxBytes)
	put64(40, e.RxDropped)
	put64(48, e.TxDropped)
	put64(56, e.RxErrors)
	put64(64, e.TxErrors)
	put64(72, e.RxFrameErr)
	put64(80, e.RxOverErr)
	put64(88, e.RxCRCErr)
	put64(96, e.Collisions)
	return buf
}

func unmarshalPortStatsEntry(buf []byte) (PortStatsEntry, error) {
	if len(buf) < PortStatsEntryLen {
		return PortStatsEntry{}, ErrShortMessage
	}
	get64 := func(off int) uint64 { return binary.BigEndian.Uint64(buf[off : off+8]) }
	return PortStatsEntry{
		PortNo:     binary.BigEndian.Uint16(buf[0:2]),
		RxPackets:  get64(8),
		TxPackets:  get64(16),
		RxBytes:    get64(24),
		TxBytes:    get64(32),
		RxDropped:  get64(40),
		TxDropped:  get64(48),
		RxErrors:   get64(56),
		TxErrors:   get64(64),
		RxFrameErr: get64(72),
		RxOverErr:  get64(80),
		RxCRCErr:   get64(88),
		Collisions: get64(96),
	}, nil
}

// StatsReplyPort is a STATS_REPLY of type PORT: a stats header followed by
// zero or more PortStatsEntry records.
type StatsReplyPort struct {
	Flags   uint16
	Entries []PortStatsEntry
}

func (m StatsReplyPort) marshal() []byte {
	buf := make([]byte, 4+PortStatsEntryLen*len(m.Entries))
	binary.BigEndian.PutUint16(buf[0:2], StatsPort)
	binary.BigEndian.PutUint16(buf[2:4], m.Flags)
	off := 4
	for _, e := range m.Entries {
		copy(buf[off:off+PortStatsEntryLen], e.marshal())
		off += PortStatsEntryLen
	}
	return buf
}

func unmarshalStatsReplyPort(buf []byte) (StatsReplyPort, error) {
	if len(buf) < 4 {
		return StatsReplyPort{}, ErrShortMessage
	}
	typ := binary.BigEndian.Uint16(buf[0:2])
	if typ != StatsPort {
		return StatsReplyPort{}, fmt.Errorf("openflow: stats reply type %d, want PORT", typ)
	}
	m := StatsReplyPort{Flags: binary.BigEndian.Uint16(buf[2:4])}
	rest := buf[4:]
	if len(rest)%PortStatsEntryLen != 0 {
		return StatsReplyPort{}, fmt.Errorf("openflow: trailing %d bytes in STATS_REPLY(PORT)", len(rest)%PortStatsEntryLen)
	}
	for off := 0; off < len(rest); off += PortStatsEntryLen {
		e, err := unmarshalPortStatsEntry(rest[off : off+PortStatsEntryLen])
		if err != nil {
			return StatsReplyPort{}, err
		}
		m.Entries = append(m.Entries, e)
	}
	return m, nil
}

// BarrierRequest and BarrierReply carry no body; a BARRIER_REPLY guarantees
// all prior FLOW_MODs/PORT_MODs on that switch have been processed, per
// spec.md §5.
type BarrierRequest struct{}
type BarrierReply struct{}
