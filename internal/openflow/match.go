package openflow

import "encoding/binary"

// MatchLen is the fixed on-wire size of an ofp_match structure.
const MatchLen = 40

// Match is the OpenFlow 1.0 flow match structure. Field layout and offsets
// follow the canonical ofp_match positions named in spec.md §4.1.
type Match struct {
	Wildcards uint32
	InPort    uint16
	DLSrc     [6]byte
	DLDst     [6]byte
	DLVLAN    uint16
	DLVLANPCP uint8
	DLType    uint16
	NWTos     uint8
	NWProto   uint8
	NWSrc     uint32
	NWDst     uint32
	TPSrc     uint16
	TPDst     uint16
}

// WildcardAllButInPortDLDst returns the wildcard bitmap used by the L2
// learning handler's reactive flow install: only IN_PORT and DL_DST are
// significant, per spec.md §4.3.
func WildcardAllButInPortDLDst() uint32 {
	return WildcardAll &^ (WildcardInPort | WildcardDLDst)
}

func (m Match) marshal() []byte {
	buf := make([]byte, MatchLen)
	binary.BigEndian.PutUint32(buf[0:4], m.Wildcards)
	binary.BigEndian.PutUint16(buf[4:6], m.InPort)
	copy(buf[6:12], m.DLSrc[:])
	copy(buf[12:18], m.DLDst[:])
	binary.BigEndian.PutUint16(buf[18:20], m.DLVLAN)
	buf[20] = m.DLVLANPCP
	// buf[21] is padding.
	binary.BigEndian.PutUint16(buf[22:24], m.DLType)
	buf[24] = m.NWTos
	buf[25] = m.NWProto
	// buf[26:28] is padding.
	binary.BigEndian.PutUint32(buf[28:32], m.NWSrc)
	binary.BigEndian.PutUint32(buf[32:36], m.NWDst)
	binary.BigEndian.PutUint16(buf[36:38], m.TPSrc)
	binary.BigEndian.PutUint16(buf[38:40], m.TPDst)
	return buf
}

func unmarshalMatch(buf []byte) Match {
	var m Match
	m.Wildcards = binary.BigEndian.Uint32(buf[0:4])
	m.InPort = binary.BigEndian.Uint16(buf[4:6])
	copy(m.DLSrc[:], buf[6:12])
	copy(m.DLDst[:], buf[12:18])
	m.DLVLAN = binary.BigEndian.Uint16(buf[18:20])
	m.DLVLANPCP = buf[20]
	m.DLType = binary.BigEndian.Uint16(buf[22:24])
	m.NWTos = buf[24]
	m.NWProto = buf[25]
	m.NWSrc = binary.BigEndian.Uint32(buf[28:32])
	m.NWDst = binary.BigEndian.Uint32(buf[32:36])
	m.TPSrc = binary.BigEndian.Uint16(buf[36:38])
	m.TPDst = binary.BigEndian.Uint16(buf[38:40])
	return m
}
