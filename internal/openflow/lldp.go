package openflow

import (
	"encoding/binary"
	"fmt"
)

// LLDPEtherType is the ethertype LLDP frames carry, per spec.md §4.4.
const LLDPEtherType = 0x88CC

// LLDPDestMAC is the well-known LLDP multicast destination address.
var LLDPDestMAC = [6]byte{0x01, 0x80, 0xC2, 0x00, 0x00, 0x0E}

// lldpTLV types used by this controller's minimal LLDP emission.
const (
	tlvChassisID = 1
	tlvPortID    = 2
	tlvTTL       = 3
	tlvEnd       = 0

	chassisSubtypeLocallyAssigned = 7
	portSubtypeInterfaceName      = 5

	lldpTTLSeconds = 120

	minFrameLen = 60
)

// LLDPFrame is the decoded content of a discovery frame emitted by this
// controller (or a neighbor running the same scheme): the reporting
// switch's datapath id and the port it went out of.
type LLDPFrame struct {
	ChassisDPID uint64
	PortNo      uint16
}

// EncodeLLDP builds a full Ethernet frame — destination, source, ethertype,
// and the three TLVs spec.md §4.4 requires — padded to the Ethernet minimum
// frame size.
func EncodeLLDP(srcMAC [6]byte, dpid uint64, portNo uint16) []byte {
	var tlvs []byte

	chassis := make([]byte, 2+9)
	binary.BigEndian.PutUint16(chassis[0:2], uint16(tlvChassisID)<<9|9)
	chassis[2] = chassisSubtypeLocallyAssigned
	binary.BigEndian.PutUint64(chassis[3:11], dpid)
	tlvs = append(tlvs, chassis...)

	port := make([]byte, 2+3)
	binary.BigEndian.PutUint16(port[0:2], uint16(tlvPortID)<<9|3)
	port[2] = portSubtypeInterfaceName
	binary.BigEndian.PutUint16(port[3:5], portNo)
	tlvs = append(tlvs, port...)

	ttl := make([]byte, 2+2)
	binary.BigEndian.PutUint16(ttl[0:2], uint16(tlvTTL)<<9|2)
	binary.BigEndian.PutUint16(ttl[2:4], lldpTTLSeconds)
	tlvs = append(tlvs, ttl...)

	end := make([]byte, 2) // type=0, length=0
	tlvs = append(tlvs, end...)

	frame := make([]byte, 14+len(tlvs))
	copy(frame[0:6], LLDPDestMAC[:])
	copy(frame[6:12], srcMAC[:])
	binary.BigEndian.PutUint16(frame[12:14], LLDPEtherType)
	copy(frame[14:], tlvs)

	if len(frame) < minFrameLen {
		frame = append(frame, make([]byte, minFrameLen-len(frame))...)
	}
	return frame
}

// DecodeLLDP parses the chassis-id and port-id TLVs out of an Ethernet
// frame carrying LLDP. Only the two TLVs this controller emits are
// required; unrecognized TLVs are skipped.
func DecodeLLDP(frame []byte) (LLDPFrame, error) {
	if len(frame) < 14 {
		return LLDPFrame{}, fmt.Errorf("openflow: LLDP frame too short")
	}
	ethertype := binary.BigEndian.Uint16(frame[12:14])
	if ethertype != LLDPEtherType {
		return LLDPFrame{}, fmt.Errorf("openflow: not an LLDP frame (ethertype 0x%04x)", ethertype)
	}

	var out LLDPFrame
	var gotChassis, gotPort bool
	off := 14
	for off+2 <= len(frame) {
		tlvHeader := binary.BigEndian.Uint16(frame[off : off+2])
		tlvType := tlvHeader >> 9
		tlvLen := int(tlvHeader & 0x1ff)
		off += 2
		if tlvType == tlvEnd {
			break
		}
		if off+tlvLen > len(frame) {
			return LLDPFrame{}, fmt.Errorf("openflow: truncated LLDP TLV")
		}
		val := frame[off : off+tlvLen]
		switch tlvType {
		case tlvChassisID:
			if tlvLen >= 9 && val[0] == chassisSubtypeLocallyAssigned {
				out.ChassisDPID = binary.BigEndian.Uint64(val[1:9])
				gotChassis = true
			}
		case tlvPortID:
			if tlvLen >= 3 && val[0] == portSubtypeInterfaceName {
				out.PortNo = binary.BigEndian.Uint16(val[1:3])
				gotPort = true
			}
		}
		off += tlvLen
	}
	if !gotChassis || !gotPort {
		return LLDPFrame{}, fmt.Errorf("openflow: LLDP frame missing chassis-id or port-id TLV")
	}
	return out, nil
}
