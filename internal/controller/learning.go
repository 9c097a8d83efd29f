package controller

import (
	"encoding/binary"
	"log"

	"github.com/netarch/teflow/internal/model"
	"github.com/netarch/teflow/internal/openflow"
)

// handlePacketIn is the entry point for every OFPT_PACKET_IN: LLDP discovery
// frames are routed to the topology event channel, everything else runs the
// L2 learning handler, per spec.md §4.3.
func (m *Manager) handlePacketIn(s *session, pi openflow.PacketIn) {
	if len(pi.Data) < 14 {
		return
	}
	ethertype := binary.BigEndian.Uint16(pi.Data[12:14])
	if ethertype == openflow.LLDPEtherType {
		m.handleLLDPPacketIn(s, pi)
		return
	}
	m.handleL2PacketIn(s, pi)
}

func (m *Manager) handleLLDPPacketIn(s *session, pi openflow.PacketIn) {
	frame, err := openflow.DecodeLLDP(pi.Data)
	if err != nil {
		return
	}
	m.mu.Lock()
	remoteID, ok := m.dpidIndex[model.DPID(frame.ChassisDPID)]
	localID := s.id
	m.mu.Unlock()
	if !ok {
		// Frame from a chassis this controller hasn't identified via
		// FEATURES_REPLY yet (or a foreign domain); nothing to record.
		return
	}

	ev := LLDPEvent{
		LocalSwitch:  localID,
		LocalPort:    model.PortNo(pi.InPort),
		RemoteSwitch: remoteID,
		RemotePort:   model.PortNo(frame.PortNo),
	}
	select {
	case m.lldpCh <- ev:
	default:
		log.Printf("controller: lldp event channel full, dropping event for switch %d", localID)
	}
}

// handleL2PacketIn implements spec.md §4.3 steps 1-4: learn the source MAC's
// port, then either install a reactive unicast flow or flood.
func (m *Manager) handleL2PacketIn(s *session, pi openflow.PacketIn) {
	if len(pi.Data) < 12 {
		return
	}
	var dst, src [6]byte
	copy(dst[:], pi.Data[0:6])
	copy(src[:], pi.Data[6:12])

	m.mu.Lock()
	s.macTable[src] = model.PortNo(pi.InPort)
	outPort, known := s.macTable[dst]
	conn := s.conn
	m.mu.Unlock()

	if known && outPort != model.PortNo(pi.InPort) {
		fm := openflow.FlowMod{
			Match: openflow.Match{
				Wildcards: openflow.WildcardAllButInPortDLDst(),
				InPort:    pi.InPort,
				DLDst:     dst,
			},
			Cookie:      0x1,
			Command:     openflow.FlowCmdAdd,
			IdleTimeout: 30,
			HardTimeout: 0,
			Priority:    100,
			BufferID:    pi.BufferID,
			OutPort:     openflow.PortNone,
			Actions:     []openflow.OutputAction{{Port: uint16(outPort)}},
		}
		m.mu.Lock()
		err := openflow.WriteMessage(conn, openflow.TypeFlowMod, m.nextXid(), openflow.EncodeFlowMod(fm))
		m.mu.Unlock()
		if err != nil {
			m.closeSession(s)
		}
		return
	}

	po := openflow.PacketOut{
		BufferID: pi.BufferID,
		InPort:   pi.InPort,
		Actions:  []openflow.OutputAction{{Port: openflow.PortFlood}},
	}
	if pi.BufferID == openflow.NoBuffer {
		po.Data = pi.Data
	}
	m.mu.Lock()
	err := openflow.WriteMessage(conn, openflow.TypePacketOut, m.nextXid(), openflow.EncodePacketOut(po))
	m.mu.Unlock()
	if err != nil {
		m.closeSession(s)
	}
}
