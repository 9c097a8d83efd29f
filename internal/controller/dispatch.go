package controller

import (
	"log"

	"github.com/netarch/teflow/internal/model"
	"github.com/netarch/teflow/internal/openflow"
)

// dispatch handles one message read from s. It is called from s's own read
// goroutine; it acquires mu only for the brief periods it needs to touch
// shared state.
func (m *Manager) dispatch(s *session, raw openflow.RawMessage) {
	switch raw.Header.Type {
	case openflow.TypeEchoRequest:
		m.mu.Lock()
		err := openflow.WriteMessage(s.conn, openflow.TypeEchoReply, raw.Header.Xid, raw.Body)
		m.mu.Unlock()
		if err != nil {
			m.closeSession(s)
		}

	case openflow.TypeFeaturesReply:
		fr, err := openflow.DecodeFeaturesReply(raw.Body)
		if err != nil {
			log.Printf("controller: switch %d: bad features_reply: %v", s.id, err)
			return
		}
		m.mu.Lock()
		s.dpid = model.DPID(fr.DatapathID)
		s.connected = true
		s.ports = s.ports[:0]
		for _, p := range fr.Ports {
			s.ports = append(s.ports, model.PortNo(p.PortNo))
		}
		m.dpidIndex[s.dpid] = s.id
		m.mu.Unlock()
		log.Printf("controller: switch %d connected, dpid=0x%016x, %d ports", s.id, fr.DatapathID, len(fr.Ports))

	case openflow.TypeError:
		em, err := openflow.DecodeError(raw.Body)
		if err != nil {
			log.Printf("controller: switch %d: bad error message: %v", s.id, err)
			return
		}
		m.publishError(ErrorEvent{SwitchID: s.id, Type: em.Type, Code: em.Code, Data: em.Data})

	case openflow.TypePacketIn:
		pi, err := openflow.DecodePacketIn(raw.Body)
		if err != nil {
			log.Printf("controller: switch %d: bad packet_in: %v", s.id, err)
			return
		}
		m.handlePacketIn(s, pi)

	case openflow.TypeStatsReply:
		m.handleStatsReply(s, raw)

	case openflow.TypeBarrierReply:
		m.mu.Lock()
		if ch, ok := s.barrierWaiters[raw.Header.Xid]; ok {
			close(ch)
			delete(s.barrierWaiters, raw.Header.Xid)
		}
		m.mu.Unlock()

	case openflow.TypeHello, openflow.TypeGetConfigReply, openflow.TypeEchoReply, openflow.TypeFlowRemoved, openflow.TypePortStatus:
		// No action required for this controller's scope.

	default:
		log.Printf("controller: switch %d: unhandled message type %d", s.id, raw.Header.Type)
	}
}

func (m *Manager) handleStatsReply(s *session, raw openflow.RawMessage) {
	sr, err := openflow.DecodeStatsReplyPort(raw.Body)
	if err != nil {
		// Not a PORT stats reply (or a type this controller doesn't poll
		// for); ignore rather than treat as a session error.
		return
	}
	m.mu.Lock()
	for _, e := range sr.Entries {
		s.lastStats[model.PortNo(e.PortNo)] = model.PortStats{RxBytes: e.RxBytes, TxBytes: e.TxBytes}
	}
	m.mu.Unlock()
}
