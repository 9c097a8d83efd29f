package controller

import (
	"net"

	"github.com/netarch/teflow/internal/model"
)

// session is one connected switch. All mutable fields are guarded by the
// owning Manager's mu; session never locks itself.
type session struct {
	conn      net.Conn
	id        model.SwitchId
	dpid      model.DPID
	connected bool

	ports []model.PortNo

	macTable  map[[6]byte]model.PortNo
	lastStats map[model.PortNo]model.PortStats

	barrierWaiters map[uint32]chan struct{}
}

func newSession(conn net.Conn, id model.SwitchId) *session {
	return &session{
		conn:      conn,
		id:        id,
		macTable:  make(map[[6]byte]model.PortNo),
		lastStats: make(map[model.PortNo]model.PortStats),
	}
}
