package openflow

import (
	"encoding/binary"
	"fmt"
)

// ActionOutputLen is the fixed on-wire size of an OUTPUT action.
const ActionOutputLen = 8

// ErrUnsupportedAction is returned when an action's type/len don't match
// what this controller knows how to decode.
var ErrUnsupportedAction = fmt.Errorf("openflow: unsupported action")

// OutputAction is the only action type this controller emits: forward the
// packet to a port, per spec.md §4.1 ("Action OUTPUT: type=0, len=8,
// port(16), max_len(16)").
type OutputAction struct {
	Port   uint16
	MaxLen uint16 // bytes of packet to send when Port == PortController
}

func (a OutputAction) marshal() []byte {
	buf := make([]byte, ActionOutputLen)
	binary.BigEndian.PutUint16(buf[0:2], ActionOutput)
	binary.BigEndian.PutUint16(buf[2:4], ActionOutputLen)
	binary.BigEndian.PutUint16(buf[4:6], a.Port)
	binary.BigEndian.PutUint16(buf[6:8], a.MaxLen)
	return buf
}

func unmarshalOutputAction(buf []byte) (OutputAction, error) {
	if len(buf) < ActionOutputLen {
		return OutputAction{}, ErrShortMessage
	}
	typ := binary.BigEndian.Uint16(buf[0:2])
	length := binary.BigEndian.Uint16(buf[2:4])
	if typ != ActionOutput || length != ActionOutputLen {
		return OutputAction{}, ErrUnsupportedAction
	}
	return OutputAction{
		Port:   binary.BigEndian.Uint16(buf[4:6]),
		MaxLen: binary.BigEndian.Uint16(buf[6:8]),
	}, nil
}
