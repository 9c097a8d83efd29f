package openflow

import (
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderLen is the fixed size of the OpenFlow 1.0 header shared by every
// message: version(1), type(1), length(2), xid(4).
const HeaderLen = 8

// Header is the common prefix of every OpenFlow message on the wire.
type Header struct {
	Version uint8
	Type    uint8
	Length  uint16
	Xid     uint32
}

func (h Header) marshal() []byte {
	buf := make([]byte, HeaderLen)
	buf[0] = h.Version
	buf[1] = h.Type
	binary.BigEndian.PutUint16(buf[2:4], h.Length)
	binary.BigEndian.PutUint32(buf[4:8], h.Xid)
	return buf
}

func unmarshalHeader(buf []byte) Header {
	return Header{
		Version: buf[0],
		Type:    buf[1],
		Length:  binary.BigEndian.Uint16(buf[2:4]),
		Xid:     binary.BigEndian.Uint32(buf[4:8]),
	}
}

// ErrBadVersion is returned when a peer's header carries a version other
// than 0x01; the session must be closed on receipt, per spec.md §4.1.
var ErrBadVersion = fmt.Errorf("openflow: unsupported version")

// ErrShortMessage is returned when a header's length field is smaller than
// the header itself; the session must be closed on receipt.
var ErrShortMessage = fmt.Errorf("openflow: message shorter than header")

// ReadHeader reads and validates exactly one 8-byte header from r. Callers
// must then read exactly Length-HeaderLen more bytes for the body — never
// interpreting across message boundaries, per spec.md §4.1.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, err
	}
	h := unmarshalHeader(buf)
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: got 0x%02x", ErrBadVersion, h.Version)
	}
	if h.Length < HeaderLen {
		return Header{}, fmt.Errorf("%w: length=%d", ErrShortMessage, h.Length)
	}
	return h, nil
}
