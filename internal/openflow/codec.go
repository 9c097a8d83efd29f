package openflow

import (
	"fmt"
	"io"
)

// RawMessage is a fully-framed OpenFlow message: a validated header plus
// its body, exactly Length-HeaderLen bytes, never more and never less.
type RawMessage struct {
	Header Header
	Body   []byte
}

// ReadMessage reads exactly one message from r: the 8-byte header, then
// exactly Length-HeaderLen body bytes. It never reads past the message
// boundary and never blocks waiting for more than one message, per
// spec.md §4.1.
func ReadMessage(r io.Reader) (RawMessage, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return RawMessage{}, err
	}
	bodyLen := int(h.Length) - HeaderLen
	body := make([]byte, bodyLen)
	if bodyLen > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return RawMessage{}, err
		}
	}
	return RawMessage{Header: h, Body: body}, nil
}

// WriteMessage frames typ/xid/body into a single buffer and writes it with
// a send_all loop: it keeps calling Write until every byte is sent, or a
// partial-write error occurs, matching the "send_all must loop until the
// full buffer is written" requirement of spec.md §4.2.
func WriteMessage(w io.Writer, typ uint8, xid uint32, body []byte) error {
	h := Header{Version: Version, Type: typ, Length: uint16(HeaderLen + len(body)), Xid: xid}
	buf := append(h.marshal(), body...)
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return fmt.Errorf("openflow: send_all: %w", err)
		}
		buf = buf[n:]
	}
	return nil
}

// Encode* helpers build a message body ready for WriteMessage.

func EncodeHello() []byte                    { return nil }
func EncodeFeaturesRequest() []byte           { return nil }
func EncodeGetConfigRequest() []byte          { return nil }
func EncodeBarrierRequest() []byte            { return nil }
func EncodeBarrierReply() []byte              { return nil }
func EncodeEcho(e Echo) []byte                { return e.marshal() }
func EncodeError(e ErrorMsg) []byte            { return e.marshal() }
func EncodeFeaturesReply(m FeaturesReply) []byte { return m.marshal() }
func EncodeSwitchConfig(m SwitchConfig) []byte { return m.marshal() }
func EncodePacketIn(m PacketIn) []byte        { return m.marshal() }
func EncodePacketOut(m PacketOut) []byte      { return m.marshal() }
func EncodeFlowMod(m FlowMod) []byte          { return m.marshal() }
func EncodePortMod(m PortMod) []byte          { return m.marshal() }
func EncodeStatsRequestPort(m StatsRequestPort) []byte { return m.marshal() }
func EncodeStatsReplyPort(m StatsReplyPort) []byte     { return m.marshal() }

// DecodeError decodes an OFPT_ERROR body.
func DecodeError(body []byte) (ErrorMsg, error) { return unmarshalErrorMsg(body) }

// DecodeEcho decodes an ECHO_REQUEST/ECHO_REPLY body.
func DecodeEcho(body []byte) Echo { return unmarshalEcho(body) }

// DecodeFeaturesReply decodes an OFPT_FEATURES_REPLY body.
func DecodeFeaturesReply(body []byte) (FeaturesReply, error) { return unmarshalFeaturesReply(body) }

// DecodeSwitchConfig decodes a GET_CONFIG_REPLY or SET_CONFIG body.
func DecodeSwitchConfig(body []byte) (SwitchConfig, error) { return unmarshalSwitchConfig(body) }

// DecodePacketIn decodes an OFPT_PACKET_IN body.
func DecodePacketIn(body []byte) (PacketIn, error) { return unmarshalPacketIn(body) }

// DecodePacketOut decodes an OFPT_PACKET_OUT body.
func DecodePacketOut(body []byte) (PacketOut, error) { return unmarshalPacketOut(body) }

// DecodeFlowMod decodes an OFPT_FLOW_MOD body.
func DecodeFlowMod(body []byte) (FlowMod, error) { return unmarshalFlowMod(body) }

// DecodePortMod decodes an OFPT_PORT_MOD body.
func DecodePortMod(body []byte) (PortMod, error) { return unmarshalPortMod(body) }

// DecodeStatsRequestPort decodes a STATS_REQUEST(PORT) body.
func DecodeStatsRequestPort(body []byte) (StatsRequestPort, error) {
	return unmarshalStatsRequestPort(body)
}

// DecodeStatsReplyPort decodes a STATS_REPLY(PORT) body.
func DecodeStatsReplyPort(body []byte) (StatsReplyPort, error) {
	return unmarshalStatsReplyPort(body)
}
