package openflow

import (
	"bytes"
	"testing"
)

func roundTrip(t *testing.T, typ uint8, xid uint32, body []byte) RawMessage {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteMessage(&buf, typ, xid, body); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	raw, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if raw.Header.Type != typ || raw.Header.Xid != xid {
		t.Fatalf("header mismatch: got type=%d xid=%d, want type=%d xid=%d", raw.Header.Type, raw.Header.Xid, typ, xid)
	}
	if !bytes.Equal(raw.Body, body) {
		t.Fatalf("body mismatch: got %x, want %x", raw.Body, body)
	}
	return raw
}

func TestRoundTripHello(t *testing.T) {
	roundTrip(t, TypeHello, 1, EncodeHello())
}

func TestRoundTripEcho(t *testing.T) {
	want := Echo{Data: []byte("ping")}
	roundTrip(t, TypeEchoRequest, 42, EncodeEcho(want))
}

func TestRoundTripFeaturesReply(t *testing.T) {
	want := FeaturesReply{
		DatapathID:   0x1122334455667788,
		NBuffers:     256,
		NTables:      1,
		Capabilities: 0x7,
		Actions:      0xfff,
		Ports: []PhyPort{
			{PortNo: 1, HWAddr: [6]byte{0, 1, 2, 3, 4, 5}, Name: "eth0"},
			{PortNo: 2, HWAddr: [6]byte{1, 1, 2, 3, 4, 5}, Name: "eth1"},
		},
	}
	raw := roundTrip(t, TypeFeaturesReply, 7, EncodeFeaturesReply(want))
	got, err := DecodeFeaturesReply(raw.Body)
	if err != nil {
		t.Fatalf("DecodeFeaturesReply: %v", err)
	}
	if got.DatapathID != want.DatapathID || len(got.Ports) != len(want.Ports) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if got.Ports[0].Name != "eth0" || got.Ports[1].Name != "eth1" {
		t.Fatalf("port names not preserved: %+v", got.Ports)
	}
}

func TestRoundTripFlowMod(t *testing.T) {
	want := FlowMod{
		Match: Match{
			Wildcards: WildcardAllButInPortDLDst(),
			InPort:    3,
			DLDst:     [6]byte{0xbb, 0xbb, 0xbb, 0xbb, 0xbb, 0xbb},
		},
		Cookie:      0x1,
		Command:     FlowCmdAdd,
		IdleTimeout: 30,
		HardTimeout: 0,
		Priority:    100,
		BufferID:    99,
		OutPort:     PortNone,
		Actions:     []OutputAction{{Port: 1, MaxLen: 0}},
	}
	raw := roundTrip(t, TypeFlowMod, 5, EncodeFlowMod(want))
	got, err := DecodeFlowMod(raw.Body)
	if err != nil {
		t.Fatalf("DecodeFlowMod: %v", err)
	}
	if got.Priority != 100 || got.IdleTimeout != 30 || len(got.Actions) != 1 || got.Actions[0].Port != 1 {
		t.Fatalf("got %+v", got)
	}
	if got.Match.InPort != 3 || got.Match.DLDst != want.Match.DLDst {
		t.Fatalf("match not preserved: %+v", got.Match)
	}
}

func TestRoundTripPortMod(t *testing.T) {
	want := PortMod{PortNo: 4, Config: PortConfigDown, Mask: PortConfigDown, Advertise: Port10GbFD}
	raw := roundTrip(t, TypePortMod, 9, EncodePortMod(want))
	got, err := DecodePortMod(raw.Body)
	if err != nil {
		t.Fatalf("DecodePortMod: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestRoundTripStatsReplyPort(t *testing.T) {
	want := StatsReplyPort{Entries: []PortStatsEntry{
		{PortNo: 1, RxBytes: 1000, TxBytes: 2000},
		{PortNo: 2, RxBytes: 3000, TxBytes: 4000},
	}}
	raw := roundTrip(t, TypeStatsReply, 11, EncodeStatsReplyPort(want))
	got, err := DecodeStatsReplyPort(raw.Body)
	if err != nil {
		t.Fatalf("DecodeStatsReplyPort: %v", err)
	}
	if len(got.Entries) != 2 || got.Entries[0].RxBytes != 1000 || got.Entries[1].TxBytes != 4000 {
		t.Fatalf("got %+v", got)
	}
}

func TestBadVersionClosesSession(t *testing.T) {
	buf := []byte{0x02, TypeHello, 0, 8, 0, 0, 0, 1}
	_, err := ReadHeader(bytes.NewReader(buf))
	if err == nil {
		t.Fatalf("expected error for bad version")
	}
}

func TestShortLengthRejected(t *testing.T) {
	buf := []byte{Version, TypeHello, 0, 4, 0, 0, 0, 1}
	_, err := ReadHeader(bytes.NewReader(buf))
	if err == nil {
		t.Fatalf("expected error for length < 8")
	}
}

func TestLLDPRoundTrip(t *testing.T) {
	src := [6]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	frame := EncodeLLDP(src, 0xdeadbeef, 3)
	if len(frame) < minFrameLen {
		t.Fatalf("frame not padded to %d bytes: got %d", minFrameLen, len(frame))
	}
	decoded, err := DecodeLLDP(frame)
	if err != nil {
		t.Fatalf("DecodeLLDP: %v", err)
	}
	if decoded.ChassisDPID != 0xdeadbeef || decoded.PortNo != 3 {
		t.Fatalf("got %+v", decoded)
	}
}
