package controller

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/netarch/teflow/internal/openflow"
)

// connectMockSwitch wires a Manager to an in-memory connection, performs
// the client side of the handshake, and returns the client end once the
// switch is reported connected.
func connectMockSwitch(t *testing.T, m *Manager, dpid uint64) net.Conn {
	t.Helper()
	before := len(m.Switches())
	client, server := net.Pipe()
	go m.handleConn(server)

	// Drain HELLO, FEATURES_REQUEST, SET_CONFIG.
	for i := 0; i < 3; i++ {
		if _, err := openflow.ReadMessage(client); err != nil {
			t.Fatalf("reading handshake message %d: %v", i, err)
		}
	}

	fr := openflow.FeaturesReply{DatapathID: dpid, NTables: 1}
	if err := openflow.WriteMessage(client, openflow.TypeFeaturesReply, 1, openflow.EncodeFeaturesReply(fr)); err != nil {
		t.Fatalf("writing features_reply: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		if len(m.Switches()) > before {
			return client
		}
		select {
		case <-deadline:
			t.Fatalf("switch never reported connected")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestTwoSwitchLearning(t *testing.T) {
	m := NewManager(Config{}, 8, 8)
	client := connectMockSwitch(t, m, 0xaa)
	defer client.Close()
	client2 := connectMockSwitch(t, m, 0xbb)
	defer client2.Close()

	var aa, bb [6]byte
	copy(aa[:], []byte{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa})
	copy(bb[:], []byte{0xbb, 0xbb, 0xbb, 0xbb, 0xbb, 0xbb})

	// First direction: dst unknown, expect FLOOD.
	frame1 := append(append([]byte{}, bb[:]...), aa[:]...)
	frame1 = append(frame1, 0x08, 0x00) // arbitrary ethertype
	pi1 := openflow.PacketIn{BufferID: 10, InPort: 1, Data: frame1}
	writeRaw(t, client, openflow.TypePacketIn, 100, openflow.EncodePacketIn(pi1))

	raw, err := openflow.ReadMessage(client)
	if err != nil {
		t.Fatalf("reading first response: %v", err)
	}
	if raw.Header.Type != openflow.TypePacketOut {
		t.Fatalf("got message type %d, want PACKET_OUT", raw.Header.Type)
	}
	po, err := openflow.DecodePacketOut(raw.Body)
	if err != nil {
		t.Fatalf("decoding packet_out: %v", err)
	}
	if len(po.Actions) != 1 || po.Actions[0].Port != openflow.PortFlood {
		t.Fatalf("got actions %+v, want single FLOOD action", po.Actions)
	}

	// Reverse direction: src bb learned on port 2, dst aa now known on
	// port 1 (learned from the earlier frame). Expect a FLOW_MOD ADD.
	frame2 := append(append([]byte{}, aa[:]...), bb[:]...)
	frame2 = append(frame2, 0x08, 0x00)
	pi2 := openflow.PacketIn{BufferID: 11, InPort: 2, Data: frame2}
	writeRaw(t, client, openflow.TypePacketIn, 101, openflow.EncodePacketIn(pi2))

	raw, err = openflow.ReadMessage(client)
	if err != nil {
		t.Fatalf("reading second response: %v", err)
	}
	if raw.Header.Type != openflow.TypeFlowMod {
		t.Fatalf("got message type %d, want FLOW_MOD", raw.Header.Type)
	}
	fm, err := openflow.DecodeFlowMod(raw.Body)
	if err != nil {
		t.Fatalf("decoding flow_mod: %v", err)
	}
	if fm.Match.InPort != 2 || fm.Match.DLDst != aa {
		t.Fatalf("got match %+v, want in_port=2 dl_dst=%x", fm.Match, aa)
	}
	if fm.Priority != 100 || fm.IdleTimeout != 30 {
		t.Fatalf("got priority=%d idle=%d, want 100/30", fm.Priority, fm.IdleTimeout)
	}
	if len(fm.Actions) != 1 || fm.Actions[0].Port != 1 {
		t.Fatalf("got actions %+v, want output to port 1", fm.Actions)
	}
	if fm.BufferID != 11 {
		t.Fatalf("got buffer_id %d, want 11 (the switch-provided id)", fm.BufferID)
	}
}

func TestLLDPEventResolvesRemoteSwitch(t *testing.T) {
	m := NewManager(Config{}, 8, 8)
	client1 := connectMockSwitch(t, m, 1)
	defer client1.Close()
	client2 := connectMockSwitch(t, m, 2)
	defer client2.Close()

	switches := m.Switches()
	if len(switches) != 2 {
		t.Fatalf("got %d switches, want 2", len(switches))
	}

	// switch 1 observes an LLDP frame originally emitted for switch 2's
	// dpid on port 5, received on switch 1's port 3.
	frame := openflow.EncodeLLDP([6]byte{2, 0, 0, 0, 0, 2}, 2, 5)
	pi := openflow.PacketIn{BufferID: openflow.NoBuffer, InPort: 3, Data: frame}

	writeRaw(t, client1, openflow.TypePacketIn, 200, openflow.EncodePacketIn(pi))

	select {
	case ev := <-m.LLDP():
		if ev.LocalPort != 3 || ev.RemotePort != 5 {
			t.Fatalf("got %+v, want local_port=3 remote_port=5", ev)
		}
		if ev.LocalSwitch == ev.RemoteSwitch {
			t.Fatalf("got identical local/remote switch %d, want distinct", ev.LocalSwitch)
		}
	case <-time.After(time.Second):
		t.Fatalf("no LLDP event delivered")
	}
}

func TestBarrierRoundTrip(t *testing.T) {
	m := NewManager(Config{}, 8, 8)
	client := connectMockSwitch(t, m, 1)
	defer client.Close()
	swid := m.Switches()[0]

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.Barrier(context.Background(), swid)
	}()

	raw, err := openflow.ReadMessage(client)
	if err != nil {
		t.Fatalf("reading barrier_request: %v", err)
	}
	if raw.Header.Type != openflow.TypeBarrierRequest {
		t.Fatalf("got type %d, want BARRIER_REQUEST", raw.Header.Type)
	}
	if err := openflow.WriteMessage(client, openflow.TypeBarrierReply, raw.Header.Xid, openflow.EncodeBarrierReply()); err != nil {
		t.Fatalf("writing barrier_reply: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Barrier returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Barrier never returned")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m := NewManager(Config{ListenAddr: "127.0.0.1:0"}, 8, 8)
	if err := m.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	m.Stop()
	m.Stop()
}

func writeRaw(t *testing.T, conn net.Conn, typ uint8, xid uint32, body []byte) {
	t.Helper()
	if err := openflow.WriteMessage(conn, typ, xid, body); err != nil {
		t.Fatalf("writing message type %d: %v", typ, err)
	}
}
