package topology

import (
	"strings"
	"testing"
	"time"

	"github.com/netarch/teflow/internal/controller"
)

// fakeSource is a minimal Source for testing the viewer in isolation from
// the OpenFlow session manager.
type fakeSource struct {
	events    chan controller.LLDPEvent
	sendCalls int
	period    time.Duration
}

func newFakeSource() *fakeSource {
	return &fakeSource{events: make(chan controller.LLDPEvent, 16)}
}

func (f *fakeSource) LLDP() <-chan controller.LLDPEvent { return f.events }
func (f *fakeSource) SendLLDP()                         { f.sendCalls++ }
func (f *fakeSource) SetLLDPPeriod(d time.Duration)     { f.period = d }

func TestCanonicalizationIsIdempotent(t *testing.T) {
	src := newFakeSource()
	v := NewViewer(src, nil, time.Hour, time.Hour)

	v.handleEvent(controller.LLDPEvent{LocalSwitch: 3, LocalPort: 4, RemoteSwitch: 1, RemotePort: 2})
	first := v.Snapshot()

	v2 := NewViewer(src, nil, time.Hour, time.Hour)
	v2.handleEvent(controller.LLDPEvent{LocalSwitch: 1, LocalPort: 2, RemoteSwitch: 3, RemotePort: 4})
	second := v2.Snapshot()

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("got %d and %d edges, want 1 each", len(first), len(second))
	}
	a, b := first[0], second[0]
	if a.U != b.U || a.V != b.V || a.UPort != b.UPort || a.VPort != b.VPort {
		t.Fatalf("got %+v and %+v, want identical canonical edge", a, b)
	}
	if first[0].U != 1 || first[0].V != 3 || first[0].UPort != 2 || first[0].VPort != 4 {
		t.Fatalf("got %+v, want u=1 v=3 u_port=2 v_port=4", first[0])
	}
}

func TestSelfLoopSkipped(t *testing.T) {
	src := newFakeSource()
	v := NewViewer(src, nil, time.Hour, time.Hour)
	v.handleEvent(controller.LLDPEvent{LocalSwitch: 5, LocalPort: 1, RemoteSwitch: 5, RemotePort: 2})
	if got := v.Snapshot(); len(got) != 0 {
		t.Fatalf("got %d edges, want 0 for a self-loop", len(got))
	}
}

func TestTopologyFreshnessExpiry(t *testing.T) {
	src := newFakeSource()
	v := NewViewer(src, nil, time.Hour, 10*time.Millisecond)
	v.handleEvent(controller.LLDPEvent{LocalSwitch: 1, LocalPort: 3, RemoteSwitch: 2, RemotePort: 4})

	if got := v.Snapshot(); len(got) != 1 {
		t.Fatalf("got %d edges immediately after discovery, want 1", len(got))
	}

	time.Sleep(20 * time.Millisecond)
	if got := v.Snapshot(); len(got) != 0 {
		t.Fatalf("got %d edges after expiry, want 0", len(got))
	}
}

func TestDOTExport(t *testing.T) {
	src := newFakeSource()
	v := NewViewer(src, nil, time.Hour, time.Hour)
	v.handleEvent(controller.LLDPEvent{LocalSwitch: 1, LocalPort: 1, RemoteSwitch: 2, RemotePort: 2})

	dot, err := v.DOT()
	if err != nil {
		t.Fatalf("DOT: %v", err)
	}
	if !strings.Contains(dot, `"1" -- "2"`) {
		t.Fatalf("got %q, want an edge between 1 and 2", dot)
	}
	if !strings.Contains(dot, `label="(1,2)"`) {
		t.Fatalf("got %q, want port label (1,2)", dot)
	}
}
