package enforcement

import "testing"

func TestStartsResumed(t *testing.T) {
	s := NewState()
	if s.Paused() {
		t.Fatalf("got paused, want a fresh State to start resumed")
	}
}

func TestPauseResumeIdempotent(t *testing.T) {
	s := NewState()
	s.Pause()
	s.Pause()
	if !s.Paused() {
		t.Fatalf("got resumed, want paused after Pause")
	}
	s.Resume()
	s.Resume()
	if s.Paused() {
		t.Fatalf("got paused, want resumed after Resume")
	}
}
