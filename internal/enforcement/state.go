// Package enforcement lets an operator pause plan application without
// stopping the controller: discovery, forecasting, and solving keep
// running, but the actuator withholds its network-changing calls.
package enforcement

import (
	"log"
	"sync"
	"time"
)

// State is the pause/resume switch checked by the actuator before it
// applies a plan.
type State struct {
	mu      sync.RWMutex
	paused  bool
	sinceAt time.Time
}

// NewState returns a State that starts resumed.
func NewState() *State {
	return &State{}
}

// Paused reports whether plan application is currently paused.
func (s *State) Paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// Since returns when the current pause/resume state took effect.
func (s *State) Since() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sinceAt
}

// Pause stops the actuator from applying new plans.
func (s *State) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return
	}
	s.paused = true
	s.sinceAt = time.Now()
	log.Println("[enforcement] plan application paused")
}

// Resume allows the actuator to apply plans again.
func (s *State) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return
	}
	s.paused = false
	s.sinceAt = time.Now()
	log.Println("[enforcement] plan application resumed")
}
