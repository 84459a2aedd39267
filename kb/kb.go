package kb

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/isl-mesh/model"
)

// EventType indicates what kind of change happened in the constellation.
type EventType int

const (
	EventSatelliteMoved EventType = iota
)

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type      EventType
	Satellite model.Satellite
}

// Constellation is an in-memory, thread-safe registry of satellites.
// It is the pipeline's identity/position provider: satellite IDs are
// dense indices in [0, Len()), matching the topology's node ID space.
type Constellation struct {
	mu sync.RWMutex

	sats []*model.Satellite // index == satellite ID
	subs []func(Event)
}

// NewConstellation constructs an empty registry.
func NewConstellation() *Constellation {
	return &Constellation{}
}

// AddSatellite appends a new member. IDs must arrive densely in order,
// since the rest of the planner indexes by them.
func (c *Constellation) AddSatellite(s *model.Satellite) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s == nil {
		return fmt.Errorf("nil satellite")
	}
	if s.ID != len(c.sats) {
		return fmt.Errorf("satellite ID %d out of order, expected %d", s.ID, len(c.sats))
	}
	// store the pointer so motion models can update in place
	c.sats = append(c.sats, s)
	return nil
}

// Satellite returns the member with the given ID, or nil.
func (c *Constellation) Satellite(id int) *model.Satellite {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id < 0 || id >= len(c.sats) {
		return nil
	}
	return c.sats[id]
}

// Len returns the member count.
func (c *Constellation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sats)
}

// List returns the members in ID order.
func (c *Constellation) List() []*model.Satellite {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*model.Satellite(nil), c.sats...)
}

// UpdatePosition updates a member's coordinates and notifies subscribers.
func (c *Constellation) UpdatePosition(id int, pos model.Motion) error {
	c.mu.Lock()
	if id < 0 || id >= len(c.sats) {
		c.mu.Unlock()
		return fmt.Errorf("satellite %d not found", id)
	}
	s := c.sats[id]
	s.Coordinates = pos
	event := Event{
		Type:      EventSatelliteMoved,
		Satellite: *s, // copy for safety
	}
	subs := append([]func(Event){}, c.subs...)
	c.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// Subscribe registers a callback for registry events. It returns an
// unsubscribe function.
func (c *Constellation) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
	idx := len(c.subs) - 1

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < 0 || idx >= len(c.subs) {
			return
		}
		c.subs = append(c.subs[:idx], c.subs[idx+1:]...)
		idx = -1
	}
}
