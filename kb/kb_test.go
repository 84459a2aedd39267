package kb

import (
	"testing"

	"github.com/signalsfoundry/isl-mesh/model"
)

func TestAddSatelliteDenseIDs(t *testing.T) {
	c := NewConstellation()

	if err := c.AddSatellite(&model.Satellite{ID: 0, Name: "SAT-00"}); err != nil {
		t.Fatalf("add ID 0: %v", err)
	}
	if err := c.AddSatellite(&model.Satellite{ID: 1, Name: "SAT-01"}); err != nil {
		t.Fatalf("add ID 1: %v", err)
	}
	if err := c.AddSatellite(&model.Satellite{ID: 5, Name: "SAT-05"}); err == nil {
		t.Fatal("out-of-order ID accepted")
	}
	if err := c.AddSatellite(nil); err == nil {
		t.Fatal("nil satellite accepted")
	}

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if got := c.Satellite(1); got == nil || got.Name != "SAT-01" {
		t.Fatalf("Satellite(1) = %+v", got)
	}
	if c.Satellite(7) != nil {
		t.Fatal("Satellite(7) should be nil")
	}
	if c.Satellite(-1) != nil {
		t.Fatal("Satellite(-1) should be nil")
	}
}

func TestListIsACopy(t *testing.T) {
	c := NewConstellation()
	c.AddSatellite(&model.Satellite{ID: 0})
	c.AddSatellite(&model.Satellite{ID: 1})

	list := c.List()
	if len(list) != 2 {
		t.Fatalf("List has %d members, want 2", len(list))
	}
	list[0] = nil
	if c.Satellite(0) == nil {
		t.Fatal("mutating the returned slice changed the registry")
	}
}

func TestUpdatePositionNotifiesSubscribers(t *testing.T) {
	c := NewConstellation()
	c.AddSatellite(&model.Satellite{ID: 0, Name: "SAT-00"})

	var events []Event
	unsubscribe := c.Subscribe(func(e Event) { events = append(events, e) })

	pos := model.Motion{X: 1000, Y: 2000, Z: 3000}
	if err := c.UpdatePosition(0, pos); err != nil {
		t.Fatalf("UpdatePosition error: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.Type != EventSatelliteMoved {
		t.Fatalf("event type = %v", e.Type)
	}
	if e.Satellite.Coordinates != pos {
		t.Fatalf("event coordinates = %+v, want %+v", e.Satellite.Coordinates, pos)
	}
	if c.Satellite(0).Coordinates != pos {
		t.Fatalf("registry coordinates = %+v", c.Satellite(0).Coordinates)
	}

	unsubscribe()
	if err := c.UpdatePosition(0, model.Motion{X: 9}); err != nil {
		t.Fatalf("UpdatePosition error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events after unsubscribe, want 1", len(events))
	}
	// Unsubscribing twice is harmless.
	unsubscribe()
}

func TestUpdatePositionUnknownSatellite(t *testing.T) {
	c := NewConstellation()
	if err := c.UpdatePosition(0, model.Motion{}); err == nil {
		t.Fatal("expected error for unknown satellite")
	}
}

func TestSubscriberReceivesCopy(t *testing.T) {
	c := NewConstellation()
	c.AddSatellite(&model.Satellite{ID: 0})

	var got model.Satellite
	c.Subscribe(func(e Event) { got = e.Satellite })

	c.UpdatePosition(0, model.Motion{X: 1})
	got.Coordinates.X = 42
	if c.Satellite(0).Coordinates.X != 1 {
		t.Fatal("mutating the event copy changed the registry")
	}
}
