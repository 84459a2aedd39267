package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/signalsfoundry/isl-mesh/model"
)

const scenarioYAML = `
name: test-shell
constellation:
  planes: 3
  sats_per_plane: 8
  neighbors_per_satellite: 4
  altitude_km: 550
  inclination_deg: 53
links:
  data_rate_bps: 5000000000
  queue_limit_packets: 64
routing:
  protocol: static
`

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(strings.NewReader(scenarioYAML))
	if err != nil {
		t.Fatalf("LoadScenario error: %v", err)
	}
	if s.Name != "test-shell" {
		t.Fatalf("name = %q, want test-shell", s.Name)
	}
	if s.Constellation.Shape() != (WalkerShape{Planes: 3, SatsPerPlane: 8}) {
		t.Fatalf("shape = %+v", s.Constellation.Shape())
	}
	if got := s.Links.Params(); got.DataRateBps != 5000000000 || got.QueueLimitPackets != 64 {
		t.Fatalf("link params = %+v", got)
	}
}

func TestLoadScenarioDefaults(t *testing.T) {
	minimal := "constellation:\n  planes: 3\n  sats_per_plane: 8\n"
	s, err := LoadScenario(strings.NewReader(minimal))
	if err != nil {
		t.Fatalf("LoadScenario error: %v", err)
	}
	if s.Constellation.NeighborsPerSatellite != DefaultNeighborsPerSatellite {
		t.Fatalf("neighbors = %d, want %d", s.Constellation.NeighborsPerSatellite, DefaultNeighborsPerSatellite)
	}
	if s.Constellation.AltitudeKm != DefaultAltitudeM/1000.0 {
		t.Fatalf("altitude = %.1f km", s.Constellation.AltitudeKm)
	}
	if s.Routing.Protocol != RoutingStatic {
		t.Fatalf("protocol = %q, want static", s.Routing.Protocol)
	}
	if s.Links.Params() != DefaultLinkParams() {
		t.Fatalf("link params = %+v, want defaults", s.Links.Params())
	}
}

func TestLoadScenarioMalformedYAML(t *testing.T) {
	_, err := LoadScenario(strings.NewReader("constellation: [not a mapping"))
	if !errors.Is(err, ErrBadScenario) {
		t.Fatalf("error = %v, want ErrBadScenario", err)
	}
}

func TestScenarioValidateShape(t *testing.T) {
	s := DefaultScenario()
	s.Constellation.Planes = 0
	if err := s.Validate(); !errors.Is(err, ErrBadScenario) {
		t.Fatalf("zero planes: error = %v, want ErrBadScenario", err)
	}

	s = DefaultScenario()
	s.Constellation.AltitudeKm = -10
	if err := s.Validate(); !errors.Is(err, ErrBadScenario) {
		t.Fatalf("negative altitude: error = %v, want ErrBadScenario", err)
	}
}

func TestScenarioValidateRoutingProtocol(t *testing.T) {
	for _, proto := range []string{RoutingAODV, RoutingOLSR, RoutingDSDV} {
		s := DefaultScenario()
		s.Routing.Protocol = proto
		if err := s.Validate(); !errors.Is(err, ErrRoutingProtocolNotStatic) {
			t.Fatalf("%s: error = %v, want ErrRoutingProtocolNotStatic", proto, err)
		}
	}

	s := DefaultScenario()
	s.Routing.Protocol = "rip"
	if err := s.Validate(); !errors.Is(err, ErrUnknownRoutingProtocol) {
		t.Fatalf("rip: error = %v, want ErrUnknownRoutingProtocol", err)
	}

	s = DefaultScenario()
	if err := s.Validate(); err != nil {
		t.Fatalf("static: unexpected error %v", err)
	}
}

func TestScenarioValidateTLEs(t *testing.T) {
	s := DefaultScenario()
	s.TLEs = []TLEEntry{{Satellite: 24, Line1: "l1", Line2: "l2"}}
	if err := s.Validate(); !errors.Is(err, ErrBadScenario) {
		t.Fatalf("out-of-range TLE: error = %v, want ErrBadScenario", err)
	}

	s = DefaultScenario()
	s.TLEs = []TLEEntry{{Satellite: 3, Line1: "l1"}}
	if err := s.Validate(); !errors.Is(err, ErrBadScenario) {
		t.Fatalf("incomplete TLE: error = %v, want ErrBadScenario", err)
	}
}

func TestScenarioSatellites(t *testing.T) {
	s := DefaultScenario()
	s.TLEs = []TLEEntry{{Satellite: 10, Line1: "l1", Line2: "l2"}}

	sats := s.Satellites()
	if len(sats) != 24 {
		t.Fatalf("got %d satellites, want 24", len(sats))
	}
	for id, sat := range sats {
		if sat.ID != id {
			t.Fatalf("satellite at index %d has ID %d", id, sat.ID)
		}
		if sat.Plane != id/8 || sat.Slot != id%8 {
			t.Fatalf("satellite %d placed at plane %d slot %d", id, sat.Plane, sat.Slot)
		}
	}
	if sats[9].Name != "SAT-09" {
		t.Fatalf("name = %q, want SAT-09", sats[9].Name)
	}
	if sats[10].MotionSource != model.MotionSourceSpacetrack {
		t.Fatalf("TLE-pinned member source = %v, want spacetrack", sats[10].MotionSource)
	}
	if sats[0].MotionSource != model.MotionSourceWalkerDelta {
		t.Fatalf("shell member source = %v, want walker-delta", sats[0].MotionSource)
	}

	if tle, ok := s.TLE(10); !ok || tle.Line1 != "l1" {
		t.Fatalf("TLE(10) = %+v, %v", tle, ok)
	}
	if _, ok := s.TLE(0); ok {
		t.Fatal("TLE(0) should not exist")
	}
}
