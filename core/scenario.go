package core

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/signalsfoundry/isl-mesh/model"
)

var (
	ErrBadScenario = errors.New("invalid scenario")

	// ErrUnknownRoutingProtocol flags a protocol name outside the
	// recognized set.
	ErrUnknownRoutingProtocol = errors.New("unknown routing protocol")

	// ErrRoutingProtocolNotStatic flags a recognized dynamic protocol:
	// those are configured on the nodes by external tooling, this
	// planner only materializes static ISL routes.
	ErrRoutingProtocolNotStatic = errors.New("routing protocol not materialized by this planner")
)

// recognized routing protocol names, mirroring the simulation harness
// this planner feeds.
const (
	RoutingStatic = "static"
	RoutingAODV   = "aodv"
	RoutingOLSR   = "olsr"
	RoutingDSDV   = "dsdv"
)

// Scenario is the YAML-borne description of one planning run.
type Scenario struct {
	Name          string              `yaml:"name"`
	Constellation ConstellationConfig `yaml:"constellation"`
	Links         LinkConfig          `yaml:"links"`
	Routing       RoutingConfig       `yaml:"routing"`
	TLEs          []TLEEntry          `yaml:"tles,omitempty"`
}

// ConstellationConfig describes the Walker shape and shell.
type ConstellationConfig struct {
	Planes                int     `yaml:"planes"`
	SatsPerPlane          int     `yaml:"sats_per_plane"`
	NeighborsPerSatellite int     `yaml:"neighbors_per_satellite"`
	AltitudeKm            float64 `yaml:"altitude_km"`
	InclinationDeg        float64 `yaml:"inclination_deg"`
}

// Shape returns the configured Walker shape.
func (c ConstellationConfig) Shape() WalkerShape {
	return WalkerShape{Planes: c.Planes, SatsPerPlane: c.SatsPerPlane}
}

// LinkConfig carries the shared ISL transmission parameters.
type LinkConfig struct {
	DataRateBps       uint64 `yaml:"data_rate_bps"`
	QueueLimitPackets int    `yaml:"queue_limit_packets"`
}

// Params converts the config into link parameters.
func (c LinkConfig) Params() LinkParams {
	return LinkParams{DataRateBps: c.DataRateBps, QueueLimitPackets: c.QueueLimitPackets}
}

// RoutingConfig names the routing protocol the run assumes.
type RoutingConfig struct {
	Protocol string `yaml:"protocol"`
}

// TLEEntry optionally pins one satellite to a real two-line element set
// instead of the analytic shell placement.
type TLEEntry struct {
	Satellite int    `yaml:"satellite"`
	Line1     string `yaml:"line1"`
	Line2     string `yaml:"line2"`
}

// DefaultScenario is the validated 24-satellite configuration.
func DefaultScenario() *Scenario {
	return &Scenario{
		Name: "walker-delta-24",
		Constellation: ConstellationConfig{
			Planes:                ValidatedShape.Planes,
			SatsPerPlane:          ValidatedShape.SatsPerPlane,
			NeighborsPerSatellite: DefaultNeighborsPerSatellite,
			AltitudeKm:            DefaultAltitudeM / 1000.0,
			InclinationDeg:        DefaultInclinationDeg,
		},
		Links: LinkConfig{
			DataRateBps:       DefaultLinkParams().DataRateBps,
			QueueLimitPackets: DefaultLinkParams().QueueLimitPackets,
		},
		Routing: RoutingConfig{Protocol: RoutingStatic},
	}
}

// LoadScenario reads a YAML scenario from r, fills defaults, and
// validates it.
func LoadScenario(r io.Reader) (*Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadScenario, err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) applyDefaults() {
	if s.Constellation.NeighborsPerSatellite == 0 {
		s.Constellation.NeighborsPerSatellite = DefaultNeighborsPerSatellite
	}
	if s.Constellation.AltitudeKm == 0 {
		s.Constellation.AltitudeKm = DefaultAltitudeM / 1000.0
	}
	if s.Constellation.InclinationDeg == 0 {
		s.Constellation.InclinationDeg = DefaultInclinationDeg
	}
	if s.Links.DataRateBps == 0 {
		s.Links.DataRateBps = DefaultLinkParams().DataRateBps
	}
	if s.Links.QueueLimitPackets == 0 {
		s.Links.QueueLimitPackets = DefaultLinkParams().QueueLimitPackets
	}
	if s.Routing.Protocol == "" {
		s.Routing.Protocol = RoutingStatic
	}
}

// Validate checks structural sanity. Unsupported (count, degree)
// combinations are deliberately NOT rejected here: the topology
// generator signals those with an empty topology.
func (s *Scenario) Validate() error {
	if s.Constellation.Planes <= 0 || s.Constellation.SatsPerPlane <= 0 {
		return fmt.Errorf("%w: constellation shape %dx%d",
			ErrBadScenario, s.Constellation.Planes, s.Constellation.SatsPerPlane)
	}
	if s.Constellation.AltitudeKm <= 0 {
		return fmt.Errorf("%w: altitude %.1f km", ErrBadScenario, s.Constellation.AltitudeKm)
	}

	switch s.Routing.Protocol {
	case RoutingStatic:
	case RoutingAODV, RoutingOLSR, RoutingDSDV:
		return fmt.Errorf("%w: %q", ErrRoutingProtocolNotStatic, s.Routing.Protocol)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRoutingProtocol, s.Routing.Protocol)
	}

	n := s.Constellation.Shape().Satellites()
	for _, tle := range s.TLEs {
		if tle.Satellite < 0 || tle.Satellite >= n {
			return fmt.Errorf("%w: TLE for satellite %d outside [0,%d)", ErrBadScenario, tle.Satellite, n)
		}
		if tle.Line1 == "" || tle.Line2 == "" {
			return fmt.Errorf("%w: incomplete TLE for satellite %d", ErrBadScenario, tle.Satellite)
		}
	}
	return nil
}

// Satellites materializes the constellation members with their plane
// and slot indices. TLE-pinned members get MotionSourceSpacetrack.
func (s *Scenario) Satellites() []*model.Satellite {
	shape := s.Constellation.Shape()
	tleFor := make(map[int]TLEEntry, len(s.TLEs))
	for _, tle := range s.TLEs {
		tleFor[tle.Satellite] = tle
	}

	sats := make([]*model.Satellite, 0, shape.Satellites())
	for id := 0; id < shape.Satellites(); id++ {
		source := model.MotionSourceWalkerDelta
		if _, ok := tleFor[id]; ok {
			source = model.MotionSourceSpacetrack
		}
		sats = append(sats, &model.Satellite{
			ID:           id,
			Name:         fmt.Sprintf("SAT-%02d", id),
			Plane:        id / shape.SatsPerPlane,
			Slot:         id % shape.SatsPerPlane,
			MotionSource: source,
		})
	}
	return sats
}

// TLE returns the TLE pinned to the satellite, if any.
func (s *Scenario) TLE(id int) (TLEEntry, bool) {
	for _, tle := range s.TLEs {
		if tle.Satellite == id {
			return tle, true
		}
	}
	return TLEEntry{}, false
}
