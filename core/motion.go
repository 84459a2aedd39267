package core

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/isl-mesh/model"
)

const (
	// DefaultAltitudeM is the validated shell altitude (550 km LEO).
	DefaultAltitudeM = 550000.0
	// DefaultInclinationDeg matches the Walker-Delta 53:24/3/1 shell.
	DefaultInclinationDeg = 53.0

	// earthMuM3S2 is the standard gravitational parameter of Earth.
	earthMuM3S2 = 3.986004418e14
)

// MotionModel updates a satellite's position for a given simulation time.
type MotionModel interface {
	UpdatePosition(simTime time.Time, sat *model.Satellite)
}

// StaticMotionModel leaves the satellite's position unchanged.
type StaticMotionModel struct{}

// UpdatePosition for static motion does nothing.
func (m *StaticMotionModel) UpdatePosition(simTime time.Time, sat *model.Satellite) {
	// no-op
}

// WalkerDeltaMotionModel places satellites on circular orbits arranged
// in the Walker shape: RAAN spaced per plane, true anomaly spaced per
// slot, all members at one altitude and inclination. After the epoch
// the anomaly advances at the circular mean motion.
type WalkerDeltaMotionModel struct {
	Shape          WalkerShape
	OrbitRadiusM   float64
	InclinationRad float64
	Epoch          time.Time
}

// NewWalkerDeltaMotionModel builds the motion model for the shape with
// the given altitude above the mean Earth radius and inclination.
func NewWalkerDeltaMotionModel(shape WalkerShape, altitudeM, inclinationDeg float64, epoch time.Time) *WalkerDeltaMotionModel {
	return &WalkerDeltaMotionModel{
		Shape:          shape,
		OrbitRadiusM:   EarthRadiusM + altitudeM,
		InclinationRad: inclinationDeg * math.Pi / 180.0,
		Epoch:          epoch,
	}
}

// UpdatePosition recomputes the satellite's ECEF-style coordinates for
// simTime from its plane and slot.
func (m *WalkerDeltaMotionModel) UpdatePosition(simTime time.Time, sat *model.Satellite) {
	raan := float64(sat.Plane) * (2 * math.Pi / float64(m.Shape.Planes))
	anomaly := float64(sat.Slot) * (2 * math.Pi / float64(m.Shape.SatsPerPlane))

	if !m.Epoch.IsZero() && simTime.After(m.Epoch) {
		meanMotion := math.Sqrt(earthMuM3S2 / math.Pow(m.OrbitRadiusM, 3))
		anomaly += meanMotion * simTime.Sub(m.Epoch).Seconds()
	}

	r := m.OrbitRadiusM
	cosO, sinO := math.Cos(raan), math.Sin(raan)
	cosV, sinV := math.Cos(anomaly), math.Sin(anomaly)
	cosI := math.Cos(m.InclinationRad)

	sat.Coordinates = model.Motion{
		X: r * (cosO*cosV - sinO*sinV*cosI),
		Y: r * (sinO*cosV + cosO*sinV*cosI),
		Z: r * sinV * math.Sin(m.InclinationRad),
	}
}

// OrbitalSGP4MotionModel uses a TLE and SGP4 to update satellite position.
type OrbitalSGP4MotionModel struct {
	sat satellite.Satellite
}

// NewOrbitalModelFromTLE constructs an orbital model from TLE lines.
func NewOrbitalModelFromTLE(line1, line2 string) *OrbitalSGP4MotionModel {
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &OrbitalSGP4MotionModel{sat: sat}
}

// UpdatePosition propagates the satellite to the given simulation time.
// go-satellite works in kilometres; the model stores metres.
func (m *OrbitalSGP4MotionModel) UpdatePosition(simTime time.Time, sat *model.Satellite) {
	year, month, day := simTime.Date()
	hour, min, sec := simTime.Clock()

	posECI, _ := satellite.Propagate(m.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	const kmToM = 1000.0
	sat.Coordinates = model.Motion{
		X: posECEF.X * kmToM,
		Y: posECEF.Y * kmToM,
		Z: posECEF.Z * kmToM,
	}
}

// NewMotionModel chooses an appropriate MotionModel for the satellite.
// TLE-fed members use SGP4; Walker members use the analytic shell
// model; everything else stays put.
func NewMotionModel(sat *model.Satellite, walker *WalkerDeltaMotionModel, tle1, tle2 string) MotionModel {
	switch {
	case sat.MotionSource == model.MotionSourceSpacetrack && tle1 != "" && tle2 != "":
		return NewOrbitalModelFromTLE(tle1, tle2)
	case sat.MotionSource == model.MotionSourceWalkerDelta && walker != nil:
		return walker
	default:
		return &StaticMotionModel{}
	}
}
