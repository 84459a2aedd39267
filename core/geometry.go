package core

import (
	"math"
	"time"

	"github.com/signalsfoundry/isl-mesh/model"
)

const (
	// EarthRadiusM is the mean Earth radius in metres.
	EarthRadiusM = 6371000.0

	// SpeedOfLightMps is the propagation speed used for ISL delay
	// computation, metres per second.
	SpeedOfLightMps = 299792458.0
)

// Vec3 is an ECEF-style position vector in metres.
type Vec3 struct {
	X, Y, Z float64
}

// Vec3FromMotion converts a model position snapshot into a Vec3.
func Vec3FromMotion(m model.Motion) Vec3 {
	return Vec3{X: m.X, Y: m.Y, Z: m.Z}
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// PropagationDelay converts a path length in metres into the one-way
// light-speed propagation delay.
func PropagationDelay(distanceM float64) time.Duration {
	return time.Duration(distanceM / SpeedOfLightMps * float64(time.Second))
}
