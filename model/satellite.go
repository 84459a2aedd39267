package model

// MotionSource indicates how a satellite's motion is determined.
type MotionSource int

const (
	MotionSourceUnknown     MotionSource = iota
	MotionSourceWalkerDelta              // analytic circular-orbit placement
	MotionSourceSpacetrack               // TLE-based orbit propagation
)

// Motion represents a position in ECEF metres.
type Motion struct {
	X float64
	Y float64
	Z float64
}

// Satellite represents one constellation member. Satellites are
// referenced by a small integer ID everywhere in the planner; the ID is
// the member's stable index in [0, N).
type Satellite struct {
	ID   int
	Name string

	// Plane and Slot locate the satellite inside the Walker shape:
	// ID = Plane*SatsPerPlane + Slot.
	Plane int
	Slot  int

	Coordinates  Motion
	MotionSource MotionSource

	NoradID uint32 // optional; useful when MotionSourceSpacetrack
}
