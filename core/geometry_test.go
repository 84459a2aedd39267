package core

import (
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/isl-mesh/model"
)

func TestVec3Operations(t *testing.T) {
	a := Vec3{X: 3, Y: 4, Z: 0}
	b := Vec3{X: 0, Y: 0, Z: 12}

	if got := a.Norm(); got != 5 {
		t.Fatalf("Norm = %v, want 5", got)
	}
	if got := a.DistanceTo(b); got != 13 {
		t.Fatalf("DistanceTo = %v, want 13", got)
	}
	if got := a.Sub(b); got != (Vec3{X: 3, Y: 4, Z: -12}) {
		t.Fatalf("Sub = %+v", got)
	}
	if got := a.Dot(b); got != 0 {
		t.Fatalf("Dot = %v, want 0", got)
	}
}

func TestVec3FromMotion(t *testing.T) {
	m := model.Motion{X: 1, Y: -2, Z: 3}
	if got := Vec3FromMotion(m); got != (Vec3{X: 1, Y: -2, Z: 3}) {
		t.Fatalf("Vec3FromMotion = %+v", got)
	}
}

func TestPropagationDelay(t *testing.T) {
	// One light-second of separation.
	d := PropagationDelay(SpeedOfLightMps)
	if diff := d - time.Second; diff < -time.Nanosecond || diff > time.Nanosecond {
		t.Fatalf("delay for one light-second = %v", d)
	}

	if got := PropagationDelay(0); got != 0 {
		t.Fatalf("delay for zero distance = %v", got)
	}

	// A 2000 km cross-link is a hair under 6.7 ms.
	d = PropagationDelay(2_000_000)
	wantSeconds := 2_000_000.0 / SpeedOfLightMps
	want := time.Duration(wantSeconds * float64(time.Second))
	if math.Abs(float64(d-want)) > float64(time.Microsecond) {
		t.Fatalf("delay = %v, want about %v", d, want)
	}
}
