package tilt

import "fmt"

// Zone is the stability classification shown to the user. The order is
// strict: Stable < Moving < Wobbly.
type Zone int

const (
	ZoneStable Zone = iota // green
	ZoneMoving             // yellow
	ZoneWobbly             // red
)

func (z Zone) String() string {
	switch z {
	case ZoneStable:
		return "stable"
	case ZoneMoving:
		return "moving"
	case ZoneWobbly:
		return "wobbly"
	}
	return fmt.Sprintf("zone(%d)", int(z))
}

// Default zone thresholds, degrees of combined tilt.
const (
	DefaultGreenMaxDeg  = 1.0
	DefaultYellowMaxDeg = 3.0
)

// Thresholds are the two ascending zone boundaries in degrees.
type Thresholds struct {
	GreenMaxDeg  float64
	YellowMaxDeg float64
}

// Validate rejects thresholds that are not strictly ascending and positive.
func (t Thresholds) Validate() error {
	if t.GreenMaxDeg <= 0 {
		return fmt.Errorf("green threshold must be positive, got %g", t.GreenMaxDeg)
	}
	if t.YellowMaxDeg <= t.GreenMaxDeg {
		return fmt.Errorf("yellow threshold %g must be greater than green threshold %g",
			t.YellowMaxDeg, t.GreenMaxDeg)
	}
	return nil
}

// Classify maps a smoothed magnitude to a zone. Lower bounds are inclusive,
// so every non-negative finite magnitude lands in exactly one zone and the
// zone never decreases as the magnitude grows.
func Classify(magnitudeDeg float64, t Thresholds) Zone {
	switch {
	case magnitudeDeg < t.GreenMaxDeg:
		return ZoneStable
	case magnitudeDeg < t.YellowMaxDeg:
		return ZoneMoving
	default:
		return ZoneWobbly
	}
}
