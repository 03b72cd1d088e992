package tilt

import (
	"math"
)

// AccelSample is a single gravity-referenced accelerometer reading in g,
// body frame. Samples are consumed once and never retained.
type AccelSample struct {
	Ax float64 `json:"ax"`
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`
}

// Angles holds the per-axis tilt of the board in degrees.
type Angles struct {
	X float64 `json:"tilt_x"`
	Y float64 `json:"tilt_y"`
}

// MaxMagnitudeDeg is the finite sentinel returned when the geometry is
// degenerate (NaN/Inf from extreme or invalid input). It always classifies
// as the worst zone, and it keeps NaN out of the smoothing filter, where it
// would stick forever.
const MaxMagnitudeDeg = 180.0

// AnglesFromAccel computes per-axis tilt from accelerometer data only.
//
// Uses simple tilt formulas:
//
//	tiltX = atan2(ax, az)
//	tiltY = atan2(ay, az)
func AnglesFromAccel(s AccelSample) Angles {
	return Angles{
		X: math.Atan2(s.Ax, s.Az) * 180.0 / math.Pi,
		Y: math.Atan2(s.Ay, s.Az) * 180.0 / math.Pi,
	}
}

// Magnitude is the combined tilt of both axes, degrees, always >= 0.
func (a Angles) Magnitude() float64 {
	return math.Hypot(a.X, a.Y)
}

// Estimator turns raw accelerometer samples into a combined tilt magnitude,
// applying the session calibration offset when one is set.
type Estimator struct {
	cal *Calibration
}

// NewEstimator returns an estimator bound to the given calibration store.
func NewEstimator(cal *Calibration) *Estimator {
	return &Estimator{cal: cal}
}

// Magnitude estimates the combined tilt of one sample in degrees. The offset
// is subtracted before combining, so once calibrated the downstream filter
// never sees uncalibrated values. Degenerate input clamps to MaxMagnitudeDeg
// instead of propagating NaN/Inf.
func (e *Estimator) Magnitude(s AccelSample) float64 {
	a := AnglesFromAccel(s)
	if ref, ok := e.cal.Offset(); ok {
		a.X -= ref.X
		a.Y -= ref.Y
	}
	m := a.Magnitude()
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return MaxMagnitudeDeg
	}
	return m
}
