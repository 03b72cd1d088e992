package tilt

import "fmt"

// DefaultAlpha is the default smoothing coefficient. At 50 Hz sampling this
// gives an effective time constant of about 10 samples (~200 ms), a deliberate
// trade-off between responsiveness and a readable display.
const DefaultAlpha = 0.90

// Filter is an exponential moving average over the combined tilt magnitude:
//
//	smoothed = alpha*smoothed + (1-alpha)*instant
//
// It starts at 0.0 and must be updated exactly once per accepted sample, in
// acquisition order.
type Filter struct {
	alpha float64
	value float64
}

// NewFilter returns a filter with the given coefficient. Alpha outside
// [0, 1) is a configuration error and is rejected up front.
func NewFilter(alpha float64) (*Filter, error) {
	if alpha < 0 || alpha >= 1 {
		return nil, fmt.Errorf("smoothing alpha must be in [0, 1), got %g", alpha)
	}
	return &Filter{alpha: alpha}, nil
}

// Update folds one instantaneous magnitude into the running average and
// returns the new smoothed value.
func (f *Filter) Update(instant float64) float64 {
	f.value = f.alpha*f.value + (1-f.alpha)*instant
	return f.value
}

// Value returns the current smoothed magnitude without updating it.
func (f *Filter) Value() float64 {
	return f.value
}
