// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/balance_board/internal/tilt"
)

type mockSource struct {
	start time.Time
}

// NewMockSource creates a mock accelerometer that generates a smooth,
// slowly drifting wobble, for development without hardware.
func NewMockSource() Source {
	return &mockSource{start: time.Now()}
}

func (m *mockSource) TryAcquire() (tilt.AccelSample, bool) {
	elapsed := time.Since(m.start).Seconds()

	// Sway a few degrees on each axis; az stays near 1 g.
	tiltX := 2.5 * math.Sin(elapsed)
	tiltY := 1.5 * math.Cos(elapsed*0.7)

	return tilt.AccelSample{
		Ax: math.Tan(tiltX * math.Pi / 180.0),
		Ay: math.Tan(tiltY * math.Pi / 180.0),
		Az: 1.0,
	}, true
}
