package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/balance_board/internal/tilt"
)

// fakeSensor hands out whatever the test last staged.
type fakeSensor struct {
	sample tilt.AccelSample
	ok     bool
	reads  int
}

func (s *fakeSensor) TryAcquire() (tilt.AccelSample, bool) {
	s.reads++
	return s.sample, s.ok
}

// fakeTrigger fires once per armed request, like a debounced button edge.
type fakeTrigger struct {
	armed bool
}

func (t *fakeTrigger) CalibrationRequested() bool {
	if t.armed {
		t.armed = false
		return true
	}
	return false
}

type renderEvent struct {
	kind string // "full", "partial", "calibrated"
	zone tilt.Zone
	mag  float64
}

// recordingRenderer captures every render decision in order.
type recordingRenderer struct {
	events []renderEvent
}

func (r *recordingRenderer) RenderFull(zone tilt.Zone, magnitudeDeg float64) error {
	r.events = append(r.events, renderEvent{kind: "full", zone: zone, mag: magnitudeDeg})
	return nil
}

func (r *recordingRenderer) RenderPartial(magnitudeDeg float64) error {
	r.events = append(r.events, renderEvent{kind: "partial", mag: magnitudeDeg})
	return nil
}

func (r *recordingRenderer) RenderCalibrationConfirmed() error {
	r.events = append(r.events, renderEvent{kind: "calibrated"})
	return nil
}

func (r *recordingRenderer) kinds() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.kind
	}
	return out
}

// testConfig uses alpha 0 so the smoothed value tracks the input exactly and
// zone transitions are deterministic per tick.
func testConfig() Config {
	return Config{
		SampleInterval: 20 * time.Millisecond,
		Alpha:          0,
		Thresholds: tilt.Thresholds{
			GreenMaxDeg:  tilt.DefaultGreenMaxDeg,
			YellowMaxDeg: tilt.DefaultYellowMaxDeg,
		},
	}
}

func newTestController(t *testing.T, cfg Config) (*Controller, *fakeSensor, *fakeTrigger, *recordingRenderer) {
	t.Helper()
	sensor := &fakeSensor{sample: tilt.AccelSample{Az: 1.0}, ok: true}
	trigger := &fakeTrigger{}
	renderer := &recordingRenderer{}
	ctrl, err := New(cfg, sensor, trigger, renderer)
	require.NoError(t, err)
	return ctrl, sensor, trigger, renderer
}

func TestNew_RejectsBadConfig(t *testing.T) {
	sensor := &fakeSensor{}
	trigger := &fakeTrigger{}
	renderer := &recordingRenderer{}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "ZeroInterval", mutate: func(c *Config) { c.SampleInterval = 0 }},
		{name: "NegativeInterval", mutate: func(c *Config) { c.SampleInterval = -time.Second }},
		{name: "AlphaOne", mutate: func(c *Config) { c.Alpha = 1.0 }},
		{name: "AlphaNegative", mutate: func(c *Config) { c.Alpha = -0.5 }},
		{name: "ThresholdsDescending", mutate: func(c *Config) {
			c.Thresholds = tilt.Thresholds{GreenMaxDeg: 3, YellowMaxDeg: 1}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			_, err := New(cfg, sensor, trigger, renderer)
			assert.Error(t, err)
		})
	}
}

func TestTick_FirstAcceptedTickRendersFull(t *testing.T) {
	ctrl, _, _, renderer := newTestController(t, testConfig())

	now := time.Now()
	ctrl.Tick(now)

	require.Len(t, renderer.events, 1)
	assert.Equal(t, "full", renderer.events[0].kind)
	assert.Equal(t, tilt.ZoneStable, renderer.events[0].zone)
	assert.InDelta(t, 0, renderer.events[0].mag, 1e-9)
}

func TestTick_RedrawSuppressionWithinZone(t *testing.T) {
	ctrl, _, _, renderer := newTestController(t, testConfig())

	now := time.Now()
	for i := 0; i < 5; i++ {
		ctrl.Tick(now.Add(time.Duration(i*20) * time.Millisecond))
	}

	// Only the first tick repaints; the rest refresh the readout.
	assert.Equal(t, []string{"full", "partial", "partial", "partial", "partial"}, renderer.kinds())
}

func TestTick_ZoneChangeRendersFull(t *testing.T) {
	ctrl, sensor, _, renderer := newTestController(t, testConfig())

	now := time.Now()
	ctrl.Tick(now) // stable, full

	// ~2.86°: between the defaults, so Moving.
	sensor.sample = tilt.AccelSample{Ax: 0.05, Az: 1.0}
	ctrl.Tick(now.Add(20 * time.Millisecond))

	// Same zone again: partial.
	ctrl.Tick(now.Add(40 * time.Millisecond))

	require.Equal(t, []string{"full", "full", "partial"}, renderer.kinds())
	assert.Equal(t, tilt.ZoneMoving, renderer.events[1].zone)
	assert.InDelta(t, 2.8624, renderer.events[1].mag, 1e-3)
}

func TestTick_IntervalGateIsNoOp(t *testing.T) {
	ctrl, sensor, _, renderer := newTestController(t, testConfig())

	now := time.Now()
	ctrl.Tick(now)
	readsAfterFirst := sensor.reads

	// Inside the interval nothing happens: no sensor read, no render, no
	// filter update.
	ctrl.Tick(now.Add(5 * time.Millisecond))
	ctrl.Tick(now.Add(15 * time.Millisecond))

	assert.Equal(t, readsAfterFirst, sensor.reads)
	assert.Len(t, renderer.events, 1)
}

func TestTick_SensorSkipPreservesFilterState(t *testing.T) {
	cfg := testConfig()
	cfg.Alpha = 0.90
	ctrl, sensor, _, renderer := newTestController(t, cfg)

	now := time.Now()
	sensor.sample = tilt.AccelSample{Ax: 0.05, Az: 1.0}
	ctrl.Tick(now)
	smoothedAfterFirst := ctrl.SmoothedMagnitude()
	require.Greater(t, smoothedAfterFirst, 0.0)

	// Sensor dries up: ticks are skipped entirely, not treated as
	// zero-change samples.
	sensor.ok = false
	ctrl.Tick(now.Add(20 * time.Millisecond))
	ctrl.Tick(now.Add(40 * time.Millisecond))

	assert.Equal(t, smoothedAfterFirst, ctrl.SmoothedMagnitude())
	assert.Len(t, renderer.events, 1)
}

func TestTick_CalibrationPreemptsAndForcesRedraw(t *testing.T) {
	ctrl, sensor, trigger, renderer := newTestController(t, testConfig())

	now := time.Now()
	sensor.sample = tilt.AccelSample{Ax: 0.01, Az: 1.0} // stable
	ctrl.Tick(now)
	ctrl.Tick(now.Add(20 * time.Millisecond))
	require.Equal(t, []string{"full", "partial"}, renderer.kinds())

	// Calibration suppresses the ordinary decision for that cycle...
	trigger.armed = true
	ctrl.Tick(now.Add(40 * time.Millisecond))
	require.Equal(t, []string{"full", "partial", "calibrated"}, renderer.kinds())
	assert.True(t, ctrl.Calibrated())

	// ...and invalidates the rendered zone, so the next tick repaints even
	// though the zone is numerically unchanged.
	ctrl.Tick(now.Add(60 * time.Millisecond))
	require.Equal(t, []string{"full", "partial", "calibrated", "full"}, renderer.kinds())
	assert.Equal(t, tilt.ZoneStable, renderer.events[3].zone)
}

func TestTick_CalibrationZeroesTilt(t *testing.T) {
	ctrl, sensor, trigger, renderer := newTestController(t, testConfig())

	now := time.Now()
	// Moving zone before calibration.
	sensor.sample = tilt.AccelSample{Ax: 0.05, Az: 1.0}
	ctrl.Tick(now)
	require.Equal(t, tilt.ZoneMoving, renderer.events[0].zone)

	trigger.armed = true
	ctrl.Tick(now.Add(20 * time.Millisecond))

	// Same physical posture now reads as level.
	ctrl.Tick(now.Add(40 * time.Millisecond))
	last := renderer.events[len(renderer.events)-1]
	assert.Equal(t, "full", last.kind)
	assert.Equal(t, tilt.ZoneStable, last.zone)
	assert.InDelta(t, 0, last.mag, 1e-4)
}

func TestTick_CalibrationRetriesUntilSampleAvailable(t *testing.T) {
	ctrl, sensor, trigger, renderer := newTestController(t, testConfig())

	now := time.Now()
	ctrl.Tick(now)
	require.Equal(t, []string{"full"}, renderer.kinds())

	// Request arrives while the sensor has nothing: nothing rendered, the
	// request stays latched.
	sensor.ok = false
	trigger.armed = true
	ctrl.Tick(now.Add(20 * time.Millisecond))
	assert.Equal(t, []string{"full"}, renderer.kinds())
	assert.False(t, ctrl.Calibrated())

	// Data returns on a later tick and the latched request completes.
	sensor.ok = true
	ctrl.Tick(now.Add(40 * time.Millisecond))
	assert.Equal(t, []string{"full", "calibrated"}, renderer.kinds())
	assert.True(t, ctrl.Calibrated())
}

func TestTick_CalibrationDoesNotTouchFilter(t *testing.T) {
	cfg := testConfig()
	cfg.Alpha = 0.90
	ctrl, sensor, trigger, _ := newTestController(t, cfg)

	now := time.Now()
	sensor.sample = tilt.AccelSample{Ax: 0.05, Az: 1.0}
	ctrl.Tick(now)
	before := ctrl.SmoothedMagnitude()

	trigger.armed = true
	ctrl.Tick(now.Add(20 * time.Millisecond))

	// Calibration replaces the reference but leaves in-flight smoothing
	// alone.
	assert.Equal(t, before, ctrl.SmoothedMagnitude())
}

func TestTick_MissedIntervalsAbsorbed(t *testing.T) {
	ctrl, _, _, renderer := newTestController(t, testConfig())

	now := time.Now()
	ctrl.Tick(now)
	// The host stalled for several intervals; the next tick is simply
	// accepted against the wall-clock delta.
	ctrl.Tick(now.Add(130 * time.Millisecond))

	assert.Equal(t, []string{"full", "partial"}, renderer.kinds())
}
