// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package monitor runs the balance board sampling loop: it rate-limits
// sensor reads, drives the tilt pipeline and decides how the display must
// react. The loop is single-threaded and poll-driven; the host calls Tick
// with the current time, which keeps the whole controller testable with
// synthetic timestamps.
package monitor

import (
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/balance_board/internal/tilt"
)

// DefaultSampleInterval is the default spacing between accepted samples
// (~50 Hz).
const DefaultSampleInterval = 20 * time.Millisecond

// Sensor supplies accelerometer samples. TryAcquire never blocks; false
// means no new data this tick.
type Sensor interface {
	TryAcquire() (tilt.AccelSample, bool)
}

// Trigger reports the user's calibration request. True at most once per
// physical action; debouncing is the collaborator's job.
type Trigger interface {
	CalibrationRequested() bool
}

// Renderer is the display-side collaborator. The controller only decides
// which call to make and with what values; pixels are not its concern.
type Renderer interface {
	RenderFull(zone tilt.Zone, magnitudeDeg float64) error
	RenderPartial(magnitudeDeg float64) error
	RenderCalibrationConfirmed() error
}

// Config holds the controller's tunable knobs.
type Config struct {
	SampleInterval time.Duration
	Alpha          float64
	Thresholds     tilt.Thresholds
}

// Controller owns all pipeline state for one session: the calibration
// reference, the smoothing filter and the last rendered zone.
type Controller struct {
	cfg      Config
	sensor   Sensor
	trigger  Trigger
	renderer Renderer

	cal    tilt.Calibration
	est    *tilt.Estimator
	filter *tilt.Filter

	lastTick   time.Time
	lastZone   tilt.Zone
	haveZone   bool
	calPending bool
}

// New validates the configuration and builds a controller. Bad knobs are a
// startup error, never a runtime condition.
func New(cfg Config, sensor Sensor, trigger Trigger, renderer Renderer) (*Controller, error) {
	if cfg.SampleInterval <= 0 {
		return nil, fmt.Errorf("sample interval must be positive, got %s", cfg.SampleInterval)
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}
	filter, err := tilt.NewFilter(cfg.Alpha)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:      cfg,
		sensor:   sensor,
		trigger:  trigger,
		renderer: renderer,
		filter:   filter,
	}
	c.est = tilt.NewEstimator(&c.cal)
	return c, nil
}

// Tick advances the loop by one iteration at the given wall-clock time.
//
// A pending calibration request preempts the ordinary tick: it grabs a fresh
// sample, replaces the calibration reference and emits the confirmation
// render instead of a zone decision. The smoothing filter is left alone;
// calibration only changes future estimates. If no sample is available the
// request stays latched and is retried on the next tick.
//
// Otherwise the tick is a no-op until the sample interval has elapsed since
// the last accepted tick. The gate compares wall-clock deltas, so missed
// intervals are absorbed instead of accumulating drift.
func (c *Controller) Tick(now time.Time) {
	if c.trigger.CalibrationRequested() {
		c.calPending = true
	}
	if c.calPending {
		s, ok := c.sensor.TryAcquire()
		if !ok {
			return
		}
		c.cal.Set(s)
		c.calPending = false
		// The reference frame changed, so the last rendered zone label is
		// stale even if the smoothed value has not moved yet.
		c.haveZone = false
		if err := c.renderer.RenderCalibrationConfirmed(); err != nil {
			log.Printf("monitor: calibration render error: %v", err)
		}
		return
	}

	if !c.lastTick.IsZero() && now.Sub(c.lastTick) < c.cfg.SampleInterval {
		return
	}
	c.lastTick = now

	s, ok := c.sensor.TryAcquire()
	if !ok {
		// No new data: skip the whole tick. The filter must not see a
		// fabricated zero-change sample.
		return
	}

	smoothed := c.filter.Update(c.est.Magnitude(s))
	zone := tilt.Classify(smoothed, c.cfg.Thresholds)

	if !c.haveZone || zone != c.lastZone {
		c.lastZone = zone
		c.haveZone = true
		if err := c.renderer.RenderFull(zone, smoothed); err != nil {
			log.Printf("monitor: full render error: %v", err)
		}
		return
	}
	if err := c.renderer.RenderPartial(smoothed); err != nil {
		log.Printf("monitor: partial render error: %v", err)
	}
}

// Calibrated reports whether a calibration reference is set this session.
func (c *Controller) Calibrated() bool {
	return c.cal.IsSet()
}

// SmoothedMagnitude returns the filter's current value in degrees.
func (c *Controller) SmoothedMagnitude() float64 {
	return c.filter.Value()
}
