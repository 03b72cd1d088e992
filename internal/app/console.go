// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/relabs-tech/balance_board/internal/monitor"
	"github.com/relabs-tech/balance_board/internal/sensors"
	"github.com/relabs-tech/balance_board/internal/tilt"
)

// stdinTrigger turns ENTER presses into calibration requests, so the mock
// console can exercise calibration without a GPIO button.
type stdinTrigger struct {
	ch chan struct{}
}

func newStdinTrigger() *stdinTrigger {
	t := &stdinTrigger{ch: make(chan struct{}, 1)}
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case t.ch <- struct{}{}:
			default:
			}
		}
	}()
	return t
}

func (t *stdinTrigger) CalibrationRequested() bool {
	select {
	case <-t.ch:
		return true
	default:
		return false
	}
}

// consoleRenderer prints render decisions to stdout: zone changes get their
// own line, numeric refreshes rewrite the current one.
type consoleRenderer struct{}

func (consoleRenderer) RenderFull(zone tilt.Zone, magnitudeDeg float64) error {
	fmt.Printf("\n[%s] TILT=%5.2f deg\n", strings.ToUpper(zone.String()), magnitudeDeg)
	return nil
}

func (consoleRenderer) RenderPartial(magnitudeDeg float64) error {
	fmt.Printf("\rTILT=%5.2f deg   ", magnitudeDeg)
	return nil
}

func (consoleRenderer) RenderCalibrationConfirmed() error {
	fmt.Println("\n[CAL] reference captured")
	return nil
}

// RunMockConsole runs the full pipeline against the mock accelerometer with
// a stdout renderer. Press ENTER to calibrate.
func RunMockConsole() error {
	fmt.Println("balance board mock console - press ENTER to calibrate")

	ctrl, err := monitor.New(monitor.Config{
		SampleInterval: monitor.DefaultSampleInterval,
		Alpha:          tilt.DefaultAlpha,
		Thresholds: tilt.Thresholds{
			GreenMaxDeg:  tilt.DefaultGreenMaxDeg,
			YellowMaxDeg: tilt.DefaultYellowMaxDeg,
		},
	}, sensors.NewMockSource(), newStdinTrigger(), consoleRenderer{})
	if err != nil {
		return err
	}

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		ctrl.Tick(t)
	}
	return nil
}
