// Package button reads the physical calibration button on a GPIO pin.
package button

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Button is a debounced, edge-triggered push button wired between the pin
// and ground (internal pull-up, pressed = low). It is polled from the sample
// loop, so no interrupt handling is needed.
type Button struct {
	pin       gpio.PinIO
	debounce  time.Duration
	lastLevel gpio.Level
	lastEdge  time.Time
}

// New configures the pin as an input with pull-up.
func New(pinName string, debounce time.Duration) (*Button, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("button pin %q not found", pinName)
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("button pin %s: %w", pinName, err)
	}

	return &Button{
		pin:       pin,
		debounce:  debounce,
		lastLevel: gpio.High,
	}, nil
}

// CalibrationRequested reports a press exactly once per physical action: it
// returns true on the high-to-low edge and then stays false until the button
// is released and pressed again. Edges inside the debounce window are
// ignored as contact chatter.
func (b *Button) CalibrationRequested() bool {
	level := b.pin.Read()
	prev := b.lastLevel
	b.lastLevel = level

	if level != gpio.Low || prev != gpio.High {
		return false
	}

	now := time.Now()
	if now.Sub(b.lastEdge) < b.debounce {
		return false
	}
	b.lastEdge = now
	return true
}
