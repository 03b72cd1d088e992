package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/balance_board/internal/button"
	"github.com/relabs-tech/balance_board/internal/config"
	"github.com/relabs-tech/balance_board/internal/monitor"
	"github.com/relabs-tech/balance_board/internal/sensors"
	"github.com/relabs-tech/balance_board/internal/status"
	"github.com/relabs-tech/balance_board/internal/tilt"
)

// noTrigger is used when no calibration button is configured.
type noTrigger struct{}

func (noTrigger) CalibrationRequested() bool { return false }

// statusRenderer drives the OLED and mirrors every render decision to the
// MQTT bus: full redraws publish a retained status, numeric refreshes go to
// the magnitude topic.
type statusRenderer struct {
	display *Display
	client  mqtt.Client
	cfg     *config.Config

	calibrated bool
}

func (r *statusRenderer) RenderFull(zone tilt.Zone, magnitudeDeg float64) error {
	upd := status.Update{
		Zone:         zone.String(),
		MagnitudeDeg: magnitudeDeg,
		Calibrated:   r.calibrated,
		Time:         time.Now().Format(time.RFC3339),
	}
	if payload, err := json.Marshal(upd); err != nil {
		log.Printf("monitor: status marshal error: %v", err)
	} else if token := r.client.Publish(r.cfg.TopicStatus, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("monitor: MQTT publish error (status): %v", token.Error())
	}
	return r.display.RenderFull(zone, magnitudeDeg)
}

func (r *statusRenderer) RenderPartial(magnitudeDeg float64) error {
	upd := status.Magnitude{
		MagnitudeDeg: magnitudeDeg,
		Time:         time.Now().Format(time.RFC3339),
	}
	if payload, err := json.Marshal(upd); err != nil {
		log.Printf("monitor: magnitude marshal error: %v", err)
	} else if token := r.client.Publish(r.cfg.TopicMagnitude, 0, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("monitor: MQTT publish error (magnitude): %v", token.Error())
	}
	return r.display.RenderPartial(magnitudeDeg)
}

func (r *statusRenderer) RenderCalibrationConfirmed() error {
	r.calibrated = true
	log.Println("monitor: calibration reference captured")
	return r.display.RenderCalibrationConfirmed()
}

// newSource builds the configured accelerometer source.
func newSource(cfg *config.Config) (sensors.Source, error) {
	switch cfg.SensorSource {
	case "mpu9250":
		log.Printf("monitor: using MPU9250 on %s (CS %s)", cfg.IMUSPIDevice, cfg.IMUCSPin)
		return sensors.NewMPU9250Source(cfg.IMUSPIDevice, cfg.IMUCSPin)
	case "serial":
		log.Printf("monitor: using serial sensor on %s", cfg.SerialPort)
		return sensors.NewSerialSource(cfg.SerialPort, cfg.SerialBaudRate)
	case "mock":
		log.Println("monitor: using mock accelerometer source")
		return sensors.NewMockSource(), nil
	}
	return nil, fmt.Errorf("unknown sensor source: %s", cfg.SensorSource)
}

// RunMonitor wires sensor, button, display and MQTT together and runs the
// sampling loop until the process is stopped.
func RunMonitor() error {
	log.Println("starting balance board monitor")

	cfg := config.Get()

	source, err := newSource(cfg)
	if err != nil {
		return err
	}

	display, err := OpenDisplay()
	if err != nil {
		return err
	}
	log.Println("monitor: display initialized")
	if err := display.ShowSplash(); err != nil {
		log.Printf("monitor: error showing splash: %v", err)
	}

	var trigger monitor.Trigger = noTrigger{}
	if cfg.ButtonPin != "" {
		btn, err := button.New(cfg.ButtonPin, time.Duration(cfg.ButtonDebounceMs)*time.Millisecond)
		if err != nil {
			return err
		}
		trigger = btn
		log.Printf("monitor: calibration button on pin %s", cfg.ButtonPin)
	} else {
		log.Println("monitor: no calibration button configured")
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDMonitor)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("monitor: connected to MQTT broker at %s", cfg.MQTTBroker)

	renderer := &statusRenderer{display: display, client: client, cfg: cfg}

	ctrl, err := monitor.New(monitor.Config{
		SampleInterval: cfg.SampleIntervalDuration(),
		Alpha:          cfg.SmoothingAlpha,
		Thresholds:     cfg.Thresholds(),
	}, source, trigger, renderer)
	if err != nil {
		return err
	}

	// Poll faster than the sample interval; the controller gates on elapsed
	// time, so jitter here does not skew the sampling cadence.
	poll := cfg.SampleIntervalDuration() / 4
	if poll <= 0 {
		poll = time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	log.Println("monitor: starting sample loop")
	for t := range ticker.C {
		ctrl.Tick(t)
	}
	return nil
}
