// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/balance_board/internal/tilt"
)

// accelLSBPerG converts raw accelerometer counts to g at the default ±2g
// range.
const accelLSBPerG = 16384.0

type mpuSource struct {
	imu *mpu9250.MPU9250
}

// NewMPU9250Source initializes the board's MPU9250 over SPI and returns a
// Source that reads its accelerometer.
func NewMPU9250Source(spiDev, csPin string) (Source, error) {
	// Initialize periph host once (idempotent).
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU SPI transport (%s): %w", spiDev, err)
	}

	imu, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU device creation: %w", err)
	}

	if err := imu.Init(); err != nil {
		return nil, fmt.Errorf("IMU init: %w", err)
	}

	return &mpuSource{imu: imu}, nil
}

// TryAcquire reads one accelerometer sample. A failed register read is
// treated as "no new data"; the caller simply retries on its next tick.
func (s *mpuSource) TryAcquire() (tilt.AccelSample, bool) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		log.Printf("sensors: IMU acc X read error: %v", err)
		return tilt.AccelSample{}, false
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		log.Printf("sensors: IMU acc Y read error: %v", err)
		return tilt.AccelSample{}, false
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		log.Printf("sensors: IMU acc Z read error: %v", err)
		return tilt.AccelSample{}, false
	}

	return tilt.AccelSample{
		Ax: float64(ax) / accelLSBPerG,
		Ay: float64(ay) / accelLSBPerG,
		Az: float64(az) / accelLSBPerG,
	}, true
}
