package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/balance_board/internal/monitor"
	"github.com/relabs-tech/balance_board/internal/tilt"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDMonitor string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string

	// Topics
	TopicStatus    string
	TopicMagnitude string

	// Pipeline knobs
	SampleInterval int     // milliseconds between accepted samples
	SmoothingAlpha float64 // EMA coefficient, [0, 1)
	GreenMaxDeg    float64 // stable/moving boundary, degrees
	YellowMaxDeg   float64 // moving/wobbly boundary, degrees

	// Sensor
	SensorSource   string // "mpu9250", "serial" or "mock"
	IMUSPIDevice   string
	IMUCSPin       string
	SerialPort     string
	SerialBaudRate int

	// Calibration button
	ButtonPin        string
	ButtonDebounceMs int

	// Web Server
	WebServerPort int
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported (lowercase) so other packages cannot access it directly.
//     This enforces encapsulation and prevents external code from modifying config without proper locking.
//     Has package-level scope (visible to all functions in this package, persists for program lifetime).
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock (Lock) for initialization,
//     read lock (RLock) for Get() allows multiple concurrent readers without blocking each other.
//
// External code must use InitGlobal() to set and Get() to read, ensuring thread safety.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields and knob ranges
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with the pipeline defaults. Keys
// in the file override them.
func defaults() *Config {
	return &Config{
		TopicStatus:      "balance/status",
		TopicMagnitude:   "balance/magnitude",
		SampleInterval:   int(monitor.DefaultSampleInterval / time.Millisecond),
		SmoothingAlpha:   tilt.DefaultAlpha,
		GreenMaxDeg:      tilt.DefaultGreenMaxDeg,
		YellowMaxDeg:     tilt.DefaultYellowMaxDeg,
		SensorSource:     "mpu9250",
		ButtonDebounceMs: 50,
		WebServerPort:    8080,
	}
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_MONITOR":
		c.MQTTClientIDMonitor = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value

	// Topics
	case "TOPIC_STATUS":
		c.TopicStatus = value
	case "TOPIC_MAGNITUDE":
		c.TopicMagnitude = value

	// Pipeline knobs
	case "SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.SampleInterval = interval
	case "SMOOTHING_ALPHA":
		alpha, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid SMOOTHING_ALPHA %q: %w", value, err)
		}
		c.SmoothingAlpha = alpha
	case "GREEN_MAX_DEG":
		deg, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid GREEN_MAX_DEG %q: %w", value, err)
		}
		c.GreenMaxDeg = deg
	case "YELLOW_MAX_DEG":
		deg, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid YELLOW_MAX_DEG %q: %w", value, err)
		}
		c.YellowMaxDeg = deg

	// Sensor
	case "SENSOR_SOURCE":
		if value != "mpu9250" && value != "serial" && value != "mock" {
			return fmt.Errorf("SENSOR_SOURCE must be \"mpu9250\", \"serial\" or \"mock\", got %q", value)
		}
		c.SensorSource = value
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate

	// Calibration button
	case "BUTTON_PIN":
		c.ButtonPin = value
	case "BUTTON_DEBOUNCE_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BUTTON_DEBOUNCE_MS %q: %w", value, err)
		}
		if ms < 0 {
			return fmt.Errorf("BUTTON_DEBOUNCE_MS must be >= 0, got %d", ms)
		}
		c.ButtonDebounceMs = ms

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks required fields and fails fast on knob values the pipeline
// cannot run with. These are configuration errors, not runtime conditions.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("SAMPLE_INTERVAL must be positive, got %d", c.SampleInterval)
	}
	if c.SmoothingAlpha < 0 || c.SmoothingAlpha >= 1 {
		return fmt.Errorf("SMOOTHING_ALPHA must be in [0, 1), got %g", c.SmoothingAlpha)
	}
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}
	switch c.SensorSource {
	case "mpu9250":
		if c.IMUSPIDevice == "" {
			return fmt.Errorf("IMU_SPI_DEVICE is required when SENSOR_SOURCE=mpu9250")
		}
		if c.IMUCSPin == "" {
			return fmt.Errorf("IMU_CS_PIN is required when SENSOR_SOURCE=mpu9250")
		}
	case "serial":
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required when SENSOR_SOURCE=serial")
		}
		if c.SerialBaudRate == 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE is required when SENSOR_SOURCE=serial")
		}
	}
	return nil
}

// Thresholds returns the configured zone boundaries.
func (c *Config) Thresholds() tilt.Thresholds {
	return tilt.Thresholds{GreenMaxDeg: c.GreenMaxDeg, YellowMaxDeg: c.YellowMaxDeg}
}

// SampleIntervalDuration returns the sample interval as a time.Duration.
func (c *Config) SampleIntervalDuration() time.Duration {
	return time.Duration(c.SampleInterval) * time.Millisecond
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
// Acquires write lock (configMu.Lock) during initialization to prevent concurrent access.
// This is the only function that can set globalConfig.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
// Uses read lock (configMu.RLock) to allow multiple concurrent readers without blocking.
// This is thread-safe and efficient for concurrent access across goroutines.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
