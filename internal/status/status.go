package status

// Update is a single board status suitable for JSON and MQTT.
type Update struct {
	Zone         string  `json:"zone"`          // "stable" / "moving" / "wobbly"
	MagnitudeDeg float64 `json:"magnitude_deg"` // smoothed combined tilt
	Calibrated   bool    `json:"calibrated"`    // session calibration captured
	Time         string  `json:"time"`          // RFC3339
}

// Magnitude is a numeric-only readout refresh, published between zone
// changes.
type Magnitude struct {
	MagnitudeDeg float64 `json:"magnitude_deg"`
	Time         string  `json:"time"`
}
