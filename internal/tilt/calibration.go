package tilt

// Calibration holds the session's reference tilt. Unset at startup (identity
// offset); Set replaces both components together, so no partial update is
// observable. The store lives for the process lifetime only, there is no
// persistence across restarts.
//
// All access happens from the single sample loop, so no locking is needed.
type Calibration struct {
	ref Angles
	set bool
}

// Set recomputes the raw (uncalibrated) tilt of the given sample and stores
// it as the new reference. Repeated calls simply overwrite.
func (c *Calibration) Set(s AccelSample) {
	c.ref = AnglesFromAccel(s)
	c.set = true
}

// Offset returns the current reference pair and whether one is set.
func (c *Calibration) Offset() (Angles, bool) {
	return c.ref, c.set
}

// IsSet reports whether a reference has been captured this session.
func (c *Calibration) IsSet() bool {
	return c.set
}
