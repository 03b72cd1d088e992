package tilt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultThresholds() Thresholds {
	return Thresholds{GreenMaxDeg: DefaultGreenMaxDeg, YellowMaxDeg: DefaultYellowMaxDeg}
}

func TestClassify(t *testing.T) {
	th := defaultThresholds()

	cases := []struct {
		name      string
		magnitude float64
		want      Zone
	}{
		{name: "Zero", magnitude: 0, want: ZoneStable},
		{name: "JustBelowGreenMax", magnitude: 0.999, want: ZoneStable},
		{name: "GreenBoundaryIsMoving", magnitude: 1.0, want: ZoneMoving},
		{name: "MidYellow", magnitude: 2.0, want: ZoneMoving},
		{name: "JustBelowYellowMax", magnitude: 2.999, want: ZoneMoving},
		{name: "YellowBoundaryIsWobbly", magnitude: 3.0, want: ZoneWobbly},
		{name: "Extreme", magnitude: 100, want: ZoneWobbly},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.magnitude, th))
		})
	}
}

func TestClassify_Monotonic(t *testing.T) {
	th := defaultThresholds()

	prev := ZoneStable
	for m := 0.0; m < 10.0; m += 0.05 {
		z := Classify(m, th)
		assert.GreaterOrEqual(t, int(z), int(prev), "zone decreased at magnitude %g", m)
		prev = z
	}
	assert.Equal(t, ZoneWobbly, prev)
}

func TestZone_String(t *testing.T) {
	assert.Equal(t, "stable", ZoneStable.String())
	assert.Equal(t, "moving", ZoneMoving.String())
	assert.Equal(t, "wobbly", ZoneWobbly.String())
}

func TestThresholds_Validate(t *testing.T) {
	cases := []struct {
		name    string
		th      Thresholds
		wantErr bool
	}{
		{name: "Defaults", th: defaultThresholds(), wantErr: false},
		{name: "Equal", th: Thresholds{GreenMaxDeg: 2, YellowMaxDeg: 2}, wantErr: true},
		{name: "Descending", th: Thresholds{GreenMaxDeg: 3, YellowMaxDeg: 1}, wantErr: true},
		{name: "ZeroGreen", th: Thresholds{GreenMaxDeg: 0, YellowMaxDeg: 3}, wantErr: true},
		{name: "NegativeGreen", th: Thresholds{GreenMaxDeg: -1, YellowMaxDeg: 3}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.th.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
