package sensors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// accSentence builds a checksummed $BBACC sentence.
func accSentence(ax, ay, az string) string {
	body := fmt.Sprintf("BBACC,%s,%s,%s", ax, ay, az)
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, sum)
}

func TestParseACCLine(t *testing.T) {
	sample, err := ParseACCLine(accSentence("0.050", "-0.020", "0.998"))
	require.NoError(t, err)

	assert.InDelta(t, 0.050, sample.Ax, 1e-9)
	assert.InDelta(t, -0.020, sample.Ay, 1e-9)
	assert.InDelta(t, 0.998, sample.Az, 1e-9)
}

func TestParseACCLine_TrimsWhitespace(t *testing.T) {
	sample, err := ParseACCLine("  " + accSentence("0.000", "0.000", "1.000") + "\r\n")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sample.Az, 1e-9)
}

func TestParseACCLine_Rejects(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{name: "BadChecksum", line: "$BBACC,0.0,0.0,1.0*00"},
		{name: "NotASentence", line: "hello"},
		{name: "UnknownType", line: "$BBXYZ,1,2,3*4A"},
		{name: "MissingField", line: accSentence("0.0", "0.0", "")[:10]},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseACCLine(tc.line)
			assert.Error(t, err)
		})
	}
}
