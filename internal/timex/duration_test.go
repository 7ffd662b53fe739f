package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "duration string", input: `"5m"`, want: 5 * time.Minute},
		{name: "seconds string", input: `"300s"`, want: 300 * time.Second},
		{name: "integer nanoseconds", input: `60000000000`, want: time.Minute},
		{name: "invalid string", input: `"tomorrow"`, wantErr: true},
		{name: "wrong type", input: `{"d": 1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	d := Duration{Duration: 90 * time.Second}
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))

	var back Duration
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d.Duration, back.Duration)
}
