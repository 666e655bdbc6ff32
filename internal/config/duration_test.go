package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{name: "seconds", input: "30s", expected: 30 * time.Second},
		{name: "minutes", input: "5m", expected: 5 * time.Minute},
		{name: "milliseconds", input: "500ms", expected: 500 * time.Millisecond},
		{name: "combined units", input: "1h30m45s", expected: time.Hour + 30*time.Minute + 45*time.Second},
		{name: "missing unit", input: "10", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var d Duration
			err := d.UnmarshalText([]byte(tc.input))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, time.Duration(d))
		})
	}
}

func TestDuration_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration Duration
		expected string
	}{
		{name: "zero", duration: 0, expected: "0s"},
		{name: "exact hours", duration: Duration(2 * time.Hour), expected: "2h"},
		{name: "exact minutes", duration: Duration(30 * time.Minute), expected: "30m"},
		{name: "exact seconds", duration: Duration(10 * time.Second), expected: "10s"},
		{name: "mixed falls to smallest exact unit", duration: Duration(90 * time.Second), expected: "90s"},
		{name: "milliseconds", duration: Duration(1500 * time.Millisecond), expected: "1500ms"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, tc.duration.String())

			text, err := tc.duration.MarshalText()
			require.NoError(t, err)

			var roundTrip Duration
			require.NoError(t, roundTrip.UnmarshalText(text))
			require.Equal(t, tc.duration, roundTrip)
		})
	}
}

func TestDuration_OrDefault(t *testing.T) {
	t.Parallel()

	require.Equal(t, 3*time.Second, Duration(0).OrDefault(3*time.Second))
	require.Equal(t, 3*time.Second, Duration(-1).OrDefault(3*time.Second))
	require.Equal(t, time.Second, Duration(time.Second).OrDefault(3*time.Second))
}
