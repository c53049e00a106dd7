package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStringFallsBackOnBlank(t *testing.T) {
	t.Setenv("SIMCHECK_ENV_TEST", "   ")
	require.Equal(t, "fallback", String("SIMCHECK_ENV_TEST", "fallback"))

	t.Setenv("SIMCHECK_ENV_TEST", " value ")
	require.Equal(t, "value", String("SIMCHECK_ENV_TEST", "fallback"))
}

func TestTypedGetters(t *testing.T) {
	t.Setenv("SIMCHECK_ENV_INT", "42")
	t.Setenv("SIMCHECK_ENV_BAD_INT", "forty-two")
	t.Setenv("SIMCHECK_ENV_BOOL", "true")
	t.Setenv("SIMCHECK_ENV_FLOAT", "0.95")

	require.Equal(t, 42, Int("SIMCHECK_ENV_INT", 1))
	require.Equal(t, 1, Int("SIMCHECK_ENV_BAD_INT", 1))
	require.True(t, Bool("SIMCHECK_ENV_BOOL", false))
	require.InDelta(t, 0.95, Float64("SIMCHECK_ENV_FLOAT", 0), 1e-9)
}

func TestDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"90s":  90 * time.Second,
		"2m":   2 * time.Minute,
		"45":   45 * time.Second,
		"soon": 7 * time.Second,
	}
	for raw, want := range cases {
		t.Setenv("SIMCHECK_ENV_DURATION", raw)
		require.Equal(t, want, Duration("SIMCHECK_ENV_DURATION", 7*time.Second), raw)
	}
}
