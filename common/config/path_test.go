package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	t.Setenv("APP_ROOT", "/srv/app")
	t.Setenv("HOME", "/home/tester")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "  ", expected: ""},
		{name: "unix style", input: "$APP_ROOT/frontend/.env", expected: "/srv/app/frontend/.env"},
		{name: "windows style", input: "%APP_ROOT%/backend/.env", expected: "/srv/app/backend/.env"},
		{name: "unknown windows style passthrough", input: "%UNKNOWN_VAR%/x", expected: "%UNKNOWN_VAR%/x"},
		{name: "home", input: "~/metrics.prom", expected: filepath.Join("/home/tester", "metrics.prom")},
		{name: "relative untouched", input: "frontend/.env", expected: "frontend/.env"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, expandPath(tc.input))
		})
	}
}
