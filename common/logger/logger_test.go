package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerInitialised(t *testing.T) {
	require.NotNil(t, Logger)
	child := ForRun("auth")
	require.NotNil(t, child)
	child.Info("logger smoke message")
}
