package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadReadsBothDotenvFiles(t *testing.T) {
	dir := t.TempDir()
	frontend := writeEnvFile(t, dir, "frontend.env", "REACT_APP_BACKEND_URL=https://sim.example.com/\n")
	backend := writeEnvFile(t, dir, "backend.env", "JWT_SECRET=\"s3cret\"\nMONGO_URL=mongodb://localhost\n")

	t.Setenv("SIMCHECK_FRONTEND_ENV", frontend)
	t.Setenv("SIMCHECK_BACKEND_ENV", backend)
	t.Setenv(BackendURLKey, "")
	t.Setenv(JWTSecretKey, "")
	t.Setenv("SIMCHECK_GENERATION_TIMEOUT", "150s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://sim.example.com", cfg.BaseURL)
	require.Equal(t, "https://sim.example.com/api", cfg.APIBase())
	require.Equal(t, "s3cret", cfg.JWTSecret)
	require.True(t, cfg.HasSecret())
	require.Equal(t, 150*time.Second, cfg.GenerationTimeout)
	require.Equal(t, DefaultTimeout, cfg.DefaultTimeout)
}

func TestLoadMissingBaseURLIsFatal(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SIMCHECK_FRONTEND_ENV", filepath.Join(dir, "absent.env"))
	t.Setenv("SIMCHECK_BACKEND_ENV", filepath.Join(dir, "absent-too.env"))
	t.Setenv(BackendURLKey, "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), BackendURLKey)
}

func TestLoadMissingSecretDowngrades(t *testing.T) {
	dir := t.TempDir()
	frontend := writeEnvFile(t, dir, "frontend.env", "REACT_APP_BACKEND_URL=http://localhost:8001\n")
	t.Setenv("SIMCHECK_FRONTEND_ENV", frontend)
	t.Setenv("SIMCHECK_BACKEND_ENV", filepath.Join(dir, "absent.env"))
	t.Setenv(BackendURLKey, "")
	t.Setenv(JWTSecretKey, "")

	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.HasSecret())
}

func TestProcessEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	frontend := writeEnvFile(t, dir, "frontend.env", "REACT_APP_BACKEND_URL=http://from-file:8001\n")
	t.Setenv("SIMCHECK_FRONTEND_ENV", frontend)
	t.Setenv("SIMCHECK_BACKEND_ENV", filepath.Join(dir, "absent.env"))
	t.Setenv(BackendURLKey, "http://from-env:9000")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://from-env:9000", cfg.BaseURL)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.BaseURL = "not a url"
	_, err := cfg.Validate()
	require.Error(t, err)

	cfg = Defaults()
	cfg.BaseURL = "http://127.0.0.1:8001/"
	cfg.APIPrefix = "api"
	cfg.GenerationRounds = 1
	cfg.ResetTimeout = 5 * time.Minute
	got, err := cfg.Validate()
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8001/api", got.APIBase())
	require.Equal(t, DefaultGenerationRounds, got.GenerationRounds)
	require.Equal(t, DefaultResetBudget, got.ResetTimeout)
}
