package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/harness/scenario"
	"github.com/agentsim/simcheck/model"
	"github.com/agentsim/simcheck/router"
)

var backendURL string

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := model.InitDB(""); err != nil {
		panic(err)
	}
	defaults := config.Defaults()
	if err := model.CreateAdminIfNeed(defaults.AdminEmail, defaults.AdminPassword); err != nil {
		panic(err)
	}
	srv := httptest.NewServer(router.NewServer())
	backendURL = srv.URL

	code := m.Run()
	srv.Close()
	_ = model.CloseDB()
	os.Exit(code)
}

func options(baseURL string, tweak func(*config.RunConfig)) (*RootOptions, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &RootOptions{
		Out:    out,
		ErrOut: out,
		LoadConfig: func() (config.RunConfig, error) {
			cfg := config.Defaults()
			cfg.BaseURL = baseURL
			cfg.JWTSecret = config.RefServerJWTSecret
			cfg.DefaultTimeout = 5 * time.Second
			cfg.GenerationTimeout = 20 * time.Second
			if tweak != nil {
				tweak(&cfg)
			}
			return cfg.Validate()
		},
	}, out
}

func TestListPrintsCatalogue(t *testing.T) {
	opts, out := options(backendURL, nil)
	require.Equal(t, ExitSuccess, Execute(context.Background(), opts, []string{"list"}))
	for _, name := range scenario.Names() {
		require.Contains(t, out.String(), name)
	}
}

func TestEverySuiteHasASubcommand(t *testing.T) {
	opts, _ := options(backendURL, nil)
	root := NewRootCommand(opts)
	for _, name := range append(scenario.Names(), "all", "list") {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, cmd.Name())
	}
}

func TestSuitePassesAgainstReferenceBackend(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "simcheck.prom")
	opts, out := options(backendURL, func(c *config.RunConfig) { c.MetricsFile = metricsFile })

	code := Execute(context.Background(), opts, []string{"agents"})
	require.Equal(t, ExitSuccess, code, out.String())
	require.Contains(t, out.String(), "Overall: PASSED")

	raw, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	require.Contains(t, string(raw), "simcheck_checks_total")
}

func TestUnreachableBackendFails(t *testing.T) {
	opts, out := options("http://127.0.0.1:1", func(c *config.RunConfig) { c.DefaultTimeout = time.Second })

	require.Equal(t, ExitFailure, Execute(context.Background(), opts, []string{"simulation"}))
	require.Contains(t, out.String(), "Overall: FAILED")
}

func TestConfigurationErrors(t *testing.T) {
	opts, _ := options("", nil)
	require.Equal(t, ExitCommandError, Execute(context.Background(), opts, []string{"auth"}))

	opts, _ = options(backendURL, func(c *config.RunConfig) { c.ThresholdsFile = "/nonexistent/thresholds.yaml" })
	require.Equal(t, ExitCommandError, Execute(context.Background(), opts, []string{"auth"}))

	opts, _ = options(backendURL, nil)
	require.Equal(t, ExitCommandError, Execute(context.Background(), opts, []string{"no-such-suite"}))
}

func TestExitCode(t *testing.T) {
	require.Equal(t, ExitSuccess, ExitCode(nil))
	require.Equal(t, ExitFailure, ExitCode(NewExitError(ExitFailure, "checks failed")))
	require.Equal(t, ExitCommandError, ExitCode(errors.Wrap(WrapExitError(ExitCommandError, "load", errors.New("boom")), "outer")))
	require.Equal(t, ExitCommandError, ExitCode(errors.New("plain")))
}
