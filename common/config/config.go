package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/joho/godotenv"

	"github.com/agentsim/simcheck/common/env"
)

const (
	// BackendURLKey is read from the frontend dotenv file.
	BackendURLKey = "REACT_APP_BACKEND_URL"
	// JWTSecretKey is read from the backend dotenv file.
	JWTSecretKey = "JWT_SECRET"

	DefaultAPIPrefix         = "/api"
	DefaultTimeout           = 30 * time.Second
	DefaultGenerationTimeout = 180 * time.Second
	DefaultResetTimeout      = 60 * time.Second
	DefaultResetBudget       = 60 * time.Second
	DefaultGenerationRounds  = 3

	defaultFrontendEnvPath = "frontend/.env"
	defaultBackendEnvPath  = "backend/.env"
	defaultAdminEmail      = "admin@example.com"
	defaultAdminPassword   = "admin123"
	defaultRegisterPass    = "SimCheck!Passw0rd"
)

var (
	// DebugEnabled toggles verbose structured logging when DEBUG=true.
	DebugEnabled = env.Bool("DEBUG", false)

	// RefServerPort is the listening port of the reference backend.
	RefServerPort = env.Int("PORT", 8001)
	// RefServerJWTSecret signs bearer tokens issued by the reference backend.
	RefServerJWTSecret = env.String(JWTSecretKey, "refserver-development-secret")
	// RefServerSQLitePath selects a file-backed database for the reference backend; empty keeps it in memory.
	RefServerSQLitePath = strings.TrimSpace(env.String("REFSERVER_SQLITE_PATH", ""))
	// RefServerFailProviders makes avatar and transcription endpoints behave as if their upstream provider is down.
	RefServerFailProviders = env.Bool("REFSERVER_FAIL_PROVIDERS", false)
	// RefServerTestLoginSubnets restricts guest login to client addresses in these CIDRs; empty allows all.
	RefServerTestLoginSubnets = env.String("REFSERVER_TEST_LOGIN_SUBNETS", "")
	// RefServerSQLiteBusyRetries is how many times a store write is retried while SQLite reports busy or locked.
	RefServerSQLiteBusyRetries = env.Int("REFSERVER_SQLITE_BUSY_RETRIES", 5)
	// RefServerSQLiteBusyBackoff is the first wait between busy retries; each later wait doubles, up to one second.
	RefServerSQLiteBusyBackoff = env.Duration("REFSERVER_SQLITE_BUSY_BACKOFF", 20*time.Millisecond)
	// RefServerTokenTTL is the lifetime of bearer tokens issued by the reference backend.
	RefServerTokenTTL = env.Duration("REFSERVER_TOKEN_TTL", 24*time.Hour)
	// RefServerGuestTokenTTL is the lifetime of guest tokens issued by test-login.
	RefServerGuestTokenTTL = env.Duration("REFSERVER_GUEST_TOKEN_TTL", 2*time.Hour)
)

// RunConfig is the immutable configuration of one harness run.
type RunConfig struct {
	BaseURL   string
	APIPrefix string
	// JWTSecret may be empty, which downgrades token checks to unverified decoding.
	JWTSecret string

	DefaultTimeout    time.Duration
	GenerationTimeout time.Duration
	ResetTimeout      time.Duration
	ResetBudget       time.Duration
	GenerationRounds  int

	AdminEmail       string
	AdminPassword    string
	RegisterPassword string

	ThresholdsFile string
	MetricsFile    string

	FrontendEnvPath string
	BackendEnvPath  string
}

// APIBase joins the base URL and the API prefix.
func (c RunConfig) APIBase() string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.APIPrefix
}

// HasSecret reports whether token signatures can be verified.
func (c RunConfig) HasSecret() bool {
	return c.JWTSecret != ""
}

// Load resolves the run configuration from the two dotenv files and the process environment.
// A missing base URL is fatal; a missing secret is not.
func Load() (RunConfig, error) {
	cfg := Defaults()
	cfg.FrontendEnvPath = expandPath(env.String("SIMCHECK_FRONTEND_ENV", defaultFrontendEnvPath))
	cfg.BackendEnvPath = expandPath(env.String("SIMCHECK_BACKEND_ENV", defaultBackendEnvPath))

	frontend, err := readDotenv(cfg.FrontendEnvPath)
	if err != nil {
		return RunConfig{}, errors.Wrapf(err, "read frontend env %s", cfg.FrontendEnvPath)
	}
	backend, err := readDotenv(cfg.BackendEnvPath)
	if err != nil {
		return RunConfig{}, errors.Wrapf(err, "read backend env %s", cfg.BackendEnvPath)
	}

	cfg.BaseURL = firstNonEmpty(os.Getenv(BackendURLKey), frontend[BackendURLKey])
	cfg.JWTSecret = firstNonEmpty(os.Getenv(JWTSecretKey), backend[JWTSecretKey])

	cfg.AdminEmail = env.String("SIMCHECK_ADMIN_EMAIL", cfg.AdminEmail)
	cfg.AdminPassword = env.String("SIMCHECK_ADMIN_PASSWORD", cfg.AdminPassword)
	cfg.RegisterPassword = env.String("SIMCHECK_REGISTER_PASSWORD", cfg.RegisterPassword)
	cfg.DefaultTimeout = env.Duration("SIMCHECK_TIMEOUT", cfg.DefaultTimeout)
	cfg.GenerationTimeout = env.Duration("SIMCHECK_GENERATION_TIMEOUT", cfg.GenerationTimeout)
	cfg.ResetTimeout = env.Duration("SIMCHECK_RESET_TIMEOUT", cfg.ResetTimeout)
	cfg.GenerationRounds = env.Int("SIMCHECK_GENERATION_ROUNDS", cfg.GenerationRounds)
	cfg.ThresholdsFile = expandPath(env.String("SIMCHECK_THRESHOLDS_FILE", ""))
	cfg.MetricsFile = expandPath(env.String("SIMCHECK_METRICS_FILE", ""))

	return cfg.Validate()
}

// Defaults returns a configuration with every field but BaseURL and JWTSecret populated.
func Defaults() RunConfig {
	return RunConfig{
		APIPrefix:         DefaultAPIPrefix,
		DefaultTimeout:    DefaultTimeout,
		GenerationTimeout: DefaultGenerationTimeout,
		ResetTimeout:      DefaultResetTimeout,
		ResetBudget:       DefaultResetBudget,
		GenerationRounds:  DefaultGenerationRounds,
		AdminEmail:        defaultAdminEmail,
		AdminPassword:     defaultAdminPassword,
		RegisterPassword:  defaultRegisterPass,
	}
}

// Validate normalises the base URL and enforces the fatal preconditions.
func (c RunConfig) Validate() (RunConfig, error) {
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return RunConfig{}, errors.Errorf("%s must be set", BackendURLKey)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return RunConfig{}, errors.Errorf("%s is not an absolute URL: %q", BackendURLKey, c.BaseURL)
	}
	if c.APIPrefix == "" {
		c.APIPrefix = DefaultAPIPrefix
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		c.APIPrefix = "/" + c.APIPrefix
	}
	if c.GenerationRounds < DefaultGenerationRounds {
		c.GenerationRounds = DefaultGenerationRounds
	}
	if c.ResetTimeout > c.ResetBudget && c.ResetBudget > 0 {
		c.ResetTimeout = c.ResetBudget
	}
	c.JWTSecret = strings.TrimSpace(c.JWTSecret)
	return c, nil
}

// readDotenv returns an empty map when the file does not exist.
func readDotenv(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return values, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
