// Package auth acquires and inspects bearer credentials for a run.
package auth

import (
	"context"
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/common/logger"
	"github.com/agentsim/simcheck/common/random"
	"github.com/agentsim/simcheck/harness/client"
)

// Strategy names how a session was obtained.
type Strategy string

const (
	StrategyLogin     Strategy = "login"
	StrategyTestLogin Strategy = "test-login"
	StrategyRegister  Strategy = "register"
)

// User is the caller identity reported by the backend.
type User struct {
	ID    string
	Email string
	Name  string
}

// Session is a bearer credential plus the identity it belongs to.
type Session struct {
	Token     string
	TokenType string
	User      User
	Strategy  Strategy
}

// ErrNoSession is returned when no strategy produced a credential.
var ErrNoSession = errors.New("no authentication strategy produced a session")

// loginRejections are the statuses a primary login may legitimately answer with before falling back.
var loginRejections = []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
	http.StatusNotFound, http.StatusUnprocessableEntity}

// Helper runs the authentication strategies through a runner.
type Helper struct {
	runner *client.Runner
	cfg    config.RunConfig
}

// NewHelper binds a helper to runner and cfg.
func NewHelper(runner *client.Runner, cfg config.RunConfig) *Helper {
	return &Helper{runner: runner, cfg: cfg}
}

// Acquire tries the primary login first and the guest login second. On success the runner's
// bearer is set to the new token.
func (h *Helper) Acquire(ctx context.Context) (Session, error) {
	s, err := h.Login(ctx)
	if err == nil {
		h.runner.SetBearer(s.Token)
		return s, nil
	}
	logger.Logger.Info("primary login unavailable, falling back to guest login", zap.Error(err))

	s, err = h.TestLogin(ctx)
	if err != nil {
		return Session{}, errors.Wrap(ErrNoSession, err.Error())
	}
	h.runner.SetBearer(s.Token)
	return s, nil
}

// Login attempts POST /auth/login with the configured administrative pair.
func (h *Helper) Login(ctx context.Context) (Session, error) {
	_, body := h.runner.Check(ctx, client.Request{
		Name:         "primary login attempt",
		Method:       http.MethodPost,
		Path:         "/auth/login",
		Body:         map[string]string{"email": h.cfg.AdminEmail, "password": h.cfg.AdminPassword},
		ExpectStatus: http.StatusOK,
		ExpectAnyOf:  loginRejections,
		SkipAuth:     true,
	})
	return parseSession(body, StrategyLogin)
}

// TestLogin performs POST /auth/test-login.
func (h *Helper) TestLogin(ctx context.Context) (Session, error) {
	ok, body := h.runner.Check(ctx, client.Request{
		Name:       "guest login issues bearer",
		Method:     http.MethodPost,
		Path:       "/auth/test-login",
		ExpectKeys: []string{"access_token", "token_type", "user"},
		SkipAuth:   true,
	})
	if !ok {
		return Session{}, errors.New("test-login did not return a session")
	}
	return parseSession(body, StrategyTestLogin)
}

// Register creates a fresh account and returns its session without touching the runner's bearer.
func (h *Helper) Register(ctx context.Context) (Session, error) {
	suffix := random.Suffix(10)
	email := "simcheck+" + suffix + "@example.com"

	ok, body := h.runner.Check(ctx, client.Request{
		Name:   "register isolated caller " + suffix,
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body: map[string]string{
			"email":    email,
			"password": h.cfg.RegisterPassword,
			"name":     "SimCheck " + suffix,
		},
		ExpectStatus: http.StatusOK,
		ExpectAnyOf:  []int{http.StatusCreated},
		ExpectKeys:   []string{"access_token", "user"},
		SkipAuth:     true,
	})
	if !ok {
		return Session{}, errors.Errorf("register %s failed", email)
	}
	s, err := parseSession(body, StrategyRegister)
	if err != nil {
		return Session{}, err
	}
	if s.User.Email == "" {
		s.User.Email = email
	}
	return s, nil
}

// Me calls GET /auth/me with the runner's bearer and returns the reported user id.
func (h *Helper) Me(ctx context.Context, name string) (bool, string) {
	ok, body := h.runner.Check(ctx, client.Request{Name: name, Path: "/auth/me"})
	return ok, UserID(body)
}

// UserID extracts the caller id from either a bare user object or a {user: {...}} wrapper.
func UserID(body client.Body) string {
	if id := body.String("id"); id != "" {
		return id
	}
	return body.String("user", "id")
}

func parseSession(body client.Body, strategy Strategy) (Session, error) {
	token := body.String("access_token")
	if token == "" {
		return Session{}, errors.Errorf("%s response carries no access_token", strategy)
	}
	s := Session{
		Token:     token,
		TokenType: body.String("token_type"),
		Strategy:  strategy,
		User: User{
			ID:    body.String("user", "id"),
			Email: body.String("user", "email"),
			Name:  body.String("user", "name"),
		},
	}
	if s.User.ID == "" {
		return Session{}, errors.Errorf("%s response carries no user.id", strategy)
	}
	return s, nil
}
