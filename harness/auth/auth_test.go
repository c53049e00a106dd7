package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"

	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/harness/client"
	"github.com/agentsim/simcheck/harness/ledger"
)

type fakeAuthServer struct {
	loginEnabled bool
	registered   []string
}

func (f *fakeAuthServer) handler() http.Handler {
	issue := func(w http.ResponseWriter, id, email string) {
		token := sign(jwt.MapClaims{"sub": email, "user_id": id, "exp": time.Now().Add(time.Hour).Unix()}, testSecret)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": token,
			"token_type":   "bearer",
			"user":         map[string]any{"id": id, "email": email, "name": "n"},
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if !f.loginEnabled {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid credentials"}`))
			return
		}
		issue(w, "admin-1", "admin@example.com")
	})
	mux.HandleFunc("/api/auth/test-login", func(w http.ResponseWriter, r *http.Request) {
		issue(w, "guest-1", "guest@example.com")
	})
	mux.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.registered = append(f.registered, body["email"])
		issue(w, "reg-"+body["email"], body["email"])
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"id":"guest-1","email":"guest@example.com"}`))
	})
	return mux
}

func newHelper(t *testing.T, fake *fakeAuthServer) (*Helper, *client.Runner, *ledger.Ledger) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	l := ledger.New()
	runner := client.New(srv.URL+"/api", l, 5*time.Second, client.WithTrace(io.Discard))
	return NewHelper(runner, config.Defaults()), runner, l
}

func TestAcquirePrefersPrimaryLogin(t *testing.T) {
	helper, runner, l := newHelper(t, &fakeAuthServer{loginEnabled: true})

	s, err := helper.Acquire(context.Background())
	require.NoError(t, err)
	require.Equal(t, StrategyLogin, s.Strategy)
	require.Equal(t, "admin-1", s.User.ID)
	require.Equal(t, s.Token, runner.Bearer())
	require.Len(t, l.Records(), 1)
}

func TestAcquireFallsBackToGuest(t *testing.T) {
	helper, runner, l := newHelper(t, &fakeAuthServer{})

	s, err := helper.Acquire(context.Background())
	require.NoError(t, err)
	require.Equal(t, StrategyTestLogin, s.Strategy)
	require.Equal(t, "guest-1", s.User.ID)
	require.Equal(t, "bearer", s.TokenType)
	require.Equal(t, s.Token, runner.Bearer())
	require.True(t, l.Passed(), "a rejected primary login is an accepted outcome when the fallback works")

	info, err := InspectToken(s.Token, testSecret)
	require.NoError(t, err)
	require.Equal(t, "guest-1", info.UserID)

	ok, id := helper.Me(context.Background(), "me round-trip")
	require.True(t, ok)
	require.Equal(t, s.User.ID, id)
}

func TestRegisterProducesDistinctSessions(t *testing.T) {
	fake := &fakeAuthServer{}
	helper, runner, _ := newHelper(t, fake)

	a, err := helper.Register(context.Background())
	require.NoError(t, err)
	b, err := helper.Register(context.Background())
	require.NoError(t, err)

	require.NotEqual(t, a.User.ID, b.User.ID)
	require.NotEqual(t, a.Token, b.Token)
	require.Equal(t, StrategyRegister, a.Strategy)
	require.Empty(t, runner.Bearer(), "register must not replace the runner's bearer")
	require.Len(t, fake.registered, 2)
	require.Regexp(t, `^simcheck\+[0-9a-z]{10}@example\.com$`, fake.registered[0])
}

func TestAcquireWithoutBackend(t *testing.T) {
	l := ledger.New()
	runner := client.New("http://127.0.0.1:1/api", l, time.Second, client.WithTrace(io.Discard))
	_, err := NewHelper(runner, config.Defaults()).Acquire(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
	require.False(t, l.Passed())
}
