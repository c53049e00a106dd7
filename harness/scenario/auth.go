package scenario

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/agentsim/simcheck/common/random"
	"github.com/agentsim/simcheck/harness/auth"
	"github.com/agentsim/simcheck/harness/client"
)

// Auth covers credential issuance, token structure and bearer enforcement.
func Auth() Scenario {
	return Scenario{
		Name:        "auth",
		Description: "guest login claims, /auth/me round-trip, bearer enforcement, expired tokens, profile update",
		Steps:       authSteps,
	}
}

func authSteps() []Step {
	var info auth.TokenInfo

	return []Step{
		{
			Name: "token carries identity claims",
			Run: func(ctx context.Context, env *Env) error {
				var err error
				info, err = auth.InspectToken(env.Session.Token, env.Config.JWTSecret)
				if !env.Runner.Assert("token carries sub and user_id", err == nil, fmt.Sprint(err)) {
					return nil
				}
				env.Runner.Assert("token user_id matches session user",
					info.UserID == env.Session.User.ID,
					fmt.Sprintf("claim %q, session %q", info.UserID, env.Session.User.ID))
				if env.Config.HasSecret() {
					env.Runner.Assert("token signature verifies with shared secret", info.Verified, "not verified")
				}
				return nil
			},
		},
		{
			Name: "auth/me round-trip",
			Run: func(ctx context.Context, env *Env) error {
				ok, id := env.Auth.Me(ctx, "auth/me returns caller")
				if ok {
					env.Runner.Assert("auth/me id matches session user", id == env.Session.User.ID,
						fmt.Sprintf("got %q, want %q", id, env.Session.User.ID))
				}
				return nil
			},
		},
		{
			Name: "guest login round-trip",
			Run: func(ctx context.Context, env *Env) error {
				guest, err := env.Auth.TestLogin(ctx)
				if err != nil {
					return nil
				}
				if !env.Runner.Assert("guest login returns a user id", guest.User.ID != "", "user.id empty") {
					return nil
				}
				claims, err := auth.InspectToken(guest.Token, env.Config.JWTSecret)
				if env.Runner.Assert("guest token carries sub and user_id", err == nil, fmt.Sprint(err)) {
					env.Runner.Assert("guest token user_id matches guest user", claims.UserID == guest.User.ID,
						fmt.Sprintf("claim %q, user %q", claims.UserID, guest.User.ID))
					if env.Config.HasSecret() {
						env.Runner.Assert("guest token signature verifies with shared secret", claims.Verified, "not verified")
					}
				}
				g := env.as(guest)
				if ok, id := g.Auth.Me(ctx, "auth/me returns guest"); ok {
					env.Runner.Assert("auth/me id matches guest user", id == guest.User.ID,
						fmt.Sprintf("got %q, want %q", id, guest.User.ID))
				}
				return nil
			},
		},
		{
			Name: "missing or malformed bearer rejected",
			Run: func(ctx context.Context, env *Env) error {
				env.rejectsAnonymous(ctx, client.Request{Method: http.MethodGet, Path: "/auth/me"})
				for _, bad := range []struct{ label, header string }{
					{"garbage bearer", "Bearer not-a-real-token"},
					{"empty bearer", "Bearer "},
					{"basic scheme", "Basic c2ltY2hlY2s6c2ltY2hlY2s="},
				} {
					env.Runner.Check(ctx, client.Request{
						Name:         "auth/me rejects " + bad.label,
						Path:         "/auth/me",
						Headers:      map[string]string{"Authorization": bad.header},
						SkipAuth:     true,
						ExpectStatus: http.StatusUnauthorized,
						ExpectAnyOf:  unauthenticated,
					})
				}
				return nil
			},
		},
		{
			Name: "expired token rejected",
			Run: func(ctx context.Context, env *Env) error {
				if !env.Config.HasSecret() || info.Claims == nil {
					env.Logger.Info("JWT secret unknown, expired-token check not applicable")
					return nil
				}
				forged, err := auth.ForgeExpired(info.Claims, env.Config.JWTSecret)
				if err != nil {
					return errors.Wrap(err, "forge expired token")
				}
				_, err = auth.InspectToken(forged, env.Config.JWTSecret)
				env.Runner.Assert("forged token is expired", auth.IsExpiredError(err), fmt.Sprintf("inspect: %v", err))
				env.Runner.Check(ctx, client.Request{
					Name:         "auth/me rejects expired token",
					Path:         "/auth/me",
					Headers:      map[string]string{"Authorization": "Bearer " + forged},
					SkipAuth:     true,
					ExpectStatus: http.StatusUnauthorized,
					ExpectAnyOf:  unauthenticated,
				})
				return nil
			},
		},
		{
			Name: "profile update persists",
			Run: func(ctx context.Context, env *Env) error {
				name := "SimCheck Profile " + random.Suffix(4)
				ok, _ := env.Runner.Check(ctx, client.Request{
					Name:   "update profile name",
					Method: http.MethodPut,
					Path:   "/auth/profile",
					Body:   map[string]string{"name": name},
				})
				if !ok {
					return nil
				}
				ok, body := env.Runner.Check(ctx, client.Request{Name: "auth/me after profile update", Path: "/auth/me"})
				if ok {
					got := body.String("name")
					if got == "" {
						got = body.String("user", "name")
					}
					env.Runner.Assert("profile name persisted", got == name, fmt.Sprintf("got %q, want %q", got, name))
				}
				env.Logger.Debug("profile updated", zap.String("name", name))
				return nil
			},
		},
	}
}
