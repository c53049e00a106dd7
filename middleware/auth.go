package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/patrickmn/go-cache"

	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/common/ctxkey"
	"github.com/agentsim/simcheck/common/logger"
	"github.com/agentsim/simcheck/model"
)

var (
	errNotAuthenticated = errors.New("Not authenticated")
	errInvalidToken     = errors.New("Could not validate credentials")
)

// userCache avoids a database round-trip per request for already-seen callers.
var userCache = cache.New(5*time.Minute, 10*time.Minute)

// Claims are the bearer-token claims issued by the reference backend.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

// IssueToken signs an HS256 token for user valid for ttl.
func IssueToken(user *model.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.Email,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.RefServerJWTSecret))
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

func parseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(config.RefServerJWTSecret), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parse token")
	}
	if claims.UserID == "" || claims.Subject == "" {
		return nil, errors.New("token lacks identity claims")
	}
	return claims, nil
}

func lookupUser(c *gin.Context, id string) (*model.User, error) {
	if cached, ok := userCache.Get(id); ok {
		return cached.(*model.User), nil
	}
	user, err := model.GetUserByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	userCache.SetDefault(id, user)
	return user, nil
}

// ForgetUser drops a cached caller after their profile changed.
func ForgetUser(id string) {
	userCache.Delete(id)
}

// UserAuth enforces a bearer token: a missing one yields 403, an unusable one 401.
func UserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		scheme, raw, found := strings.Cut(header, " ")
		if header == "" || !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			AbortWithError(c, http.StatusForbidden, errNotAuthenticated)
			return
		}

		claims, err := parseToken(strings.TrimSpace(raw))
		if err != nil {
			logger.Logger.Debug("rejecting bearer token", zap.Error(err))
			AbortWithError(c, http.StatusUnauthorized, errInvalidToken)
			return
		}
		user, err := lookupUser(c, claims.UserID)
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, errInvalidToken)
			return
		}

		c.Set(ctxkey.Id, user.ID)
		c.Set(ctxkey.Email, user.Email)
		c.Next()
	}
}
