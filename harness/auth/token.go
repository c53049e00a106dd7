package auth

import (
	"strconv"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/golang-jwt/jwt"
)

// TokenInfo is the structural view of a bearer credential.
type TokenInfo struct {
	Subject   string
	UserID    string
	Email     string
	ExpiresAt time.Time
	// Verified is true when signature and expiry were checked against the shared secret.
	Verified bool
	Claims   jwt.MapClaims
}

// InspectToken decodes token without trusting it and requires the sub and user_id claims.
// When secret is non-empty the signature and expiry are verified as well.
func InspectToken(token string, secret string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := (&jwt.Parser{}).ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, errors.Wrap(err, "token is not a structurally valid JWT")
	}

	info := TokenInfo{
		Subject: claimString(claims, "sub"),
		UserID:  claimString(claims, "user_id"),
		Email:   claimString(claims, "email"),
		Claims:  claims,
	}
	if exp, ok := claims["exp"].(float64); ok {
		info.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if info.Subject == "" {
		return info, errors.New("token has no sub claim")
	}
	if info.UserID == "" {
		return info, errors.New("token has no user_id claim")
	}

	if secret == "" {
		return info, nil
	}
	if _, err := jwt.Parse(token, keyFunc(secret)); err != nil {
		return info, errors.Wrap(err, "token failed verification")
	}
	info.Verified = true
	return info, nil
}

// ForgeExpired signs a copy of claims with an expiry in the past.
func ForgeExpired(claims jwt.MapClaims, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("cannot forge a token without the signing secret")
	}
	forged := jwt.MapClaims{}
	for k, v := range claims {
		forged[k] = v
	}
	past := time.Now().Add(-time.Hour)
	forged["exp"] = past.Unix()
	forged["iat"] = past.Add(-time.Hour).Unix()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, forged).SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "sign forged token")
	}
	return signed, nil
}

// IsExpiredError reports whether err stems from an expired token.
func IsExpiredError(err error) bool {
	var verr *jwt.ValidationError
	if errors.As(err, &verr) {
		return verr.Errors&jwt.ValidationErrorExpired != 0
	}
	return false
}

func keyFunc(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
