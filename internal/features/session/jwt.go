package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether token is a JWT whose exp claim lies before
// now minus skew. The signature is not verified; the server stays the
// authority. Opaque tokens and JWTs without exp are never considered expired.
func tokenExpired(token string, now time.Time, skew time.Duration) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Add(skew).Before(now)
}
