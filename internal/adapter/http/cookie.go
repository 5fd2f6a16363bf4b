package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"feedback/internal/domain"
)

var errInvalidCookie = errors.New("invalid session cookie")

// cookieCodec signs session tokens into the cookie value. The JWT id is
// the opaque session token; exp mirrors the session expiry.
type cookieCodec struct {
	name   string
	secure bool
	secret []byte
}

func (c *cookieCodec) encode(s *domain.Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        s.Token,
		Subject:   s.UserID,
		IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	})
	return token.SignedString(c.secret)
}

// decode verifies the cookie value and returns the session token.
func (c *cookieCodec) decode(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.ID == "" {
		return "", errInvalidCookie
	}
	return claims.ID, nil
}

// token extracts the session token from the request cookie, or "".
func (c *cookieCodec) token(r *http.Request) string {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	token, err := c.decode(cookie.Value)
	if err != nil {
		return ""
	}
	return token
}

func (c *cookieCodec) set(w http.ResponseWriter, s *domain.Session, ttl time.Duration) error {
	value, err := c.encode(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
	return nil
}

func (c *cookieCodec) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
