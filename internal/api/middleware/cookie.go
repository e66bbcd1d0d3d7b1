package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// SessionCookie carries the session ID to the browser as an HS256-signed
// token, so a forged or edited cookie never reaches the identity store.
type SessionCookie struct {
	name   string
	secret []byte
	maxAge time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionCookie(name, secret string, maxAge time.Duration, secure bool) *SessionCookie {
	return &SessionCookie{
		name:   name,
		secret: []byte(secret),
		maxAge: maxAge,
		secure: secure,
		now:    time.Now,
	}
}

var errCookieInvalid = errors.New("session cookie invalid")

// Read returns the session ID carried by the request. present is true when a
// cookie was sent, even if it failed verification.
func (sc *SessionCookie) Read(r *http.Request) (sessionID string, present bool, err error) {
	cookie, err := r.Cookie(sc.name)
	if err != nil || cookie.Value == "" {
		return "", false, nil
	}

	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return sc.secret, nil
	}, jwt.WithTimeFunc(sc.now))
	if err != nil || !tkn.Valid || claims.ID == "" {
		return "", true, errCookieInvalid
	}
	return claims.ID, true, nil
}

// Write sets the cookie for sessionID.
func (sc *SessionCookie) Write(c echo.Context, sessionID string) error {
	now := sc.now()
	claims := jwt.RegisteredClaims{
		ID:       sessionID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if sc.maxAge > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(sc.maxAge))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sc.secret)
	if err != nil {
		return err
	}

	cookie := sc.base()
	cookie.Value = signed
	if sc.maxAge > 0 {
		cookie.MaxAge = int(sc.maxAge.Seconds())
		cookie.Expires = now.Add(sc.maxAge)
	}
	c.SetCookie(cookie)
	return nil
}

// Clear expires the cookie in the browser.
func (sc *SessionCookie) Clear(c echo.Context) {
	cookie := sc.base()
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	c.SetCookie(cookie)
}

func (sc *SessionCookie) base() *http.Cookie {
	return &http.Cookie{
		Name:     sc.name,
		Path:     "/",
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
