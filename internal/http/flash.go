package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Flash severities.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

const (
	flashCookie = "flash"
	flashTTL    = 5 * time.Minute
)

// Flash is a one-shot message shown on the page after a redirect.
type Flash struct {
	Level   string
	Message string
}

type flashClaims struct {
	Level   string `json:"level"`
	Message string `json:"msg"`
	jwt.RegisteredClaims
}

// flashSigner stores flashes in an HS256 token cookie so they survive the
// redirect without server-side state.
type flashSigner struct {
	key []byte
	now func() time.Time
}

func newFlashSigner(secret string) *flashSigner {
	return &flashSigner{key: []byte(secret), now: time.Now}
}

func (f *flashSigner) Set(w http.ResponseWriter, level, msg string) error {
	now := f.now()
	claims := flashClaims{
		Level:   level,
		Message: msg,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.key)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(flashTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pop returns the pending flash, if any, and clears the cookie. Tampered or
// expired cookies are dropped silently.
func (f *flashSigner) Pop(w http.ResponseWriter, r *http.Request) *Flash {
	if _, err := r.Cookie(flashCookie); err != nil {
		return nil
	}
	f.Clear(w)
	return f.Peek(r)
}

// Peek returns the pending flash without consuming it.
func (f *flashSigner) Peek(r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	claims, err := f.parse(c.Value)
	if err != nil {
		return nil
	}
	return &Flash{Level: claims.Level, Message: claims.Message}
}

// Clear expires the flash cookie.
func (f *flashSigner) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (f *flashSigner) parse(token string) (*flashClaims, error) {
	var claims flashClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return f.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(f.now),
	)
	if err != nil {
		return nil, err
	}
	switch claims.Level {
	case FlashSuccess, FlashError, FlashInfo:
	default:
		return nil, errors.New("unknown flash level")
	}
	return &claims, nil
}
