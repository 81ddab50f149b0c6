package auth

import (
	"net/http"
	"strings"
	"time"
)

const sessionCookieName = "triplane_token"

// ShouldUseCookies reports whether the client looks like a browser that
// expects cookie-based sessions rather than a bearer header.
func ShouldUseCookies(r *http.Request) bool {
	if r.Header.Get("X-Use-Cookies") == "true" {
		return true
	}
	// Heuristic: browsers send an Origin on cross-site fetches.
	return r.Header.Get("Origin") != "" && strings.Contains(r.Header.Get("Accept"), "text/html")
}

// SetAuthCookie stores the session token in an http-only cookie.
func SetAuthCookie(w http.ResponseWriter, token string, isProduction bool, duration time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(duration.Seconds()),
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookie expires the session cookie.
func ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// GetTokenFromCookie reads the session token from the cookie, if present.
func GetTokenFromCookie(r *http.Request) (string, error) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", err
	}
	return c.Value, nil
}
