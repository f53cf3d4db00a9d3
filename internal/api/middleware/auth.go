package middleware

import (
	"errors"
	"net/http"

	"github.com/doodlechef/doodlechef/internal/api/models"
	"github.com/doodlechef/doodlechef/internal/auth"
)

// SessionAuth creates middleware that requires a valid admin session cookie.
// On success the cookie is re-issued, sliding the expiry forward so an active
// reviewer never gets logged out mid-session.
func SessionAuth(sessions *auth.SessionService, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookieName)
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w, r, "missing session")
				return
			}

			if _, err := sessions.Verify(cookie.Value); err != nil {
				if errors.Is(err, auth.ErrSessionExpired) {
					writeUnauthorized(w, r, "session has expired")
				} else {
					writeUnauthorized(w, r, "invalid session")
				}
				return
			}

			if token, _, err := sessions.Issue(); err == nil {
				SetSessionCookie(w, token, int(auth.SessionTTL.Seconds()), secureCookies)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SetSessionCookie writes the admin session cookie.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the admin session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// writeUnauthorized writes a 401 Unauthorized response.
// This is implemented directly here to avoid import cycle with response package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}
