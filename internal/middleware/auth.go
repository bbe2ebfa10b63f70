package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
)

// AuthCookie is the session cookie granted by the login endpoint.
const AuthCookie = "imagevault_auth"

// openPaths are reachable without a session even when a password is set:
// discovery endpoints a device needs before it can log in.
var openPaths = map[string]bool{
	"/api/health":  true,
	"/api/network": true,
	"/api/login":   true,
}

// CookieValue derives the expected cookie value from the shared secret, so
// the secret itself never travels back to clients.
func CookieValue(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Auth gates /api routes behind the shared-secret session cookie. An empty
// password disables the check entirely.
func Auth(password string) func(http.Handler) http.Handler {
	expected := CookieValue(password)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if password == "" || openPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(AuthCookie)
			if err != nil || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(expected)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
