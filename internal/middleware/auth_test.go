package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func authProtected(password string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return Auth(password)(next)
}

func TestAuth_NoPasswordPassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	authProtected("").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/images", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_MissingCookieRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	authProtected("secret").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/images", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestAuth_WrongCookieRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookie, Value: "forged"})

	rec := httptest.NewRecorder()
	authProtected("secret").ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ValidCookieAccepted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookie, Value: CookieValue("secret")})

	rec := httptest.NewRecorder()
	authProtected("secret").ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_OpenPathsSkipCheck(t *testing.T) {
	for _, path := range []string{"/api/health", "/api/network", "/api/login"} {
		rec := httptest.NewRecorder()
		authProtected("secret").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestCookieValue_NotThePassword(t *testing.T) {
	value := CookieValue("secret")
	assert.NotEqual(t, "secret", value)
	assert.Len(t, value, 64)
}
