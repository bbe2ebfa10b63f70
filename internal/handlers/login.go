package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"imagevault/internal/middleware"
)

type loginRequest struct {
	Password string `json:"password"`
}

// LoginHandler checks the shared secret and grants the session cookie. With
// no password configured the endpoint reports that authentication is off.
func LoginHandler(password string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if password == "" {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"message": "authentication disabled",
			})
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}

		if subtle.ConstantTimeCompare([]byte(req.Password), []byte(password)) != 1 {
			writeError(w, http.StatusUnauthorized, errors.New("invalid password"))
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.AuthCookie,
			Value:    middleware.CookieValue(password),
			Path:     "/",
			HttpOnly: true,
		})
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
