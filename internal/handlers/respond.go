package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// ServerName identifies this API to clients probing the network.
const ServerName = "imagevault-api"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// NotFoundHandler is the fallback for unmatched routes and methods.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not Found"})
	})
}

// contentTypeForExt maps image extensions to MIME types. The format check at
// ingest time is extension-based, so serving is too.
func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
