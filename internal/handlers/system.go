package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"imagevault/internal/catalog"
	"imagevault/internal/server"
)

// HealthHandler is the liveness probe.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"server":  ServerName,
			"version": Version,
		})
	}
}

// NetworkHandler reports how to reach the server from other devices.
func NetworkHandler(hn server.HostNetwork, port int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, server.Describe(hn, port))
	}
}

// StatsHandler reports catalog totals.
func StatsHandler(cat *catalog.Catalog, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := cat.Stats()
		if err != nil {
			log.Error().Err(err).Msg("failed to compute stats")
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
