package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"imagevault/internal/catalog"
	"imagevault/internal/config"
	"imagevault/internal/handlers"
	"imagevault/internal/hub"
	"imagevault/internal/ingest"
	"imagevault/internal/library"
	"imagevault/internal/middleware"
	"imagevault/internal/server"
)

// Deps carries everything the HTTP facade routes to.
type Deps struct {
	Config   *config.Config
	Catalog  *catalog.Catalog
	Library  *library.Library
	Pipeline *ingest.Pipeline
	Events   *hub.Hub
	HostNet  server.HostNetwork
	Log      zerolog.Logger
}

// Setup builds the router: the /api surface plus /metrics, with metrics and
// shared-secret middleware applied.
func Setup(d Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Metrics)
	r.NotFoundHandler = handlers.NotFoundHandler()
	r.MethodNotAllowedHandler = handlers.NotFoundHandler()

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(d.Config.APIPassword))

	api.HandleFunc("/health", handlers.HealthHandler()).Methods(http.MethodGet)
	api.HandleFunc("/network", handlers.NetworkHandler(d.HostNet, d.Config.Port)).Methods(http.MethodGet)
	api.HandleFunc("/stats", handlers.StatsHandler(d.Catalog, d.Log)).Methods(http.MethodGet)
	api.HandleFunc("/login", handlers.LoginHandler(d.Config.APIPassword)).Methods(http.MethodPost)
	api.HandleFunc("/events", handlers.EventsHandler(d.Events, d.Log)).Methods(http.MethodGet)

	api.HandleFunc("/images", handlers.ListImagesHandler(d.Catalog, d.Log)).Methods(http.MethodGet)
	api.HandleFunc("/images/search", handlers.SearchImagesHandler(d.Catalog, d.Log)).Methods(http.MethodGet)
	api.HandleFunc("/images/upload", handlers.UploadImageHandler(d.Pipeline, d.Events, d.Log)).Methods(http.MethodPost)
	api.HandleFunc("/images/{id}", handlers.GetImageHandler(d.Catalog, d.Log)).Methods(http.MethodGet)
	api.HandleFunc("/images/{id}/file", handlers.GetImageFileHandler(d.Catalog, d.Log)).Methods(http.MethodGet)
	api.HandleFunc("/images/{id}/thumbnail", handlers.GetImageThumbnailHandler(d.Catalog, d.Log)).Methods(http.MethodGet)
	api.HandleFunc("/images/{id}", handlers.UpdateImageHandler(d.Library, d.Events, d.Log)).Methods(http.MethodPut)
	api.HandleFunc("/images/{id}", handlers.DeleteImageHandler(d.Library, d.Events, d.Log)).Methods(http.MethodDelete)

	return r
}
