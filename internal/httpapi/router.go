package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/alexanderramin/orgdir/internal/config"
	"github.com/alexanderramin/orgdir/internal/service"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Services bundles what the controllers call into.
type Services struct {
	Activities    service.ActivityService
	Buildings     service.BuildingService
	Organizations service.OrganizationService
}

// Controller mounts its routes on an API subrouter.
type Controller interface {
	Register(r *mux.Router)
}

// subrouter mounts a prefix on r. A method mismatch is answered by the
// innermost router, so each level carries the parent's 405 handler.
func subrouter(r *mux.Router, prefix string) *mux.Router {
	sub := r.PathPrefix(prefix).Subrouter()
	sub.MethodNotAllowedHandler = r.MethodNotAllowedHandler
	return sub
}

// NewRouter builds the full handler: metrics without a key, the API behind
// the key under cfg.APIPrefix, CORS when origins are configured.
func NewRouter(cfg *config.Config, svc Services, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := mux.NewRouter()
	r.Use(withRequestID(), withAccessLog(logger))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	if gatherer != nil && cfg.MetricsPath != "" {
		r.Handle(cfg.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := subrouter(r, cfg.APIPrefix)
	api.Use(requireAPIKey(cfg.APIKey))
	controllers := []Controller{
		NewActivityController(svc.Activities, logger, cfg.DefaultPageLimit),
		NewBuildingController(svc.Buildings, logger, cfg.DefaultPageLimit),
		NewOrganizationController(svc.Organizations, logger, cfg.DefaultPageLimit),
	}
	for _, c := range controllers {
		c.Register(api)
	}

	if len(cfg.CORSOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", APIKeyHeader, requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler(r)
}
