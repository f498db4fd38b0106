package http

import (
	"net/http"
	"strconv"
	"time"

	"efris-bridge/internal/metrics"
	"efris-bridge/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	handler *Handler
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewRouter(handler *Handler, log *logger.Logger, metrics *metrics.Metrics) *Router {
	return &Router{
		handler: handler,
		log:     log,
		metrics: metrics,
	}
}

func (r *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		crw := &customResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(crw, req)

		duration := time.Since(start)
		path := routePattern(req)
		if path != "/metrics" {
			r.metrics.HTTPRequestDuration.WithLabelValues(path, req.Method).Observe(duration.Seconds())
			r.metrics.HTTPRequestsTotal.WithLabelValues(path, req.Method, strconv.Itoa(crw.statusCode/100)+"xx").Inc()
		}

		r.log.Info("HTTP request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", crw.statusCode,
			"duration", duration,
			"request_id", middleware.GetReqID(req.Context()),
			"remote_addr", req.RemoteAddr,
			"user_agent", req.UserAgent(),
		)
	})
}

// routePattern keeps metric labels bounded to the registered routes.
func routePattern(req *http.Request) string {
	if rctx := chi.RouteContext(req.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

type customResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (crw *customResponseWriter) WriteHeader(code int) {
	crw.statusCode = code
	crw.ResponseWriter.WriteHeader(code)
}

func (r *Router) SetupRoutes() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(r.loggingMiddleware)

	mux.Route("/api/v1", func(api chi.Router) {
		api.Route("/forms", func(forms chi.Router) {
			forms.Post("/currency", r.handler.CurrencyChangedHandler)
			forms.Post("/company", r.handler.CompanyChangedHandler)
			forms.Post("/tax-id", r.handler.TaxIDChangedHandler)
			forms.Post("/new-customer", r.handler.NewCustomerToggledHandler)
		})
		api.Post("/items/sync", r.handler.SyncItemsHandler)
		api.Post("/credit-notes/approval", r.handler.CreditNoteApprovalHandler)
	})

	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}
