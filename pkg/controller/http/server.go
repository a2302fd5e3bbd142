package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/argus/pkg/usecase"
	"github.com/secmon-lab/argus/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

type Options func(*Server)

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Post("/", s.createProject)
			r.Get("/", s.listProjects)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", s.getProject)
				r.Post("/control-accounts", s.createControlAccount)
				r.Get("/control-accounts", s.listControlAccounts)
				r.Get("/evm", s.projectEVM)
				r.Post("/risks", s.createRisk)
				r.Get("/risks", s.listRisks)
				r.Get("/risk-matrix", s.riskMatrix)
				r.Get("/exposure", s.exposure)
				r.Post("/simulations", s.simulate)
				r.Get("/report", s.report)
			})
		})

		r.Route("/control-accounts/{accountID}", func(r chi.Router) {
			r.Get("/", s.getControlAccount)
			r.Post("/records", s.appendRecord)
			r.Get("/records", s.listRecords)
			r.Get("/metrics", s.metrics)
			r.Get("/trend", s.trend)
		})

		r.Route("/risks/{riskID}", func(r chi.Router) {
			r.Get("/", s.getRisk)
			r.Post("/assessment", s.assessRisk)
			r.Post("/responses", s.addResponse)
			r.Post("/responses/{responseID}/implement", s.implementResponse)
			r.Post("/status", s.transitionRisk)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
