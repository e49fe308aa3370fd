package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/swim-timer/internal/config"
	"github.com/terra-clan/swim-timer/internal/publish"
	"github.com/terra-clan/swim-timer/internal/race"
)

// Server represents the HTTP API server
type Server struct {
	config   config.ServerConfig
	router   *chi.Mux
	engine   race.Controller
	registry *publish.Registry
	feed     *Feed
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	engine race.Controller,
	registry *publish.Registry,
	feed *Feed,
) *Server {
	s := &Server{
		config:   cfg,
		engine:   engine,
		registry: registry,
		feed:     feed,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(ObserverMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", ObserverHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// Live feed (long-lived, outside the request timeout)
	if s.feed != nil {
		r.Get("/ws/race", s.feed.ServeWS)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Route("/race", func(r chi.Router) {
			r.Get("/", s.handleGetState)
			r.Post("/start", s.handleStartRace)
			r.Post("/stop", s.handleStopRace)
			r.Post("/reset", s.handleResetRace)

			r.Route("/finishes", func(r chi.Router) {
				r.Get("/", s.handleListFinishes)
				r.Get("/{id}", s.handleHasFinished)
				r.Post("/{id}", s.handleRecordFinish)
			})
		})

		r.Route("/results", func(r chi.Router) {
			r.Get("/", s.handleGetSnapshot)
			r.Get("/export.csv", s.handleExportCSV)
			r.Get("/export.xlsx", s.handleExportWorkbook)
		})

		r.Route("/roster", func(r chi.Router) {
			r.Get("/", s.handleGetRoster)
			r.Get("/categories", s.handleListRaceCategories)
			r.Put("/category", s.handleSelectRaceCategory)
		})

		r.Get("/brackets", s.handleGetBrackets)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
