// Package api provides the HTTP API server and handlers for the BookBlog catalog.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookblog/bookblog-server/internal/media/images"
	"github.com/bookblog/bookblog-server/internal/validation"
)

// DefaultMaxUploadBytes bounds multipart bodies when Options leaves it unset.
const DefaultMaxUploadBytes int64 = 64 << 20

// Options tunes the HTTP surface.
type Options struct {
	DataDir        string
	CORSOrigins    []string
	MaxUploadBytes int64
	BackupNotes    string // default manifest notes

	// AuthRequestsPerMinute limits /api/v1/auth requests per client IP.
	// Zero selects 30.
	AuthRequestsPerMinute int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services        *Services
	covers          *images.Storage
	router          *chi.Mux
	api             huma.API
	validator       *validation.Validator
	authRateLimiter *RateLimiter
	opts            Options
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, covers *images.Storage, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.AuthRequestsPerMinute <= 0 {
		opts.AuthRequestsPerMinute = 30
	}

	s := &Server{
		services:        services,
		covers:          covers,
		router:          chi.NewRouter(),
		validator:       validation.New(),
		authRateLimiter: NewRateLimiter(opts.AuthRequestsPerMinute, time.Minute, opts.AuthRequestsPerMinute),
		opts:            opts,
		logger:          logger,
	}

	// Middleware must be in place before humachi mounts its routes.
	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("BookBlog API", "1.0.0")
	humaConfig.Info.Description = "Book catalog with comments, covers and archive backups."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	if len(s.opts.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition", "ETag"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	s.router.Use(authMiddleware(s.services.Auth))
	s.router.Use(RateLimitMiddleware(s.authRateLimiter, authPathPrefix, s.logger))
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerCommentRoutes()
	s.registerCoverRoutes()
	s.registerAdminUserRoutes()
	s.registerAdminBackupRoutes()
}

// requestLogger logs one line per request at debug level, warn for 5xx.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := slog.LevelDebug
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
