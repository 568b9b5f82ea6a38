package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/modelcheck/pkg/i18n"
	"github.com/dmitrymomot/modelcheck/pkg/logger"
	"github.com/dmitrymomot/modelcheck/pkg/schema"
)

const defaultMaxBodyBytes = 1 << 20

// Server exposes a schema registry over HTTP.
type Server struct {
	registry     *schema.Registry
	logger       *slog.Logger
	metrics      *Metrics
	translator   *i18n.Translator
	maxBodyBytes int64
}

type Option func(*Server)

// WithLogger sets the request logger. Request ids reach log records when the
// logger extracts middleware.RequestIDKey from the context.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics enables instrumentation and the /metrics endpoint.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithTranslator localizes report messages by the request's Accept-Language.
func WithTranslator(t *i18n.Translator) Option {
	return func(s *Server) { s.translator = t }
}

// WithMaxBodyBytes limits the size of validation request bodies.
func WithMaxBodyBytes(n int64) Option {
	if n <= 0 {
		panic("server: max body bytes must be > 0")
	}
	return func(s *Server) { s.maxBodyBytes = n }
}

func New(reg *schema.Registry, opts ...Option) *Server {
	s := &Server{
		registry:     reg,
		logger:       logger.Discard(),
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("server"))
	return s
}

// Router builds the HTTP routes:
//
//	GET  /healthz                  liveness
//	GET  /readyz                   ready once a schema is registered
//	GET  /metrics                  when metrics are enabled
//	GET  /schemas                  registered names
//	GET  /schemas/{name}           schema description
//	POST /schemas/{name}/validate  validate a JSON or YAML object
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.middleware)
	}
	r.Use(s.requestLogger)
	if s.translator != nil {
		r.Use(i18n.Middleware(s.translator))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) { s.fail(w, r, ErrNotFound) })
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) { s.fail(w, r, ErrMethodNotAllowed) })

	r.Get("/healthz", healthHandler(s.logger))
	r.Get("/readyz", healthHandler(s.logger, s.ready))
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/schemas", func(r chi.Router) {
		r.Get("/", s.listSchemas)
		r.Get("/{name}", s.describeSchema)
		r.Post("/{name}/validate", s.validate)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.InfoContext(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			logger.Duration(time.Since(start)),
		)
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if werr := writeError(w, err); werr != nil {
		s.logger.ErrorContext(r.Context(), "write error response", logger.Error(werr))
	}
}
