// Package server exposes the decision engine over a stateless JSON API.
// Clients carry their own level and performance snapshot between calls.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/abhisek/quizladder/internal/engine"
	"github.com/abhisek/quizladder/internal/logging"
	"github.com/abhisek/quizladder/internal/questions"
	"github.com/abhisek/quizladder/internal/store"
	"github.com/abhisek/quizladder/internal/tips"
)

// Deps are the collaborators a Server needs. Events may be nil, in which
// case decisions are not recorded.
type Deps struct {
	Controller *engine.Controller
	Bank       *questions.Bank
	Tips       *tips.Service
	Events     store.EventRepo
	Log        *logging.Logger
}

// Options tune the API.
type Options struct {
	AllowedOrigins []string
	// Advisory and Act are the defaults for answer requests that leave
	// them unset.
	Advisory     bool
	Act          engine.Source
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	deps Deps
	opts Options
	log  *logging.Logger
}

func New(deps Deps, opts Options) *Server {
	if deps.Log == nil {
		deps.Log = logging.Nop()
	}
	if deps.Controller == nil {
		deps.Controller = engine.NewController(nil, deps.Log)
	}
	if deps.Bank == nil {
		deps.Bank = questions.Default()
	}
	if deps.Tips == nil {
		deps.Tips = tips.NewService(nil, 0, deps.Log)
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.Act == "" {
		opts.Act = engine.SourceHeuristic
	}
	return &Server{deps: deps, opts: opts, log: deps.Log}
}

// Handler returns the routed, CORS-wrapped API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/questions", s.handleListQuestions)
		r.Get("/questions/random", s.handleRandomQuestion)
		r.Post("/answers", s.handleAnswer)
		r.Post("/simulate", s.handleSimulate)
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(log *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chiMiddleware.GetReqID(r.Context()))
		})
	}
}
