// Package server exposes chunking and correction over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xhad/docprep/internal/types"
	"github.com/xhad/docprep/pkg/chunker"
	"github.com/xhad/docprep/pkg/corrector"
	"github.com/xhad/docprep/pkg/processor"
)

const maxBodyBytes = 10 << 20

type Config struct {
	Processor processor.ProcessorConfig

	// Corrector may be nil, in which case correction is a passthrough.
	Corrector  types.Corrector
	Correction corrector.OrchestratorConfig
	// MaxSegmentLength is used when a correct request does not set one.
	MaxSegmentLength int

	Logger *log.Logger
}

type Server struct {
	config Config
	logger *log.Logger
	router *chi.Mux
}

func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.Processor.MaxChunkSize == 0 {
		config.Processor.MaxChunkSize = chunker.DefaultMaxChunkSize
	}
	if config.MaxSegmentLength == 0 {
		config.MaxSegmentLength = corrector.MaxSegmentLength
	}
	config.Correction.Logger = config.Logger

	s := &Server{
		config: config,
		logger: config.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Route("/v1", func(r chi.Router) {
		r.Post("/chunk", s.handleChunk)
		r.Post("/correct", s.handleCorrect)
		r.Get("/ws", s.handleWebSocket)
	})
	s.router = r

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		}()
		next.ServeHTTP(ww, r)
	})
}

// orchestrator builds a per-job orchestrator so progress can be routed to the
// job's caller.
func (s *Server) orchestrator(onProgress func(done, total int)) *corrector.Orchestrator {
	cfg := s.config.Correction
	cfg.OnProgress = onProgress
	return corrector.NewWithConfig(s.config.Corrector, cfg)
}
