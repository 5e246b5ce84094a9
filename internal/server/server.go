package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/akolanti/BookRAG/internal/adapter/utils"
	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/handlers"
	"github.com/akolanti/BookRAG/internal/middleware"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

type Server struct {
	http   *http.Server
	logger *logger_i.Logger
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	// StopWorkers retires the ingestion workers and waits for running jobs.
	StopWorkers   func()
	CloseServices context.CancelFunc
}

// NewRouter mounts every route. prefix is the API mount point, e.g. /api/v1.
func NewRouter(h *handlers.Handler, m *middleware.Middleware, prefix string) *chi.Mux {
	r := utils.NewRouter()
	r.Use(m.CORS)

	r.Get("/", m.Public(h.Root))
	r.Get("/health", m.Public(h.Health))

	if prefix == "" {
		prefix = "/"
	}
	r.Route(prefix, func(api chi.Router) {
		api.Route("/chat", func(c chi.Router) {
			c.Post("/", m.Chat(h.Chat))
			c.Post("/stream", m.Chat(h.ChatStream))
			c.Get("/conversations", m.Public(h.ListConversations))
			c.Get("/conversations/{id}/messages", m.Public(h.ConversationMessages))
			c.Delete("/conversations/{id}", m.Public(h.DeleteConversation))
		})

		api.Get("/search", m.Chat(h.Search))

		api.Route("/admin", func(a chi.Router) {
			a.Post("/ingest", m.Admin(h.Ingest))
			a.Post("/ingest/file", m.Admin(h.IngestFile))
			a.Post("/ingest/jobs", m.Admin(h.EnqueueIngestJob))
			a.Get("/ingest/jobs", m.Admin(h.ListIngestJobs))
			a.Get("/ingest/jobs/{id}", m.Admin(h.GetIngestJob))
			a.Get("/documents", m.Admin(h.ListDocuments))
			a.Delete("/documents/all", m.Admin(h.ClearDocuments))
			a.Get("/health/vector-store", m.Admin(h.VectorStoreHealth))
		})
	})
	return r
}

func CreateServer(listenAddr string, handler http.Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:         listenAddr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger_i.NewLogger("Server"),
	}
}

// ListenAndServe blocks until the server stops. A graceful shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("Server is listening", "address", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Server crashed", "error", err, "addr", s.http.Addr)
		return err
	}
	return nil
}

// ShutDownHandler waits for a signal, then drains HTTP, the worker pool and
// the external clients in that order.
func (s *Server) ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	s.logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		s.http.SetKeepAlivesEnabled(false)

		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error("Could not shutdown gracefully", "err", err)
		}

		if shutdownParams.StopWorkers != nil {
			shutdownParams.StopWorkers()
		}
		shutdownParams.CloseServices()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Graceful shutdown complete")
	case <-ctx.Done():
		s.logger.Warn("Forced shutdown, workers still running")
		shutdownParams.CloseServices()
	}
	close(shutdownParams.StopExecution)
}
