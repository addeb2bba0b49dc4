// Package httpapi exposes the list controller over HTTP with a WebSocket
// feed of view updates.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"svcboard/internal/catalog"
	"svcboard/internal/controller"
	"svcboard/internal/filter"
	"svcboard/internal/model"
)

// Controller is the part of controller.Controller the API drives.
type Controller interface {
	View() controller.View
	Refresh(context.Context) error
	Do(context.Context, string, model.Action) error
	StartAll(context.Context) (controller.BulkResult, error)
	StopAll(context.Context) (controller.BulkResult, error)
	RunGroup(context.Context, string) (model.Action, controller.BulkResult, error)
	SetQuery(filter.Query)
	SetGroupBy(catalog.GroupBy)
	ToggleGroup(string) bool
	ToggleExcluded(string) (bool, error)
	DismissRow(string) bool
	DismissBanner() bool
}

// Server serves the API for one controller.
type Server struct {
	ctrl Controller
	hub  *Hub
	log  zerolog.Logger
}

// New builds a server. hub must be the one receiving the controller events.
func New(ctrl Controller, hub *Hub, log zerolog.Logger) *Server {
	if hub == nil {
		hub = NewHub()
	}
	return &Server{ctrl: ctrl, hub: hub, log: log}
}

// Handler returns the chi router with every route configured.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(rejectCrossSite)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/view", s.handleView)
		r.Put("/query", s.handleQuery)
		r.Post("/refresh", s.handleRefresh)
		r.Delete("/banner", s.handleDismissBanner)
		r.Post("/services/{id}/{action}", s.handleServiceAction)
		r.Post("/groups/{key}/{action}", s.handleGroupAction)
		r.Post("/bulk/{action}", s.handleBulk)
		r.Get("/ws", s.handleWS)
	})
	return r
}

// requestLogger logs one line per request through zerolog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("http api listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
