package callback

import (
	"context"
	"net/http"

	"bundlehub-client/internal/cache"
	"bundlehub-client/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Server is a small local listener for the Paystack payment-return redirect.
// When the gateway sends the browser back after a redirect-based payment,
// landing here invalidates the cached cart, order and user views so the
// client refetches post-payment state.
type Server struct {
	srv   *http.Server
	cache cache.Cache
	log   *zap.Logger
}

// New creates the payment-return listener.
func New(addr string, c cache.Cache, log *zap.Logger) *Server {
	s := &Server{cache: c, log: log}

	r := chi.NewRouter()
	r.Use(middleware.NewRecovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.NewLogging(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/payment/return", s.handleReturn)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.srv = &http.Server{Addr: addr, Handler: r}
	return s
}

// handleReturn invalidates stale views and shows a minimal confirmation page.
func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")
	s.log.Info("payment return received", zap.String("reference", reference))

	ctx := r.Context()
	for _, key := range []string{cache.KeyCart, cache.KeyUser} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Warn("failed to invalidate cache entry", zap.String("key", key), zap.Error(err))
		}
	}
	if err := s.cache.DeletePrefix(ctx, cache.MyOrdersPrefix); err != nil {
		s.log.Warn("failed to invalidate orders cache", zap.Error(err))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("<html><body><h1>Payment received</h1><p>You can return to the app.</p></body></html>"))
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info("payment-return listener started", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
