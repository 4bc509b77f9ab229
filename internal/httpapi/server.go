// Package httpapi exposes a small operational surface for the daemon:
// a liveness probe and a one-shot status summary.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/famshare/billing-bot/internal/ledger"
)

// Server is the optional HTTP status server.
type Server struct {
	addr   string
	pool   *pgxpool.Pool
	ledger *ledger.Ledger
	log    zerolog.Logger
}

// NewServer creates a Server listening on the given port.
func NewServer(port string, pool *pgxpool.Pool, led *ledger.Ledger, logger zerolog.Logger) *Server {
	return &Server{
		addr:   ":" + port,
		pool:   pool,
		ledger: led,
		log:    logger.With().Str("component", "httpapi").Logger(),
	}
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/status", s.handleStatus)

	srv := &http.Server{Addr: s.addr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn().Err(err).Msg("status server shutdown failed")
		}
	}()

	s.log.Info().Str("addr", s.addr).Msg("status server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.pool.Ping(r.Context()); err != nil {
		s.log.Warn().Err(err).Msg("health check failed")
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	users, debtors, err := s.ledger.Counts(r.Context())
	if err != nil {
		http.Error(w, "status unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"users":   users,
		"debtors": debtors,
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().Str("method", r.Method).Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).Msg("request")
	})
}
