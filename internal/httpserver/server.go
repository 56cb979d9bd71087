// internal/httpserver/server.go
//
// HTTP server wiring for the game-session backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/leaderboard", "/debug/words".
//   - Session endpoints (optional auth): /session/*.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - The websocket route is mounted outside the timeout group; it lives as
//     long as the client keeps it open.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/game-session/internal/config"
	"github.com/robalobadob/wordle/apps/game-session/internal/game"
	"github.com/robalobadob/wordle/apps/game-session/internal/history"
	"github.com/robalobadob/wordle/apps/game-session/internal/words"
)

// requestTimeout bounds every non-streaming handler, including the wait for a
// Wordle service reply.
const requestTimeout = 10 * time.Second

// Sessions is the orchestrator as seen by the HTTP layer.
type Sessions interface {
	StartGame(ctx context.Context, user game.Identity) (game.Event, error)
	CheckWord(ctx context.Context, user game.Identity, word string) (game.Event, error)
	State(ctx context.Context) (map[game.Identity]game.Session, error)
	Session(ctx context.Context, user game.Identity) (game.Session, error)
}

// Events hands out per-user notification streams.
type Events interface {
	Subscribe(user game.Identity) (<-chan game.Event, func())
}

// Server bundles router, orchestrator, notification hub, and DB handle.
type Server struct {
	r        *chi.Mux
	cfg      config.Config
	sessions Sessions
	events   Events
	history  *history.Store
	db       *sql.DB
	srv      *http.Server
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, sessions Sessions, events Events, db *sql.DB) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      cfg,
		sessions: sessions,
		events:   events,
		history:  history.NewStore(db),
		db:       db,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(requestLogger)
	s.r.Use(s.cors)

	// Streaming: no timeout, no JSON content type.
	s.r.With(s.withIdentity).Get("/session/events", s.handleEvents)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))
		r.Use(jsonContentType)

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"service": cfg.SessionServiceID,
				"endpoints": []string{
					"/health", "POST /session/start", "POST /session/check", "/session/state",
					"/session/me", "/session/events", "/auth/*", "/stats/me", "/games/mine", "/leaderboard",
				},
			})
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})
		// Debug: word list counts, or membership of ?word=
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			if q := r.URL.Query().Get("word"); q != "" {
				writeJSON(w, http.StatusOK, map[string]any{"word": q, "allowed": words.IsAllowed(q), "answer": words.IsAnswer(q)})
				return
			}
			a, g := words.Stats()
			writeJSON(w, http.StatusOK, map[string]int{"answers": a, "allowed": g})
		})

		// Session endpoints: optional auth, guests can play
		r.Group(func(r chi.Router) {
			r.Use(s.withIdentity)
			r.Post("/session/start", s.handleStart)
			r.Post("/session/check", s.handleCheck)
			r.Get("/session/me", s.handleMine)
			r.Get("/session/state", s.handleState)
		})

		s.mountAuthRoutes(r)
		s.mountHistoryRoutes(r)

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
		})
	})

	return s
}

// Start begins serving HTTP on addr. It returns nil after Shutdown.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger writes one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("req_id", chimw.GetReqID(r.Context())).
			Msg("http")
	})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
