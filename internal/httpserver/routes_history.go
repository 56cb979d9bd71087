// internal/httpserver/routes_history.go
//
// Read-only views over finished games.
//   - GET /games/mine   → recent games of the caller (guest or registered)
//   - GET /stats/me     → counters of the logged-in user
//   - GET /leaderboard  → top registered users by wins, then streak

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

func (s *Server) mountHistoryRoutes(r chi.Router) {
	r.With(s.withIdentity).Get("/games/mine", s.handleGamesMine)
	r.With(s.requireAuth).Get("/stats/me", s.handleStatsMe)
	r.Get("/leaderboard", s.handleLeaderboard)
}

func (s *Server) handleGamesMine(w http.ResponseWriter, r *http.Request) {
	games, err := s.history.Games(r.Context(), identityFrom(r), queryLimit(r, 50))
	if err != nil {
		log.Error().Err(err).Msg("list games")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleStatsMe(w http.ResponseWriter, r *http.Request) {
	me := userFrom(r)
	st, err := s.history.Stats(r.Context(), me.ID)
	if err != nil {
		log.Error().Err(err).Str("user", me.ID).Msg("load stats")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          me.ID,
		"gamesPlayed": st.GamesPlayed,
		"wins":        st.Wins,
		"streak":      st.Streak,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.history.Leaderboard(r.Context(), queryLimit(r, 20))
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// queryLimit reads ?limit=N, clamped to [1, 100].
func queryLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > 100 {
		return 100
	}
	return n
}
