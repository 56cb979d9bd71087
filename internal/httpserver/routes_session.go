// internal/httpserver/routes_session.go
//
// HTTP routes for the session orchestrator.
//   - POST /session/start  → start (or restart) the caller's game
//   - POST /session/check  → submit a guess {"word":"horse"}
//   - GET  /session/me     → the caller's session record
//   - GET  /session/state  → snapshot of every session
//   - GET  /session/events → websocket stream of out-of-band events (timeouts)
//
// Start and check block until the Wordle service answers, the game times out,
// or the request deadline passes.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/game-session/internal/session"
)

type checkReq struct {
	Word string `json:"word"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	ev, err := s.sessions.StartGame(r.Context(), identityFrom(r))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	ev, err := s.sessions.CheckWord(r.Context(), identityFrom(r), req.Word)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sessions.Session(r.Context(), identityFrom(r))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.State(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleEvents upgrades to a websocket and forwards the caller's notifications
// as JSON until either side goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	user := identityFrom(r)
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     originPatterns(s.cfg.ClientOrigin),
		InsecureSkipVerify: !s.cfg.Production(),
	})
	if err != nil {
		log.Warn().Err(err).Str("user", string(user)).Msg("websocket accept")
		return
	}
	defer c.CloseNow()

	events, cancel := s.events.Subscribe(user)
	defer cancel()

	// Client messages are ignored; CloseRead cancels ctx once the peer closes.
	ctx := c.CloseRead(r.Context())
	log.Debug().Str("user", string(user)).Msg("events stream opened")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("user", string(user)).Msg("events stream closed")
			return
		case ev, ok := <-events:
			if !ok {
				_ = c.Close(websocket.StatusGoingAway, "unsubscribed")
				return
			}
			wctx, done := context.WithTimeout(ctx, requestTimeout)
			err := wsjson.Write(wctx, c, ev)
			done()
			if err != nil {
				log.Debug().Err(err).Str("user", string(user)).Msg("events write")
				return
			}
		}
	}
}

// writeSessionError maps orchestrator errors onto HTTP statuses.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidWord):
		writeError(w, http.StatusBadRequest, "invalid_word")
	case errors.Is(err, session.ErrGameInProgress):
		writeError(w, http.StatusConflict, "game_in_progress")
	case errors.Is(err, session.ErrNoActiveGame):
		writeError(w, http.StatusConflict, "no_active_game")
	case errors.Is(err, session.ErrSuperseded):
		writeError(w, http.StatusConflict, "superseded")
	case errors.Is(err, session.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "stopped")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusGatewayTimeout, "pending")
	default:
		log.Error().Err(err).Msg("session call")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

// originPatterns turns CLIENT_ORIGIN into a websocket origin pattern (host[:port]).
func originPatterns(origin string) []string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}
