// internal/wordle/service.go
//
// In-process Wordle service.
// Responsibilities:
//   - Accept StartGame / CheckWord requests addressed to its identity.
//   - Keep one secret word per user, chosen by a Picker on StartGame.
//   - Answer every request asynchronously through a ReplySink, optionally
//     after a fixed delay to emulate a slow remote collaborator.
//
// Notes:
//   - Secrets are owned by the Run goroutine; no locking is needed.
//   - A CheckWord for a user with no game is dropped without a reply; the
//     orchestrator's timeout is the recovery path for that case.
package wordle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
)

var (
	ErrWrongRecipient = errors.New("wordle: request addressed to another service")
	ErrStopped        = errors.New("wordle: service stopped")
)

// Service answers game requests for many users.
type Service struct {
	id     game.Identity
	picker Picker
	delay  time.Duration
	inbox  chan Request
	done   chan struct{}
	log    zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithDelay postpones every reply by d.
func WithDelay(d time.Duration) Option { return func(s *Service) { s.delay = d } }

// WithLogger overrides the service logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// New constructs a Service addressed as id.
func New(id game.Identity, picker Picker, opts ...Option) *Service {
	s := &Service{
		id:     id,
		picker: picker,
		inbox:  make(chan Request, 256),
		done:   make(chan struct{}),
		log:    log.With().Str("component", "wordle").Logger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ID returns the service identity.
func (s *Service) ID() game.Identity { return s.id }

// Send enqueues a request. It does not wait for the reply.
func (s *Service) Send(ctx context.Context, req Request) error {
	if req.To != s.id {
		return fmt.Errorf("%w: %s", ErrWrongRecipient, req.To)
	}
	select {
	case s.inbox <- req:
		return nil
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes requests until ctx is cancelled.
func (s *Service) Run(ctx context.Context, sink ReplySink) error {
	defer close(s.done)
	secrets := make(map[game.Identity]string)
	s.log.Info().Str("id", string(s.id)).Dur("delay", s.delay).Msg("wordle service started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("wordle service stopped")
			return nil
		case req := <-s.inbox:
			ev, ok := s.handle(secrets, req)
			if !ok {
				continue
			}
			s.reply(sink, Reply{ID: game.NewMessageID(), From: s.id, InReplyTo: req.ID, Event: ev})
		}
	}
}

func (s *Service) handle(secrets map[game.Identity]string, req Request) (Event, bool) {
	switch req.Kind {
	case RequestStartGame:
		secrets[req.User] = s.picker.Pick(req.User)
		s.log.Debug().Str("user", string(req.User)).Msg("game started")
		return Event{Kind: EventGameStarted, User: req.User}, true
	case RequestCheckWord:
		secret, ok := secrets[req.User]
		if !ok {
			s.log.Warn().Str("user", string(req.User)).Msg("check word without a game")
			return Event{}, false
		}
		correct, contained := Positions(Score(secret, req.Word))
		return Event{Kind: EventWordChecked, User: req.User, CorrectPositions: correct, ContainedInWord: contained}, true
	default:
		s.log.Warn().Str("kind", string(req.Kind)).Msg("unknown request")
		return Event{}, false
	}
}

func (s *Service) reply(sink ReplySink, r Reply) {
	if s.delay <= 0 {
		sink.Deliver(r)
		return
	}
	time.AfterFunc(s.delay, func() { sink.Deliver(r) })
}
