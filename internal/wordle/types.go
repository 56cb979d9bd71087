// internal/wordle/types.go
//
// Messages exchanged with the Wordle service.
//   - Request: sent by the orchestrator, carries its own correlation id.
//   - Reply: sent back, InReplyTo names the request it answers.
//   - ReplySink: where the service hands replies; Deliver must not block.

package wordle

import (
	"github.com/robalobadob/wordle/apps/game-session/internal/game"
)

// RequestKind selects what the Wordle service is asked to do.
type RequestKind string

const (
	RequestStartGame RequestKind = "start_game"
	RequestCheckWord RequestKind = "check_word"
)

// Request is a message sent to the Wordle service. ID is chosen by the
// sender so it can record the correlation id before the request leaves.
type Request struct {
	ID   game.MessageID
	From game.Identity
	To   game.Identity
	Kind RequestKind
	User game.Identity
	Word string // only for RequestCheckWord
}

// EventKind discriminates replies from the Wordle service.
type EventKind string

const (
	EventGameStarted EventKind = "game_started"
	EventWordChecked EventKind = "word_checked"
)

// Event is the payload of a Wordle service reply.
type Event struct {
	Kind             EventKind     `json:"kind"`
	User             game.Identity `json:"user"`
	CorrectPositions []int         `json:"correctPositions,omitempty"`
	ContainedInWord  []int         `json:"containedInWord,omitempty"`
}

// HasGuessed reports whether every letter of the guess was correctly placed.
func (e Event) HasGuessed() bool {
	return e.Kind == EventWordChecked && len(e.CorrectPositions) == game.WordLength
}

// UserEvent translates the service event into what the user sees.
func (e Event) UserEvent() game.Event {
	if e.Kind == EventGameStarted {
		return game.StartSuccess()
	}
	return game.CheckWordResult(e.CorrectPositions, e.ContainedInWord)
}

// Reply is a message from the Wordle service answering an earlier Request.
type Reply struct {
	ID        game.MessageID
	From      game.Identity
	InReplyTo game.MessageID
	Event     Event
}

// ReplySink receives replies produced by the service. The service loop calls
// Deliver inline, so implementations must return without waiting on the caller.
type ReplySink interface {
	Deliver(r Reply)
}

// ReplySinkFunc adapts a function to ReplySink.
type ReplySinkFunc func(Reply)

// Deliver calls f(r).
func (f ReplySinkFunc) Deliver(r Reply) { f(r) }
