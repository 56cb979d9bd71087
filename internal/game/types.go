// internal/game/types.go
//
// Core type definitions for the game-session protocol.
// Defines:
//   - Identity / MessageID: actor addresses and message identifiers.
//   - Status / Outcome: per-session state machine values.
//   - Session: the per-user record owned by the session store.
//   - Action / Event: what users send in and what they get back.

package game

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TriesLimit is the number of guesses a single game allows.
const TriesLimit = 5

// WordLength is the required length of every guess.
const WordLength = 5

// Identity addresses an actor: a user, the orchestrator, or the Wordle service.
type Identity string

// MessageID identifies a single message; replies point back at one.
type MessageID string

// NewMessageID returns a fresh random message identifier.
func NewMessageID() MessageID { return MessageID(uuid.NewString()) }

// Status is the steady-state phase of a session.
type Status string

const (
	StatusInit                 Status = "init"
	StatusWaitingForStart      Status = "waiting_for_start"
	StatusWaitingForUserInput  Status = "waiting_for_user_input"
	StatusWaitingForCheckReply Status = "waiting_for_check_reply"
	StatusGameOver             Status = "game_over"
)

// Waiting reports whether a request to the Wordle service is outstanding.
func (s Status) Waiting() bool {
	return s == StatusWaitingForStart || s == StatusWaitingForCheckReply
}

// Outcome is the result of a finished game.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
)

// Session holds the state of one user's game.
type Session struct {
	SessionID        MessageID `json:"sessionId"`        // message that (re)started the current game
	OriginalMsgID    MessageID `json:"originalMsgId"`    // invocation parked awaiting a reply
	PendingRequestID MessageID `json:"pendingRequestId"` // request the correlator will accept a reply for
	Tries            int       `json:"tries"`
	Status           Status    `json:"status"`
	Outcome          Outcome   `json:"outcome,omitempty"` // set only when Status is StatusGameOver
	StartedAt        time.Time `json:"startedAt,omitempty"`
}

// NewSession returns the default record for a user seen for the first time.
func NewSession() Session { return Session{Status: StatusInit} }

// Finished reports whether the session is in a terminal state.
func (s Session) Finished() bool { return s.Status == StatusGameOver }

// --------------------------------- actions ---------------------------------

// Action is a message a user (or the orchestrator itself) sends in.
type Action interface{ actionName() string }

// StartGame asks for a new game.
type StartGame struct{}

// CheckWord submits a guess.
type CheckWord struct {
	Word string `json:"word"`
}

// CheckGameStatus is the delayed self-message that bounds a session's lifetime.
type CheckGameStatus struct {
	User      Identity  `json:"user"`
	SessionID MessageID `json:"sessionId"`
}

func (StartGame) actionName() string       { return "start_game" }
func (CheckWord) actionName() string       { return "check_word" }
func (CheckGameStatus) actionName() string { return "check_game_status" }

// ActionName returns a short label for logging.
func ActionName(a Action) string {
	if a == nil {
		return "none"
	}
	return a.actionName()
}

// --------------------------------- events ----------------------------------

// EventKind discriminates the events delivered to a user.
type EventKind string

const (
	EventStartSuccess    EventKind = "start_success"
	EventCheckWordResult EventKind = "check_word_result"
	EventGameOver        EventKind = "game_over"
)

// Event is what a user receives as a reply or notification.
type Event struct {
	Kind             EventKind `json:"kind"`
	CorrectPositions []int     `json:"correctPositions,omitempty"`
	ContainedInWord  []int     `json:"containedInWord,omitempty"`
	Outcome          Outcome   `json:"outcome,omitempty"`
}

// StartSuccess confirms a started game.
func StartSuccess() Event { return Event{Kind: EventStartSuccess} }

// CheckWordResult carries positional feedback for a guess.
func CheckWordResult(correct, contained []int) Event {
	return Event{Kind: EventCheckWordResult, CorrectPositions: correct, ContainedInWord: contained}
}

// GameOver reports a finished game.
func GameOver(o Outcome) Event { return Event{Kind: EventGameOver, Outcome: o} }

func (e Event) String() string {
	switch e.Kind {
	case EventCheckWordResult:
		return fmt.Sprintf("check_word_result(correct=%v contained=%v)", e.CorrectPositions, e.ContainedInWord)
	case EventGameOver:
		return "game_over(" + string(e.Outcome) + ")"
	default:
		return string(e.Kind)
	}
}

// MarshalJSON keeps empty position lists as [] rather than dropping them for feedback events.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	if e.Kind != EventCheckWordResult {
		return json.Marshal(alias(e))
	}
	out := struct {
		Kind             EventKind `json:"kind"`
		CorrectPositions []int     `json:"correctPositions"`
		ContainedInWord  []int     `json:"containedInWord"`
	}{e.Kind, nonNil(e.CorrectPositions), nonNil(e.ContainedInWord)}
	return json.Marshal(out)
}

func nonNil(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
