// internal/session/errors.go
//
// Errors returned to callers of the dispatcher.
//   - protocol violations (nothing was changed)
//   - releases of parked invocations
//   - construction errors

package session

import "errors"

// Protocol violations. The invocation that produced one left no trace in the store.
var (
	ErrGameInProgress = errors.New("session: the user is already in a game")
	ErrNoActiveGame   = errors.New("session: the user is not in a game")
	ErrInvalidWord    = errors.New("session: word must be 5 lowercase letters")
)

// ErrSelfOnly rejects a CheckGameStatus not sent by the orchestrator itself.
var ErrSelfOnly = errors.New("session: game status checks are only accepted from the orchestrator")

var (
	// ErrSuperseded releases a parked invocation replaced by a newer one from the same user.
	ErrSuperseded = errors.New("session: superseded by a newer request")
	// ErrStopped is returned once the dispatcher is no longer running.
	ErrStopped = errors.New("session: dispatcher stopped")
)

// Configuration errors.
var (
	ErrNoService   = errors.New("session: wordle service identity is required")
	ErrSelfService = errors.New("session: wordle service identity must differ from the orchestrator's")
	ErrBadTimeout  = errors.New("session: timeout window must be positive")
)

// errSuspended marks an invocation parked awaiting a reply.
var errSuspended = errors.New("session: suspended")
