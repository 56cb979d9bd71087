// internal/session/timer.go
//
// Game timeouts.
// Responsibilities:
//   - Clock/Timer seam so tests can drive time by hand.
//   - One pending timeout per user, tagged with the session it belongs to.
//   - A fired timeout becomes a CheckGameStatus sent by the orchestrator to
//     itself and queued on the dispatcher's system mailbox.
//
// Notes:
//   - Starting a new game or finishing the current one stops the old timer.
//   - The entry is registered before the timer can fire, so a callback never
//     races its own bookkeeping.

package session

import (
	"sync"
	"time"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
)

// Clock is the time source the dispatcher schedules timeouts against.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time                            { return time.Now() }
func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock returns a Clock backed by the time package.
func RealClock() Clock { return realClock{} }

type armedTimeout struct {
	sessionID game.MessageID
	timer     Timer
}

type timeouts struct {
	clock   Clock
	window  time.Duration
	self    game.Identity
	deliver func(*invocation) error

	mu    sync.Mutex
	armed map[game.Identity]*armedTimeout
}

// arm schedules the timeout of user's session, replacing any earlier one.
func (t *timeouts) arm(user game.Identity, sessionID game.MessageID) {
	msg := game.CheckGameStatus{User: user, SessionID: sessionID}
	entry := &armedTimeout{sessionID: sessionID}

	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.armed[user]; ok {
		prev.timer.Stop()
	}
	// AfterFunc never runs f synchronously, so f blocks on t.mu until the
	// entry below is in place.
	entry.timer = t.clock.AfterFunc(t.window, func() {
		t.mu.Lock()
		if t.armed[user] == entry {
			delete(t.armed, user)
		}
		t.mu.Unlock()
		_ = t.deliver(&invocation{
			id:       game.NewMessageID(),
			source:   t.self,
			action:   msg,
			received: t.clock.Now(),
		})
	})
	t.armed[user] = entry
}

// cancel stops the timeout of user's session sessionID, if it is still pending.
func (t *timeouts) cancel(user game.Identity, sessionID game.MessageID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.armed[user]; ok && e.sessionID == sessionID {
		e.timer.Stop()
		delete(t.armed, user)
	}
}

// pending reports how many timeouts are armed.
func (t *timeouts) pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.armed)
}

// stopAll cancels every timer that has not fired yet.
func (t *timeouts) stopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for user, e := range t.armed {
		e.timer.Stop()
		delete(t.armed, user)
	}
}
