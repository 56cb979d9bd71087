// internal/session/correlator.go
//
// Parked invocations and their continuations.
// Responsibilities:
//   - Remember which invocation waits on which outbound request id.
//   - Resume it with the Wordle reply, or release it with an error when it
//     is superseded or the dispatcher stops.
//
// Notes:
//   - Only the dispatcher goroutine touches the correlator, so it has no lock.

package session

import (
	"context"
	"time"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
	"github.com/robalobadob/wordle/apps/game-session/internal/store"
	"github.com/robalobadob/wordle/apps/game-session/internal/wordle"
)

type result struct {
	event game.Event
	err   error
}

// invocation is one inbound message being handled. A parked invocation is
// the continuation of a suspended call; reply is filled in on resumption.
type invocation struct {
	id       game.MessageID
	source   game.Identity
	action   game.Action
	received time.Time
	reply    *wordle.Event
	done     chan result // nil for self-addressed messages
}

// resolve hands the outcome to the caller. Resolving twice is a no-op.
func (inv *invocation) resolve(ev game.Event, err error) {
	if inv.done == nil {
		return
	}
	inv.done <- result{event: ev, err: err}
	inv.done = nil
}

// correlator owns the parked invocations, keyed by the id of the outbound
// request each one is waiting on. Only the dispatcher goroutine touches it.
type correlator struct {
	sessions store.Store
	parked   map[game.MessageID]*invocation
}

func newCorrelator(sessions store.Store) *correlator {
	return &correlator{sessions: sessions, parked: make(map[game.MessageID]*invocation)}
}

func (c *correlator) park(requestID game.MessageID, inv *invocation) {
	c.parked[requestID] = inv
}

// release resolves and forgets the invocation waiting on requestID, if any.
func (c *correlator) release(requestID game.MessageID, ev game.Event, err error) bool {
	inv, ok := c.parked[requestID]
	if !ok {
		return false
	}
	delete(c.parked, requestID)
	inv.resolve(ev, err)
	return true
}

// match accepts a reply only if it answers the user's pending request while
// the session is still waiting, and the parked invocation is the one the
// session expects to resume. The matched invocation is returned carrying the
// reply; anything else is stale and yields false.
func (c *correlator) match(ctx context.Context, r wordle.Reply) (*invocation, bool) {
	rec, err := c.sessions.Get(ctx, r.Event.User)
	if err != nil {
		return nil, false
	}
	if r.InReplyTo != rec.PendingRequestID || !rec.Status.Waiting() {
		return nil, false
	}
	inv, ok := c.parked[r.InReplyTo]
	if !ok || inv.id != rec.OriginalMsgID {
		return nil, false
	}
	delete(c.parked, r.InReplyTo)
	ev := r.Event
	inv.reply = &ev
	return inv, true
}

// drain releases every parked invocation with err.
func (c *correlator) drain(err error) int {
	n := len(c.parked)
	for id, inv := range c.parked {
		delete(c.parked, id)
		inv.resolve(game.Event{}, err)
	}
	return n
}

func (c *correlator) len() int { return len(c.parked) }
