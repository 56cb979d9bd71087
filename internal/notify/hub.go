// internal/notify/hub.go
//
// Fan-out of out-of-band session events (e.g. a timeout loss) to the
// subscribers of a user. Subscribers are typically websocket streams.
//
// Notes:
//   - Notify never blocks: a subscriber whose buffer is full misses the event.
//   - Events for users with no subscriber are only logged.

package notify

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
)

const subscriberBuffer = 8

// Hub routes events to per-user subscribers.
type Hub struct {
	mu   sync.RWMutex
	next int
	subs map[game.Identity]map[int]chan game.Event
	log  zerolog.Logger
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[game.Identity]map[int]chan game.Event),
		log:  log.With().Str("component", "notify").Logger(),
	}
}

// Subscribe registers a listener for user. Call cancel to unsubscribe; the
// channel is closed afterwards.
func (h *Hub) Subscribe(user game.Identity) (events <-chan game.Event, cancel func()) {
	ch := make(chan game.Event, subscriberBuffer)

	h.mu.Lock()
	id := h.next
	h.next++
	if h.subs[user] == nil {
		h.subs[user] = make(map[int]chan game.Event)
	}
	h.subs[user][id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[user], id)
			if len(h.subs[user]) == 0 {
				delete(h.subs, user)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Notify delivers ev to every current subscriber of user.
func (h *Hub) Notify(user game.Identity, ev game.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs := h.subs[user]
	h.log.Info().Str("user", string(user)).Stringer("event", ev).Int("subscribers", len(subs)).Msg("notify")
	for id, ch := range subs {
		select {
		case ch <- ev:
		default:
			h.log.Warn().Str("user", string(user)).Int("subscriber", id).Msg("subscriber buffer full, event dropped")
		}
	}
}

// Subscribers returns the number of listeners for user.
func (h *Hub) Subscribers(user game.Identity) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[user])
}
