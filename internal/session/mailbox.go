// internal/session/mailbox.go
//
// Unbounded queue for messages the dispatcher must never refuse.
// Responsibilities:
//   - Accept Wordle replies and fired timeouts without blocking the sender.
//   - Wake the dispatcher loop through a one-slot signal channel.
//
// Notes:
//   - The Wordle service loop delivers replies inline. If that call could
//     block on a full dispatcher inbox while the dispatcher blocks sending to
//     the service, both loops would stall.

package session

import "sync"

type mailbox struct {
	mu     sync.Mutex
	queue  []envelope
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

// push appends env and wakes the reader. It never blocks.
func (m *mailbox) push(env envelope) {
	m.mu.Lock()
	m.queue = append(m.queue, env)
	m.mu.Unlock()
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// take removes and returns everything queued so far, oldest first.
func (m *mailbox) take() []envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.queue
	m.queue = nil
	return q
}

func (m *mailbox) ready() <-chan struct{} { return m.signal }
