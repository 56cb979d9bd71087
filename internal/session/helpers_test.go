package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
	"github.com/robalobadob/wordle/apps/game-session/internal/store"
	"github.com/robalobadob/wordle/apps/game-session/internal/wordle"
)

const (
	selfID   game.Identity = "game-session"
	wordleID game.Identity = "wordle"
	testTick               = time.Second
)

var testWindow = DefaultTimeoutTicks * testTick

// --- manual clock ---

type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	c       *manualClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{c: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs every timer that became due, in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

// live counts timers that are neither stopped nor fired.
func (c *manualClock) live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// --- scripted wordle transport ---

type fakeTransport struct {
	mu   sync.Mutex
	err  error
	reqs chan wordle.Request
}

func (f *fakeTransport) Send(ctx context.Context, req wordle.Request) error {
	f.mu.Lock()
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.reqs <- req
	return nil
}

func (f *fakeTransport) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// --- notifier / recorder ---

type notification struct {
	user  game.Identity
	event game.Event
}

type chanNotifier chan notification

func (c chanNotifier) Notify(user game.Identity, ev game.Event) { c <- notification{user, ev} }

type chanRecorder chan game.Result

func (c chanRecorder) GameFinished(_ context.Context, r game.Result) error {
	c <- r
	return nil
}

// --- harness ---

type harness struct {
	d         *Dispatcher
	sessions  store.Store
	clock     *manualClock
	transport *fakeTransport
	notes     chanNotifier
	results   chanRecorder
	stop      func()
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sessions:  store.NewMemoryStore(),
		clock:     newManualClock(),
		transport: &fakeTransport{reqs: make(chan wordle.Request, 64)},
		notes:     make(chanNotifier, 16),
		results:   make(chanRecorder, 16),
	}
	d, err := New(
		Config{Self: selfID, Wordle: wordleID, Tick: testTick},
		h.sessions,
		h.transport,
		WithClock(h.clock),
		WithNotifier(h.notes),
		WithRecorder(h.results),
		WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)
	h.d = d

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()
	var once sync.Once
	h.stop = func() { once.Do(func() { cancel(); <-done }) }
	t.Cleanup(h.stop)
	return h
}

type callResult struct {
	event game.Event
	err   error
}

// call sends action asynchronously; the returned channel yields its result.
func (h *harness) call(user game.Identity, action game.Action) <-chan callResult {
	ch := make(chan callResult, 1)
	go func() {
		ev, err := h.d.Send(context.Background(), user, action)
		ch <- callResult{ev, err}
	}()
	return ch
}

func await(t *testing.T, ch <-chan callResult) callResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("call did not complete")
		return callResult{}
	}
}

func assertPending(t *testing.T, ch <-chan callResult) {
	t.Helper()
	select {
	case r := <-ch:
		t.Fatalf("call completed unexpectedly: %+v", r)
	case <-time.After(20 * time.Millisecond):
	}
}

func (h *harness) nextRequest(t *testing.T) wordle.Request {
	t.Helper()
	select {
	case r := <-h.transport.reqs:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no request reached the wordle service")
		return wordle.Request{}
	}
}

func (h *harness) assertNoRequest(t *testing.T) {
	t.Helper()
	select {
	case r := <-h.transport.reqs:
		t.Fatalf("unexpected request to wordle service: %+v", r)
	default:
	}
}

func (h *harness) reply(req wordle.Request, ev wordle.Event) {
	h.d.Deliver(wordle.Reply{ID: game.NewMessageID(), From: wordleID, InReplyTo: req.ID, Event: ev})
}

func started(user game.Identity) wordle.Event {
	return wordle.Event{Kind: wordle.EventGameStarted, User: user}
}

func checked(user game.Identity, correct, contained []int) wordle.Event {
	return wordle.Event{Kind: wordle.EventWordChecked, User: user, CorrectPositions: correct, ContainedInWord: contained}
}

// startGame runs a full start round trip for user.
func (h *harness) startGame(t *testing.T, user game.Identity) {
	t.Helper()
	ch := h.call(user, game.StartGame{})
	req := h.nextRequest(t)
	h.reply(req, started(user))
	r := await(t, ch)
	require.NoError(t, r.err)
	require.Equal(t, game.StartSuccess(), r.event)
}

// sync returns once every message queued before it has been processed.
func (h *harness) sync(t *testing.T) {
	t.Helper()
	r := await(t, h.call("outsider", game.CheckGameStatus{User: "outsider"}))
	require.ErrorIs(t, r.err, ErrSelfOnly)
}

func (h *harness) session(t *testing.T, user game.Identity) game.Session {
	t.Helper()
	s, err := h.sessions.Get(context.Background(), user)
	require.NoError(t, err)
	return s
}
