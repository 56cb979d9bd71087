// internal/session/dispatcher.go
//
// Session orchestrator.
// Responsibilities:
//   - Serialize every inbound message (user actions, Wordle replies, fired
//     timeouts) through a single actor goroutine.
//   - Drive the per-user state machine stored in the session store.
//   - Park an invocation after it sends a request to the Wordle service and
//     resume it when the correlated reply arrives.
//   - Arm a timeout per started game that forces GameOver(Lose) once the
//     window elapses, whether or not the Wordle service ever answered.
//
// Notes:
//   - Handlers validate before they mutate; a rejected invocation saves nothing.
//   - Stale replies and timeouts are dropped, never reported as errors.

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
	"github.com/robalobadob/wordle/apps/game-session/internal/store"
	"github.com/robalobadob/wordle/apps/game-session/internal/wordle"
)

// DefaultTimeoutTicks is how many ticks a started game may run before it is forced to a loss.
const DefaultTimeoutTicks = 200

// Config is fixed at construction and shared by every session.
type Config struct {
	Self         game.Identity // the orchestrator's own address
	Wordle       game.Identity // the Wordle service address
	Tick         time.Duration // length of one scheduling tick
	TimeoutTicks int           // defaults to DefaultTimeoutTicks
}

// Window is the delay between a start and its timeout check.
func (c Config) Window() time.Duration {
	return time.Duration(c.TimeoutTicks) * c.Tick
}

// Transport carries requests to the Wordle service.
type Transport interface {
	Send(ctx context.Context, req wordle.Request) error
}

// Notifier delivers events to a user outside of a direct reply.
type Notifier interface {
	Notify(user game.Identity, ev game.Event)
}

// Recorder is told about every session that reaches GameOver.
type Recorder interface {
	GameFinished(ctx context.Context, r game.Result) error
}

type envelope struct {
	inv   *invocation
	reply *wordle.Reply
}

// Dispatcher is the session orchestrator actor.
type Dispatcher struct {
	cfg       Config
	sessions  store.Store
	transport Transport
	pending   *correlator
	timeouts  *timeouts
	clock     Clock
	notifier  Notifier
	recorder  Recorder
	log       zerolog.Logger

	inbox   chan envelope // user invocations; bounded, callers wait for room
	system  *mailbox      // Wordle replies and fired timeouts; never blocks the sender
	stopped chan struct{}
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock replaces the real clock, mostly for tests.
func WithClock(c Clock) Option { return func(d *Dispatcher) { d.clock = c } }

// WithNotifier sets where out-of-band events (timeout losses) are sent.
func WithNotifier(n Notifier) Option { return func(d *Dispatcher) { d.notifier = n } }

// WithRecorder sets the sink for finished games.
func WithRecorder(r Recorder) Option { return func(d *Dispatcher) { d.recorder = r } }

// WithLogger overrides the dispatcher logger.
func WithLogger(l zerolog.Logger) Option { return func(d *Dispatcher) { d.log = l } }

// New validates cfg and constructs a Dispatcher. Call Run to start it.
func New(cfg Config, sessions store.Store, transport Transport, opts ...Option) (*Dispatcher, error) {
	if cfg.Self == "" {
		cfg.Self = "game-session"
	}
	if cfg.TimeoutTicks == 0 {
		cfg.TimeoutTicks = DefaultTimeoutTicks
	}
	switch {
	case cfg.Wordle == "":
		return nil, ErrNoService
	case cfg.Wordle == cfg.Self:
		return nil, ErrSelfService
	case cfg.Window() <= 0:
		return nil, fmt.Errorf("%w: %d ticks of %s", ErrBadTimeout, cfg.TimeoutTicks, cfg.Tick)
	}
	if sessions == nil || transport == nil {
		return nil, errors.New("session: store and transport are required")
	}

	d := &Dispatcher{
		cfg:       cfg,
		sessions:  sessions,
		transport: transport,
		pending:   newCorrelator(sessions),
		clock:     RealClock(),
		notifier:  logNotifier{},
		recorder:  nopRecorder{},
		log:       log.With().Str("component", "session").Logger(),
		inbox:     make(chan envelope, 1024),
		system:    newMailbox(),
		stopped:   make(chan struct{}),
	}
	for _, o := range opts {
		o(d)
	}
	d.timeouts = &timeouts{
		clock:   d.clock,
		window:  cfg.Window(),
		self:    cfg.Self,
		deliver: func(inv *invocation) error { return d.postSystem(envelope{inv: inv}) },
		armed:   make(map[game.Identity]*armedTimeout),
	}
	return d, nil
}

// Config returns the configuration the dispatcher runs with.
func (d *Dispatcher) Config() Config { return d.cfg }

// Run processes the inbox until ctx is cancelled. Parked invocations are
// released with ErrStopped on exit.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.log.Info().
		Str("self", string(d.cfg.Self)).
		Str("wordle", string(d.cfg.Wordle)).
		Dur("timeout", d.cfg.Window()).
		Msg("session dispatcher started")
	defer func() {
		close(d.stopped)
		d.timeouts.stopAll()
		n := d.pending.drain(ErrStopped)
		d.log.Info().Int("released", n).Msg("session dispatcher stopped")
	}()

	for {
		// Replies and timeouts are handled before user invocations.
		d.drainSystem(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-d.system.ready():
		case env := <-d.inbox:
			// Anything the system queue received before env was posted is older.
			d.drainSystem(ctx)
			d.handle(ctx, env)
		}
	}
}

func (d *Dispatcher) drainSystem(ctx context.Context) {
	for _, env := range d.system.take() {
		d.handle(ctx, env)
	}
}

func (d *Dispatcher) handle(ctx context.Context, env envelope) {
	if env.reply != nil {
		d.handleReply(ctx, *env.reply)
		return
	}
	d.dispatch(ctx, env.inv)
}

// ------------------------------ entry points --------------------------------

// StartGame starts (or restarts) the caller's game and waits for the confirmation.
func (d *Dispatcher) StartGame(ctx context.Context, user game.Identity) (game.Event, error) {
	return d.Send(ctx, user, game.StartGame{})
}

// CheckWord submits a guess and waits for its feedback or the game's outcome.
func (d *Dispatcher) CheckWord(ctx context.Context, user game.Identity, word string) (game.Event, error) {
	return d.Send(ctx, user, game.CheckWord{Word: word})
}

// Send posts action from the given sender and waits until it is answered,
// rejected, or ctx ends. A cancelled caller does not cancel the invocation.
func (d *Dispatcher) Send(ctx context.Context, from game.Identity, action game.Action) (game.Event, error) {
	done := make(chan result, 1)
	inv := &invocation{
		id:       game.NewMessageID(),
		source:   from,
		action:   action,
		received: d.clock.Now(),
		done:     done,
	}
	if err := d.post(ctx, envelope{inv: inv}); err != nil {
		return game.Event{}, err
	}
	select {
	case r := <-done:
		return r.event, r.err
	case <-ctx.Done():
		return game.Event{}, ctx.Err()
	case <-d.stopped:
		select {
		case r := <-done:
			return r.event, r.err
		default:
			return game.Event{}, ErrStopped
		}
	}
}

// Deliver hands a Wordle service reply to the dispatcher. It implements
// wordle.ReplySink and never blocks, so the service loop cannot stall on a
// busy dispatcher.
func (d *Dispatcher) Deliver(r wordle.Reply) {
	if err := d.postSystem(envelope{reply: &r}); err != nil {
		d.log.Debug().Err(err).Str("request_id", string(r.InReplyTo)).Msg("reply dropped")
	}
}

// State returns a read-only snapshot of every session.
func (d *Dispatcher) State(ctx context.Context) (map[game.Identity]game.Session, error) {
	return d.sessions.Snapshot(ctx)
}

// Session returns the record for one user; a user never seen gets the default record.
func (d *Dispatcher) Session(ctx context.Context, user game.Identity) (game.Session, error) {
	return d.load(ctx, user)
}

func (d *Dispatcher) post(ctx context.Context, env envelope) error {
	select {
	case <-d.stopped:
		return ErrStopped
	default:
	}
	select {
	case d.inbox <- env:
		return nil
	case <-d.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// postSystem queues a reply or timeout without waiting.
func (d *Dispatcher) postSystem(env envelope) error {
	select {
	case <-d.stopped:
		return ErrStopped
	default:
	}
	d.system.push(env)
	return nil
}

// ------------------------------ state machine -------------------------------

func (d *Dispatcher) dispatch(ctx context.Context, inv *invocation) {
	var (
		ev  game.Event
		err error
	)
	switch a := inv.action.(type) {
	case game.StartGame:
		ev, err = d.startGame(ctx, inv)
	case game.CheckWord:
		ev, err = d.checkWord(ctx, inv, a.Word)
	case game.CheckGameStatus:
		err = d.checkGameStatus(ctx, inv, a)
	default:
		err = fmt.Errorf("session: unknown action %T", inv.action)
	}

	l := d.log.With().
		Str("user", string(inv.source)).
		Str("msg_id", string(inv.id)).
		Str("action", game.ActionName(inv.action)).
		Logger()
	switch {
	case errors.Is(err, errSuspended):
		l.Debug().Bool("resumed", inv.reply != nil).Msg("suspended")
		return
	case err != nil:
		l.Info().Err(err).Msg("rejected")
	default:
		l.Debug().Stringer("event", ev).Msg("replied")
	}
	inv.resolve(ev, err)
}

func (d *Dispatcher) startGame(ctx context.Context, inv *invocation) (game.Event, error) {
	user := inv.source
	rec, err := d.load(ctx, user)
	if err != nil {
		return game.Event{}, err
	}

	if inv.reply != nil {
		rec.Status = game.StatusWaitingForUserInput
		if err := d.save(ctx, user, rec); err != nil {
			return game.Event{}, err
		}
		return inv.reply.UserEvent(), nil
	}

	switch rec.Status {
	case game.StatusWaitingForUserInput, game.StatusWaitingForCheckReply:
		return game.Event{}, ErrGameInProgress
	}

	reqID, err := d.request(ctx, wordle.RequestStartGame, user, "")
	if err != nil {
		return game.Event{}, err
	}
	var superseded game.MessageID
	if rec.Status == game.StatusWaitingForStart {
		superseded = rec.PendingRequestID
	}
	rec = game.Session{
		SessionID:        inv.id,
		OriginalMsgID:    inv.id,
		PendingRequestID: reqID,
		Tries:            0,
		Status:           game.StatusWaitingForStart,
		StartedAt:        inv.received,
	}
	if err := d.save(ctx, user, rec); err != nil {
		return game.Event{}, err
	}
	if superseded != "" {
		d.pending.release(superseded, game.Event{}, ErrSuperseded)
	}
	d.pending.park(reqID, inv)
	d.timeouts.arm(user, inv.id)
	return game.Event{}, errSuspended
}

func (d *Dispatcher) checkWord(ctx context.Context, inv *invocation, word string) (game.Event, error) {
	user := inv.source
	if inv.reply != nil {
		return d.scoreReply(ctx, inv)
	}
	if !game.ValidWord(word) {
		return game.Event{}, fmt.Errorf("%w: %q", ErrInvalidWord, word)
	}

	rec, err := d.load(ctx, user)
	if err != nil {
		return game.Event{}, err
	}
	switch rec.Status {
	case game.StatusWaitingForUserInput, game.StatusWaitingForCheckReply:
	default:
		return game.Event{}, ErrNoActiveGame
	}

	reqID, err := d.request(ctx, wordle.RequestCheckWord, user, word)
	if err != nil {
		return game.Event{}, err
	}
	var superseded game.MessageID
	if rec.Status == game.StatusWaitingForCheckReply {
		superseded = rec.PendingRequestID
	}
	rec.OriginalMsgID = inv.id
	rec.PendingRequestID = reqID
	rec.Status = game.StatusWaitingForCheckReply
	if err := d.save(ctx, user, rec); err != nil {
		return game.Event{}, err
	}
	if superseded != "" {
		d.pending.release(superseded, game.Event{}, ErrSuperseded)
	}
	d.pending.park(reqID, inv)
	return game.Event{}, errSuspended
}

// scoreReply consumes the Wordle feedback a resumed CheckWord was waiting for.
func (d *Dispatcher) scoreReply(ctx context.Context, inv *invocation) (game.Event, error) {
	user := inv.source
	rec, err := d.load(ctx, user)
	if err != nil {
		return game.Event{}, err
	}

	rec.Tries++
	var ev game.Event
	switch {
	case inv.reply.HasGuessed():
		rec.Status, rec.Outcome = game.StatusGameOver, game.OutcomeWin
		ev = game.GameOver(game.OutcomeWin)
	case rec.Tries >= game.TriesLimit:
		rec.Status, rec.Outcome = game.StatusGameOver, game.OutcomeLose
		ev = game.GameOver(game.OutcomeLose)
	default:
		rec.Status = game.StatusWaitingForUserInput
		ev = inv.reply.UserEvent()
	}
	if err := d.save(ctx, user, rec); err != nil {
		return game.Event{}, err
	}
	if rec.Finished() {
		d.finished(ctx, user, rec)
	}
	return ev, nil
}

// checkGameStatus handles a fired timeout. Only the orchestrator may send it.
func (d *Dispatcher) checkGameStatus(ctx context.Context, inv *invocation, a game.CheckGameStatus) error {
	l := d.log.With().Str("user", string(a.User)).Str("session_id", string(a.SessionID)).Logger()
	if inv.source != d.cfg.Self {
		l.Warn().Str("source", string(inv.source)).Msg("timeout check from foreign sender ignored")
		return fmt.Errorf("%w: %s", ErrSelfOnly, inv.source)
	}
	rec, err := d.sessions.Get(ctx, a.User)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if rec.SessionID != a.SessionID || rec.Finished() {
		l.Debug().Str("status", string(rec.Status)).Msg("stale timeout")
		return nil
	}

	var parked game.MessageID
	if rec.Status.Waiting() {
		parked = rec.PendingRequestID
	}
	rec.Status, rec.Outcome = game.StatusGameOver, game.OutcomeLose
	if err := d.save(ctx, a.User, rec); err != nil {
		return err
	}
	ev := game.GameOver(game.OutcomeLose)
	l.Info().Int("tries", rec.Tries).Msg("session timed out")
	d.notifier.Notify(a.User, ev)
	if parked != "" {
		d.pending.release(parked, ev, nil)
	}
	d.finished(ctx, a.User, rec)
	return nil
}

// handleReply resumes the invocation a Wordle reply belongs to, or drops it.
func (d *Dispatcher) handleReply(ctx context.Context, r wordle.Reply) {
	l := d.log.With().
		Str("user", string(r.Event.User)).
		Str("request_id", string(r.InReplyTo)).
		Logger()
	if r.From != d.cfg.Wordle {
		l.Warn().Str("from", string(r.From)).Msg("reply from unexpected sender dropped")
		return
	}
	inv, ok := d.pending.match(ctx, r)
	if !ok {
		l.Debug().Msg("stale reply dropped")
		return
	}
	d.dispatch(ctx, inv)
}

// ---------------------------------- helpers ---------------------------------

func (d *Dispatcher) request(ctx context.Context, kind wordle.RequestKind, user game.Identity, word string) (game.MessageID, error) {
	req := wordle.Request{
		ID:   game.NewMessageID(),
		From: d.cfg.Self,
		To:   d.cfg.Wordle,
		Kind: kind,
		User: user,
		Word: word,
	}
	if err := d.transport.Send(ctx, req); err != nil {
		return "", fmt.Errorf("session: send %s: %w", kind, err)
	}
	return req.ID, nil
}

func (d *Dispatcher) load(ctx context.Context, user game.Identity) (game.Session, error) {
	rec, err := d.sessions.Get(ctx, user)
	if errors.Is(err, store.ErrNotFound) {
		return game.NewSession(), nil
	}
	if err != nil {
		return game.Session{}, fmt.Errorf("session: load %s: %w", user, err)
	}
	return rec, nil
}

func (d *Dispatcher) save(ctx context.Context, user game.Identity, rec game.Session) error {
	if err := d.sessions.Save(ctx, user, rec); err != nil {
		return fmt.Errorf("session: save %s: %w", user, err)
	}
	return nil
}

func (d *Dispatcher) finished(ctx context.Context, user game.Identity, rec game.Session) {
	d.timeouts.cancel(user, rec.SessionID)
	r := game.Result{
		User:       user,
		SessionID:  rec.SessionID,
		Outcome:    rec.Outcome,
		Tries:      rec.Tries,
		StartedAt:  rec.StartedAt,
		FinishedAt: d.clock.Now(),
	}
	if err := d.recorder.GameFinished(ctx, r); err != nil {
		d.log.Warn().Err(err).Str("user", string(user)).Msg("record finished game")
	}
}

type logNotifier struct{}

func (logNotifier) Notify(user game.Identity, ev game.Event) {
	log.Info().Str("user", string(user)).Stringer("event", ev).Msg("notification")
}

type nopRecorder struct{}

func (nopRecorder) GameFinished(context.Context, game.Result) error { return nil }
