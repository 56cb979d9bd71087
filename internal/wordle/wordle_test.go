package wordle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		guess     string
		correct   []int
		contained []int
	}{
		{"one letter off", "horse", "house", []int{0, 1, 3, 4}, []int{}},
		{"exact", "horse", "horse", []int{0, 1, 2, 3, 4}, []int{}},
		{"all misplaced", "abcde", "eabcd", []int{}, []int{0, 1, 2, 3, 4}},
		{"repeated guess letter counted once", "crane", "eerie", []int{4}, []int{2}},
		{"repeated letter present once", "apple", "papal", []int{2}, []int{0, 1, 4}},
		{"no overlap", "horse", "quilt", []int{}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, contained := Positions(Score(tt.answer, tt.guess))
			assert.Equal(t, tt.correct, correct)
			assert.Equal(t, tt.contained, contained)
		})
	}
}

func TestScoreLengthMismatch(t *testing.T) {
	marks := Score("horse", "hors")
	assert.Equal(t, []Mark{MarkMiss, MarkMiss, MarkMiss, MarkMiss}, marks)
}

func TestEventHasGuessed(t *testing.T) {
	assert.True(t, Event{Kind: EventWordChecked, CorrectPositions: []int{0, 1, 2, 3, 4}}.HasGuessed())
	assert.False(t, Event{Kind: EventWordChecked, CorrectPositions: []int{0, 1, 3, 4}}.HasGuessed())
	assert.False(t, Event{Kind: EventGameStarted}.HasGuessed())
}

func TestEventUserEvent(t *testing.T) {
	assert.Equal(t, game.StartSuccess(), Event{Kind: EventGameStarted}.UserEvent())
	ev := Event{Kind: EventWordChecked, CorrectPositions: []int{1}, ContainedInWord: []int{2}}.UserEvent()
	assert.Equal(t, game.EventCheckWordResult, ev.Kind)
	assert.Equal(t, []int{1}, ev.CorrectPositions)
	assert.Equal(t, []int{2}, ev.ContainedInWord)
}

func runService(t *testing.T, s *Service) <-chan Reply {
	t.Helper()
	replies := make(chan Reply, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx, ReplySinkFunc(func(r Reply) { replies <- r }))
	}()
	t.Cleanup(func() { cancel(); <-done })
	return replies
}

func awaitReply(t *testing.T, replies <-chan Reply) Reply {
	t.Helper()
	select {
	case r := <-replies:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no reply from wordle service")
		return Reply{}
	}
}

func TestServiceStartAndCheck(t *testing.T) {
	s := New("wordle", FixedPicker("horse"))
	replies := runService(t, s)
	ctx := context.Background()

	require.NoError(t, s.Send(ctx, Request{ID: "r1", To: "wordle", Kind: RequestStartGame, User: "alice"}))
	r := awaitReply(t, replies)
	assert.Equal(t, game.MessageID("r1"), r.InReplyTo)
	assert.Equal(t, game.Identity("wordle"), r.From)
	assert.Equal(t, EventGameStarted, r.Event.Kind)
	assert.Equal(t, game.Identity("alice"), r.Event.User)

	require.NoError(t, s.Send(ctx, Request{ID: "r2", To: "wordle", Kind: RequestCheckWord, User: "alice", Word: "house"}))
	r = awaitReply(t, replies)
	assert.Equal(t, game.MessageID("r2"), r.InReplyTo)
	assert.Equal(t, []int{0, 1, 3, 4}, r.Event.CorrectPositions)
	assert.Empty(t, r.Event.ContainedInWord)
	assert.False(t, r.Event.HasGuessed())
}

func TestServiceDropsCheckWithoutGame(t *testing.T) {
	s := New("wordle", FixedPicker("horse"))
	replies := runService(t, s)
	ctx := context.Background()

	require.NoError(t, s.Send(ctx, Request{ID: "r1", To: "wordle", Kind: RequestCheckWord, User: "bob", Word: "house"}))
	require.NoError(t, s.Send(ctx, Request{ID: "r2", To: "wordle", Kind: RequestStartGame, User: "bob"}))
	r := awaitReply(t, replies)
	assert.Equal(t, game.MessageID("r2"), r.InReplyTo)
}

func TestServiceDelay(t *testing.T) {
	s := New("wordle", FixedPicker("horse"), WithDelay(30*time.Millisecond))
	replies := runService(t, s)

	start := time.Now()
	require.NoError(t, s.Send(context.Background(), Request{ID: "r1", To: "wordle", Kind: RequestStartGame, User: "carol"}))
	awaitReply(t, replies)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestServiceRejectsWrongRecipient(t *testing.T) {
	s := New("wordle", FixedPicker("horse"))
	err := s.Send(context.Background(), Request{ID: "r1", To: "elsewhere", Kind: RequestStartGame, User: "dave"})
	assert.ErrorIs(t, err, ErrWrongRecipient)
}

func TestFixedPickerNormalizes(t *testing.T) {
	assert.Equal(t, "horse", FixedPicker(" HORSE ").Pick("x"))
}
