package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidWord(t *testing.T) {
	cases := map[string]bool{
		"house":  true,
		"horse":  true,
		"abcde":  true,
		"Abcde":  false,
		"HOUSE":  false,
		"hous":   false,
		"houses": false,
		"hou5e":  false,
		"":       false,
		"héllo":  false,
	}
	for w, want := range cases {
		assert.Equal(t, want, ValidWord(w), "word %q", w)
	}
}

func TestStatusWaiting(t *testing.T) {
	assert.True(t, StatusWaitingForStart.Waiting())
	assert.True(t, StatusWaitingForCheckReply.Waiting())
	assert.False(t, StatusInit.Waiting())
	assert.False(t, StatusWaitingForUserInput.Waiting())
	assert.False(t, StatusGameOver.Waiting())
}

func TestEventJSONKeepsEmptyPositions(t *testing.T) {
	b, err := CheckWordResult([]int{0, 1, 3, 4}, nil).MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"kind":"check_word_result","correctPositions":[0,1,3,4],"containedInWord":[]}`, string(b))

	b, err = GameOver(OutcomeWin).MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"kind":"game_over","outcome":"win"}`, string(b))
}
