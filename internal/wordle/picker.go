// internal/wordle/picker.go
//
// Secret word selection.
// Responsibilities:
//   - RandomPicker: uniform pick from the answer list.
//   - FixedPicker: always the same word (tests, demos).
//   - DailyPicker: one word per UTC day, shared by every user.

package wordle

import (
	"strings"
	"time"

	"github.com/robalobadob/wordle/apps/game-session/internal/daily"
	"github.com/robalobadob/wordle/apps/game-session/internal/game"
	"github.com/robalobadob/wordle/apps/game-session/internal/words"
)

// Picker chooses the secret word for a user's new game.
type Picker interface {
	Pick(user game.Identity) string
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(user game.Identity) string

// Pick calls f(user).
func (f PickerFunc) Pick(user game.Identity) string { return f(user) }

// RandomPicker draws from the loaded answers list.
func RandomPicker() Picker {
	return PickerFunc(func(game.Identity) string { return words.RandomAnswer() })
}

// FixedPicker always returns word.
func FixedPicker(word string) Picker {
	word = strings.ToLower(strings.TrimSpace(word))
	return PickerFunc(func(game.Identity) string { return word })
}

// DailyPicker gives every user the same answer for a given UTC day.
// now defaults to time.Now.
func DailyPicker(salt string, now func() time.Time) Picker {
	if now == nil {
		now = time.Now
	}
	return PickerFunc(func(game.Identity) string {
		if w := daily.Word(now(), salt, words.Answers()); w != "" {
			return w
		}
		return words.RandomAnswer()
	})
}
