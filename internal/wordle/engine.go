// internal/wordle/engine.go
//
// Scoring for the Wordle service.
// Responsibilities:
//   - Score guesses using the classic two‑pass Wordle algorithm.
//   - Project per-letter marks into the positional feedback the
//     orchestrator forwards to users (correct / contained indices).
//
// Notes:
//   - Inputs are validated to 5 lowercase letters by the orchestrator;
//     Score still tolerates mismatched lengths by scoring nothing.
package wordle

// Mark represents the evaluation result for a single letter in a guess.
type Mark string

const (
	MarkHit     Mark = "hit"
	MarkPresent Mark = "present"
	MarkMiss    Mark = "miss"
)

// Score implements the standard Wordle two‑pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as Hit.
//   - Count remaining (non‑hit) answer letters.
//
// Pass 2:
//   - For each non‑hit guess letter: if there is remaining count for that letter,
//     mark Present and decrement the count; otherwise mark Miss.
func Score(answer, guess string) []Mark {
	n := len(guess)
	res := make([]Mark, n)
	if len(answer) != n {
		for i := range res {
			res[i] = MarkMiss
		}
		return res
	}

	var counts [256]int
	for i := 0; i < n; i++ {
		if guess[i] == answer[i] {
			res[i] = MarkHit
		} else {
			counts[answer[i]]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == MarkHit {
			continue
		}
		if c := guess[i]; counts[c] > 0 {
			res[i] = MarkPresent
			counts[c]--
		} else {
			res[i] = MarkMiss
		}
	}
	return res
}

// Positions splits marks into the indices that are correctly placed and
// the indices whose letter occurs elsewhere in the answer.
func Positions(marks []Mark) (correct, contained []int) {
	correct, contained = []int{}, []int{}
	for i, m := range marks {
		switch m {
		case MarkHit:
			correct = append(correct, i)
		case MarkPresent:
			contained = append(contained, i)
		}
	}
	return correct, contained
}
