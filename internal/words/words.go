// internal/words/words.go
//
// Provides word list management for the Wordle service.
//
// Responsibilities:
//   - Load answer and allowed guess lists from configured files or fall back to embedded defaults.
//   - Maintain sets for quick lookups (answers only, answers∪guesses).
//   - Supply utility functions like RandomAnswer, IsAllowed, IsAnswer, and Stats.
//
// Initialization behavior (Init):
//   1. If both AnswersFile and AllowedFile are set,
//      load answers from the first and allowed guesses from the second.
//   2. If only AllowedFile is set,
//      load that file and use it for both answers and allowed guesses.
//   3. Otherwise fall back to the lists embedded in the assets package.
//
// Constraints:
//   • Words must be 5 alphabetic letters (a–z).
//   • Lists are normalized to lowercase.
//   • Initialization is run once (sync.Once).

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/wordle/apps/game-session/assets"
	"github.com/robalobadob/wordle/apps/game-session/internal/game"
)

// Files names optional on-disk word lists.
type Files struct {
	AnswersFile string
	AllowedFile string
}

var (
	initOnce   sync.Once
	answers    []string            // canonical answers
	allowedSet map[string]struct{} // answers ∪ guesses
	answersSet map[string]struct{} // answers only
	initialErr error
)

// Init loads word lists exactly once.
// Returns an error if the answers list ends up empty.
func Init(files Files) error {
	initOnce.Do(func() {
		ansList, allowList, err := load(files)
		if err != nil {
			initialErr = err
			return
		}

		answers = ansList
		answersSet = toSet(ansList)

		// Ensure all answers are also marked as allowed
		allowedSet = toSet(ansList)
		for _, w := range allowList {
			allowedSet[w] = struct{}{}
		}

		if len(answers) == 0 {
			initialErr = errors.New("words: answers list is empty")
		}
	})
	return initialErr
}

func load(files Files) (ansList, allowList []string, err error) {
	switch {
	case files.AnswersFile != "" && files.AllowedFile != "":
		if ansList, err = readWordFile(files.AnswersFile); err != nil {
			return nil, nil, err
		}
		if allowList, err = readWordFile(files.AllowedFile); err != nil {
			return nil, nil, err
		}
	case files.AllowedFile != "":
		if allowList, err = readWordFile(files.AllowedFile); err != nil {
			return nil, nil, err
		}
		ansList = allowList
	default:
		raw, err := assets.AnswersList()
		if err != nil {
			return nil, nil, fmt.Errorf("words: embedded answers: %w", err)
		}
		ansList = normalize(raw)
		raw, err = assets.AllowedList()
		if err != nil {
			return nil, nil, fmt.Errorf("words: embedded allowed: %w", err)
		}
		allowList = normalize(raw)
	}
	return ansList, allowList, nil
}

// readWordFile loads one word per line from a file,
// lowercases, trims, and keeps only valid 5-letter alphabetic words.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: %w", err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return normalize(lines), sc.Err()
}

// normalize lowercases and trims each entry, dropping anything that is not a valid word.
func normalize(lines []string) []string {
	var out []string
	for _, line := range lines {
		w := strings.TrimSpace(strings.ToLower(line))
		if game.ValidWord(w) {
			out = append(out, w)
		}
	}
	return out
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// Answers returns the canonical answer list (all lowercase).
func Answers() []string { return answers }

// RandomAnswer returns a cryptographically random answer from the answers list.
// If answers are not loaded yet or empty, falls back to "crane".
func RandomAnswer() string {
	if len(answers) == 0 {
		return "crane"
	}
	nBig, _ := rand.Int(rand.Reader, big.NewInt(int64(len(answers))))
	return answers[nBig.Int64()]
}

// IsAllowed reports whether w is a valid guess (answers ∪ guesses).
func IsAllowed(w string) bool {
	_, ok := allowedSet[strings.ToLower(w)]
	return ok
}

// IsAnswer reports whether w is an answer word.
func IsAnswer(w string) bool {
	_, ok := answersSet[strings.ToLower(w)]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func Stats() (answersCount int, allowedCount int) {
	return len(answers), len(allowedSet)
}
