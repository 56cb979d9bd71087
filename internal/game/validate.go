package game

import "time"

// ValidWord reports whether w is exactly WordLength lowercase ASCII letters.
func ValidWord(w string) bool {
	if len(w) != WordLength {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}

// Result summarises a session that reached GameOver.
type Result struct {
	User       Identity
	SessionID  MessageID
	Outcome    Outcome
	Tries      int
	StartedAt  time.Time
	FinishedAt time.Time
}
