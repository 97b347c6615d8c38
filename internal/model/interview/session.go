package interview

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects whether personas see each other's answers within a round.
type Mode string

const (
	// ModeIndependent gives every persona an empty peer list.
	ModeIndependent Mode = "independent"
	// ModeConversational shows each persona the answers collected earlier in the same round.
	ModeConversational Mode = "conversational"
)

// ParseMode normalises a user-supplied mode name. Empty input selects independent mode.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeIndependent:
		return ModeIndependent, nil
	case ModeConversational:
		return ModeConversational, nil
	default:
		return "", fmt.Errorf("unknown session mode %q", raw)
	}
}

// Participant describes one persona taking part in a session.
type Participant struct {
	Name            string `json:"name"`
	Age             int    `json:"age"`
	Characteristics string `json:"characteristics"`
	Background      string `json:"background,omitempty"`
}

// QuestionResult holds one completed round.
type QuestionResult struct {
	QuestionID int        `json:"question_id"`
	Question   string     `json:"question"`
	Responses  []Response `json:"responses"`
}

// Session is the full transcript of one interview run.
type Session struct {
	Timestamp    time.Time        `json:"timestamp"`
	Participants []Participant    `json:"agents"`
	Questions    []QuestionResult `json:"interview_data"`
}

// ResponseCount returns the total and degraded number of responses.
func (s *Session) ResponseCount() (total, degraded int) {
	for _, q := range s.Questions {
		for _, r := range q.Responses {
			total++
			if r.Degraded() {
				degraded++
			}
		}
	}
	return total, degraded
}
