package interview

import model "github.com/zhouzirui/z-interview/internal/model/interview"

// EventKind names a progress notification.
type EventKind string

const (
	EventQuestion     EventKind = "question"
	EventResponse     EventKind = "response"
	EventQuestionDone EventKind = "question_done"
)

// Event reports progress of a running session. Events arrive in the same
// order as the session is assembled.
type Event struct {
	Kind       EventKind       `json:"event"`
	QuestionID int             `json:"question_id"`
	Question   string          `json:"question,omitempty"`
	Response   *model.Response `json:"response,omitempty"`
	Step       int             `json:"step"`
	TotalSteps int             `json:"total_steps"`
}

// Observer receives events synchronously on the run's goroutine.
type Observer func(Event)

func (o Observer) emit(e Event) {
	if o != nil {
		o(e)
	}
}
