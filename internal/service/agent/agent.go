// Package agent runs one persona against a completion backend and keeps that
// persona's own turn history.
package agent

import (
	"context"
	"errors"
	"log"

	"github.com/zhouzirui/z-interview/internal/model/interview"
	"github.com/zhouzirui/z-interview/internal/model/persona"
	"github.com/zhouzirui/z-interview/internal/service/ai"
)

// DefaultHistoryLimit caps the retained turns when no limit is configured.
const DefaultHistoryLimit = 50

// Answer is the outcome of one Respond call. Err is set when Text is a placeholder.
type Answer struct {
	Text string
	Err  *ai.CompletionError
}

// Degraded reports whether the completion failed.
func (a Answer) Degraded() bool {
	return a.Err != nil
}

// Agent binds a persona identity to a completion client. It is not safe for
// concurrent use; the session manager drives agents sequentially.
type Agent struct {
	profile   persona.Persona
	completer ai.Completer
	settings  ai.Settings
	system    string
	limit     int
	history   []interview.Turn
}

type Option func(*Agent)

// WithHistoryLimit caps the number of retained turns; the oldest turns are dropped first.
func WithHistoryLimit(limit int) Option {
	return func(a *Agent) {
		if limit > 0 {
			a.limit = limit
		}
	}
}

// WithSystemPrompt overrides the generated system instructions.
func WithSystemPrompt(system string) Option {
	return func(a *Agent) {
		a.system = system
	}
}

// New creates an agent with empty history.
func New(profile persona.Persona, completer ai.Completer, settings ai.Settings, opts ...Option) *Agent {
	a := &Agent{
		profile:   profile,
		completer: completer,
		settings:  settings,
		limit:     DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.system == "" {
		a.system = ai.NewPromptBuilder("").BuildSystemPrompt(profile)
	}
	return a
}

// Name returns the persona identifier used in transcripts.
func (a *Agent) Name() string {
	return a.profile.Name
}

// Profile returns the persona identity.
func (a *Agent) Profile() persona.Persona {
	return a.profile
}

// Respond answers question once. It never returns an error: failures become a
// placeholder answer. Exactly one turn is appended to the history per call.
func (a *Agent) Respond(ctx context.Context, question string, peers []interview.PeerResponse) Answer {
	input := BuildContext(question, peers, a.history)

	var answer Answer
	text, err := a.complete(ctx, input)
	if err != nil {
		cerr := ai.Classify(err)
		answer = Answer{Text: cerr.Placeholder(), Err: cerr}
		log.Printf("[agent] persona=%s degraded kind=%s", a.profile.Name, cerr.Kind)
	} else {
		answer = Answer{Text: text}
	}

	a.saveTurn(question, answer.Text)
	return answer
}

func (a *Agent) complete(ctx context.Context, input string) (string, error) {
	if a.completer == nil {
		return "", errors.New("no completion client configured")
	}
	return a.completer.Complete(ctx, ai.CompletionRequest{
		System:   a.system,
		Input:    input,
		Settings: a.settings,
	})
}

func (a *Agent) saveTurn(question, response string) {
	a.history = append(a.history, interview.Turn{Question: question, Response: response})
	if over := len(a.history) - a.limit; over > 0 {
		a.history = append([]interview.Turn(nil), a.history[over:]...)
	}
}

// History returns a copy of the recorded turns, oldest first.
func (a *Agent) History() []interview.Turn {
	return append([]interview.Turn(nil), a.history...)
}

// Reset clears the history. Calling it repeatedly has no further effect.
func (a *Agent) Reset() {
	a.history = nil
}
