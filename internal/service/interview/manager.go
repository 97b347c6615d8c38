// Package interview drives a panel of persona agents through an ordered
// question list and assembles the session transcript.
package interview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	model "github.com/zhouzirui/z-interview/internal/model/interview"
	"github.com/zhouzirui/z-interview/internal/model/persona"
	"github.com/zhouzirui/z-interview/internal/service/agent"
	"github.com/zhouzirui/z-interview/internal/service/ai"
)

// AllParticipants selects the whole roster.
const AllParticipants = "all"

// Request describes one run.
type Request struct {
	// Participants lists persona names; empty or "all" selects the whole roster.
	Participants []string
	Questions    []string
	Mode         model.Mode
}

// Manager runs interview sessions. It keeps no per-run state, so concurrent
// runs do not share agents or history.
type Manager struct {
	personas     persona.Store
	completer    ai.Completer
	settings     ai.Settings
	prompts      *ai.PromptBuilder
	historyLimit int
	credential   func() error
	observer     Observer
	now          func() time.Time
}

type Option func(*Manager)

// WithCredentialCheck installs a check that must pass before any model call.
func WithCredentialCheck(check func() error) Option {
	return func(m *Manager) {
		m.credential = check
	}
}

// WithObserver installs a default observer for every run.
func WithObserver(observer Observer) Option {
	return func(m *Manager) {
		m.observer = observer
	}
}

// WithHistoryLimit caps each agent's retained turns.
func WithHistoryLimit(limit int) Option {
	return func(m *Manager) {
		if limit > 0 {
			m.historyLimit = limit
		}
	}
}

// WithPromptBuilder replaces the system prompt renderer.
func WithPromptBuilder(builder *ai.PromptBuilder) Option {
	return func(m *Manager) {
		if builder != nil {
			m.prompts = builder
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager wires a persona roster to a completion client.
func NewManager(personas persona.Store, completer ai.Completer, settings ai.Settings, opts ...Option) (*Manager, error) {
	if personas == nil {
		return nil, errors.New("persona store is nil")
	}
	if completer == nil {
		return nil, errors.New("completion client is nil")
	}

	m := &Manager{
		personas:     personas,
		completer:    completer,
		settings:     settings,
		prompts:      ai.NewPromptBuilder(""),
		historyLimit: agent.DefaultHistoryLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Roster returns the configured personas in their stable order.
func (m *Manager) Roster() []persona.Persona {
	return m.personas.List()
}

// CheckCredential runs the configured credential check, if any.
func (m *Manager) CheckCredential() error {
	if m.credential == nil {
		return nil
	}
	if err := m.credential(); err != nil {
		return newError(ErrorInvalidCredential, "credential_rejected", err)
	}
	return nil
}

// Run executes a session with the manager's default observer.
func (m *Manager) Run(ctx context.Context, req Request) (*model.Session, error) {
	return m.RunWithObserver(ctx, req, m.observer)
}

// RunWithObserver executes a session and reports progress to observer.
// Preconditions are checked before any model call. Degraded responses do not
// abort the run; cancellation does, and the partial session is discarded.
func (m *Manager) RunWithObserver(ctx context.Context, req Request, observer Observer) (*model.Session, error) {
	if err := m.CheckCredential(); err != nil {
		return nil, err
	}

	mode := req.Mode
	if mode == "" {
		mode = model.ModeIndependent
	}
	if mode != model.ModeIndependent && mode != model.ModeConversational {
		return nil, newError(ErrorInvalidMode, "unknown_mode", fmt.Errorf("mode %q", req.Mode))
	}

	if err := ValidateQuestions(req.Questions); err != nil {
		return nil, newError(ErrorInvalidQuestions, "invalid_question_list", err)
	}

	selected, err := m.selectParticipants(req.Participants)
	if err != nil {
		return nil, err
	}

	agents := make([]*agent.Agent, 0, len(selected))
	participants := make([]model.Participant, 0, len(selected))
	for _, p := range selected {
		agents = append(agents, agent.New(p, m.completer, m.settings,
			agent.WithHistoryLimit(m.historyLimit),
			agent.WithSystemPrompt(m.prompts.BuildSystemPrompt(p)),
		))
		participants = append(participants, model.Participant{
			Name:            p.Name,
			Age:             p.Age,
			Characteristics: p.Characteristics,
			Background:      p.Background,
		})
	}

	session := &model.Session{
		Timestamp:    m.now(),
		Participants: participants,
		Questions:    make([]model.QuestionResult, 0, len(req.Questions)),
	}
	log.Printf("[interview] start mode=%s participants=%d questions=%d", mode, len(agents), len(req.Questions))

	total := len(agents) * len(req.Questions)
	step := 0
	for i, question := range req.Questions {
		questionID := i + 1
		observer.emit(Event{Kind: EventQuestion, QuestionID: questionID, Question: question, Step: step, TotalSteps: total})

		round := make([]model.Response, 0, len(agents))
		var peers []model.PeerResponse
		for _, a := range agents {
			if err := ctx.Err(); err != nil {
				log.Printf("[interview] interrupted at question=%d persona=%s", questionID, a.Name())
				return nil, newError(ErrorInterrupted, "cancelled", err)
			}

			var visible []model.PeerResponse
			if mode == model.ModeConversational {
				visible = append([]model.PeerResponse(nil), peers...)
			}

			answer := a.Respond(ctx, question, visible)
			if err := ctx.Err(); err != nil {
				log.Printf("[interview] interrupted at question=%d persona=%s", questionID, a.Name())
				return nil, newError(ErrorInterrupted, "cancelled", err)
			}

			response := model.Response{
				PersonaID: a.Name(),
				Response:  answer.Text,
				Timestamp: m.now(),
				Status:    model.StatusSuccess,
			}
			if answer.Degraded() {
				response.Status = model.StatusError
				response.Error = string(answer.Err.Kind)
			}
			round = append(round, response)
			peers = append(peers, response.Peer())

			step++
			observer.emit(Event{Kind: EventResponse, QuestionID: questionID, Question: question, Response: &response, Step: step, TotalSteps: total})
		}

		session.Questions = append(session.Questions, model.QuestionResult{
			QuestionID: questionID,
			Question:   question,
			Responses:  round,
		})
		observer.emit(Event{Kind: EventQuestionDone, QuestionID: questionID, Question: question, Step: step, TotalSteps: total})
	}

	responses, degraded := session.ResponseCount()
	log.Printf("[interview] done questions=%d responses=%d degraded=%d", len(session.Questions), responses, degraded)
	return session, nil
}

func (m *Manager) selectParticipants(names []string) ([]persona.Persona, error) {
	roster := m.personas.List()
	if len(roster) == 0 {
		return nil, newError(ErrorNoPersonas, "empty_roster", nil)
	}

	if len(names) == 0 {
		return roster, nil
	}
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), AllParticipants) {
			if len(names) > 1 {
				return nil, newError(ErrorUnknownParticipant, "all_mixed_with_names", nil)
			}
			return roster, nil
		}
	}

	selected := make([]persona.Persona, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		p, ok := m.personas.FindByName(name)
		if !ok {
			return nil, newError(ErrorUnknownParticipant, "unknown_participant", fmt.Errorf("%q: %w", name, persona.ErrPersonaNotFound))
		}
		if _, dup := seen[p.ID()]; dup {
			return nil, newError(ErrorUnknownParticipant, "duplicate_participant", fmt.Errorf("%q selected twice", name))
		}
		seen[p.ID()] = struct{}{}
		selected = append(selected, p)
	}
	return selected, nil
}
