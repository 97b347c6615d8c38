package interview

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/zhouzirui/z-interview/internal/model/interview"
	"github.com/zhouzirui/z-interview/internal/model/persona"
	"github.com/zhouzirui/z-interview/internal/service/ai"
)

// panelCompleter answers per persona, keyed by the name in the system prompt.
type panelCompleter struct {
	mu       sync.Mutex
	replies  map[string]string
	failures map[string]error
	inputs   map[string][]string
	onCall   func()
}

func newPanelCompleter() *panelCompleter {
	return &panelCompleter{
		replies:  map[string]string{},
		failures: map[string]error{},
		inputs:   map[string][]string{},
	}
}

func (p *panelCompleter) Complete(_ context.Context, req ai.CompletionRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name := personaFromPrompt(req.System)
	p.inputs[name] = append(p.inputs[name], req.Input)
	if p.onCall != nil {
		p.onCall()
	}
	if err := p.failures[name]; err != nil {
		return "", err
	}
	if reply, ok := p.replies[name]; ok {
		return reply, nil
	}
	return name + " answer", nil
}

func personaFromPrompt(system string) string {
	rest := strings.TrimPrefix(system, "You are ")
	if i := strings.Index(rest, ","); i > 0 {
		return rest[:i]
	}
	return "?"
}

func twoPersonaStore() *persona.MemoryStore {
	return persona.NewMemoryStore([]persona.Persona{
		{Name: "A", Age: 30, Characteristics: "curious"},
		{Name: "B", Age: 40, Characteristics: "careful"},
	})
}

func fixedClock() func() time.Time {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func newTestManager(t *testing.T, store persona.Store, c ai.Completer, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock())}, opts...)
	m, err := NewManager(store, c, ai.Settings{Model: "test", Temperature: 0.7, MaxTokens: 150}, opts...)
	require.NoError(t, err)
	return m
}

func TestRunDegradedResponseDoesNotAbort(t *testing.T) {
	c := newPanelCompleter()
	c.failures["A"] = errors.New("HTTP 429 Too Many Requests")
	c.replies["B"] = "Quality."
	m := newTestManager(t, twoPersonaStore(), c)

	session, err := m.Run(context.Background(), Request{
		Questions: []string{"What matters?"},
		Mode:      model.ModeConversational,
	})
	require.NoError(t, err)
	require.Len(t, session.Questions, 1)

	round := session.Questions[0]
	require.Equal(t, 1, round.QuestionID)
	require.Len(t, round.Responses, 2)
	assert.Equal(t, "A", round.Responses[0].PersonaID)
	assert.Equal(t, "[Error: too many requests]", round.Responses[0].Response)
	assert.Equal(t, model.StatusError, round.Responses[0].Status)
	assert.Equal(t, string(ai.ErrorRateLimit), round.Responses[0].Error)
	assert.Equal(t, "B", round.Responses[1].PersonaID)
	assert.Equal(t, "Quality.", round.Responses[1].Response)
	assert.Equal(t, model.StatusSuccess, round.Responses[1].Status)

	// B sees A's placeholder as a peer answer.
	require.Contains(t, c.inputs["B"][0], "- A: [Error: too many requests]")
}

func TestRunIndependentModeHidesPeers(t *testing.T) {
	c := newPanelCompleter()
	m := newTestManager(t, twoPersonaStore(), c)

	_, err := m.Run(context.Background(), Request{Questions: []string{"Q1", "Q2"}})
	require.NoError(t, err)

	for _, inputs := range c.inputs {
		for _, input := range inputs {
			require.NotContains(t, input, "Other answers")
		}
	}
	require.Contains(t, c.inputs["B"][1], "Q: Q1\nA: B answer\n")
}

func TestRunConversationalPeersFollowParticipantOrder(t *testing.T) {
	c := newPanelCompleter()
	store := persona.NewMemoryStore(persona.Seed())
	m := newTestManager(t, store, c)

	_, err := m.Run(context.Background(), Request{
		Questions: []string{"Q1", "Q2"},
		Mode:      model.ModeConversational,
	})
	require.NoError(t, err)

	require.NotContains(t, c.inputs["Anna"][0], "Other answers")
	require.Contains(t, c.inputs["Julia"][0], "Other answers:\n- Anna: Anna answer\n- Tom: Tom answer\n")
	// Peers reset every round.
	require.NotContains(t, c.inputs["Anna"][1], "Other answers")
	require.NotContains(t, c.inputs["Tom"][1], "Julia answer")
}

func TestRunSessionShape(t *testing.T) {
	c := newPanelCompleter()
	m := newTestManager(t, persona.NewMemoryStore(persona.Seed()), c)

	session, err := m.Run(context.Background(), Request{Questions: []string{"Q1", "Q2", "Q3"}})
	require.NoError(t, err)

	require.Equal(t, fixedClock()(), session.Timestamp)
	require.Len(t, session.Participants, 3)
	require.Len(t, session.Questions, 3)
	for i, q := range session.Questions {
		require.Equal(t, i+1, q.QuestionID)
		require.Len(t, q.Responses, 3)
		for j, r := range q.Responses {
			require.Equal(t, session.Participants[j].Name, r.PersonaID)
		}
	}
	total, degraded := session.ResponseCount()
	require.Equal(t, 9, total)
	require.Zero(t, degraded)
}

func TestRunSelectsParticipantIgnoringCase(t *testing.T) {
	c := newPanelCompleter()
	m := newTestManager(t, persona.NewMemoryStore(persona.Seed()), c)

	session, err := m.Run(context.Background(), Request{Participants: []string{" tom "}, Questions: []string{"Q1"}})
	require.NoError(t, err)
	require.Len(t, session.Participants, 1)
	require.Equal(t, "Tom", session.Participants[0].Name)

	session, err = m.Run(context.Background(), Request{Participants: []string{"ALL"}, Questions: []string{"Q1"}})
	require.NoError(t, err)
	require.Len(t, session.Participants, 3)
}

func TestRunPreconditionsFailBeforeAnyCall(t *testing.T) {
	tests := []struct {
		name  string
		store persona.Store
		opts  []Option
		req   Request
		code  ErrorCode
	}{
		{
			name: "credential",
			opts: []Option{WithCredentialCheck(func() error { return errors.New("placeholder key") })},
			req:  Request{Questions: []string{"Q1"}},
			code: ErrorInvalidCredential,
		},
		{
			name: "no questions",
			req:  Request{},
			code: ErrorInvalidQuestions,
		},
		{
			name: "blank question",
			req:  Request{Questions: []string{"Q1", "  "}},
			code: ErrorInvalidQuestions,
		},
		{
			name: "unknown participant",
			req:  Request{Participants: []string{"Zed"}, Questions: []string{"Q1"}},
			code: ErrorUnknownParticipant,
		},
		{
			name: "duplicate participant",
			req:  Request{Participants: []string{"Anna", "anna"}, Questions: []string{"Q1"}},
			code: ErrorUnknownParticipant,
		},
		{
			name: "bad mode",
			req:  Request{Questions: []string{"Q1"}, Mode: model.Mode("debate")},
			code: ErrorInvalidMode,
		},
		{
			name:  "empty roster",
			store: persona.NewMemoryStore(nil),
			req:   Request{Questions: []string{"Q1"}},
			code:  ErrorNoPersonas,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tt.store
			if store == nil {
				store = persona.NewMemoryStore(persona.Seed())
			}
			c := newPanelCompleter()
			m := newTestManager(t, store, c, tt.opts...)

			session, err := m.Run(context.Background(), tt.req)
			require.Error(t, err)
			require.Nil(t, session)
			require.Equal(t, tt.code, CodeOf(err))
			require.Empty(t, c.inputs)
		})
	}
}

func TestRunInterruptedDiscardsSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newPanelCompleter()
	calls := 0
	c.onCall = func() {
		calls++
		if calls == 2 {
			cancel()
		}
	}
	m := newTestManager(t, persona.NewMemoryStore(persona.Seed()), c)

	session, err := m.Run(ctx, Request{Questions: []string{"Q1", "Q2"}})
	require.Nil(t, session)
	require.Equal(t, ErrorInterrupted, CodeOf(err))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 2, calls)
}

func TestRunEmitsProgressEvents(t *testing.T) {
	c := newPanelCompleter()
	m := newTestManager(t, twoPersonaStore(), c)

	var kinds []EventKind
	var last Event
	_, err := m.RunWithObserver(context.Background(), Request{Questions: []string{"Q1", "Q2"}}, func(e Event) {
		kinds = append(kinds, e.Kind)
		last = e
	})
	require.NoError(t, err)

	require.Equal(t, []EventKind{
		EventQuestion, EventResponse, EventResponse, EventQuestionDone,
		EventQuestion, EventResponse, EventResponse, EventQuestionDone,
	}, kinds)
	require.Equal(t, 4, last.Step)
	require.Equal(t, 4, last.TotalSteps)
}

func TestRunsDoNotShareHistory(t *testing.T) {
	c := newPanelCompleter()
	m := newTestManager(t, twoPersonaStore(), c)

	_, err := m.Run(context.Background(), Request{Questions: []string{"Q1"}})
	require.NoError(t, err)
	_, err = m.Run(context.Background(), Request{Questions: []string{"Q2"}})
	require.NoError(t, err)

	require.Len(t, c.inputs["A"], 2)
	require.NotContains(t, c.inputs["A"][1], "Your history")
}

func TestNewManagerRejectsNilDependencies(t *testing.T) {
	_, err := NewManager(nil, newPanelCompleter(), ai.Settings{})
	require.Error(t, err)
	_, err = NewManager(twoPersonaStore(), nil, ai.Settings{})
	require.Error(t, err)
}
