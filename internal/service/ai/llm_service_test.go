package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-interview/internal/model/persona"
)

type fakeChatModel struct {
	reply    string
	err      error
	calls    int
	input    []*schema.Message
	captured *model.Options
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.calls++
	f.input = input
	f.captured = model.GetCommonOptions(&model.Options{}, opts...)
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *fakeChatModel) BindTools([]*schema.ToolInfo) error { return nil }

func TestServiceCompletePassesSettings(t *testing.T) {
	fake := &fakeChatModel{reply: "Quality."}
	svc, err := NewService(context.Background(), fake)
	require.NoError(t, err)

	got, err := svc.Complete(context.Background(), CompletionRequest{
		System:   "You are {not a placeholder}",
		Input:    "Interview question: What matters most?",
		Settings: Settings{Model: "m-1", Temperature: 0.3, MaxTokens: 99},
	})
	require.NoError(t, err)
	require.Equal(t, "Quality.", got)
	require.Equal(t, 1, fake.calls)

	require.Len(t, fake.input, 2)
	require.Equal(t, schema.System, fake.input[0].Role)
	require.Equal(t, "You are {not a placeholder}", fake.input[0].Content)
	require.Equal(t, schema.User, fake.input[1].Role)
	require.Equal(t, "Interview question: What matters most?", fake.input[1].Content)

	require.Equal(t, "m-1", *fake.captured.Model)
	require.InDelta(t, 0.3, *fake.captured.Temperature, 1e-6)
	require.Equal(t, 99, *fake.captured.MaxTokens)
}

func TestServiceCompleteClassifiesFailure(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("upstream said 429 Too Many Requests")}
	svc, err := NewService(context.Background(), fake)
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), CompletionRequest{Input: "q"})
	require.Error(t, err)

	var cerr *CompletionError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, ErrorRateLimit, cerr.Kind)
	require.Equal(t, 1, fake.calls, "completion must not retry")
}

func TestNewServiceRejectsNilModel(t *testing.T) {
	_, err := NewService(context.Background(), nil)
	require.Error(t, err)
}

func TestBuildSystemPrompt(t *testing.T) {
	b := NewPromptBuilder("")
	p := persona.Seed()[0]

	out := b.BuildSystemPrompt(p)
	require.Contains(t, out, "You are Anna, a 20-year-old person")
	require.Contains(t, out, "about lifestyle brands")
	require.Contains(t, out, "Answer the way Anna naturally would")
	require.Contains(t, out, p.Personality)
	require.Equal(t, out, b.BuildSystemPrompt(p))
}
