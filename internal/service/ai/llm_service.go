package ai

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Settings are the opaque model parameters passed through on every call.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// CompletionRequest is one single-attempt completion.
type CompletionRequest struct {
	System string
	Input  string
	Settings
}

// Completer produces one completion per call and never retries.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Service wraps the configured chat model in a system+user prompt chain.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the completion chain around chatModel.
func NewService(ctx context.Context, chatModel model.BaseChatModel) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model must not be nil")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{input}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile completion chain: %w", err)
	}

	return &Service{chain: runnable}, nil
}

// Complete runs the chain once. Failures are returned as *CompletionError.
func (s *Service) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	opts := []model.Option{model.WithTemperature(float32(req.Temperature))}
	if req.Model != "" {
		opts = append(opts, model.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}

	input := map[string]any{
		"system": req.System,
		"input":  req.Input,
	}

	response, err := s.chain.Invoke(ctx, input, compose.WithChatModelOption(opts...))
	if err != nil {
		classified := Classify(err)
		log.Printf("[ai] completion failed kind=%s model=%s: %v", classified.Kind, req.Model, err)
		return "", classified
	}
	if response == nil {
		return "", &CompletionError{Kind: ErrorUnknown, Err: errors.New("empty model response")}
	}

	log.Printf("[ai] generated response model=%s length=%d", req.Model, len(response.Content))
	return response.Content, nil
}
