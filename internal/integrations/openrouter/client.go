// Package openrouter implements an eino chat model over the OpenAI-compatible
// chat completions endpoint exposed by OpenRouter.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the minimal request shape for the Chat Completions endpoint.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	TopP        *float32      `json:"top_p,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
}

// chatResponse is the minimal response shape returned by the Chat Completions endpoint.
type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openrouter: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Config holds the defaults applied to every request; call options override them.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature *float32
	MaxTokens   *int
	TopP        *float32

	// Referer and Title are sent as HTTP-Referer and X-Title for OpenRouter rankings.
	Referer string
	Title   string
}

// ChatModel is a single-attempt chat completion client. It never retries.
type ChatModel struct {
	cfg        Config
	httpClient *http.Client
}

type Option func(*ChatModel)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(m *ChatModel) {
		m.httpClient = httpClient
	}
}

// NewChatModel validates cfg and returns a ready client.
func NewChatModel(cfg Config, opts ...Option) (*ChatModel, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter: api key must not be empty")
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)

	m := &ChatModel{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

// Generate sends the conversation and returns the first choice as an assistant message.
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{
		Model:       &m.cfg.Model,
		Temperature: m.cfg.Temperature,
		MaxTokens:   m.cfg.MaxTokens,
		TopP:        m.cfg.TopP,
	}, opts...)

	if options.Model == nil || strings.TrimSpace(*options.Model) == "" {
		return nil, errors.New("openrouter: model must not be empty")
	}

	payload := chatRequest{
		Model:       *options.Model,
		Messages:    make([]chatMessage, 0, len(input)),
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
		TopP:        options.TopP,
		Stop:        options.Stop,
	}
	for _, msg := range input {
		if msg == nil {
			continue
		}
		payload.Messages = append(payload.Messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openrouter: marshal request: %w", err)
	}

	url := chatURL(m.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openrouter: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	if m.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", m.cfg.Referer)
	}
	if m.cfg.Title != "" {
		req.Header.Set("X-Title", m.cfg.Title)
	}

	raw, err := m.doJSONRequest(req, url)
	if err != nil {
		return nil, fmt.Errorf("openrouter: request failed: %w", err)
	}

	var res chatResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("openrouter: decode response: %w", err)
	}
	// OpenRouter reports some upstream failures inside a 200 body.
	if res.Error != nil {
		return nil, &HTTPStatusError{StatusCode: res.Error.Code, URL: url, Body: res.Error.Message}
	}
	if len(res.Choices) == 0 {
		return nil, errors.New("openrouter: no choices in response")
	}

	choice := res.Choices[0]
	out := schema.AssistantMessage(choice.Message.Content, nil)
	out.ResponseMeta = &schema.ResponseMeta{FinishReason: choice.FinishReason}
	if res.Usage != nil {
		out.ResponseMeta.Usage = &schema.TokenUsage{
			PromptTokens:     res.Usage.PromptTokens,
			CompletionTokens: res.Usage.CompletionTokens,
			TotalTokens:      res.Usage.TotalTokens,
		}
	}

	log.Printf("[openrouter] model=%s finish=%s length=%d", *options.Model, choice.FinishReason, len(choice.Message.Content))
	return out, nil
}

// Stream performs one blocking Generate call and replays its result as a single chunk.
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// BindTools is unsupported; interview personas never call tools.
func (m *ChatModel) BindTools(tools []*schema.ToolInfo) error {
	if len(tools) == 0 {
		return nil
	}
	return errors.New("openrouter: tool calling is not supported")
}

func (m *ChatModel) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
