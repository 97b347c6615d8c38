package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/z-interview/internal/integrations/openrouter"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderArk        = "ark"

	// APIKeyPrefix 是 OpenRouter 密钥的固定前缀。
	APIKeyPrefix = "sk-or-v1-"
	// APIKeyPlaceholder 是示例 .env 中的占位符，视为未配置。
	APIKeyPlaceholder = "your_openrouter_api_key_here"
)

var (
	ErrMissingAPIKey     = errors.New("no OpenRouter API key found, set OPENROUTER_API_KEY")
	ErrPlaceholderAPIKey = fmt.Errorf("OPENROUTER_API_KEY still holds the placeholder %q", APIKeyPlaceholder)
	ErrMalformedAPIKey   = fmt.Errorf("OpenRouter API keys must start with %q", APIKeyPrefix)
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Interview InterviewConfig
	Storage   StorageConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	interview, err := loadInterviewConfig()
	if err != nil {
		return nil, err
	}

	var storage StorageConfig
	if err := parseEnv(&storage); err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Interview: interview, Storage: storage}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

type serverEnv struct {
	Port string `env:"PORT" envDefault:"8080"`
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	var raw serverEnv
	if err := parseEnv(&raw); err != nil {
		return ServerConfig{}, err
	}

	port := strings.TrimSpace(raw.Port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider string `env:"AI_PROVIDER" envDefault:"openrouter"`

	APIKey   string `env:"OPENROUTER_API_KEY"`
	BaseURL  string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	SiteURL  string `env:"YOUR_SITE_URL" envDefault:"https://localhost:3000"`
	SiteName string `env:"YOUR_SITE_NAME" envDefault:"Synthetic Interview PoC"`

	ArkAPIKey    string `env:"ARK_API_KEY"`
	ArkAccessKey string `env:"ARK_ACCESS_KEY"`
	ArkSecretKey string `env:"ARK_SECRET_KEY"`
	ArkBaseURL   string `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	ArkRegion    string `env:"ARK_REGION" envDefault:"cn-beijing"`

	Model       string   `env:"DEFAULT_MODEL" envDefault:"mistralai/mistral-small-24b-instruct-2501:free"`
	Temperature float64  `env:"TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int      `env:"MAX_TOKENS" envDefault:"150"`
	TopP        *float64 `env:"TOP_P"`
}

func loadAIConfig() (AIConfig, error) {
	var cfg AIConfig
	if err := parseEnv(&cfg); err != nil {
		return AIConfig{}, err
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)

	switch cfg.Provider {
	case ProviderOpenRouter, ProviderArk:
	default:
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", cfg.Provider)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 1 {
		return AIConfig{}, fmt.Errorf("invalid TEMPERATURE value %v: must be within 0.0-1.0", cfg.Temperature)
	}
	if cfg.MaxTokens <= 0 {
		return AIConfig{}, fmt.Errorf("invalid MAX_TOKENS value %d: must be positive", cfg.MaxTokens)
	}
	return cfg, nil
}

// ValidateAPIKey 只按形状校验 OpenRouter 密钥，不做网络请求。
func ValidateAPIKey(key string) error {
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return ErrMissingAPIKey
	case key == APIKeyPlaceholder:
		return ErrPlaceholderAPIKey
	case !strings.HasPrefix(key, APIKeyPrefix):
		return ErrMalformedAPIKey
	}
	return nil
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Validate() == nil
}

// Validate 校验当前 provider 所需的凭证。
func (c AIConfig) Validate() error {
	if c.Model == "" {
		return errors.New("DEFAULT_MODEL must not be empty")
	}
	if c.Provider == ProviderArk {
		if c.ArkAPIKey == "" && (c.ArkAccessKey == "" || c.ArkSecretKey == "") {
			return errors.New("Ark 凭证缺失，至少提供 ARK_API_KEY 或 AK/SK 组合")
		}
		return nil
	}
	return ValidateAPIKey(c.APIKey)
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.BaseChatModel, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	temperature := float32(c.Temperature)
	maxTokens := c.MaxTokens

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	if c.Provider == ProviderArk {
		cfg := &ark.ChatModelConfig{
			BaseURL:     c.ArkBaseURL,
			Region:      c.ArkRegion,
			APIKey:      c.ArkAPIKey,
			AccessKey:   c.ArkAccessKey,
			SecretKey:   c.ArkSecretKey,
			Model:       c.Model,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
			TopP:        topP,
		}
		return ark.NewChatModel(ctx, cfg)
	}

	return openrouter.NewChatModel(openrouter.Config{
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		Model:       c.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		TopP:        topP,
		Referer:     c.SiteURL,
		Title:       c.SiteName,
	})
}

// InterviewConfig 描述访谈编排相关配置。
type InterviewConfig struct {
	Mode         string `env:"INTERVIEW_MODE" envDefault:"independent"`
	HistoryLimit int    `env:"INTERVIEW_HISTORY_LIMIT" envDefault:"50"`
	PersonasFile string `env:"PERSONAS_FILE"`
	Topic        string `env:"INTERVIEW_TOPIC" envDefault:"lifestyle brands"`
}

func loadInterviewConfig() (InterviewConfig, error) {
	var cfg InterviewConfig
	if err := parseEnv(&cfg); err != nil {
		return InterviewConfig{}, err
	}
	if cfg.HistoryLimit < 1 {
		cfg.HistoryLimit = 1
	}
	cfg.PersonasFile = strings.TrimSpace(cfg.PersonasFile)
	return cfg, nil
}

// StorageConfig 描述访谈归档存储；ArchivePath 为空时使用内存存储。
type StorageConfig struct {
	ArchivePath string `env:"ARCHIVE_PATH"`
}

func parseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
