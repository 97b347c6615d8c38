// Package app assembles the services shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/zhouzirui/z-interview/internal/config"
	"github.com/zhouzirui/z-interview/internal/model/persona"
	"github.com/zhouzirui/z-interview/internal/service/ai"
	"github.com/zhouzirui/z-interview/internal/service/archive"
	"github.com/zhouzirui/z-interview/internal/service/interview"
	"github.com/zhouzirui/z-interview/internal/storage/sqlite"
)

// Personas builds the roster store: the YAML file when configured, the seed
// roster otherwise.
func Personas(cfg config.InterviewConfig) (*persona.MemoryStore, error) {
	if cfg.PersonasFile == "" {
		return persona.NewMemoryStore(persona.Seed()), nil
	}
	items, err := persona.LoadRoster(cfg.PersonasFile)
	if err != nil {
		return nil, err
	}
	log.Printf("[app] loaded %d personas from %s", len(items), cfg.PersonasFile)
	return persona.NewMemoryStore(items), nil
}

// Settings converts the model configuration into per-call settings.
func Settings(cfg config.AIConfig) ai.Settings {
	return ai.Settings{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
}

// NewManager wires the completion client and the roster into a session manager.
// The credential check is repeated before every run.
func NewManager(ctx context.Context, cfg *config.Config, personas persona.Store) (*interview.Manager, error) {
	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	completer, err := ai.NewService(ctx, chatModel)
	if err != nil {
		return nil, err
	}
	return NewManagerWithCompleter(cfg, personas, completer)
}

// NewManagerWithCompleter is NewManager for an already constructed client.
func NewManagerWithCompleter(cfg *config.Config, personas persona.Store, completer ai.Completer) (*interview.Manager, error) {
	aiCfg := cfg.AI
	return interview.NewManager(personas, completer, Settings(aiCfg),
		interview.WithCredentialCheck(aiCfg.Validate),
		interview.WithHistoryLimit(cfg.Interview.HistoryLimit),
		interview.WithPromptBuilder(ai.NewPromptBuilder(cfg.Interview.Topic)),
	)
}

// OpenArchive returns the SQLite archive when a path is configured and the
// in-memory archive otherwise. The close function is always safe to call.
func OpenArchive(cfg config.StorageConfig) (archive.Store, func() error, error) {
	if cfg.ArchivePath == "" {
		return archive.NewMemoryStore(), func() error { return nil }, nil
	}
	store, err := sqlite.Open(cfg.ArchivePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	log.Printf("[archive] using sqlite archive at %s", cfg.ArchivePath)
	return store, store.Close, nil
}
