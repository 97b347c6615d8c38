package persona

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrPersonaNotFound is returned when a name does not match any configured persona.
var ErrPersonaNotFound = errors.New("persona not found")

// Store exposes the configured persona roster in its stable order.
type Store interface {
	List() []Persona
	FindByName(name string) (Persona, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

// List returns the roster in configured order.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByName looks up a persona by name, ignoring case and surrounding space.
func (s *MemoryStore) FindByName(name string) (Persona, bool) {
	id := strings.ToLower(strings.TrimSpace(name))
	for _, item := range s.items {
		if item.ID() == id {
			return item, true
		}
	}
	return Persona{}, false
}

type rosterFile struct {
	Personas []Persona `yaml:"personas"`
}

// LoadRoster reads a YAML roster of the form `personas: [...]`.
func LoadRoster(path string) ([]Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona roster: %w", err)
	}

	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse persona roster %s: %w", path, err)
	}
	if err := Validate(file.Personas); err != nil {
		return nil, fmt.Errorf("persona roster %s: %w", path, err)
	}
	return file.Personas, nil
}

// Validate checks that a roster is non-empty and every name is unique.
func Validate(items []Persona) error {
	if len(items) == 0 {
		return errors.New("no personas configured")
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if item.ID() == "" {
			return fmt.Errorf("persona #%d has no name", i+1)
		}
		if item.Age <= 0 {
			return fmt.Errorf("persona %q has invalid age %d", item.Name, item.Age)
		}
		if _, dup := seen[item.ID()]; dup {
			return fmt.Errorf("duplicate persona name %q", item.Name)
		}
		seen[item.ID()] = struct{}{}
	}
	return nil
}
