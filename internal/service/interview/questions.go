package interview

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadQuestions reads an ordered question list from a JSON or YAML file. Both a
// flat list and a mapping with a "questions" key are accepted.
func LoadQuestions(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(ErrorInvalidQuestions, "unreadable_question_source", err)
	}

	questions, err := ParseQuestions(data, filepath.Ext(path))
	if err != nil {
		return nil, newError(ErrorInvalidQuestions, "malformed_question_source", fmt.Errorf("%s: %w", path, err))
	}
	return questions, nil
}

// ParseQuestions decodes data according to ext (".json", ".yaml", ".yml").
// Unknown extensions are decoded as JSON.
func ParseQuestions(data []byte, ext string) ([]string, error) {
	var raw any
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}

	if keyed, ok := raw.(map[string]any); ok {
		list, found := keyed["questions"]
		if !found {
			return nil, errors.New(`mapping has no "questions" key`)
		}
		raw = list
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, errors.New("questions must be a list")
	}

	questions := make([]string, 0, len(items))
	for i, item := range items {
		text, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("question #%d is not a string", i+1)
		}
		questions = append(questions, text)
	}
	if err := ValidateQuestions(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ValidateQuestions requires a non-empty list of non-blank strings.
func ValidateQuestions(questions []string) error {
	if len(questions) == 0 {
		return errors.New("no questions supplied")
	}
	for i, q := range questions {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("question #%d is empty", i+1)
		}
	}
	return nil
}
