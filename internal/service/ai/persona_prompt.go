package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/z-interview/internal/model/persona"
)

const defaultTopic = "lifestyle brands"

// PromptBuilder renders the system instructions that put a model in character.
type PromptBuilder struct {
	Topic string
	Rules []string
}

// NewPromptBuilder creates a builder with the default interview rules.
func NewPromptBuilder(topic string) *PromptBuilder {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = defaultTopic
	}
	return &PromptBuilder{
		Topic: topic,
		Rules: []string{
			"Answer the way {name} naturally would",
			"Keep answers concise (2-3 sentences at most)",
			"Stay true to your persona's values and lifestyle",
			"Take into account what others said before you in this round",
			"Show personality through your language and opinions",
			"Stay in character for the whole interview",
		},
	}
}

// BuildSystemPrompt creates the system prompt for one persona.
func (b *PromptBuilder) BuildSystemPrompt(p persona.Persona) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "You are %s, a %d-year-old person taking part in a market research interview about %s.\n\n", p.Name, p.Age, b.Topic)
	fmt.Fprintf(&builder, "Your characteristics: %s\n", p.Characteristics)
	fmt.Fprintf(&builder, "Your background: %s\n", p.Background)
	if personality := strings.TrimSpace(p.Personality); personality != "" {
		builder.WriteString(personality)
		builder.WriteString("\n")
	}

	builder.WriteString("\nIMPORTANT INSTRUCTIONS:")
	for _, rule := range b.Rules {
		builder.WriteString("\n- ")
		builder.WriteString(strings.ReplaceAll(rule, "{name}", p.Name))
	}
	return builder.String()
}
