package agent

import (
	"strings"

	"github.com/zhouzirui/z-interview/internal/model/interview"
)

// ContextTurns is how many of a persona's own prior turns are shown to the model.
const ContextTurns = 2

// BuildContext composes the user input for one completion: the question, the
// current round's peer answers in participant order, then up to the last
// ContextTurns own turns oldest-first. Empty sections are omitted.
func BuildContext(question string, peers []interview.PeerResponse, history []interview.Turn) string {
	var builder strings.Builder
	builder.WriteString("Interview question: ")
	builder.WriteString(question)

	if len(peers) > 0 {
		builder.WriteString("\n\nOther answers:\n")
		for _, peer := range peers {
			builder.WriteString("- ")
			builder.WriteString(peer.PersonaID)
			builder.WriteString(": ")
			builder.WriteString(peer.Response)
			builder.WriteString("\n")
		}
	}

	if len(history) > 0 {
		start := len(history) - ContextTurns
		if start < 0 {
			start = 0
		}
		builder.WriteString("\n\nYour history:\n")
		for _, turn := range history[start:] {
			builder.WriteString("Q: ")
			builder.WriteString(turn.Question)
			builder.WriteString("\nA: ")
			builder.WriteString(turn.Response)
			builder.WriteString("\n")
		}
	}

	return builder.String()
}
