// Package transcript renders finished interview sessions into their structured
// (JSON) and document (Markdown) forms.
package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zhouzirui/z-interview/internal/model/interview"
)

// Format selects an output rendering.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

// ParseFormat accepts "json", "md" or "markdown", case-insensitively.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", raw)
	}
}

// Extension returns the fixed file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the HTTP content type for the rendering.
func (f Format) ContentType() string {
	if f == FormatMarkdown {
		return "text/markdown; charset=utf-8"
	}
	return "application/json"
}

// Encode renders session in the requested format.
func Encode(session *interview.Session, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return MarshalJSON(session)
	case FormatMarkdown:
		return []byte(Markdown(session)), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// MarshalJSON renders the structured form with two-space indentation and
// without HTML escaping of text values.
func MarshalJSON(session *interview.Session) ([]byte, error) {
	if session == nil {
		return nil, errors.New("transcript: session is nil")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(session); err != nil {
		return nil, fmt.Errorf("transcript: encode json: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse reads a structured transcript back into a session.
func Parse(data []byte) (*interview.Session, error) {
	var session interview.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("transcript: decode json: %w", err)
	}
	return &session, nil
}

// Markdown renders the document form. Data is emitted in stored order.
func Markdown(session *interview.Session) string {
	var b strings.Builder
	b.WriteString("# Synthetic Interview Results\n\n")
	if session == nil {
		return b.String()
	}
	fmt.Fprintf(&b, "**Timestamp:** %s\n\n", session.Timestamp.Format(time.RFC3339))

	b.WriteString("## Participants\n\n")
	for _, p := range session.Participants {
		fmt.Fprintf(&b, "- **%s** (%d): %s\n", p.Name, p.Age, p.Characteristics)
	}

	b.WriteString("\n## Interview Questions & Answers\n\n")
	for _, q := range session.Questions {
		fmt.Fprintf(&b, "### Question %d: %s\n\n", q.QuestionID, q.Question)
		for _, r := range q.Responses {
			fmt.Fprintf(&b, "**%s:** %s\n\n", r.PersonaID, r.Response)
		}
		b.WriteString("---\n\n")
	}
	return b.String()
}

// DefaultStem builds the timestamped filename stem used when none is supplied.
func DefaultStem(now time.Time) string {
	return "interview_results_" + now.Format("20060102_150405")
}

// Write renders session and stores it at stem plus the format's extension.
// The returned path is the file written.
func Write(session *interview.Session, stem string, format Format) (string, error) {
	stem = strings.TrimSpace(stem)
	if stem == "" {
		return "", errors.New("transcript: output stem must not be empty")
	}

	data, err := Encode(session, format)
	if err != nil {
		return "", err
	}

	path := stem + format.Extension()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("transcript: ensure output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("transcript: write %s: %w", path, err)
	}
	return path, nil
}

// Summary counts what a session contains.
type Summary struct {
	Participants int `json:"participants"`
	Questions    int `json:"questions"`
	Responses    int `json:"responses"`
	Degraded     int `json:"degraded"`
}

// Summarize counts participants, questions and responses.
func Summarize(session *interview.Session) Summary {
	if session == nil {
		return Summary{}
	}
	total, degraded := session.ResponseCount()
	return Summary{
		Participants: len(session.Participants),
		Questions:    len(session.Questions),
		Responses:    total,
		Degraded:     degraded,
	}
}
