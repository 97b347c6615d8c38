package interview

import (
	"context"
	"log"
	"strings"

	model "github.com/zhouzirui/z-interview/internal/model/interview"
	"github.com/zhouzirui/z-interview/internal/service/transcript"
)

// FileRun describes a run whose questions come from a file and whose
// transcript is written to disk.
type FileRun struct {
	// Participant is a single persona name, or "" / "all" for the whole roster.
	Participant   string
	QuestionsPath string
	// OutputStem is the destination without extension; empty picks a timestamped default.
	OutputStem string
	Format     transcript.Format
	Mode       model.Mode
}

// FileResult is what a completed file run produced.
type FileResult struct {
	Session *model.Session
	Path    string
	Summary transcript.Summary
}

// RunFile checks the credential, loads the questions, runs the session and
// writes the transcript. Nothing is written when the run fails.
func (m *Manager) RunFile(ctx context.Context, run FileRun) (*FileResult, error) {
	if err := m.CheckCredential(); err != nil {
		return nil, err
	}

	questions, err := LoadQuestions(run.QuestionsPath)
	if err != nil {
		return nil, err
	}

	var participants []string
	if name := strings.TrimSpace(run.Participant); name != "" {
		participants = []string{name}
	}

	session, err := m.Run(ctx, Request{
		Participants: participants,
		Questions:    questions,
		Mode:         run.Mode,
	})
	if err != nil {
		return nil, err
	}

	format := run.Format
	if format == "" {
		format = transcript.FormatJSON
	}
	stem := run.OutputStem
	if strings.TrimSpace(stem) == "" {
		stem = transcript.DefaultStem(m.now())
	}

	path, err := transcript.Write(session, stem, format)
	if err != nil {
		return nil, err
	}
	summary := transcript.Summarize(session)
	log.Printf("[interview] transcript written path=%s responses=%d degraded=%d", path, summary.Responses, summary.Degraded)

	return &FileResult{Session: session, Path: path, Summary: summary}, nil
}
