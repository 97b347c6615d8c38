// Package archive keeps completed interview sessions so they can be listed and
// exported after the run that produced them has returned.
package archive

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/z-interview/internal/model/interview"
	"github.com/zhouzirui/z-interview/internal/service/transcript"
)

var (
	ErrSessionRequired = errors.New("session is required")
	ErrSessionNotFound = errors.New("session not found")
)

// Record is one archived session.
type Record struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Mode      interview.Mode     `json:"mode"`
	Summary   transcript.Summary `json:"summary"`
	Session   *interview.Session `json:"session,omitempty"`
}

// Store persists completed sessions. List returns records newest first and
// without the session body.
type Store interface {
	Save(ctx context.Context, mode interview.Mode, session *interview.Session) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context) ([]Record, error)
}

// NewRecord builds a record with a fresh identifier.
func NewRecord(mode interview.Mode, session *interview.Session) (Record, error) {
	if session == nil {
		return Record{}, ErrSessionRequired
	}
	if mode == "" {
		mode = interview.ModeIndependent
	}
	return Record{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Mode:      mode,
		Summary:   transcript.Summarize(session),
		Session:   session,
	}, nil
}

// MemoryStore is the in-process Store used when no archive path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore bootstraps an empty in-memory archive.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Save stores a completed session.
func (s *MemoryStore) Save(_ context.Context, mode interview.Mode, session *interview.Session) (Record, error) {
	record, err := NewRecord(mode, session)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	s.records[record.ID] = record
	s.mu.Unlock()

	return record, nil
}

// Get retrieves a record by identifier.
func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return Record{}, ErrSessionNotFound
	}
	return record, nil
}

// List returns summaries, newest first.
func (s *MemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	records := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		record.Session = nil
		records = append(records, record)
	}
	s.mu.RUnlock()

	SortNewestFirst(records)
	return records, nil
}

// SortNewestFirst orders records by creation time, breaking ties by ID.
func SortNewestFirst(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
}
