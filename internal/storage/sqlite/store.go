// Package sqlite provides a SQLite-backed session archive.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zhouzirui/z-interview/internal/model/interview"
	"github.com/zhouzirui/z-interview/internal/service/archive"
	"github.com/zhouzirui/z-interview/internal/service/transcript"
	"github.com/zhouzirui/z-interview/internal/storage/sqlite/migrations"
	"github.com/zhouzirui/z-interview/internal/storage/sqlitemigrate"
)

// Store persists archived sessions in SQLite. Session bodies are stored as the
// same JSON document the transcript writer produces.
type Store struct {
	sqlDB *sql.DB
}

var _ archive.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite archive and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure storage dir: %w", err)
		}
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save stores a completed session.
func (s *Store) Save(ctx context.Context, mode interview.Mode, session *interview.Session) (archive.Record, error) {
	if err := ctx.Err(); err != nil {
		return archive.Record{}, err
	}
	if s == nil || s.sqlDB == nil {
		return archive.Record{}, errors.New("storage is not configured")
	}
	record, err := archive.NewRecord(mode, session)
	if err != nil {
		return archive.Record{}, err
	}
	body, err := transcript.MarshalJSON(session)
	if err != nil {
		return archive.Record{}, fmt.Errorf("encode session: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO interview_sessions (
		   id, created_at, mode, participants, questions, responses, degraded, body
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		toMillis(record.CreatedAt),
		string(record.Mode),
		record.Summary.Participants,
		record.Summary.Questions,
		record.Summary.Responses,
		record.Summary.Degraded,
		string(body),
	)
	if err != nil {
		return archive.Record{}, fmt.Errorf("save session: %w", err)
	}
	return record, nil
}

// Get returns one record including its session body.
func (s *Store) Get(ctx context.Context, id string) (archive.Record, error) {
	if err := ctx.Err(); err != nil {
		return archive.Record{}, err
	}
	if s == nil || s.sqlDB == nil {
		return archive.Record{}, errors.New("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return archive.Record{}, archive.ErrSessionNotFound
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, created_at, mode, participants, questions, responses, degraded, body
		   FROM interview_sessions
		  WHERE id = ?`,
		id,
	)

	var body string
	record, err := scanRecord(row.Scan, &body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return archive.Record{}, archive.ErrSessionNotFound
		}
		return archive.Record{}, fmt.Errorf("get session: %w", err)
	}

	session, err := transcript.Parse([]byte(body))
	if err != nil {
		return archive.Record{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	record.Session = session
	return record, nil
}

// List returns summaries, newest first.
func (s *Store) List(ctx context.Context) ([]archive.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, errors.New("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, created_at, mode, participants, questions, responses, degraded
		   FROM interview_sessions
		  ORDER BY created_at DESC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	records := make([]archive.Record, 0, 16)
	for rows.Next() {
		record, err := scanRecord(rows.Scan, nil)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return records, nil
}

func scanRecord(scan func(dest ...any) error, body *string) (archive.Record, error) {
	var (
		record    archive.Record
		createdAt int64
		mode      string
	)
	dest := []any{
		&record.ID,
		&createdAt,
		&mode,
		&record.Summary.Participants,
		&record.Summary.Questions,
		&record.Summary.Responses,
		&record.Summary.Degraded,
	}
	if body != nil {
		dest = append(dest, body)
	}
	if err := scan(dest...); err != nil {
		return archive.Record{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	record.Mode = interview.Mode(mode)
	return record, nil
}
