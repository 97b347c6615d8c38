package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-interview/internal/model/interview"
	"github.com/zhouzirui/z-interview/internal/service/archive"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleSession() *interview.Session {
	return &interview.Session{
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Participants: []interview.Participant{
			{Name: "Anna", Age: 20, Characteristics: "trend-aware"},
			{Name: "Tom", Age: 40, Characteristics: "pragmatic"},
		},
		Questions: []interview.QuestionResult{{
			QuestionID: 1,
			Question:   "What makes a brand <authentic>?",
			Responses: []interview.Response{
				{PersonaID: "Anna", Response: "[Error: too many requests]", Timestamp: time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC), Status: interview.StatusError, Error: "rate_limit"},
				{PersonaID: "Tom", Response: "Quality.", Timestamp: time.Date(2026, 3, 1, 12, 0, 2, 0, time.UTC), Status: interview.StatusSuccess},
			},
		}},
	}
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestSaveGetRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, interview.ModeConversational, sampleSession())
	require.NoError(t, err)

	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved.ID, got.ID)
	require.Equal(t, interview.ModeConversational, got.Mode)
	require.Equal(t, saved.Summary, got.Summary)
	require.True(t, saved.CreatedAt.Truncate(time.Millisecond).Equal(got.CreatedAt))
	require.Equal(t, sampleSession(), got.Session)
}

func TestGetMissing(t *testing.T) {
	store := openTempStore(t)
	_, err := store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, archive.ErrSessionNotFound)
}

func TestListOmitsBodies(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Save(ctx, "", sampleSession())
		require.NoError(t, err)
	}

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, record := range records {
		require.Nil(t, record.Session)
		require.Equal(t, interview.ModeIndependent, record.Mode)
		require.Equal(t, 2, record.Summary.Responses)
		if i > 0 {
			require.False(t, record.CreatedAt.After(records[i-1].CreatedAt))
		}
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	store, err := Open(path)
	require.NoError(t, err)
	saved, err := store.Save(context.Background(), "", sampleSession())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved.ID, got.ID)
}

func TestSaveRespectsCancelledContext(t *testing.T) {
	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, "", sampleSession())
	require.ErrorIs(t, err, context.Canceled)
}
