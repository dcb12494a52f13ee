package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nixlim/cc-view/internal/state"
	"github.com/nixlim/cc-view/internal/transcript"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath, 7)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_AppendEvent_PersistsToSQLite(t *testing.T) {
	store := newTestStore(t)

	e := transcript.Event{
		ID:        "ev-1",
		Kind:      transcript.KindUser,
		Text:      "fix the flaky test",
		Timestamp: time.Now(),
	}
	store.AppendEvent("sess-001", e)

	time.Sleep(150 * time.Millisecond)

	var count int
	err := store.db.QueryRow(
		"SELECT COUNT(*) FROM transcript_events WHERE session_id = ? AND event_id = ?",
		"sess-001", "ev-1",
	).Scan(&count)
	if err != nil {
		t.Fatalf("failed to query transcript_events: %v", err)
	}
	if count != 1 {
		t.Errorf("event not persisted: want 1 row, got %d", count)
	}

	var kind, text string
	err = store.db.QueryRow(
		"SELECT kind, text FROM transcript_events WHERE event_id = ?", "ev-1",
	).Scan(&kind, &text)
	if err != nil {
		t.Fatalf("failed to read event row: %v", err)
	}
	if kind != "user" || text != "fix the flaky test" {
		t.Errorf("unexpected row: kind=%q text=%q", kind, text)
	}
}

func TestSQLiteStore_AppendEvent_UpsertsSessionRow(t *testing.T) {
	store := newTestStore(t)

	ts := time.Now()
	store.AppendEvent("sess-002", transcript.Event{
		ID:        "ev-1",
		Kind:      transcript.KindAssistant,
		Text:      "done",
		Timestamp: ts,
	})

	time.Sleep(150 * time.Millisecond)

	var lastEventAt string
	err := store.db.QueryRow(
		"SELECT last_event_at FROM sessions WHERE session_id = ?", "sess-002",
	).Scan(&lastEventAt)
	if err != nil {
		t.Fatalf("failed to query sessions: %v", err)
	}
	if lastEventAt == "" {
		t.Error("expected last_event_at to be set")
	}
}

func TestSQLiteStore_MarkExited_PersistsToSQLite(t *testing.T) {
	store := newTestStore(t)

	store.AppendEvent("sess-003", transcript.Event{
		ID: "ev-1", Kind: transcript.KindUser, Text: "bye", Timestamp: time.Now(),
	})
	store.MarkExited("sess-003")

	time.Sleep(150 * time.Millisecond)

	var exited int
	err := store.db.QueryRow(
		"SELECT exited FROM sessions WHERE session_id = ?", "sess-003",
	).Scan(&exited)
	if err != nil {
		t.Fatalf("failed to query session: %v", err)
	}
	if exited != 1 {
		t.Errorf("exited not persisted: want 1, got %d", exited)
	}
}

func TestSQLiteStore_MetadataAndModel_Persist(t *testing.T) {
	store := newTestStore(t)

	store.AppendEvent("sess-004", transcript.Event{
		ID: "ev-1", Kind: transcript.KindUser, Text: "hi", Timestamp: time.Now(),
	})
	store.UpdateMetadata("sess-004", state.SessionMetadata{
		ServiceVersion: "2.0.14",
		OSType:         "darwin",
	})
	store.SetModel("sess-004", "claude-sonnet-4-5")
	store.SetCWD("sess-004", "/home/dev/project")

	time.Sleep(150 * time.Millisecond)

	var serviceVersion, model, cwd string
	err := store.db.QueryRow(
		"SELECT service_version, model, cwd FROM sessions WHERE session_id = ?", "sess-004",
	).Scan(&serviceVersion, &model, &cwd)
	if err != nil {
		t.Fatalf("failed to query session: %v", err)
	}
	if serviceVersion != "2.0.14" {
		t.Errorf("service_version not persisted, got %q", serviceVersion)
	}
	if model != "claude-sonnet-4-5" {
		t.Errorf("model not persisted, got %q", model)
	}
	if cwd != "/home/dev/project" {
		t.Errorf("cwd not persisted, got %q", cwd)
	}
}

func TestSQLiteStore_BatchFlush(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 50; i++ {
		store.AppendEvent("sess-batch", transcript.Event{
			ID:        "ev",
			Kind:      transcript.KindToolResult,
			ToolName:  "Read",
			Timestamp: time.Now(),
		})
	}

	time.Sleep(300 * time.Millisecond)

	var count int
	err := store.db.QueryRow(
		"SELECT COUNT(*) FROM transcript_events WHERE session_id = ?", "sess-batch",
	).Scan(&count)
	if err != nil {
		t.Fatalf("failed to query transcript_events: %v", err)
	}
	if count != 50 {
		t.Errorf("batch flush failed: want 50 rows, got %d", count)
	}
}

func TestSQLiteStore_ReadsServedFromMemory(t *testing.T) {
	store := newTestStore(t)

	store.AppendEvent("sess-mem", transcript.Event{
		ID: "ev-1", Kind: transcript.KindUser, Text: "hello", Timestamp: time.Now(),
	})

	// No sleep: the memory half must be current before the async flush.
	s := store.GetSession("sess-mem")
	if s == nil {
		t.Fatal("expected session in memory immediately")
	}
	if len(s.Transcript) != 1 {
		t.Errorf("expected 1 event in memory, got %d", len(s.Transcript))
	}
}

func TestSQLiteStore_BackpressureDropsWrites(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := newSQLiteStoreWithChannelSize(dbPath, 1, 7)
	if err != nil {
		t.Fatalf("newSQLiteStoreWithChannelSize failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	// Flood the tiny channel; some writes must be counted as dropped
	// rather than blocking the caller.
	for i := 0; i < 500; i++ {
		store.AppendEvent("sess-flood", transcript.Event{
			ID: "ev", Kind: transcript.KindSystem, Timestamp: time.Now(),
		})
	}

	if store.DroppedWrites() == 0 {
		t.Error("expected some dropped writes under backpressure")
	}

	// The memory store must still have everything.
	s := store.GetSession("sess-flood")
	if s == nil || len(s.Transcript) != 500 {
		t.Errorf("memory store must not drop events, got %d", len(s.Transcript))
	}
}

func TestSQLiteStore_CloseDrainsWrites(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath, 7)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}

	for i := 0; i < 20; i++ {
		store.AppendEvent("sess-drain", transcript.Event{
			ID: "ev", Kind: transcript.KindAssistant, Text: "x", Timestamp: time.Now(),
		})
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Reopen and verify all queued events reached disk.
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("reopening database: %v", err)
	}
	defer func() { _ = db.Close() }()

	var count int
	err = db.QueryRow(
		"SELECT COUNT(*) FROM transcript_events WHERE session_id = ?", "sess-drain",
	).Scan(&count)
	if err != nil {
		t.Fatalf("failed to query transcript_events: %v", err)
	}
	if count != 20 {
		t.Errorf("Close did not drain writes: want 20 rows, got %d", count)
	}
}

func TestSQLiteStore_WritesAfterCloseIgnored(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath, 7)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Must not panic on the closed channel.
	store.AppendEvent("sess-late", transcript.Event{
		ID: "ev", Kind: transcript.KindUser, Text: "too late", Timestamp: time.Now(),
	})
}
