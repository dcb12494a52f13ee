package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nixlim/cc-view/internal/state"
	"github.com/nixlim/cc-view/internal/transcript"
)

func TestRecovery_RestoresRecentSessions(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath, 7)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}

	ts := time.Now().Add(-time.Minute)
	store.AppendEvent("sess-recover", transcript.Event{
		ID: "ev-1", Kind: transcript.KindUser, Text: "start here", Timestamp: ts,
	})
	store.AppendEvent("sess-recover", transcript.Event{
		ID: "ev-2", Kind: transcript.KindAssistant, Text: "working", Timestamp: ts.Add(time.Second),
	})
	store.SetModel("sess-recover", "claude-sonnet-4-5")
	store.UpdateMetadata("sess-recover", state.SessionMetadata{OSType: "linux"})

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Reopen: the session must be recovered into memory.
	store2, err := NewSQLiteStore(dbPath, 7)
	if err != nil {
		t.Fatalf("reopening store failed: %v", err)
	}
	defer func() { _ = store2.Close() }()

	s := store2.GetSession("sess-recover")
	if s == nil {
		t.Fatal("expected session to be recovered")
	}
	if len(s.Transcript) != 2 {
		t.Fatalf("expected 2 recovered events, got %d", len(s.Transcript))
	}
	if s.Transcript[0].Text != "start here" || s.Transcript[1].Text != "working" {
		t.Errorf("recovered events out of order: %q, %q", s.Transcript[0].Text, s.Transcript[1].Text)
	}
	if s.Transcript[0].Kind != transcript.KindUser {
		t.Errorf("expected recovered kind user, got %s", s.Transcript[0].Kind)
	}
	if s.Model != "claude-sonnet-4-5" {
		t.Errorf("expected recovered model, got %q", s.Model)
	}
	if s.Metadata.OSType != "linux" {
		t.Errorf("expected recovered metadata, got %+v", s.Metadata)
	}
}

func TestRecovery_SkipsStaleSessions(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}

	// A session whose last event is older than the 24h recovery window.
	stale := time.Now().Add(-48 * time.Hour).Format(time.RFC3339Nano)
	if _, err := db.Exec(
		"INSERT INTO sessions (session_id, last_event_at) VALUES (?, ?)",
		"sess-stale", stale,
	); err != nil {
		t.Fatalf("inserting stale session: %v", err)
	}
	_ = db.Close()

	store, err := NewSQLiteStore(dbPath, 7)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if store.GetSession("sess-stale") != nil {
		t.Error("stale session must not be recovered into memory")
	}
}

func TestRecovery_ExitedFlagSurvivesRestart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath, 7)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	store.AppendEvent("sess-exit", transcript.Event{
		ID: "ev-1", Kind: transcript.KindUser, Text: "bye", Timestamp: time.Now(),
	})
	store.MarkExited("sess-exit")
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	store2, err := NewSQLiteStore(dbPath, 7)
	if err != nil {
		t.Fatalf("reopening store failed: %v", err)
	}
	defer func() { _ = store2.Close() }()

	s := store2.GetSession("sess-exit")
	if s == nil {
		t.Fatal("expected session to be recovered")
	}
	if !s.Exited {
		t.Error("expected exited flag to survive restart")
	}
}
