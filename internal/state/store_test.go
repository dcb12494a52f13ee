package state

import (
	"sync"
	"testing"
	"time"

	"github.com/nixlim/cc-view/internal/transcript"
)

func tev(id string, kind transcript.Kind, text string, ts time.Time) transcript.Event {
	return transcript.Event{ID: id, Kind: kind, Text: text, Timestamp: ts}
}

func TestMemoryStore_AppendEventCreatesSession(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	store.AppendEvent("sess-001", tev("e1", transcript.KindUser, "hello", now))

	s := store.GetSession("sess-001")
	if s == nil {
		t.Fatal("expected session 'sess-001' to exist")
	}
	if len(s.Transcript) != 1 {
		t.Fatalf("expected 1 transcript event, got %d", len(s.Transcript))
	}
	if s.Transcript[0].Text != "hello" {
		t.Errorf("expected text 'hello', got %q", s.Transcript[0].Text)
	}
	if !s.LastEventAt.Equal(now) {
		t.Errorf("expected LastEventAt=%v, got %v", now, s.LastEventAt)
	}

	if other := store.GetSession("sess-002"); other != nil {
		t.Error("expected session 'sess-002' to not exist")
	}
}

func TestMemoryStore_EventsSortedByTimestamp(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Replayed history can arrive after newer live events.
	store.AppendEvent("s", tev("late", transcript.KindAssistant, "b", base.Add(2*time.Second)))
	store.AppendEvent("s", tev("early", transcript.KindUser, "a", base))

	s := store.GetSession("s")
	if s.Transcript[0].ID != "early" || s.Transcript[1].ID != "late" {
		t.Errorf("expected timestamp order [early late], got [%s %s]",
			s.Transcript[0].ID, s.Transcript[1].ID)
	}
	if !s.LastEventAt.Equal(base.Add(2 * time.Second)) {
		t.Errorf("LastEventAt must track the max timestamp, got %v", s.LastEventAt)
	}
}

func TestMemoryStore_EmptySessionIDGoesToUnknownBucket(t *testing.T) {
	store := NewMemoryStore()
	store.AppendEvent("", tev("e1", transcript.KindSystem, "notice", time.Now()))

	if s := store.GetSession(UnknownSessionID); s == nil {
		t.Fatal("expected event to land in the unknown bucket")
	}
}

func TestMemoryStore_SnapshotIsolation(t *testing.T) {
	store := NewMemoryStore()
	store.AppendEvent("s", tev("e1", transcript.KindUser, "hi", time.Now()))

	snap := store.GetSession("s")
	snap.Transcript[0].Text = "mutated"
	snap.Exited = true

	fresh := store.GetSession("s")
	if fresh.Transcript[0].Text != "hi" {
		t.Error("mutating a snapshot must not affect the store")
	}
	if fresh.Exited {
		t.Error("mutating a snapshot must not affect the store")
	}
}

func TestMemoryStore_ListSessionsSortedByStart(t *testing.T) {
	store := NewMemoryStore()
	store.AppendEvent("first", tev("e1", transcript.KindUser, "a", time.Now()))
	time.Sleep(5 * time.Millisecond)
	store.AppendEvent("second", tev("e2", transcript.KindUser, "b", time.Now()))

	sessions := store.ListSessions()
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].SessionID != "first" {
		t.Errorf("expected oldest session first, got %s", sessions[0].SessionID)
	}
}

func TestMemoryStore_MarkExited(t *testing.T) {
	store := NewMemoryStore()
	store.AppendEvent("s", tev("e1", transcript.KindUser, "hi", time.Now()))

	store.MarkExited("s")

	if s := store.GetSession("s"); !s.Exited {
		t.Error("expected session to be marked exited")
	}
	// Unknown session is a no-op, not a panic.
	store.MarkExited("ghost")
}

func TestMemoryStore_OnEventListener(t *testing.T) {
	store := NewMemoryStore()

	var (
		mu     sync.Mutex
		gotIDs []string
	)
	store.OnEvent(func(sessionID string, e transcript.Event) {
		mu.Lock()
		defer mu.Unlock()
		gotIDs = append(gotIDs, sessionID+"/"+e.ID)
	})

	store.AppendEvent("s", tev("e1", transcript.KindUser, "hi", time.Now()))
	store.AppendEvent("", tev("e2", transcript.KindSystem, "x", time.Now()))

	mu.Lock()
	defer mu.Unlock()
	if len(gotIDs) != 2 {
		t.Fatalf("expected 2 listener calls, got %d", len(gotIDs))
	}
	if gotIDs[0] != "s/e1" {
		t.Errorf("expected first call s/e1, got %s", gotIDs[0])
	}
	if gotIDs[1] != UnknownSessionID+"/e2" {
		t.Errorf("listener must receive the resolved session id, got %s", gotIDs[1])
	}
}

func TestMemoryStore_UpdateMetadataMergesNonEmpty(t *testing.T) {
	store := NewMemoryStore()
	store.UpdateMetadata("s", SessionMetadata{ServiceVersion: "2.0.1", OSType: "darwin"})
	store.UpdateMetadata("s", SessionMetadata{OSType: "linux"})

	s := store.GetSession("s")
	if s.Metadata.ServiceVersion != "2.0.1" {
		t.Errorf("empty update fields must not clear values, got %q", s.Metadata.ServiceVersion)
	}
	if s.Metadata.OSType != "linux" {
		t.Errorf("expected OSType linux, got %q", s.Metadata.OSType)
	}
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.AppendEvent("shared", tev("e", transcript.KindToolResult, "x", time.Now()))
			}
		}(i)
	}
	wg.Wait()

	s := store.GetSession("shared")
	if len(s.Transcript) != 500 {
		t.Errorf("expected 500 events, got %d", len(s.Transcript))
	}
}

func TestSessionData_Live(t *testing.T) {
	threshold := 30 * time.Second

	s := &SessionData{LastEventAt: time.Now()}
	if !s.Live(threshold) {
		t.Error("recent event: expected live")
	}

	s = &SessionData{LastEventAt: time.Now().Add(-time.Minute)}
	if s.Live(threshold) {
		t.Error("stale event: expected not live")
	}

	s = &SessionData{LastEventAt: time.Now(), Exited: true}
	if s.Live(threshold) {
		t.Error("exited session: expected not live")
	}

	s = &SessionData{}
	if s.Live(threshold) {
		t.Error("no events: expected not live")
	}
}
