package state

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/nixlim/cc-view/internal/transcript"
)

// Store is the interface for the session state store.
// All methods must be thread-safe.
type Store interface {
	// AppendEvent appends a transcript event to the given session. If
	// sessionID is empty, the event is stored under the "unknown" bucket
	// and a warning is logged.
	AppendEvent(sessionID string, e transcript.Event)

	// OnEvent registers a listener invoked after every stored event.
	OnEvent(fn EventListener)

	// GetSession returns a snapshot of the session data for the given ID,
	// or nil if the session does not exist.
	GetSession(sessionID string) *SessionData

	// ListSessions returns a snapshot of all sessions sorted by start time.
	ListSessions() []SessionData

	// MarkExited marks the given session as exited.
	MarkExited(sessionID string)

	// UpdateMetadata updates the session metadata for the given session.
	UpdateMetadata(sessionID string, meta SessionMetadata)

	// SetModel records the model serving the session, if known.
	SetModel(sessionID, model string)

	// SetCWD records the working directory of the session, if known.
	SetCWD(sessionID, cwd string)

	// DroppedWrites reports how many persistence writes were dropped under
	// backpressure. Always 0 for the memory store.
	DroppedWrites() int64

	// Close releases any resources held by the store.
	Close() error
}

// EventListener is a callback invoked after a new event is stored. It
// receives the resolved session ID and the event. Listeners are called
// outside the store lock and must not call back into the store in a way
// that acquires a write lock.
type EventListener func(sessionID string, e transcript.Event)

// MemoryStore is a thread-safe in-memory implementation of Store.
type MemoryStore struct {
	mu             sync.RWMutex
	sessions       map[string]*SessionData
	eventListeners []EventListener
}

// NewMemoryStore creates a new empty MemoryStore ready for use.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*SessionData),
	}
}

// OnEvent registers a listener that is called after every AppendEvent.
// Listeners are invoked synchronously outside the store lock.
func (ms *MemoryStore) OnEvent(fn EventListener) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.eventListeners = append(ms.eventListeners, fn)
}

func resolveSessionID(sessionID string) string {
	if sessionID == "" {
		log.Printf("WARNING: event received without session.id, storing under %q", UnknownSessionID)
		return UnknownSessionID
	}
	return sessionID
}

// AppendEvent appends a transcript event to the given session's log.
// Events are kept in timestamp order with stable insertion order for ties,
// so replayed history and live tailing interleave correctly.
func (ms *MemoryStore) AppendEvent(sessionID string, e transcript.Event) {
	sessionID = resolveSessionID(sessionID)

	ms.mu.Lock()

	s := ms.getOrCreateSession(sessionID)
	s.Transcript = append(s.Transcript, e)

	sort.SliceStable(s.Transcript, func(i, j int) bool {
		return s.Transcript[i].Timestamp.Before(s.Transcript[j].Timestamp)
	})

	if !e.Timestamp.IsZero() {
		if e.Timestamp.After(s.LastEventAt) {
			s.LastEventAt = e.Timestamp
		}
	} else {
		s.LastEventAt = time.Now()
	}

	listeners := ms.eventListeners

	ms.mu.Unlock()

	// Notify listeners outside the lock to prevent deadlocks.
	for _, fn := range listeners {
		fn(sessionID, e)
	}
}

// GetSession returns a deep copy of the session data for the given ID,
// or nil if the session does not exist.
func (ms *MemoryStore) GetSession(sessionID string) *SessionData {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	s, ok := ms.sessions[sessionID]
	if !ok {
		return nil
	}
	return copySession(s)
}

// ListSessions returns a snapshot of all sessions sorted by start time
// (oldest first).
func (ms *MemoryStore) ListSessions() []SessionData {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]SessionData, 0, len(ms.sessions))
	for _, s := range ms.sessions {
		result = append(result, *copySession(s))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.Before(result[j].StartedAt)
	})
	return result
}

// MarkExited marks the given session as exited.
func (ms *MemoryStore) MarkExited(sessionID string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if s, ok := ms.sessions[sessionID]; ok {
		s.Exited = true
	}
}

// UpdateMetadata updates the session metadata for the given session.
// Empty fields leave existing values in place.
func (ms *MemoryStore) UpdateMetadata(sessionID string, meta SessionMetadata) {
	sessionID = resolveSessionID(sessionID)

	ms.mu.Lock()
	defer ms.mu.Unlock()

	s := ms.getOrCreateSession(sessionID)
	if meta.ServiceVersion != "" {
		s.Metadata.ServiceVersion = meta.ServiceVersion
	}
	if meta.OSType != "" {
		s.Metadata.OSType = meta.OSType
	}
	if meta.OSVersion != "" {
		s.Metadata.OSVersion = meta.OSVersion
	}
	if meta.HostArch != "" {
		s.Metadata.HostArch = meta.HostArch
	}
}

// SetModel records the model serving the session, if known.
func (ms *MemoryStore) SetModel(sessionID, model string) {
	if model == "" {
		return
	}
	sessionID = resolveSessionID(sessionID)

	ms.mu.Lock()
	defer ms.mu.Unlock()

	s := ms.getOrCreateSession(sessionID)
	s.Model = model
}

// SetCWD records the working directory of the session, if known.
func (ms *MemoryStore) SetCWD(sessionID, cwd string) {
	if cwd == "" {
		return
	}
	sessionID = resolveSessionID(sessionID)

	ms.mu.Lock()
	defer ms.mu.Unlock()

	s := ms.getOrCreateSession(sessionID)
	s.CWD = cwd
}

// DroppedWrites always returns 0: the memory store never drops.
func (ms *MemoryStore) DroppedWrites() int64 { return 0 }

// Close is a no-op for the memory store.
func (ms *MemoryStore) Close() error { return nil }

// RestoreSession installs a recovered session wholesale. Used by the
// persistence layer at startup; not part of the Store interface.
func (ms *MemoryStore) RestoreSession(s *SessionData) {
	if s == nil || s.SessionID == "" {
		return
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.sessions[s.SessionID] = copySession(s)
}

// getOrCreateSession returns the session for the ID, creating it if needed.
// Caller must hold the write lock.
func (ms *MemoryStore) getOrCreateSession(sessionID string) *SessionData {
	s, ok := ms.sessions[sessionID]
	if !ok {
		s = &SessionData{
			SessionID: sessionID,
			StartedAt: time.Now(),
		}
		ms.sessions[sessionID] = s
	}
	return s
}

// copySession returns a deep copy of a SessionData to prevent callers from
// mutating internal state.
func copySession(s *SessionData) *SessionData {
	cp := *s
	if len(s.Transcript) > 0 {
		cp.Transcript = make([]transcript.Event, len(s.Transcript))
		copy(cp.Transcript, s.Transcript)
	}
	return &cp
}
