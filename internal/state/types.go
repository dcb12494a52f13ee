package state

import (
	"time"

	"github.com/nixlim/cc-view/internal/transcript"
)

const UnknownSessionID = "unknown"

// SessionData is the tracked state of one Claude Code session: identity,
// activity timestamps, and the ordered transcript of events received so far.
type SessionData struct {
	SessionID   string
	Model       string
	CWD         string
	StartedAt   time.Time
	LastEventAt time.Time
	Exited      bool

	Transcript []transcript.Event

	Metadata SessionMetadata
}

type SessionMetadata struct {
	ServiceVersion string
	OSType         string
	OSVersion      string
	HostArch       string
}

// Live reports whether the session is actively streaming: it produced an
// event within the threshold and has not exited. This is the liveness flag
// handed to the transcript engine on every render; the engine itself never
// reads ambient state.
func (s *SessionData) Live(threshold time.Duration) bool {
	if s.Exited || s.LastEventAt.IsZero() {
		return false
	}
	return time.Since(s.LastEventAt) <= threshold
}

type SessionStatus string

const (
	StatusActive SessionStatus = "active"
	StatusIdle   SessionStatus = "idle"
	StatusDone   SessionStatus = "done"
	StatusExited SessionStatus = "exited"
)

// Status buckets the session by recency for the session list.
func (s *SessionData) Status(liveThreshold time.Duration) SessionStatus {
	if s.Exited {
		return StatusExited
	}
	if s.LastEventAt.IsZero() {
		return StatusDone
	}
	elapsed := time.Since(s.LastEventAt)
	switch {
	case elapsed <= liveThreshold:
		return StatusActive
	case elapsed <= 5*time.Minute:
		return StatusIdle
	default:
		return StatusDone
	}
}
