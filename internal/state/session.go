package state

import "time"

// SessionAge returns the duration since the session started.
func SessionAge(s *SessionData) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	return time.Since(s.StartedAt)
}

// SessionIdleDuration returns the duration since the last event.
// Returns 0 if no events have been received.
func SessionIdleDuration(s *SessionData) time.Duration {
	if s.LastEventAt.IsZero() {
		return 0
	}
	return time.Since(s.LastEventAt)
}

// TruncateSessionID returns a truncated session ID suitable for display.
// If the ID is longer than maxLen, it is truncated and suffixed with "...".
func TruncateSessionID(id string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(id) <= maxLen {
		return id
	}
	if maxLen <= 3 {
		return id[:maxLen]
	}
	return id[:maxLen-3] + "..."
}

// ActiveSessions returns sessions that are not exited.
func ActiveSessions(sessions []SessionData) []SessionData {
	var result []SessionData
	for i := range sessions {
		if !sessions[i].Exited {
			result = append(result, sessions[i])
		}
	}
	return result
}
