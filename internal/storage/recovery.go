package storage

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/nixlim/cc-view/internal/state"
	"github.com/nixlim/cc-view/internal/transcript"
)

func (s *SQLiteStore) recoverSessions() error {
	rows, err := s.db.Query(`
		SELECT session_id, model, cwd, started_at, last_event_at, exited,
		       service_version, os_type, os_version, host_arch
		FROM sessions
		WHERE datetime(last_event_at) > datetime('now', '-24 hours')
	`)
	if err != nil {
		return fmt.Errorf("querying recent sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var failCount int
	for rows.Next() {
		var sessionID string
		var model, cwd sql.NullString
		var startedAt, lastEventAt sql.NullString
		var exited sql.NullInt64
		var serviceVersion, osType, osVersion, hostArch sql.NullString

		err := rows.Scan(
			&sessionID, &model, &cwd, &startedAt, &lastEventAt, &exited,
			&serviceVersion, &osType, &osVersion, &hostArch,
		)
		if err != nil {
			failCount++
			log.Printf("ERROR: failed to scan session row: %v", err)
			continue
		}

		session := &state.SessionData{
			SessionID: sessionID,
			Model:     model.String,
			CWD:       cwd.String,
			Exited:    exited.Int64 == 1,
		}

		if startedAt.Valid {
			if t, err := time.Parse(time.RFC3339Nano, startedAt.String); err == nil {
				session.StartedAt = t
			}
		}
		if lastEventAt.Valid {
			if t, err := time.Parse(time.RFC3339Nano, lastEventAt.String); err == nil {
				session.LastEventAt = t
			}
		}

		session.Metadata = state.SessionMetadata{
			ServiceVersion: serviceVersion.String,
			OSType:         osType.String,
			OSVersion:      osVersion.String,
			HostArch:       hostArch.String,
		}

		if err := s.recoverTranscript(sessionID, session); err != nil {
			log.Printf("ERROR: failed to recover transcript for %s: %v", sessionID, err)
		}

		s.RestoreSession(session)
	}

	if failCount > 0 {
		log.Printf("WARNING: %d sessions failed to recover from database", failCount)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating sessions: %w", err)
	}

	return nil
}

func (s *SQLiteStore) recoverTranscript(sessionID string, session *state.SessionData) error {
	rows, err := s.db.Query(`
		SELECT event_id, kind, text, tool_name, timestamp
		FROM transcript_events
		WHERE session_id = ?
		ORDER BY timestamp ASC, id ASC
	`, sessionID)
	if err != nil {
		return fmt.Errorf("querying transcript events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var eventID, kind sql.NullString
		var text, toolName sql.NullString
		var timestamp string

		if err := rows.Scan(&eventID, &kind, &text, &toolName, &timestamp); err != nil {
			log.Printf("ERROR: failed to scan transcript row: %v", err)
			continue
		}

		e := transcript.Event{
			ID:       eventID.String,
			Kind:     transcript.Kind(kind.String),
			Text:     text.String,
			ToolName: toolName.String,
		}

		if t, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
			e.Timestamp = t
		}

		session.Transcript = append(session.Transcript, e)
	}

	return rows.Err()
}
