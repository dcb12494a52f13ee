package storage

import (
	"database/sql"
	"time"

	"github.com/nixlim/cc-view/internal/state"
	"github.com/nixlim/cc-view/internal/transcript"
)

func (s *SQLiteStore) writeEvent(tx *sql.Tx, sessionID string, e transcript.Event) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := tx.Exec(
		"INSERT INTO transcript_events (session_id, event_id, kind, text, tool_name, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		sessionID, e.ID, string(e.Kind), e.Text, e.ToolName, ts.Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO sessions (session_id, last_event_at) VALUES (?, ?)
		ON CONFLICT(session_id) DO UPDATE SET last_event_at=excluded.last_event_at
	`, sessionID, ts.Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) writeMetadata(tx *sql.Tx, sessionID string, meta state.SessionMetadata) error {
	_, err := tx.Exec(`
		INSERT INTO sessions (session_id, service_version, os_type, os_version, host_arch)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			service_version=COALESCE(NULLIF(excluded.service_version, ''), sessions.service_version),
			os_type=COALESCE(NULLIF(excluded.os_type, ''), sessions.os_type),
			os_version=COALESCE(NULLIF(excluded.os_version, ''), sessions.os_version),
			host_arch=COALESCE(NULLIF(excluded.host_arch, ''), sessions.host_arch)
	`, sessionID, meta.ServiceVersion, meta.OSType, meta.OSVersion, meta.HostArch)
	return err
}

func (s *SQLiteStore) writeExited(tx *sql.Tx, sessionID string) error {
	_, err := tx.Exec("UPDATE sessions SET exited = 1 WHERE session_id = ?", sessionID)
	return err
}

func (s *SQLiteStore) writeSessionSnapshot(tx *sql.Tx, sessionID string, snap *sessionSnapshot) error {
	exited := 0
	if snap.Exited {
		exited = 1
	}

	_, err := tx.Exec(`
		INSERT INTO sessions (session_id, model, cwd, started_at, last_event_at, exited)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			model=COALESCE(NULLIF(excluded.model, ''), sessions.model),
			cwd=COALESCE(NULLIF(excluded.cwd, ''), sessions.cwd),
			started_at=COALESCE(NULLIF(excluded.started_at, ''), sessions.started_at),
			last_event_at=COALESCE(NULLIF(excluded.last_event_at, ''), sessions.last_event_at),
			exited=MAX(excluded.exited, COALESCE(sessions.exited, 0))
	`, sessionID, snap.Model, snap.CWD, snap.StartedAt, snap.LastEventAt, exited)
	return err
}
