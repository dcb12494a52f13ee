package receiver

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nixlim/cc-view/internal/transcript"
)

// Logger provides structured debug logging for the OTLP receiver.
// Implementations must be safe for concurrent use.
type Logger interface {
	// LogEvent logs an ingested transcript event with its session ID.
	LogEvent(sessionID string, e transcript.Event)

	// LogSkipped logs a log record whose event name did not map to a
	// transcript kind.
	LogSkipped(sessionID, eventName string)
}

// NopLogger discards all log output. This is the default when debug logging
// is not enabled, and has zero allocation overhead.
type NopLogger struct{}

// LogEvent is a no-op.
func (NopLogger) LogEvent(string, transcript.Event) {}

// LogSkipped is a no-op.
func (NopLogger) LogSkipped(string, string) {}

// logEntry is the JSON structure written by FileLogger.
type logEntry struct {
	Timestamp string `json:"ts"`
	Type      string `json:"type"`
	SessionID string `json:"session"`
	Kind      string `json:"kind,omitempty"`
	EventID   string `json:"event_id,omitempty"`
	ToolName  string `json:"tool,omitempty"`
	TextLen   int    `json:"text_len,omitempty"`
	EventName string `json:"event_name,omitempty"`
}

// FileLogger writes structured JSON debug output to an io.Writer.
// Each line is a complete JSON object (JSONL format). Event text is logged
// as a length only, so prompts never leak into debug files.
type FileLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewFileLogger creates a FileLogger that writes to the given writer.
func NewFileLogger(w io.Writer) *FileLogger {
	return &FileLogger{w: w}
}

// LogEvent writes a JSON line for an ingested transcript event.
func (l *FileLogger) LogEvent(sessionID string, e transcript.Event) {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	l.write(logEntry{
		Timestamp: ts.UTC().Format(time.RFC3339Nano),
		Type:      "event",
		SessionID: sessionID,
		Kind:      string(e.Kind),
		EventID:   e.ID,
		ToolName:  e.ToolName,
		TextLen:   len(e.Text),
	})
}

// LogSkipped writes a JSON line for an unmapped log record.
func (l *FileLogger) LogSkipped(sessionID, eventName string) {
	l.write(logEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Type:      "skipped",
		SessionID: sessionID,
		EventName: eventName,
	})
}

// write serialises a logEntry as JSON and writes it as a single line.
// Serialisation errors are silently dropped to avoid disrupting the receiver.
func (l *FileLogger) write(entry logEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s\n", data)
}
