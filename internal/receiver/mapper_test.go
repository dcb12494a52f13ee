package receiver

import (
	"testing"
	"time"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"

	"github.com/nixlim/cc-view/internal/state"
	"github.com/nixlim/cc-view/internal/transcript"
)

func strAttr(key, value string) *commonpb.KeyValue {
	return &commonpb.KeyValue{
		Key:   key,
		Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: value}},
	}
}

func logRecord(eventName string, ts time.Time, attrs ...*commonpb.KeyValue) *logspb.LogRecord {
	all := append([]*commonpb.KeyValue{strAttr("event.name", eventName)}, attrs...)
	return &logspb.LogRecord{
		TimeUnixNano: uint64(ts.UnixNano()),
		Attributes:   all,
	}
}

func resourceLogs(sessionID string, records ...*logspb.LogRecord) []*logspb.ResourceLogs {
	return []*logspb.ResourceLogs{
		{
			Resource: &resourcepb.Resource{
				Attributes: []*commonpb.KeyValue{
					strAttr("session.id", sessionID),
					strAttr("service.version", "2.0.14"),
					strAttr("os.type", "linux"),
				},
			},
			ScopeLogs: []*logspb.ScopeLogs{{LogRecords: records}},
		},
	}
}

// skipRecorder counts unmapped records.
type skipRecorder struct {
	NopLogger
	skipped []string
}

func (s *skipRecorder) LogSkipped(sessionID, eventName string) {
	s.skipped = append(s.skipped, eventName)
}

func TestIngestor_MapsEventNamesToKinds(t *testing.T) {
	ts := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := state.NewMemoryStore()
	in := &ingestor{store: store, logger: NopLogger{}}

	in.consume(resourceLogs("sess-map",
		logRecord(eventUserPrompt, ts, strAttr("prompt", "fix the bug"), strAttr("event.id", "u1")),
		logRecord(eventAssistantMessage, ts.Add(time.Second), strAttr("content", "On it."), strAttr("event.id", "a1")),
		logRecord(eventToolUse, ts.Add(2*time.Second), strAttr("tool_name", "Read"), strAttr("event.id", "t1")),
		logRecord(eventToolResult, ts.Add(3*time.Second), strAttr("tool_name", "Read"), strAttr("event.id", "r1")),
		logRecord(eventSystemMessage, ts.Add(4*time.Second), strAttr("content", "compacted"), strAttr("event.id", "s1")),
	))

	s := store.GetSession("sess-map")
	if s == nil {
		t.Fatal("expected session to exist")
	}
	if len(s.Transcript) != 5 {
		t.Fatalf("expected 5 transcript events, got %d", len(s.Transcript))
	}

	wantKinds := []transcript.Kind{
		transcript.KindUser,
		transcript.KindAssistant,
		transcript.KindToolInvocation,
		transcript.KindToolResult,
		transcript.KindSystem,
	}
	for i, want := range wantKinds {
		if s.Transcript[i].Kind != want {
			t.Errorf("event %d: expected kind %s, got %s", i, want, s.Transcript[i].Kind)
		}
	}

	if s.Transcript[0].Text != "fix the bug" {
		t.Errorf("expected prompt attribute as text, got %q", s.Transcript[0].Text)
	}
	if s.Transcript[2].ToolName != "Read" {
		t.Errorf("expected tool_name Read, got %q", s.Transcript[2].ToolName)
	}
	if !s.Transcript[0].Timestamp.Equal(ts) {
		t.Errorf("expected timestamp %v, got %v", ts, s.Transcript[0].Timestamp)
	}
	if s.Metadata.ServiceVersion != "2.0.14" {
		t.Errorf("expected resource metadata to be stored, got %+v", s.Metadata)
	}
}

func TestIngestor_BodyFallbackForText(t *testing.T) {
	store := state.NewMemoryStore()
	in := &ingestor{store: store, logger: NopLogger{}}

	rec := logRecord(eventAssistantMessage, time.Now())
	rec.Body = &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: "from the body"}}
	in.consume(resourceLogs("sess-body", rec))

	s := store.GetSession("sess-body")
	if s.Transcript[0].Text != "from the body" {
		t.Errorf("expected body fallback, got %q", s.Transcript[0].Text)
	}
}

func TestIngestor_UnknownEventNameSkipped(t *testing.T) {
	store := state.NewMemoryStore()
	rec := &skipRecorder{}
	in := &ingestor{store: store, logger: rec}

	in.consume(resourceLogs("sess-skip",
		logRecord("claude_code.api_request", time.Now()),
		logRecord(eventUserPrompt, time.Now(), strAttr("prompt", "hi")),
	))

	s := store.GetSession("sess-skip")
	if len(s.Transcript) != 1 {
		t.Fatalf("expected only the mapped event, got %d", len(s.Transcript))
	}
	if len(rec.skipped) != 1 || rec.skipped[0] != "claude_code.api_request" {
		t.Errorf("expected one skipped record, got %v", rec.skipped)
	}
}

func TestIngestor_SessionEndMarksExited(t *testing.T) {
	store := state.NewMemoryStore()
	in := &ingestor{store: store, logger: NopLogger{}}

	in.consume(resourceLogs("sess-end",
		logRecord(eventUserPrompt, time.Now(), strAttr("prompt", "bye")),
		logRecord(eventSessionEnd, time.Now()),
	))

	s := store.GetSession("sess-end")
	if !s.Exited {
		t.Error("session_end must mark the session exited")
	}
	if len(s.Transcript) != 1 {
		t.Errorf("session_end must not appear in the transcript, got %d events", len(s.Transcript))
	}
}

func TestIngestor_ModelAndCWDTracked(t *testing.T) {
	store := state.NewMemoryStore()
	in := &ingestor{store: store, logger: NopLogger{}}

	in.consume(resourceLogs("sess-meta",
		logRecord(eventAssistantMessage, time.Now(),
			strAttr("content", "hi"),
			strAttr("model", "claude-sonnet-4-5"),
			strAttr("cwd", "/home/dev/project"),
		),
	))

	s := store.GetSession("sess-meta")
	if s.Model != "claude-sonnet-4-5" {
		t.Errorf("expected model tracked, got %q", s.Model)
	}
	if s.CWD != "/home/dev/project" {
		t.Errorf("expected cwd tracked, got %q", s.CWD)
	}
}

func TestIngestor_GeneratesIDWhenMissing(t *testing.T) {
	store := state.NewMemoryStore()
	in := &ingestor{store: store, logger: NopLogger{}}

	in.consume(resourceLogs("sess-id", logRecord(eventUserPrompt, time.Now(), strAttr("prompt", "x"))))

	s := store.GetSession("sess-id")
	if s.Transcript[0].ID == "" {
		t.Error("expected a generated event id")
	}
}
