// Package receiver accepts OTLP log exports from Claude Code sessions over
// gRPC and HTTP and feeds them into the session store as transcript events.
package receiver

import (
	"fmt"
	"strconv"
	"time"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"

	"github.com/nixlim/cc-view/internal/state"
	"github.com/nixlim/cc-view/internal/transcript"
)

// Claude Code event names carried in OTLP log records. Anything else is
// skipped at this boundary so only valid transcript kinds enter the store.
const (
	eventUserPrompt       = "claude_code.user_prompt"
	eventAssistantMessage = "claude_code.assistant_message"
	eventToolUse          = "claude_code.tool_use"
	eventToolResult       = "claude_code.tool_result"
	eventSystemMessage    = "claude_code.system_message"
	eventSessionEnd       = "claude_code.session_end"
)

var kindByEventName = map[string]transcript.Kind{
	eventUserPrompt:       transcript.KindUser,
	eventAssistantMessage: transcript.KindAssistant,
	eventToolUse:          transcript.KindToolInvocation,
	eventToolResult:       transcript.KindToolResult,
	eventSystemMessage:    transcript.KindSystem,
}

// ingestor turns OTLP resource logs into store updates. Both receivers
// share one instance so skip accounting is unified.
type ingestor struct {
	store  state.Store
	logger Logger
}

func (in *ingestor) consume(resourceLogs []*logspb.ResourceLogs) {
	for _, rl := range resourceLogs {
		sessionID, meta := resourceIdentity(rl.GetResource())
		if meta != (state.SessionMetadata{}) {
			in.store.UpdateMetadata(sessionID, meta)
		}

		for _, sl := range rl.GetScopeLogs() {
			for _, rec := range sl.GetLogRecords() {
				in.consumeRecord(sessionID, rec)
			}
		}
	}
}

func (in *ingestor) consumeRecord(sessionID string, rec *logspb.LogRecord) {
	attrs := attrMap(rec.GetAttributes())

	name := attrs["event.name"]
	if name == "" {
		name = rec.GetEventName()
	}

	if name == eventSessionEnd {
		in.store.MarkExited(sessionID)
		return
	}

	kind, ok := kindByEventName[name]
	if !ok {
		in.logger.LogSkipped(sessionID, name)
		return
	}

	e := transcript.Event{
		ID:       attrs["event.id"],
		Kind:     kind,
		Text:     recordText(rec, attrs),
		ToolName: attrs["tool_name"],
	}

	if ns := rec.GetTimeUnixNano(); ns > 0 {
		e.Timestamp = time.Unix(0, int64(ns)).UTC()
	} else {
		e.Timestamp = time.Now().UTC()
	}
	if e.ID == "" {
		e.ID = fmt.Sprintf("%s-%d", kind, rec.GetTimeUnixNano())
	}

	if model := attrs["model"]; model != "" {
		in.store.SetModel(sessionID, model)
	}
	if cwd := attrs["cwd"]; cwd != "" {
		in.store.SetCWD(sessionID, cwd)
	}

	in.store.AppendEvent(sessionID, e)
	in.logger.LogEvent(sessionID, e)
}

// recordText pulls the textual payload: explicit content attributes win,
// then the prompt attribute, then the record body.
func recordText(rec *logspb.LogRecord, attrs map[string]string) string {
	if content, ok := attrs["content"]; ok {
		return content
	}
	if prompt, ok := attrs["prompt"]; ok {
		return prompt
	}
	return rec.GetBody().GetStringValue()
}

// resourceIdentity extracts the session ID and session metadata from the
// OTLP resource attributes.
func resourceIdentity(res *resourcepb.Resource) (string, state.SessionMetadata) {
	var (
		sessionID string
		meta      state.SessionMetadata
	)
	for _, kv := range res.GetAttributes() {
		val := anyValueString(kv.GetValue())
		switch kv.GetKey() {
		case "session.id":
			sessionID = val
		case "service.version":
			meta.ServiceVersion = val
		case "os.type":
			meta.OSType = val
		case "os.version":
			meta.OSVersion = val
		case "host.arch":
			meta.HostArch = val
		}
	}
	return sessionID, meta
}

func attrMap(kvs []*commonpb.KeyValue) map[string]string {
	if len(kvs) == 0 {
		return map[string]string{}
	}
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		m[kv.GetKey()] = anyValueString(kv.GetValue())
	}
	return m
}

func anyValueString(v *commonpb.AnyValue) string {
	switch val := v.GetValue().(type) {
	case *commonpb.AnyValue_StringValue:
		return val.StringValue
	case *commonpb.AnyValue_IntValue:
		return strconv.FormatInt(val.IntValue, 10)
	case *commonpb.AnyValue_DoubleValue:
		return strconv.FormatFloat(val.DoubleValue, 'f', -1, 64)
	case *commonpb.AnyValue_BoolValue:
		return strconv.FormatBool(val.BoolValue)
	default:
		return ""
	}
}
