// Package feed formats transcript events into one-line entries for the
// global activity strip and buffers the most recent of them.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/nixlim/cc-view/internal/transcript"
)

// Line is one display-ready entry in the activity feed.
type Line struct {
	SessionID string
	Kind      transcript.Kind
	Text      string
	Timestamp time.Time
}

// FormatEvent converts a transcript event into a feed Line. Formatting per
// kind:
//   - user:            "[session] > prompt..."
//   - assistant:       "[session] agent: text..." (or "agent -> Tool" for tool calls)
//   - tool_invocation: "[session] ToolName"
//   - tool_result:     "[session] ToolName done" (or "result" without a name)
//   - system:          "[session] * notice..."
func FormatEvent(sessionID string, e transcript.Event) Line {
	l := Line{
		SessionID: sessionID,
		Kind:      e.Kind,
		Timestamp: e.Timestamp,
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}

	session := shortID(sessionID)

	switch e.Kind {
	case transcript.KindUser:
		l.Text = fmt.Sprintf("[%s] > %s", session, truncate(oneLine(e.Text), 80))
	case transcript.KindAssistant:
		if e.ToolName != "" {
			l.Text = fmt.Sprintf("[%s] agent -> %s", session, e.ToolName)
		} else {
			l.Text = fmt.Sprintf("[%s] agent: %s", session, truncate(oneLine(e.Text), 80))
		}
	case transcript.KindToolInvocation:
		l.Text = fmt.Sprintf("[%s] %s", session, toolLabel(e.ToolName))
	case transcript.KindToolResult:
		if e.ToolName != "" {
			l.Text = fmt.Sprintf("[%s] %s done", session, e.ToolName)
		} else {
			l.Text = fmt.Sprintf("[%s] result", session)
		}
	case transcript.KindSystem:
		l.Text = fmt.Sprintf("[%s] * %s", session, truncate(oneLine(e.Text), 80))
	default:
		l.Text = fmt.Sprintf("[%s] %s", session, e.Kind)
	}

	return l
}

func toolLabel(name string) string {
	if name == "" {
		return "tool"
	}
	return name
}

// oneLine collapses newlines so the feed stays one row per event.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// shortID returns a shortened session ID for display.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
