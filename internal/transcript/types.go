// Package transcript classifies and groups the event log of a Claude Code
// session for display: it decides which events render in full, which fold
// into collapsed activity summaries, which assistant turns are final, and
// whether the session is currently waiting for a human reply.
package transcript

import (
	"fmt"
	"time"
)

// Kind identifies the type of a transcript event. The set is closed;
// events with any other kind are rejected at the boundary.
type Kind string

const (
	KindUser           Kind = "user"
	KindAssistant      Kind = "assistant"
	KindToolInvocation Kind = "tool_invocation"
	KindToolResult     Kind = "tool_result"
	KindSystem         Kind = "system"
)

// Valid reports whether k is one of the five recognized kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindUser, KindAssistant, KindToolInvocation, KindToolResult, KindSystem:
		return true
	}
	return false
}

// Event is one immutable record of agent, human, or tool activity.
// Events arrive in strict chronological order and are never reordered.
type Event struct {
	// ID is stable and unique within a session. It is used for display
	// keys only, never for classification.
	ID string

	Kind Kind

	// Text is the textual payload. May be empty or whitespace-only.
	Text string

	// ToolName is set on tool_invocation and tool_result events, and on
	// assistant events that represent a structured tool call.
	ToolName string

	Timestamp time.Time
}

// Priority is the display priority assigned by the classifier.
type Priority int

const (
	// Primary events render in full, ungrouped.
	Primary Priority = iota
	// Secondary events are folded into collapsed activity summaries.
	Secondary
)

func (p Priority) String() string {
	if p == Primary {
		return "primary"
	}
	return "secondary"
}

// Classified pairs an event with its display priority and question flag.
type Classified struct {
	Event      Event
	Priority   Priority
	IsQuestion bool
}

// Group is one display unit: either a single primary entry, or a collapsed
// run of consecutive secondary entries with a generated summary.
type Group struct {
	// ID is assigned from a single monotonically increasing counter shared
	// by primary and collapsed groups, so relative order is recoverable
	// from ids alone.
	ID int

	Collapsed bool

	// Entries holds exactly one entry for a primary group, and a non-empty
	// ordered run for a collapsed group.
	Entries []Classified

	// Summary is set only on collapsed groups.
	Summary string
}

// Events returns the raw events of the group in order.
func (g Group) Events() []Event {
	out := make([]Event, len(g.Entries))
	for i, c := range g.Entries {
		out[i] = c.Event
	}
	return out
}

func validateKinds(events []Event) error {
	for i, e := range events {
		if !e.Kind.Valid() {
			return fmt.Errorf("event %d (id %q): unrecognized kind %q", i, e.ID, e.Kind)
		}
	}
	return nil
}
