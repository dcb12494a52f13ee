package transcript

import (
	"strings"
	"testing"
)

func TestBuildGroups_TypicalWorkflow(t *testing.T) {
	// user, two Read invocations, one result, final assistant answer ->
	// exactly 3 groups with the middle run collapsed.
	events := seq(
		ev(KindUser, "hi", ""),
		ev(KindToolInvocation, "", "Read"),
		ev(KindToolInvocation, "", "Read"),
		ev(KindToolResult, "contents", "Read"),
		ev(KindAssistant, "Found it", ""),
	)
	groups, err := NewClassifier(testQuestionTool).Render(events, false)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Collapsed || groups[0].Entries[0].Event.Text != "hi" {
		t.Errorf("group 0 should be the primary user turn, got %+v", groups[0])
	}
	if !groups[1].Collapsed || len(groups[1].Entries) != 3 {
		t.Fatalf("group 1 should collapse the 3 tool events, got %+v", groups[1])
	}
	if !strings.Contains(groups[1].Summary, "2 Read") {
		t.Errorf("summary should mention \"2 Read\", got %q", groups[1].Summary)
	}
	if groups[2].Collapsed || groups[2].Entries[0].Event.Text != "Found it" {
		t.Errorf("group 2 should be the primary assistant turn, got %+v", groups[2])
	}
}

func TestBuildGroups_IDsAreSequential(t *testing.T) {
	classified := classifyAll(t, seq(
		ev(KindToolInvocation, "", "Read"),
		ev(KindUser, "a", ""),
		ev(KindToolInvocation, "", "Bash"),
		ev(KindUser, "b", ""),
	))
	groups := BuildGroups(classified)

	for i, g := range groups {
		if g.ID != i {
			t.Errorf("group %d has id %d; ids must share one monotonic counter", i, g.ID)
		}
	}
}

func TestBuildGroups_TrailingRunIsFlushed(t *testing.T) {
	classified := classifyAll(t, seq(
		ev(KindUser, "go", ""),
		ev(KindToolInvocation, "", "Grep"),
		ev(KindToolResult, "x", "Grep"),
	))
	groups := BuildGroups(classified)

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	last := groups[len(groups)-1]
	if !last.Collapsed || len(last.Entries) != 2 {
		t.Errorf("trailing secondary run must be flushed as a collapsed group, got %+v", last)
	}
}

func TestBuildGroups_EmptyInput(t *testing.T) {
	if groups := BuildGroups(nil); len(groups) != 0 {
		t.Errorf("expected no groups for empty input, got %d", len(groups))
	}
}

func TestSummarize_Table(t *testing.T) {
	cases := []struct {
		name   string
		events []Event
		want   string
	}{
		{
			name:   "all_warmup",
			events: []Event{ev(KindAssistant, "Warmup", ""), ev(KindToolInvocation, "Warmup ping", "Bash")},
			want:   "warmup",
		},
		{
			name:   "thinking_only",
			events: []Event{ev(KindAssistant, "let me look at the store first", "")},
			want:   "thinking",
		},
		{
			name: "thinking_plus_tools",
			events: []Event{
				ev(KindAssistant, "checking", ""),
				ev(KindToolInvocation, "", "Read"),
			},
			want: "agent activity, 1 Read",
		},
		{
			name: "tool_counts_grouped_by_name",
			events: []Event{
				ev(KindToolInvocation, "", "Read"),
				ev(KindToolInvocation, "", "Bash"),
				ev(KindToolInvocation, "", "Read"),
			},
			want: "2 Read, 1 Bash",
		},
		{
			name: "more_than_three_tools_trail_off",
			events: []Event{
				ev(KindToolInvocation, "", "Read"),
				ev(KindToolInvocation, "", "Bash"),
				ev(KindToolInvocation, "", "Grep"),
				ev(KindToolInvocation, "", "Edit"),
			},
			want: "1 Read, 1 Bash, 1 Grep...",
		},
		{
			name: "results_without_invocations",
			events: []Event{
				ev(KindToolResult, "a", "Read"),
				ev(KindToolResult, "b", "Read"),
			},
			want: "2 results",
		},
		{
			name: "warmup_mixed_with_activity",
			events: []Event{
				ev(KindToolInvocation, "", "Read"),
				ev(KindAssistant, "Warmup", ""),
			},
			want: "1 Read, warmup",
		},
		{
			name: "fallback_item_count",
			events: []Event{
				ev(KindSystem, "notice one", ""),
				ev(KindSystem, "notice two", ""),
			},
			want: "2 items",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			run := make([]Classified, len(tc.events))
			for i, e := range tc.events {
				run[i] = Classified{Event: e, Priority: Secondary}
			}
			if got := summarize(run); got != tc.want {
				t.Errorf("summarize() = %q, want %q", got, tc.want)
			}
		})
	}
}
