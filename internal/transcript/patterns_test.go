package transcript

import "testing"

func TestIsQuestion_PatternTable(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"ends_with_question_mark", "I found two approaches.\nWhich one do you prefer?", true},
		{"question_mark_mid_line_only", "the ?. operator is handy here", false},
		{"interrogative_opening", "should we ship this today", true},
		{"interrogative_case_insensitive", "WOULD you like a summary", true},
		{"interrogative_not_at_start", "I think you should rest", false},
		{"polite_request_confirm", "Please confirm the deletion of 14 files.", true},
		{"polite_request_review", "Take a moment for your review of the diff.", true},
		{"waiting_for_input", "Waiting for your go-ahead.", true},
		{"waiting_for_approval", "Currently waiting for approval before merging.", true},
		{"let_me_know", "Let me know if this works for you.", true},
		{"proceed", "Ready to delete the branch. Proceed?", true},
		{"bracketed_prompt", "Overwrite existing config [Y/n]", true},
		{"what_would_you_like", "What would you like me to tackle next", true},
		{"do_you_want_me_to", "do you want me to keep going with the migration", true},
		{"plain_statement", "Finished refactoring the session store.", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsQuestion(tc.text, "", testQuestionTool)
			if got != tc.want {
				t.Errorf("IsQuestion(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestIsQuestion_ToolIdentityShortCircuits(t *testing.T) {
	if !IsQuestion("completely unremarkable text", testQuestionTool, testQuestionTool) {
		t.Error("question tool name must force IsQuestion=true")
	}
	if IsQuestion("completely unremarkable text", "Read", testQuestionTool) {
		t.Error("other tool names must fall through to the text heuristics")
	}
}

func TestQuestionPatterns_HaveUniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range questionPatterns {
		if seen[p.name] {
			t.Errorf("duplicate pattern name %q", p.name)
		}
		seen[p.name] = true
		if p.match == nil {
			t.Errorf("pattern %q has no match func", p.name)
		}
	}
}
