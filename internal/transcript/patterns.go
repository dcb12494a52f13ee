package transcript

import (
	"regexp"
	"strings"
)

// questionPattern is one named predicate in the question heuristic. The
// patterns are evaluated in order; the first match wins. Keeping them as a
// declarative list lets each rule be tested on its own and extended without
// touching the classifier's control flow.
type questionPattern struct {
	name  string
	match func(text string) bool
}

var (
	interrogativeRe = regexp.MustCompile(`(?i)^\s*(should|would|could|can|do|is|are|what|which|how|why|where|when)\b`)
	politeRequestRe = regexp.MustCompile(`(?i)\b(please|kindly)\s+(confirm|approve|review|decide|choose|select)\b|\b(your|a)\s+(confirmation|approval|review|decision|choice|selection)\b`)
	waitingForRe    = regexp.MustCompile(`(?i)\bwaiting\s+for\s+(your|input|response|approval|decision)\b`)
	bracketPromptRe = regexp.MustCompile(`\[[Yy]/[Nn]\]|\[[Nn]/[Yy]\]|\[y(es)?/n(o)?\]`)
)

// questionPatterns is the ordered heuristic rule set from cheapest to most
// specific. Best-effort over natural language; false positives and negatives
// are expected, and the explicit question-tool signal always overrides it.
var questionPatterns = []questionPattern{
	{
		name: "line_ends_with_question_mark",
		match: func(text string) bool {
			for _, line := range strings.Split(text, "\n") {
				if strings.HasSuffix(strings.TrimRight(line, " \t"), "?") {
					return true
				}
			}
			return false
		},
	},
	{
		name: "interrogative_opening",
		match: func(text string) bool {
			return interrogativeRe.MatchString(text)
		},
	},
	{
		name: "polite_request",
		match: func(text string) bool {
			return politeRequestRe.MatchString(text)
		},
	},
	{
		name: "waiting_for",
		match: func(text string) bool {
			return waitingForRe.MatchString(text)
		},
	},
	{
		name: "let_me_know",
		match: func(text string) bool {
			return strings.Contains(strings.ToLower(text), "let me know")
		},
	},
	{
		name: "proceed",
		match: func(text string) bool {
			return strings.Contains(strings.ToLower(text), "proceed?")
		},
	},
	{
		name: "bracketed_prompt",
		match: func(text string) bool {
			return bracketPromptRe.MatchString(text)
		},
	},
	{
		name: "what_would_you_like",
		match: func(text string) bool {
			return strings.Contains(strings.ToLower(text), "what would you like")
		},
	},
	{
		name: "do_you_want_me_to",
		match: func(text string) bool {
			return strings.Contains(strings.ToLower(text), "do you want me to")
		},
	},
}

// IsQuestion reports whether an event's text looks like it is asking the
// human something. The structured question tool is an explicit signal and
// short-circuits the text heuristics.
func IsQuestion(text, toolName, questionTool string) bool {
	if questionTool != "" && toolName == questionTool {
		return true
	}
	for _, p := range questionPatterns {
		if p.match(text) {
			return true
		}
	}
	return false
}
