package transcript

import (
	"fmt"
	"strings"
)

// summaryMaxTools caps how many distinct tool names a collapsed summary
// spells out before trailing off.
const summaryMaxTools = 3

// summarize generates the one-line description of a collapsed run, e.g.
// "agent activity, 2 Read, 1 Bash" or "thinking" or "warmup".
func summarize(run []Classified) string {
	var warmups, rest []Event
	for _, c := range run {
		if isWarmup(c.Event) {
			warmups = append(warmups, c.Event)
		} else {
			rest = append(rest, c.Event)
		}
	}

	if len(rest) == 0 {
		return "warmup"
	}

	var (
		thinking    int
		invocations int
		results     int
		toolOrder   []string
		toolCounts  = map[string]int{}
	)
	for _, e := range rest {
		switch e.Kind {
		case KindAssistant:
			if strings.TrimSpace(e.Text) != "" {
				thinking++
			}
		case KindToolInvocation:
			invocations++
			name := e.ToolName
			if name == "" {
				name = "tool"
			}
			if _, seen := toolCounts[name]; !seen {
				toolOrder = append(toolOrder, name)
			}
			toolCounts[name]++
		case KindToolResult:
			results++
		}
	}

	var parts []string

	switch {
	case thinking > 0 && (invocations > 0 || results > 0):
		parts = append(parts, "agent activity")
	case thinking > 0:
		parts = append(parts, "thinking")
	}

	if invocations > 0 {
		tokens := make([]string, 0, summaryMaxTools)
		for i, name := range toolOrder {
			if i == summaryMaxTools {
				break
			}
			tokens = append(tokens, fmt.Sprintf("%d %s", toolCounts[name], name))
		}
		tools := strings.Join(tokens, ", ")
		if len(toolOrder) > summaryMaxTools {
			tools += "..."
		}
		parts = append(parts, tools)
	} else if results > 0 {
		if results == 1 {
			parts = append(parts, "1 result")
		} else {
			parts = append(parts, fmt.Sprintf("%d results", results))
		}
	}

	if len(warmups) > 0 {
		parts = append(parts, "warmup")
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%d items", len(run))
	}
	return strings.Join(parts, ", ")
}
