package transcript

import "strings"

// WarmupMarker flags operational warmup probes. Any event whose text
// contains it is folded away regardless of kind.
const WarmupMarker = "Warmup"

// Classifier assigns each event a display priority and a question flag.
type Classifier struct {
	// QuestionTool identifies the interactive multiple-choice question
	// tool. Events carrying it are always primary questions, overriding
	// the text heuristics.
	QuestionTool string
}

// NewClassifier returns a Classifier recognizing the given question tool.
func NewClassifier(questionTool string) Classifier {
	return Classifier{QuestionTool: questionTool}
}

// Classify produces one Classified entry per input event, in input order.
// Nothing is filtered: low-priority events are kept and marked secondary.
// An event with an unrecognized kind is a contract violation and returns
// an error rather than a silent misclassification.
func (c Classifier) Classify(events []Event) ([]Classified, error) {
	if err := validateKinds(events); err != nil {
		return nil, err
	}

	out := make([]Classified, len(events))
	for i, e := range events {
		out[i] = c.classifyOne(e)
	}
	return out, nil
}

func (c Classifier) classifyOne(e Event) Classified {
	// Warmup probes are operational noise, never conversational content.
	if isWarmup(e) {
		return Classified{Event: e, Priority: Secondary}
	}

	switch e.Kind {
	case KindUser, KindAssistant:
		if strings.TrimSpace(e.Text) == "" {
			return Classified{Event: e, Priority: Secondary}
		}
		if e.Kind == KindUser {
			return Classified{Event: e, Priority: Primary}
		}
		return Classified{
			Event:      e,
			Priority:   Primary,
			IsQuestion: IsQuestion(e.Text, e.ToolName, c.QuestionTool),
		}

	case KindToolInvocation:
		// The structured question tool is an explicit "awaiting a choice"
		// signal and surfaces in full.
		if c.QuestionTool != "" && e.ToolName == c.QuestionTool {
			return Classified{Event: e, Priority: Primary, IsQuestion: true}
		}
		return Classified{Event: e, Priority: Secondary}

	default: // KindToolResult, KindSystem
		return Classified{Event: e, Priority: Secondary}
	}
}

func isWarmup(e Event) bool {
	return strings.Contains(e.Text, WarmupMarker)
}
