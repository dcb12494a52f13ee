package transcript

// IsWaitingForInput answers "is a human reply currently expected" from only
// the liveness flag and the tail of the raw event log. It is deliberately
// cheaper and less precise than ResolveFinality: it drives the lightweight
// "needs your response" affordance and its result is not required to agree
// with the resolver in every edge case. The two contracts stay separate.
func IsWaitingForInput(events []Event, isLive bool, questionTool string) bool {
	if isLive || len(events) == 0 {
		return false
	}

	last := events[len(events)-1]

	// A plain textual assistant turn with nothing further happening is
	// presumed to be a completed question or statement awaiting reply.
	if last.Kind == KindAssistant && last.ToolName == "" {
		return true
	}

	if questionTool != "" && last.ToolName == questionTool {
		return true
	}

	return false
}
