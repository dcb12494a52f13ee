package transcript

import "strings"

// followerKind records the nearest following conversational event during
// the backward finality pass.
type followerKind int

const (
	followerNone followerKind = iota
	followerUser
	followerAssistant
)

// ResolveFinality demotes assistant turns that were superseded before the
// human ever saw them. Only entries that are assistant and currently primary
// are candidates; everything else passes through unchanged.
//
// A candidate is final when the next non-empty user or assistant event after
// it is a user message (the human reacted to it), or when nothing follows
// and the agent is idle (isLive false). If the agent spoke again first, or
// is still producing output at the tail, the candidate was thinking out
// loud and folds into the activity summary.
//
// The implementation is a single backward pass but preserves the exact
// per-candidate forward-scan semantics.
func ResolveFinality(classified []Classified, isLive bool) []Classified {
	out := make([]Classified, len(classified))
	copy(out, classified)

	next := followerNone
	for i := len(out) - 1; i >= 0; i-- {
		e := out[i].Event

		if e.Kind == KindAssistant && out[i].Priority == Primary {
			final := false
			switch next {
			case followerUser:
				final = true
			case followerAssistant:
				final = false
			case followerNone:
				// Tail of the log: final only once the agent has gone idle.
				final = !isLive
			}
			if !final {
				out[i].Priority = Secondary
			}
		}

		if strings.TrimSpace(e.Text) != "" {
			switch e.Kind {
			case KindUser:
				next = followerUser
			case KindAssistant:
				next = followerAssistant
			}
		}
	}

	return out
}
