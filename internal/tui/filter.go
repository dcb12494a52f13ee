package tui

import "github.com/nixlim/cc-view/internal/transcript"

// KindFilter selects which event kinds appear in the raw feed panel.
type KindFilter struct {
	// Kinds is the set of event kinds to display. If empty, all kinds are shown.
	Kinds map[transcript.Kind]bool
}

// AllKinds returns a map of all event kinds set to true (no filtering).
func AllKinds() map[transcript.Kind]bool {
	return map[transcript.Kind]bool{
		transcript.KindUser:           true,
		transcript.KindAssistant:      true,
		transcript.KindToolInvocation: true,
		transcript.KindToolResult:     true,
		transcript.KindSystem:         true,
	}
}

// NewKindFilter returns a filter that shows all kinds.
func NewKindFilter() KindFilter {
	return KindFilter{Kinds: AllKinds()}
}

// Matches returns true if the given kind passes this filter.
func (f *KindFilter) Matches(kind transcript.Kind) bool {
	if len(f.Kinds) == 0 {
		return true
	}
	return f.Kinds[kind]
}

// FilterMenuState tracks the interactive filter menu.
type FilterMenuState struct {
	Active  bool
	Cursor  int
	Options []FilterOption
}

// FilterOption represents one toggleable kind in the filter menu.
type FilterOption struct {
	Label   string
	Kind    transcript.Kind
	Enabled bool
}

// NewFilterMenu creates a filter menu with all kinds enabled.
func NewFilterMenu() FilterMenuState {
	return FilterMenuState{
		Options: []FilterOption{
			{Label: "User Prompts", Kind: transcript.KindUser, Enabled: true},
			{Label: "Agent Messages", Kind: transcript.KindAssistant, Enabled: true},
			{Label: "Tool Invocations", Kind: transcript.KindToolInvocation, Enabled: true},
			{Label: "Tool Results", Kind: transcript.KindToolResult, Enabled: true},
			{Label: "System Messages", Kind: transcript.KindSystem, Enabled: true},
		},
	}
}

// filterFromMenu rebuilds the kind filter from the menu state.
func filterFromMenu(menu FilterMenuState) KindFilter {
	f := KindFilter{Kinds: make(map[transcript.Kind]bool, len(menu.Options))}
	for _, opt := range menu.Options {
		f.Kinds[opt.Kind] = opt.Enabled
	}
	return f
}
