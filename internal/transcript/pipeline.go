package transcript

// Render runs the full pipeline: classify, resolve assistant finality, then
// group. It is a pure function of its inputs; calling it twice on the same
// (events, isLive) pair yields identical output, and it holds no state
// between calls. Callers re-render on every new event and may memoize
// externally if the O(n) cost matters.
func (c Classifier) Render(events []Event, isLive bool) ([]Group, error) {
	classified, err := c.Classify(events)
	if err != nil {
		return nil, err
	}
	resolved := ResolveFinality(classified, isLive)
	return BuildGroups(resolved), nil
}
