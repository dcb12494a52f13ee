package transcript

// BuildGroups merges consecutive secondary entries into collapsed groups and
// emits each primary entry as its own singleton group. Flattening the result
// in order reproduces the input exactly: grouping is lossless and
// order-preserving. Group ids come from one shared counter.
func BuildGroups(classified []Classified) []Group {
	var (
		groups []Group
		run    []Classified
		nextID int
	)

	flush := func() {
		if len(run) == 0 {
			return
		}
		groups = append(groups, Group{
			ID:        nextID,
			Collapsed: true,
			Entries:   run,
			Summary:   summarize(run),
		})
		nextID++
		run = nil
	}

	for _, c := range classified {
		if c.Priority == Secondary {
			run = append(run, c)
			continue
		}
		flush()
		groups = append(groups, Group{
			ID:      nextID,
			Entries: []Classified{c},
		})
		nextID++
	}
	flush()

	return groups
}
