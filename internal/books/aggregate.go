package books

// Group holds the fiction items of one genre that share its minimum page count.
type Group struct {
	Label string
	Pages int
	Items []Item
}

// GroupMins is the result of MinPagesByGroup. Groups keep the order in which
// their label first appeared; lookups by label are constant time.
type GroupMins struct {
	groups []Group
	index  map[string]int
}

// MinPagesByGroup groups fiction items by label and keeps, per group, the
// items tied at the lowest page count. Non-fiction items are skipped.
//
// It is a single pass: a strictly smaller count resets the group, an equal
// count appends, a larger one is ignored. Tied items keep input order.
func MinPagesByGroup(items []Item) GroupMins {
	result := GroupMins{index: make(map[string]int)}

	for _, it := range items {
		if !it.IsFiction() {
			continue
		}

		i, seen := result.index[it.Label]
		if !seen {
			result.index[it.Label] = len(result.groups)
			result.groups = append(result.groups, Group{
				Label: it.Label,
				Pages: it.Pages,
				Items: []Item{it},
			})
			continue
		}

		g := &result.groups[i]
		switch {
		case it.Pages < g.Pages:
			g.Pages = it.Pages
			g.Items = []Item{it}
		case it.Pages == g.Pages:
			g.Items = append(g.Items, it)
		}
	}

	return result
}

// Groups returns the groups in first-seen order.
func (m GroupMins) Groups() []Group {
	return m.groups
}

// Get returns the group for a label.
func (m GroupMins) Get(label string) (Group, bool) {
	i, ok := m.index[label]
	if !ok {
		return Group{}, false
	}
	return m.groups[i], true
}

// Len returns the number of groups.
func (m GroupMins) Len() int {
	return len(m.groups)
}
