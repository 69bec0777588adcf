package tui

// Tab is one button/pane pair in a tab group.
type Tab struct {
	Key   string
	Title string
}

// TabGroup is a set of mutually exclusive tabs. Exactly one tab is
// active at any time. Switching is synchronous and has no side effect
// beyond the active marker; data for a tab is loaded by its owner.
//
// An inactive tab can carry a dirty marker when background polling
// updates its underlying data; the marker clears the moment that tab
// becomes active.
type TabGroup struct {
	tabs   []Tab
	active int
	dirty  map[string]bool
}

// NewTabGroup builds a group with the first tab active. An empty group
// is valid and inert.
func NewTabGroup(tabs ...Tab) TabGroup {
	return TabGroup{
		tabs:  tabs,
		dirty: make(map[string]bool),
	}
}

// Tabs returns the tabs in display order.
func (g *TabGroup) Tabs() []Tab { return g.tabs }

// Len returns the number of tabs.
func (g *TabGroup) Len() int { return len(g.tabs) }

// Active returns the key of the active tab, or "" for an empty group.
func (g *TabGroup) Active() string {
	if len(g.tabs) == 0 {
		return ""
	}
	return g.tabs[g.active].Key
}

// Activate makes the tab with key active and clears its dirty marker.
// Unknown keys are ignored and reported false.
func (g *TabGroup) Activate(key string) bool {
	for i, t := range g.tabs {
		if t.Key == key {
			g.active = i
			delete(g.dirty, key)
			return true
		}
	}
	return false
}

// Next activates the tab after the active one, wrapping around.
func (g *TabGroup) Next() {
	if len(g.tabs) == 0 {
		return
	}
	g.Activate(g.tabs[(g.active+1)%len(g.tabs)].Key)
}

// Prev activates the tab before the active one, wrapping around.
func (g *TabGroup) Prev() {
	if len(g.tabs) == 0 {
		return
	}
	g.Activate(g.tabs[(g.active-1+len(g.tabs))%len(g.tabs)].Key)
}

// MarkDirty attaches the update marker to an inactive tab. Marking the
// active tab is a no-op; the operator is already looking at it.
func (g *TabGroup) MarkDirty(key string) {
	if key == g.Active() {
		return
	}
	for _, t := range g.tabs {
		if t.Key == key {
			g.dirty[key] = true
			return
		}
	}
}

// Dirty reports whether key carries the update marker.
func (g *TabGroup) Dirty(key string) bool {
	return g.dirty[key]
}
