// Package nav holds the static navigation model rendered in the application sidebar.
//
// The model is decoded once at startup (from the embedded navigation.yaml or an
// override file) and shared read-only afterwards. Accessors hand out copies so no
// caller can mutate the process-wide configuration.
package nav

import "slices"

// PlaceholderTarget marks an item that has no navigable effect.
const PlaceholderTarget = "#"

// MaxDepth is the deepest nesting allowed below a group (item -> sub-item).
const MaxDepth = 2

// Item is one navigation entry.
type Item struct {
	Title        string `yaml:"title"                json:"title"`
	Target       string `yaml:"target"               json:"target"`
	Icon         string `yaml:"icon,omitempty"       json:"icon,omitempty"`
	IsActiveHint bool   `yaml:"is_active,omitempty"  json:"is_active,omitempty"`
	Children     []Item `yaml:"children,omitempty"   json:"children,omitempty"`
}

// Navigable reports whether following the item changes location.
func (i Item) Navigable() bool { return i.Target != "" && i.Target != PlaceholderTarget }

func (i Item) clone() Item {
	out := i
	if i.Children != nil {
		out.Children = make([]Item, len(i.Children))
		for k, c := range i.Children {
			out.Children[k] = c.clone()
		}
	}
	return out
}

// Group is a named, ordered sequence of items with an optional display label.
type Group struct {
	Name   string `yaml:"name"             json:"name"`
	Label  string `yaml:"label,omitempty"  json:"label,omitempty"`
	Pinned bool   `yaml:"pinned,omitempty" json:"pinned,omitempty"`
	Items  []Item `yaml:"items"            json:"items"`
}

func (g Group) clone() Group {
	out := g
	out.Items = make([]Item, len(g.Items))
	for k, it := range g.Items {
		out.Items[k] = it.clone()
	}
	return out
}

// Model is a versioned navigation configuration. The zero value is empty;
// use Default, Load or Parse to obtain a validated model.
type Model struct {
	version int
	groups  []Group
}

// Version returns the configuration schema version.
func (m Model) Version() int { return m.version }

// Groups returns a deep copy of the groups in display order.
func (m Model) Groups() []Group {
	out := make([]Group, len(m.groups))
	for k, g := range m.groups {
		out[k] = g.clone()
	}
	return out
}

// Group returns a copy of the named group.
func (m Model) Group(name string) (Group, bool) {
	idx := slices.IndexFunc(m.groups, func(g Group) bool { return g.Name == name })
	if idx < 0 {
		return Group{}, false
	}
	return m.groups[idx].clone(), true
}

// Trail returns the titles leading to the item whose target equals path, e.g.
// ["Knowledge", "Graph"] for /knowledge/graph. Sub-items are preferred over their
// parent when both share a target. The second result is false when nothing matches.
func (m Model) Trail(path string) ([]string, bool) {
	var best []string
	for _, g := range m.groups {
		for _, it := range g.Items {
			for _, c := range it.Children {
				if c.Navigable() && c.Target == path {
					return []string{it.Title, c.Title}, true
				}
			}
			if best == nil && it.Navigable() && it.Target == path {
				best = []string{it.Title}
			}
		}
	}
	return best, best != nil
}

// Targets returns every distinct navigable target in display order.
func (m Model) Targets() []string {
	seen := map[string]bool{}
	var out []string
	add := func(t string) {
		if t == "" || t == PlaceholderTarget || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
	}
	for _, g := range m.groups {
		for _, it := range g.Items {
			add(it.Target)
			for _, c := range it.Children {
				add(c.Target)
			}
		}
	}
	return out
}
