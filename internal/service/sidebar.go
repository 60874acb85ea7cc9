package service

import (
	"slices"
	"strings"

	domainauth "github.com/piragi/knowledge-shell/internal/domain/auth"
	"github.com/piragi/knowledge-shell/internal/domain/nav"
)

// Brand shown at the top of the sidebar.
const (
	BrandName    = "Piragi"
	BrandTagline = "RAG Platform"
	BrandTarget  = "/"
)

// SidebarUser is the user-display record rendered in the sidebar footer.
type SidebarUser struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// SidebarItem is a display-ready navigation entry.
type SidebarItem struct {
	Title    string        `json:"title"`
	Target   string        `json:"url"`
	Icon     string        `json:"icon,omitempty"`
	Expanded bool          `json:"expanded,omitempty"`
	Current  bool          `json:"current,omitempty"`
	Children []SidebarItem `json:"items,omitempty"`
}

// Navigable reports whether following the item changes location.
func (i SidebarItem) Navigable() bool { return i.Target != "" && i.Target != nav.PlaceholderTarget }

// SidebarGroup is a display-ready navigation group.
type SidebarGroup struct {
	Name   string        `json:"name"`
	Label  string        `json:"label,omitempty"`
	Pinned bool          `json:"pinned,omitempty"`
	Items  []SidebarItem `json:"items"`
}

// Sidebar is the composed navigation tree plus the user-display record.
type Sidebar struct {
	Groups []SidebarGroup `json:"groups"`
	User   SidebarUser    `json:"user"`
}

// Compose combines the navigation model with an identity. It is pure: the same
// inputs always produce structurally identical output, and nothing is filtered
// by identity. Pinned groups are always placed last.
func Compose(model nav.Model, identity domainauth.Identity) Sidebar {
	groups := model.Groups()
	slices.SortStableFunc(groups, func(a, b nav.Group) int {
		switch {
		case a.Pinned == b.Pinned:
			return 0
		case a.Pinned:
			return 1
		default:
			return -1
		}
	})

	out := Sidebar{
		Groups: make([]SidebarGroup, 0, len(groups)),
		User: SidebarUser{
			Name:   domainauth.DisplayName(identity),
			Email:  domainauth.EmailOrEmpty(identity),
			Avatar: domainauth.AvatarOrEmpty(identity),
		},
	}
	for _, g := range groups {
		out.Groups = append(out.Groups, SidebarGroup{
			Name:   g.Name,
			Label:  g.Label,
			Pinned: g.Pinned,
			Items:  composeItems(g.Items),
		})
	}
	return out
}

func composeItems(items []nav.Item) []SidebarItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]SidebarItem, len(items))
	for i, it := range items {
		out[i] = SidebarItem{
			Title:    it.Title,
			Target:   it.Target,
			Icon:     it.Icon,
			Expanded: it.IsActiveHint,
			Children: composeItems(it.Children),
		}
	}
	return out
}

// WithActivePath returns a copy with Current set on the item best matching path:
// an exact target match, otherwise the longest target that is a path prefix.
// Placeholder targets never match. Parents of the current item are expanded.
func (s Sidebar) WithActivePath(path string) Sidebar {
	out := s.clone()
	if path == "" {
		return out
	}

	type hit struct {
		group, item, child int
		score              int
	}
	best := hit{group: -1, child: -1}
	consider := func(target string, h hit) {
		score := matchScore(target, path)
		if score == 0 {
			return
		}
		// Children win ties with their parent.
		if score > best.score || (score == best.score && h.child >= 0) {
			h.score = score
			best = h
		}
	}
	for gi, g := range out.Groups {
		for ii, it := range g.Items {
			if it.Navigable() {
				consider(it.Target, hit{group: gi, item: ii, child: -1})
			}
			for ci, c := range it.Children {
				if c.Navigable() {
					consider(c.Target, hit{group: gi, item: ii, child: ci})
				}
			}
		}
	}
	if best.group < 0 {
		return out
	}

	item := &out.Groups[best.group].Items[best.item]
	if best.child < 0 {
		item.Current = true
		return out
	}
	item.Expanded = true
	item.Children[best.child].Current = true
	return out
}

// matchScore ranks how well target matches path. Zero means no match.
func matchScore(target, path string) int {
	if target == path {
		return 2*len(target) + 1
	}
	prefix := strings.TrimSuffix(target, "/") + "/"
	if target == "/" || !strings.HasPrefix(path, prefix) {
		return 0
	}
	return 2 * len(target)
}

func (s Sidebar) clone() Sidebar {
	out := Sidebar{User: s.User, Groups: make([]SidebarGroup, len(s.Groups))}
	for i, g := range s.Groups {
		g.Items = cloneItems(g.Items)
		out.Groups[i] = g
	}
	return out
}

func cloneItems(items []SidebarItem) []SidebarItem {
	if items == nil {
		return nil
	}
	out := make([]SidebarItem, len(items))
	for i, it := range items {
		it.Children = cloneItems(it.Children)
		out[i] = it
	}
	return out
}
