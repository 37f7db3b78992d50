package outline

import "sort"

// CollapseSet holds the ids of bullets whose children are hidden. It shadows
// Node.IsCollapsed while a document is being edited so that folding never
// rewrites the tree.
type CollapseSet map[string]struct{}

// NewCollapseSet returns a set containing ids.
func NewCollapseSet(ids ...string) CollapseSet {
	s := make(CollapseSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is collapsed.
func (s CollapseSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy of s.
func (s CollapseSet) Clone() CollapseSet {
	c := make(CollapseSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Toggle returns a new set with the membership of id flipped.
func (s CollapseSet) Toggle(id string) CollapseSet {
	c := s.Clone()
	if c.Has(id) {
		delete(c, id)
	} else {
		c[id] = struct{}{}
	}
	return c
}

// Without returns a new set with id removed. s is returned as is when id is
// not a member.
func (s CollapseSet) Without(id string) CollapseSet {
	if !s.Has(id) {
		return s
	}
	c := s.Clone()
	delete(c, id)
	return c
}

// Sorted returns the members in lexical order.
func (s CollapseSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Prune drops ids that no longer exist in f.
func (s CollapseSet) Prune(f Forest) CollapseSet {
	live := make(map[string]struct{}, len(s))
	Walk(f, func(n, _ *Node) bool {
		if s.Has(n.ID) {
			live[n.ID] = struct{}{}
		}
		return true
	})
	if len(live) == len(s) {
		return s
	}
	return CollapseSet(live)
}

// SeedCollapsed builds the projection set from the stored IsCollapsed flags.
func SeedCollapsed(f Forest) CollapseSet {
	s := CollapseSet{}
	Walk(f, func(n, _ *Node) bool {
		if n.IsCollapsed {
			s[n.ID] = struct{}{}
		}
		return true
	})
	return s
}

// Project returns f with every IsCollapsed flag taken from s. Nodes whose
// flag already matches are shared with f.
func Project(f Forest, s CollapseSet) Forest {
	out, _ := project(f, s)
	return out
}

func project(nodes []*Node, s CollapseSet) ([]*Node, bool) {
	var out []*Node
	for i, n := range nodes {
		children, changed := project(n.Children, s)
		collapsed := s.Has(n.ID)
		if !changed && collapsed == n.IsCollapsed {
			if out != nil {
				out[i] = n
			}
			continue
		}
		if out == nil {
			out = make([]*Node, len(nodes))
			copy(out, nodes[:i])
		}
		c := *n
		c.Children = children
		c.IsCollapsed = collapsed
		out[i] = &c
	}
	if out == nil {
		return nodes, false
	}
	return out, true
}

// Row is one visible line of a rendered outline.
type Row struct {
	Node        *Node
	Collapsed   bool
	HasChildren bool
}

// VisibleRows flattens f in document order, skipping the descendants of
// collapsed bullets.
func VisibleRows(f Forest, s CollapseSet) []Row {
	var rows []Row
	var visit func(nodes []*Node)
	visit = func(nodes []*Node) {
		for _, n := range nodes {
			collapsed := s.Has(n.ID)
			rows = append(rows, Row{Node: n, Collapsed: collapsed, HasChildren: len(n.Children) > 0})
			if !collapsed {
				visit(n.Children)
			}
		}
	}
	visit(f)
	return rows
}
