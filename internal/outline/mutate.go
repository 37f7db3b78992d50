package outline

// Every mutation returns the resulting forest and whether anything changed.
// A missing target is not an error: the input forest is returned as is.

// replaceNode substitutes the node with the given id by the nodes returned
// from fn, copying every ancestor on the way down.
func replaceNode(nodes []*Node, id string, fn func(n *Node) []*Node) ([]*Node, bool) {
	for i, n := range nodes {
		if n.ID == id {
			repl := fn(n)
			out := make([]*Node, 0, len(nodes)-1+len(repl))
			out = append(out, nodes[:i]...)
			out = append(out, repl...)
			out = append(out, nodes[i+1:]...)
			return out, true
		}
		if children, ok := replaceNode(n.Children, id, fn); ok {
			c := *n
			c.Children = children
			out := make([]*Node, len(nodes))
			copy(out, nodes)
			out[i] = &c
			return out, true
		}
	}
	return nodes, false
}

// replaceSiblings hands the sibling list that contains id to fn and
// substitutes the list it returns.
func replaceSiblings(nodes []*Node, id string, fn func(siblings []*Node, idx int) []*Node) ([]*Node, bool) {
	for i, n := range nodes {
		if n.ID == id {
			return fn(nodes, i), true
		}
	}
	for i, n := range nodes {
		if children, ok := replaceSiblings(n.Children, id, fn); ok {
			c := *n
			c.Children = children
			out := make([]*Node, len(nodes))
			copy(out, nodes)
			out[i] = &c
			return out, true
		}
	}
	return nodes, false
}

func exists(f Forest, id string) bool {
	_, ok := FindNode(f, id)
	return ok
}

// AppendRoot adds a new root bullet at the end of the forest.
func AppendRoot(f Forest, id, content string) (Forest, bool) {
	if id == "" || exists(f, id) {
		return f, false
	}
	n := newNode(id, 0)
	n.Content = content
	out := make(Forest, 0, len(f)+1)
	out = append(out, f...)
	return append(out, n), true
}

// UpdateContent replaces the content of id. Unchanged content leaves the
// forest untouched so that shared ancestors are not rewritten.
func UpdateContent(f Forest, id, content string) (Forest, bool) {
	n, ok := FindNode(f, id)
	if !ok || n.Content == content {
		return f, false
	}
	out, _ := replaceNode(f, id, func(n *Node) []*Node {
		c := *n
		c.Content = content
		return []*Node{&c}
	})
	return out, true
}

// InsertChild appends an empty child to parentID.
func InsertChild(f Forest, parentID, newID string) (Forest, bool) {
	if newID == "" || exists(f, newID) {
		return f, false
	}
	return replaceNode(f, parentID, func(p *Node) []*Node {
		c := p.clone()
		c.Children = append(c.Children, newNode(newID, p.Level+1))
		return []*Node{c}
	})
}

// InsertSiblingAfter places an empty bullet right after targetID, at the
// level targetID has when the call is made.
func InsertSiblingAfter(f Forest, targetID, newID string) (Forest, bool) {
	if newID == "" || exists(f, newID) {
		return f, false
	}
	return replaceNode(f, targetID, func(t *Node) []*Node {
		return []*Node{t, newNode(newID, t.Level)}
	})
}

// DeleteNode removes id together with its subtree.
func DeleteNode(f Forest, id string) (Forest, bool) {
	return replaceNode(f, id, func(*Node) []*Node { return nil })
}

// Outdent moves a nested bullet, with its subtree, out of its parent and
// right after it, one level up. Roots are left where they are.
func Outdent(f Forest, id string) (Forest, bool) {
	parentID, status := FindParent(f, id)
	if status != ParentFound {
		return f, false
	}
	return replaceNode(f, parentID, func(p *Node) []*Node {
		var moved *Node
		c := *p
		c.Children = make([]*Node, 0, len(p.Children)-1)
		for _, child := range p.Children {
			if child.ID == id {
				moved = child
				continue
			}
			c.Children = append(c.Children, child)
		}
		return []*Node{&c, withLevel(moved, p.Level)}
	})
}

// Indent makes id the last child of its previous sibling. The first bullet of
// a list has nothing to indent under and is left alone.
func Indent(f Forest, id string) (Forest, bool) {
	applied := false
	out, _ := replaceSiblings(f, id, func(siblings []*Node, i int) []*Node {
		if i == 0 {
			return siblings
		}
		applied = true
		prev := siblings[i-1].clone()
		prev.Children = append(prev.Children, withLevel(siblings[i], prev.Level+1))
		list := make([]*Node, 0, len(siblings)-1)
		list = append(list, siblings[:i-1]...)
		list = append(list, prev)
		return append(list, siblings[i+1:]...)
	})
	if !applied {
		return f, false
	}
	return out, true
}

// InsertCollapsibleSection creates a labelled bullet with exactly one empty
// child. Placement depends on parentID:
//   - empty: the section becomes the last root;
//   - a nested bullet: the section is inserted right after it, as a sibling;
//   - a root bullet: the section is appended to its children.
//
// Nested targets get a sibling while roots get a child. Callers rely on this
// asymmetry, so it is kept.
func InsertCollapsibleSection(f Forest, parentID, label, sectionID, childID string) (Forest, bool) {
	if sectionID == "" || childID == "" || sectionID == childID || exists(f, sectionID) || exists(f, childID) {
		return f, false
	}
	section := func(level int) *Node {
		s := newNode(sectionID, level)
		s.Content = label
		s.Children = []*Node{newNode(childID, level+1)}
		return s
	}
	if parentID == "" {
		out := make(Forest, 0, len(f)+1)
		out = append(out, f...)
		return append(out, section(0)), true
	}
	switch _, status := FindParent(f, parentID); status {
	case ParentFound:
		return replaceNode(f, parentID, func(t *Node) []*Node {
			return []*Node{t, section(t.Level)}
		})
	case ParentIsRoot:
		return replaceNode(f, parentID, func(t *Node) []*Node {
			c := t.clone()
			c.Children = append(c.Children, section(t.Level+1))
			return []*Node{c}
		})
	default:
		return f, false
	}
}
