// Package outline implements the bullet tree: the node model, read-only
// queries, pure structural mutations, the collapse projection and the media
// attachment index.
//
// A Forest is treated as an immutable value. Mutations never modify a node
// that is reachable from their input; they copy the path from the root to the
// changed node and share every untouched subtree by pointer.
package outline

// Node is a single bullet.
type Node struct {
	ID          string  `json:"id" yaml:"id"`
	Content     string  `json:"content" yaml:"content"` // HTML fragment, opaque to the engine
	Level       int     `json:"level" yaml:"level"`     // 0 for roots
	Children    []*Node `json:"children" yaml:"children"`
	IsCollapsed bool    `json:"isCollapsed" yaml:"isCollapsed"`
}

// Forest is the ordered list of root bullets of a document.
type Forest []*Node

// newNode returns an empty bullet at the given level.
func newNode(id string, level int) *Node {
	return &Node{
		ID:       id,
		Level:    level,
		Children: []*Node{},
	}
}

// clone returns a shallow copy of n. The children slice is copied so that
// callers may replace entries without touching the original node.
func (n *Node) clone() *Node {
	c := *n
	c.Children = make([]*Node, len(n.Children))
	copy(c.Children, n.Children)
	return &c
}

// withLevel returns n with its level set to level and its descendants
// renumbered accordingly. Subtrees that already carry the right levels are
// returned unchanged.
func withLevel(n *Node, level int) *Node {
	if n.Level == level && childrenAtLevel(n.Children, level+1) {
		return n
	}
	c := n.clone()
	c.Level = level
	for i, child := range c.Children {
		c.Children[i] = withLevel(child, level+1)
	}
	return c
}

func childrenAtLevel(children []*Node, level int) bool {
	for _, child := range children {
		if child.Level != level || !childrenAtLevel(child.Children, level+1) {
			return false
		}
	}
	return true
}

// NormalizeLevels rewrites every level in f to match the actual nesting depth.
func NormalizeLevels(f Forest) Forest {
	if childrenAtLevel(f, 0) {
		return f
	}
	out := make(Forest, len(f))
	for i, root := range f {
		out[i] = withLevel(root, 0)
	}
	return out
}

// LevelsConsistent reports whether every level in f matches its depth.
func LevelsConsistent(f Forest) bool {
	return childrenAtLevel(f, 0)
}
