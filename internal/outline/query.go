package outline

// ParentStatus reports the outcome of FindParent.
type ParentStatus int

const (
	// ParentNotFound means the target id does not exist in the forest.
	ParentNotFound ParentStatus = iota
	// ParentIsRoot means the target exists at the root level.
	ParentIsRoot
	// ParentFound means the target is nested; the parent id is returned.
	ParentFound
)

func (s ParentStatus) String() string {
	switch s {
	case ParentIsRoot:
		return "root"
	case ParentFound:
		return "found"
	default:
		return "not_found"
	}
}

// WalkFunc is called for every node in pre-order. parent is nil for roots.
// Returning false stops the walk.
type WalkFunc func(n, parent *Node) bool

// Walk visits every node depth-first, pre-order, children in stored order.
func Walk(f Forest, fn WalkFunc) {
	walk(f, nil, fn)
}

func walk(nodes []*Node, parent *Node, fn WalkFunc) bool {
	for _, n := range nodes {
		if !fn(n, parent) {
			return false
		}
		if !walk(n.Children, n, fn) {
			return false
		}
	}
	return true
}

// FindNode returns the node with the given id.
func FindNode(f Forest, id string) (*Node, bool) {
	var found *Node
	Walk(f, func(n, _ *Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// FindParent locates the parent of id. The returned id is only meaningful
// when the status is ParentFound.
func FindParent(f Forest, id string) (string, ParentStatus) {
	status := ParentNotFound
	parentID := ""
	Walk(f, func(n, parent *Node) bool {
		if n.ID != id {
			return true
		}
		if parent == nil {
			status = ParentIsRoot
		} else {
			status = ParentFound
			parentID = parent.ID
		}
		return false
	})
	return parentID, status
}

// FindLevel returns the stored level of id.
func FindLevel(f Forest, id string) (int, bool) {
	n, ok := FindNode(f, id)
	if !ok {
		return 0, false
	}
	return n.Level, true
}

// FindAncestorPath returns the ids from the root down to the immediate parent
// of id. Roots yield an empty, non-nil path.
func FindAncestorPath(f Forest, id string) ([]string, bool) {
	path := []string{}
	if ancestorPath(f, id, &path) {
		return path, true
	}
	return nil, false
}

func ancestorPath(nodes []*Node, id string, path *[]string) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
		*path = append(*path, n.ID)
		if ancestorPath(n.Children, id, path) {
			return true
		}
		*path = (*path)[:len(*path)-1]
	}
	return false
}

// Count returns the number of nodes in the forest.
func Count(f Forest) int {
	total := 0
	Walk(f, func(*Node, *Node) bool {
		total++
		return true
	})
	return total
}

// IDs returns every id in pre-order.
func IDs(f Forest) []string {
	ids := make([]string, 0, len(f))
	Walk(f, func(n, _ *Node) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// Depth returns the number of levels in the deepest branch (0 for an empty forest).
func Depth(f Forest) int {
	deepest := 0
	Walk(f, func(n, _ *Node) bool {
		if n.Level+1 > deepest {
			deepest = n.Level + 1
		}
		return true
	})
	return deepest
}
