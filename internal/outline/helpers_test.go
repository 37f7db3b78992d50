package outline

func n(id, content string, level int, children ...*Node) *Node {
	if children == nil {
		children = []*Node{}
	}
	return &Node{ID: id, Content: content, Level: level, Children: children}
}

// fatalfer is satisfied by *testing.T and *rapid.T.
type fatalfer interface {
	Helper()
	Fatalf(format string, args ...any)
}

// checkInvariants fails the test when levels or id uniqueness are broken.
func checkInvariants(t fatalfer, f Forest) {
	t.Helper()
	seen := map[string]bool{}
	var visit func(nodes []*Node, level int)
	visit = func(nodes []*Node, level int) {
		for _, node := range nodes {
			if seen[node.ID] {
				t.Fatalf("duplicate id %q", node.ID)
			}
			seen[node.ID] = true
			if node.Level != level {
				t.Fatalf("node %q has level %d, want %d", node.ID, node.Level, level)
			}
			visit(node.Children, level+1)
		}
	}
	visit(f, 0)
}

func rootIDs(f Forest) []string {
	ids := make([]string, len(f))
	for i, node := range f {
		ids[i] = node.ID
	}
	return ids
}

func childIDs(node *Node) []string {
	ids := make([]string, len(node.Children))
	for i, c := range node.Children {
		ids[i] = c.ID
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
