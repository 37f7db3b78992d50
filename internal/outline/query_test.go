package outline

import "testing"

func sampleForest() Forest {
	return Forest{
		n("a", "A", 0,
			n("b", "B", 1,
				n("c", "C", 2),
			),
			n("d", "D", 1),
		),
		n("e", "E", 0),
	}
}

func TestFindNode(t *testing.T) {
	f := sampleForest()

	tests := []struct {
		name    string
		id      string
		wantOK  bool
		content string
	}{
		{name: "root", id: "a", wantOK: true, content: "A"},
		{name: "deep", id: "c", wantOK: true, content: "C"},
		{name: "last root", id: "e", wantOK: true, content: "E"},
		{name: "missing", id: "zz", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindNode(f, tt.id)
			if ok != tt.wantOK {
				t.Fatalf("FindNode(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
			}
			if ok && got.Content != tt.content {
				t.Errorf("content = %q, want %q", got.Content, tt.content)
			}
		})
	}
}

func TestFindParent(t *testing.T) {
	f := sampleForest()

	tests := []struct {
		id         string
		wantID     string
		wantStatus ParentStatus
	}{
		{id: "a", wantStatus: ParentIsRoot},
		{id: "b", wantID: "a", wantStatus: ParentFound},
		{id: "c", wantID: "b", wantStatus: ParentFound},
		{id: "d", wantID: "a", wantStatus: ParentFound},
		{id: "missing", wantStatus: ParentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			id, status := FindParent(f, tt.id)
			if status != tt.wantStatus {
				t.Fatalf("status = %v, want %v", status, tt.wantStatus)
			}
			if id != tt.wantID {
				t.Errorf("parent = %q, want %q", id, tt.wantID)
			}
		})
	}
}

func TestFindLevelAndAncestorPath(t *testing.T) {
	f := sampleForest()

	level, ok := FindLevel(f, "c")
	if !ok || level != 2 {
		t.Errorf("FindLevel(c) = %d, %v; want 2, true", level, ok)
	}
	if _, ok := FindLevel(f, "nope"); ok {
		t.Error("FindLevel should report missing ids")
	}

	path, ok := FindAncestorPath(f, "c")
	if !ok || !equalStrings(path, []string{"a", "b"}) {
		t.Errorf("FindAncestorPath(c) = %v, %v", path, ok)
	}

	path, ok = FindAncestorPath(f, "e")
	if !ok || path == nil || len(path) != 0 {
		t.Errorf("root path = %#v, %v; want empty slice", path, ok)
	}

	if _, ok := FindAncestorPath(f, "nope"); ok {
		t.Error("FindAncestorPath should report missing ids")
	}
}

func TestWalkPreOrder(t *testing.T) {
	got := IDs(sampleForest())
	want := []string{"a", "b", "c", "d", "e"}
	if !equalStrings(got, want) {
		t.Errorf("IDs = %v, want %v", got, want)
	}
	if c := Count(sampleForest()); c != 5 {
		t.Errorf("Count = %d, want 5", c)
	}
	if d := Depth(sampleForest()); d != 3 {
		t.Errorf("Depth = %d, want 3", d)
	}
}
