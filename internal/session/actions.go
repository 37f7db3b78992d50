package session

import (
	"journal/internal/outline"
)

// Action is a user intent applied by Reduce. Actions that create bullets or
// attachments carry the new ids; minting happens before the action is built.
type Action interface {
	apply(st State) (State, bool)
}

type (
	AddRoot struct {
		ID      string
		Content string
	}

	UpdateContent struct {
		ID      string
		Content string
	}

	// InsertChild appends an empty child and expands the parent.
	InsertChild struct {
		ParentID string
		ID       string
	}

	InsertSiblingAfter struct {
		TargetID string
		ID       string
	}

	DeleteNode struct {
		ID string
	}

	Outdent struct {
		ID string
	}

	Indent struct {
		ID string
	}

	ToggleCollapse struct {
		ID string
	}

	// InsertSection adds a labelled bullet with one empty child. An empty
	// TargetID appends the section at root level.
	InsertSection struct {
		TargetID  string
		Label     string
		SectionID string
		ChildID   string
	}

	AttachMedia struct {
		Kind   outline.MediaKind
		Owner  string
		Suffix string
		URL    string
	}

	ResizeMedia struct {
		Kind      outline.MediaKind
		ID        string
		Placement outline.Placement
	}

	DetachMedia struct {
		Kind outline.MediaKind
		ID   string
	}

	SetTitle struct {
		Title string
	}

	SetPublished struct {
		Published bool
	}
)

// Reduce applies a to st. The returned flag is false when the action had no
// effect, in which case st is returned unchanged.
func Reduce(st State, a Action) (State, bool) {
	next, ok := a.apply(st)
	if !ok {
		return st, false
	}
	next.Revision = st.Revision + 1
	return next, true
}

func (a AddRoot) apply(st State) (State, bool) {
	f, ok := outline.AppendRoot(st.Forest, a.ID, a.Content)
	st.Forest = f
	return st, ok
}

func (a UpdateContent) apply(st State) (State, bool) {
	f, ok := outline.UpdateContent(st.Forest, a.ID, a.Content)
	st.Forest = f
	return st, ok
}

func (a InsertChild) apply(st State) (State, bool) {
	f, ok := outline.InsertChild(st.Forest, a.ParentID, a.ID)
	if !ok {
		return st, false
	}
	st.Forest = f
	st.Collapsed = st.Collapsed.Without(a.ParentID)
	return st, true
}

func (a InsertSiblingAfter) apply(st State) (State, bool) {
	f, ok := outline.InsertSiblingAfter(st.Forest, a.TargetID, a.ID)
	st.Forest = f
	return st, ok
}

func (a DeleteNode) apply(st State) (State, bool) {
	f, ok := outline.DeleteNode(st.Forest, a.ID)
	if !ok {
		return st, false
	}
	st.Forest = f
	st.Collapsed = st.Collapsed.Prune(f)
	return st, true
}

func (a Outdent) apply(st State) (State, bool) {
	f, ok := outline.Outdent(st.Forest, a.ID)
	st.Forest = f
	return st, ok
}

func (a Indent) apply(st State) (State, bool) {
	f, ok := outline.Indent(st.Forest, a.ID)
	if !ok {
		return st, false
	}
	st.Forest = f
	// the new parent must show the moved bullet
	if parent, status := outline.FindParent(f, a.ID); status == outline.ParentFound {
		st.Collapsed = st.Collapsed.Without(parent)
	}
	return st, true
}

func (a ToggleCollapse) apply(st State) (State, bool) {
	if a.ID == "" {
		return st, false
	}
	st.Collapsed = st.Collapsed.Toggle(a.ID)
	return st, true
}

func (a InsertSection) apply(st State) (State, bool) {
	f, ok := outline.InsertCollapsibleSection(st.Forest, a.TargetID, a.Label, a.SectionID, a.ChildID)
	st.Forest = f
	return st, ok
}

func (a AttachMedia) apply(st State) (State, bool) {
	if !a.Kind.Valid() {
		return st, false
	}
	idx, _, ok := st.Media(a.Kind).Attach(a.Owner, a.Suffix, a.URL)
	if !ok {
		return st, false
	}
	return st.withMedia(a.Kind, idx), true
}

func (a ResizeMedia) apply(st State) (State, bool) {
	if !a.Kind.Valid() {
		return st, false
	}
	idx, ok := st.Media(a.Kind).Resize(a.ID, a.Placement)
	if !ok {
		return st, false
	}
	return st.withMedia(a.Kind, idx), true
}

func (a DetachMedia) apply(st State) (State, bool) {
	if !a.Kind.Valid() {
		return st, false
	}
	idx, _, ok := st.Media(a.Kind).Detach(a.ID)
	if !ok {
		return st, false
	}
	return st.withMedia(a.Kind, idx), true
}

func (a SetTitle) apply(st State) (State, bool) {
	if a.Title == st.Title {
		return st, false
	}
	st.Title = a.Title
	return st, true
}

func (a SetPublished) apply(st State) (State, bool) {
	if a.Published == st.Published {
		return st, false
	}
	st.Published = a.Published
	return st, true
}
