// Package session holds the editing state of one open document and applies
// user actions to it. Structural changes go through Reduce, a pure function
// of state and action; Session serializes them and runs the I/O bound tasks
// (upload, save, publish) around it.
package session

import (
	"journal/internal/outline"
	"journal/internal/outline/codec"
)

// State is the complete editable state of a document. It is a value: Reduce
// returns a new State and never modifies the one it was given.
type State struct {
	DocID     string
	Title     string
	Forest    outline.Forest
	Collapsed outline.CollapseSet
	Images    outline.MediaIndex
	Videos    outline.MediaIndex
	Published bool

	// Revision increases by one for every applied action.
	Revision uint64
}

// NewState builds the initial state of a document from a decoded snapshot.
func NewState(docID, title string, snap codec.Snapshot) State {
	st := State{
		DocID:     docID,
		Title:     title,
		Forest:    snap.Forest,
		Collapsed: snap.Collapsed,
		Images:    snap.Images,
		Videos:    snap.Videos,
	}
	if st.Forest == nil {
		st.Forest = outline.Forest{}
	}
	if st.Collapsed == nil {
		st.Collapsed = outline.NewCollapseSet()
	}
	if st.Images.Kind() == "" {
		st.Images = outline.NewMediaIndex(outline.MediaImage)
	}
	if st.Videos.Kind() == "" {
		st.Videos = outline.NewMediaIndex(outline.MediaVideo)
	}
	return st
}

// Snapshot returns the parts of st that are persisted.
func (st State) Snapshot() codec.Snapshot {
	return codec.Snapshot{
		Forest:    st.Forest,
		Collapsed: st.Collapsed.Prune(st.Forest),
		Images:    st.Images,
		Videos:    st.Videos,
	}
}

// Media returns the index holding attachments of the given kind.
func (st State) Media(kind outline.MediaKind) outline.MediaIndex {
	if kind == outline.MediaVideo {
		return st.Videos
	}
	return st.Images
}

func (st State) withMedia(kind outline.MediaKind, idx outline.MediaIndex) State {
	if kind == outline.MediaVideo {
		st.Videos = idx
	} else {
		st.Images = idx
	}
	return st
}

// Rows returns the visible lines of the outline in document order.
func (st State) Rows() []outline.Row {
	return outline.VisibleRows(st.Forest, st.Collapsed)
}
