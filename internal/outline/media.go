package outline

import "strings"

// MediaKind distinguishes images from videos.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Valid reports whether k is a known kind.
func (k MediaKind) Valid() bool {
	return k == MediaImage || k == MediaVideo
}

// DefaultWidth is the display width, in pixels, of a freshly attached item.
func (k MediaKind) DefaultWidth() int {
	if k == MediaVideo {
		return 400
	}
	return 300
}

// Attachment is an image or video shown next to a bullet. Its id is
// "{ownerBulletID}-{suffix}"; the owner relation is lookup-only.
type Attachment struct {
	ID     string `json:"id" yaml:"id"`
	URL    string `json:"url" yaml:"url"`
	Width  int    `json:"width" yaml:"width"`
	Height *int   `json:"height,omitempty" yaml:"height,omitempty"` // nil keeps the aspect ratio
	Top    *int   `json:"top,omitempty" yaml:"top,omitempty"`
	Left   *int   `json:"left,omitempty" yaml:"left,omitempty"` // 0, 50, 100: left, center, right
}

// Placement carries the size and position applied by MediaIndex.Resize.
type Placement struct {
	Width  int
	Height *int
	Top    *int
	Left   *int
}

// MediaID composes an attachment id from its owner and a unique suffix.
func MediaID(owner, suffix string) string {
	return owner + "-" + suffix
}

// MediaIndex is the side table of attachments of one kind. Values are
// immutable: every operation returns a new index.
type MediaIndex struct {
	kind   MediaKind
	items  []Attachment
	owners map[string]string // attachment id -> owner bullet id
}

// NewMediaIndex returns an empty index.
func NewMediaIndex(kind MediaKind) MediaIndex {
	return MediaIndex{kind: kind, owners: map[string]string{}}
}

// LoadMediaIndex builds an index from stored records. Owners are resolved
// against the bullets of f by the longest id prefix followed by "-";
// records whose owner no longer exists are kept but belong to no bullet.
func LoadMediaIndex(kind MediaKind, items []Attachment, f Forest) MediaIndex {
	known := make(map[string]struct{})
	Walk(f, func(n, _ *Node) bool {
		known[n.ID] = struct{}{}
		return true
	})
	idx := NewMediaIndex(kind)
	idx.items = make([]Attachment, 0, len(items))
	for _, a := range items {
		if a.ID == "" {
			continue
		}
		if _, dup := idx.owners[a.ID]; dup {
			continue
		}
		idx.items = append(idx.items, a)
		idx.owners[a.ID] = resolveOwner(a.ID, known)
	}
	return idx
}

func resolveOwner(mediaID string, known map[string]struct{}) string {
	for i := len(mediaID) - 1; i > 0; i-- {
		if mediaID[i] != '-' {
			continue
		}
		if _, ok := known[mediaID[:i]]; ok {
			return mediaID[:i]
		}
	}
	return ""
}

func (m MediaIndex) clone() MediaIndex {
	c := MediaIndex{kind: m.kind}
	c.items = make([]Attachment, len(m.items))
	copy(c.items, m.items)
	c.owners = make(map[string]string, len(m.owners))
	for k, v := range m.owners {
		c.owners[k] = v
	}
	return c
}

// Kind returns the media kind of the index.
func (m MediaIndex) Kind() MediaKind { return m.kind }

// Len returns the number of attachments.
func (m MediaIndex) Len() int { return len(m.items) }

// Items returns a copy of all attachments in insertion order.
func (m MediaIndex) Items() []Attachment {
	out := make([]Attachment, len(m.items))
	copy(out, m.items)
	return out
}

// Get returns the attachment with the given id.
func (m MediaIndex) Get(id string) (Attachment, bool) {
	for _, a := range m.items {
		if a.ID == id {
			return a, true
		}
	}
	return Attachment{}, false
}

// Owner returns the bullet id an attachment belongs to, or "" when unknown.
func (m MediaIndex) Owner(id string) string {
	return m.owners[id]
}

// Attach records a new attachment for owner with the default width of the
// index kind and automatic height.
func (m MediaIndex) Attach(owner, suffix, url string) (MediaIndex, Attachment, bool) {
	id := MediaID(owner, suffix)
	if owner == "" || suffix == "" {
		return m, Attachment{}, false
	}
	if _, dup := m.owners[id]; dup {
		return m, Attachment{}, false
	}
	a := Attachment{ID: id, URL: url, Width: m.kind.DefaultWidth()}
	c := m.clone()
	c.items = append(c.items, a)
	c.owners[id] = owner
	return c, a, true
}

// Resize replaces the size and position of id.
func (m MediaIndex) Resize(id string, p Placement) (MediaIndex, bool) {
	for i, a := range m.items {
		if a.ID != id {
			continue
		}
		c := m.clone()
		a.Width = p.Width
		a.Height = p.Height
		a.Top = p.Top
		a.Left = p.Left
		c.items[i] = a
		return c, true
	}
	return m, false
}

// Detach removes id from the index and returns the removed record.
func (m MediaIndex) Detach(id string) (MediaIndex, Attachment, bool) {
	for i, a := range m.items {
		if a.ID != id {
			continue
		}
		c := m.clone()
		c.items = append(c.items[:i], c.items[i+1:]...)
		delete(c.owners, id)
		return c, a, true
	}
	return m, Attachment{}, false
}

// ForOwner returns the attachments of a bullet, in insertion order. Records
// loaded without a resolvable owner fall back to the "{bulletID}-" prefix.
func (m MediaIndex) ForOwner(bulletID string) []Attachment {
	var out []Attachment
	prefix := bulletID + "-"
	for _, a := range m.items {
		owner := m.owners[a.ID]
		if owner == bulletID || (owner == "" && strings.HasPrefix(a.ID, prefix)) {
			out = append(out, a)
		}
	}
	return out
}
