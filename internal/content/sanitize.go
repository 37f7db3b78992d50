package content

import (
	"github.com/microcosm-cc/bluemonday"

	"journal/internal/outline"
)

// Sanitizer strips dangerous markup from bullet content before it is shown
// to readers of a published document.
//
// Thread-safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a sanitizer with the user-generated-content policy:
// inline formatting, links and lists survive; scripts, event handlers and
// javascript: URLs do not.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.UGCPolicy()}
}

// Sanitize cleans a single HTML fragment.
func (s *Sanitizer) Sanitize(fragment string) string {
	return s.policy.Sanitize(fragment)
}

// Forest returns a copy of f with every bullet's content sanitized. Ids,
// levels and collapse flags are kept.
func (s *Sanitizer) Forest(f outline.Forest) outline.Forest {
	out := make(outline.Forest, len(f))
	for i, n := range f {
		out[i] = s.node(n)
	}
	return out
}

func (s *Sanitizer) node(n *outline.Node) *outline.Node {
	c := *n
	c.Content = s.Sanitize(n.Content)
	c.Children = make([]*outline.Node, len(n.Children))
	for i, child := range n.Children {
		c.Children[i] = s.node(child)
	}
	return &c
}
