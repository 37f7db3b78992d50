// Package codec converts outlines to and from their stored and exported
// representations.
package codec

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"journal/internal/outline"
)

// Snapshot is the editable state of a document: the bullet forest, the
// collapse projection and both media indexes.
type Snapshot struct {
	Forest    outline.Forest
	Collapsed outline.CollapseSet
	Images    outline.MediaIndex
	Videos    outline.MediaIndex
}

// EmptySnapshot returns a snapshot with no bullets and no media.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Forest:    outline.Forest{},
		Collapsed: outline.NewCollapseSet(),
		Images:    outline.NewMediaIndex(outline.MediaImage),
		Videos:    outline.NewMediaIndex(outline.MediaVideo),
	}
}

// persisted is the stored JSON layout of a document's content.
type persisted struct {
	Bullets outline.Forest       `json:"bullets"`
	Images  []outline.Attachment `json:"images"`
	Videos  []outline.Attachment `json:"videos"`
}

// EncodePersisted serializes s for storage. The collapse set is flattened
// into each bullet's isCollapsed flag.
func EncodePersisted(s Snapshot) (string, error) {
	bullets := outline.Project(s.Forest, s.Collapsed)
	if bullets == nil {
		bullets = outline.Forest{}
	}
	payload, err := json.Marshal(persisted{
		Bullets: bullets,
		Images:  s.Images.Items(),
		Videos:  s.Videos.Items(),
	})
	if err != nil {
		return "", fmt.Errorf("encode content: %w", err)
	}
	return string(payload), nil
}

// LoadReport collects the problems found while decoding stored content.
type LoadReport struct {
	Warnings []string `json:"warnings,omitempty"`
}

func (r *LoadReport) add(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// OK reports whether the content loaded without any repair.
func (r *LoadReport) OK() bool {
	return len(r.Warnings) == 0
}

// Summary is the message shown to the user when something was repaired.
func (r *LoadReport) Summary() string {
	if r.OK() {
		return ""
	}
	return "some content could not be loaded"
}

// DecodePersisted rebuilds a snapshot from stored content. blob may be a JSON
// string, raw JSON bytes, or an already decoded value. Malformed parts fall
// back to safe defaults and are reported; decoding never fails as a whole.
// Missing or duplicate bullet ids are replaced with ids from ids.
func DecodePersisted(blob any, ids outline.IDGenerator) (Snapshot, *LoadReport) {
	report := &LoadReport{}
	snap := EmptySnapshot()

	root, ok := parseBlob(blob, report)
	if !ok {
		return snap, report
	}

	var rawBullets, rawImages, rawVideos any
	switch v := root.(type) {
	case map[string]any:
		rawBullets, rawImages, rawVideos = v["bullets"], v["images"], v["videos"]
	case []any:
		rawBullets = v
	default:
		report.add("content has unexpected type %T", root)
		return snap, report
	}

	d := &decoder{ids: ids, report: report, seen: map[string]struct{}{}}
	snap.Forest = d.forest(rawBullets, "bullets", 0)
	if !outline.LevelsConsistent(snap.Forest) {
		report.add("bullet levels did not match their nesting and were repaired")
		snap.Forest = outline.NormalizeLevels(snap.Forest)
	}
	snap.Collapsed = outline.SeedCollapsed(snap.Forest)
	snap.Images = outline.LoadMediaIndex(outline.MediaImage, d.attachments(rawImages, "images", outline.MediaImage), snap.Forest)
	snap.Videos = outline.LoadMediaIndex(outline.MediaVideo, d.attachments(rawVideos, "videos", outline.MediaVideo), snap.Forest)
	return snap, report
}

func parseBlob(blob any, report *LoadReport) (any, bool) {
	var raw []byte
	switch v := blob.(type) {
	case nil:
		return nil, false
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	default:
		return v, true
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, false
	}
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		report.add("content is not valid JSON: %v", err)
		return nil, false
	}
	if root == nil {
		return nil, false
	}
	return root, true
}

type decoder struct {
	ids    outline.IDGenerator
	report *LoadReport
	seen   map[string]struct{}
}

func (d *decoder) forest(raw any, path string, level int) []*outline.Node {
	out := []*outline.Node{}
	if raw == nil {
		return out
	}
	list, ok := raw.([]any)
	if !ok {
		d.report.add("%s: expected a list, got %T", path, raw)
		return out
	}
	for i, item := range list {
		fields, ok := item.(map[string]any)
		if !ok {
			d.report.add("%s[%d]: expected an object, got %T", path, i, item)
			continue
		}
		out = append(out, d.node(fields, fmt.Sprintf("%s[%d]", path, i), level))
	}
	return out
}

func (d *decoder) node(fields map[string]any, path string, level int) *outline.Node {
	n := &outline.Node{Level: level}

	id, _ := fields["id"].(string)
	if id == "" {
		id = d.ids.NewID()
		d.report.add("%s: missing id, assigned %s", path, id)
	} else if _, dup := d.seen[id]; dup {
		fresh := d.ids.NewID()
		d.report.add("%s: duplicate id %s, assigned %s", path, id, fresh)
		id = fresh
	}
	d.seen[id] = struct{}{}
	n.ID = id

	switch v := fields["content"].(type) {
	case string:
		n.Content = v
	case nil:
	default:
		d.report.add("%s: content has type %T, using empty content", path, v)
	}

	switch v := fields["level"].(type) {
	case float64:
		n.Level = int(v)
	case nil:
		n.Level = 0
	default:
		d.report.add("%s: level has type %T", path, v)
	}

	if v, ok := fields["isCollapsed"].(bool); ok {
		n.IsCollapsed = v
	}

	n.Children = d.forest(fields["children"], path+".children", level+1)
	return n
}

func (d *decoder) attachments(raw any, path string, kind outline.MediaKind) []outline.Attachment {
	out := []outline.Attachment{}
	if raw == nil {
		return out
	}
	list, ok := raw.([]any)
	if !ok {
		d.report.add("%s: expected a list, got %T", path, raw)
		return out
	}
	for i, item := range list {
		fields, ok := item.(map[string]any)
		if !ok {
			d.report.add("%s[%d]: expected an object, got %T", path, i, item)
			continue
		}
		id, _ := fields["id"].(string)
		url, _ := fields["url"].(string)
		if id == "" || url == "" {
			d.report.add("%s[%d]: missing id or url, dropped", path, i)
			continue
		}
		a := outline.Attachment{ID: id, URL: url, Width: kind.DefaultWidth()}
		if w, ok := number(fields["width"]); ok && w > 0 {
			a.Width = w
		}
		if h, ok := number(fields["height"]); ok {
			a.Height = &h
		}
		if top, ok := number(fields["top"]); ok {
			a.Top = &top
		}
		if left, ok := number(fields["left"]); ok {
			a.Left = &left
		}
		out = append(out, a)
	}
	return out
}

func number(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}
