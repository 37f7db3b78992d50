package codec

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"journal/internal/outline"
)

// ExportNode is a bullet as it appears in exported documents.
type ExportNode struct {
	ID          string        `json:"id" yaml:"id"`
	Content     string        `json:"content" yaml:"content"`
	Children    []*ExportNode `json:"children" yaml:"children"`
	IsCollapsed bool          `json:"isCollapsed" yaml:"isCollapsed"`
}

// ToExportTree converts f into export nodes. Collapse state comes from set,
// not from the nodes' stored flags.
func ToExportTree(f outline.Forest, set outline.CollapseSet) []*ExportNode {
	return exportNodes(f, set)
}

func exportNodes(nodes []*outline.Node, set outline.CollapseSet) []*ExportNode {
	out := make([]*ExportNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &ExportNode{
			ID:          n.ID,
			Content:     n.Content,
			Children:    exportNodes(n.Children, set),
			IsCollapsed: set.Has(n.ID),
		})
	}
	return out
}

// Document is a titled snapshot ready for export.
type Document struct {
	Title    string
	Snapshot Snapshot
}

// JSONExport is the layout of a JSON export file.
type JSONExport struct {
	Title     string               `json:"title" yaml:"title"`
	Bullets   []*ExportNode        `json:"bullets" yaml:"bullets"`
	Images    []outline.Attachment `json:"images" yaml:"images"`
	Videos    []outline.Attachment `json:"videos" yaml:"videos"`
	Timestamp string               `json:"timestamp" yaml:"timestamp"`
}

// NewJSONExport builds the export payload of doc stamped with now.
func NewJSONExport(doc Document, now time.Time) JSONExport {
	return JSONExport{
		Title:     doc.Title,
		Bullets:   ToExportTree(doc.Snapshot.Forest, doc.Snapshot.Collapsed),
		Images:    doc.Snapshot.Images.Items(),
		Videos:    doc.Snapshot.Videos.Items(),
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// EncodeJSON renders doc as an indented JSON export.
func EncodeJSON(doc Document, now time.Time) ([]byte, error) {
	payload, err := json.MarshalIndent(NewJSONExport(doc, now), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json export: %w", err)
	}
	return payload, nil
}

// EncodeYAML renders doc with the same layout as EncodeJSON.
func EncodeYAML(doc Document, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NewJSONExport(doc, now)); err != nil {
		return nil, fmt.Errorf("encode yaml export: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml export: %w", err)
	}
	return buf.Bytes(), nil
}
