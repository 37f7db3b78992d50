package journal

// Operation names accepted by ApplyOperations
const (
	OpAddRoot        = "add_root"
	OpUpdateContent  = "update_content"
	OpInsertChild    = "insert_child"
	OpInsertSibling  = "insert_sibling"
	OpDelete         = "delete"
	OpOutdent        = "outdent"
	OpIndent         = "indent"
	OpToggleCollapse = "toggle_collapse"
	OpInsertSection  = "insert_section"
	OpSetTitle       = "set_title"
	OpResizeMedia    = "resize_media"
	OpDetachMedia    = "detach_media"
)

// Operation is one outline edit. Which fields are used depends on Op:
//   - add_root: content
//   - update_content: id, content
//   - insert_child: id of the parent
//   - insert_sibling, delete, outdent, indent, toggle_collapse: id
//   - insert_section: id of the target (empty appends at root), label
//   - set_title: title
//   - resize_media: kind, media_id, width and optional height/top/left
//   - detach_media: kind, media_id
type Operation struct {
	Op      string `json:"op"`
	ID      string `json:"id,omitempty"`
	Content string `json:"content,omitempty"`
	Label   string `json:"label,omitempty"`
	Title   string `json:"title,omitempty"`
	Kind    string `json:"kind,omitempty"`
	MediaID string `json:"media_id,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  *int   `json:"height,omitempty"`
	Top     *int   `json:"top,omitempty"`
	Left    *int   `json:"left,omitempty"`
}

// OperationsRequest is a batch of edits applied in order
type OperationsRequest struct {
	Operations []Operation `json:"operations"`
}

// OperationOutcome reports one operation: whether it changed the document
// and the ids of bullets it created.
type OperationOutcome struct {
	Op      string   `json:"op"`
	Applied bool     `json:"applied"`
	Created []string `json:"created,omitempty"`
}

// OperationsResult is the document after the batch plus per-operation outcomes
type OperationsResult struct {
	Document *DocumentView      `json:"document"`
	Results  []OperationOutcome `json:"results"`
}
