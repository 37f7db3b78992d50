package cli

import (
	"fmt"
	"io"
	"strings"

	"journal/internal/content"
	"journal/internal/outline"
	"journal/internal/session"
)

const (
	markLeaf      = "•"
	markExpanded  = "▾"
	markCollapsed = "▸"
)

// render prints the visible outline, one numbered row per bullet, with
// attachments listed under their owner.
func render(w io.Writer, st session.State) {
	header := st.Title
	if st.Published {
		header += " (published)"
	}
	fmt.Fprintf(w, "%s [%s]\n", header, st.DocID)

	rows := st.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(w, "  (empty, use 'add <text>')")
		return
	}

	width := len(fmt.Sprint(len(rows)))
	for i, row := range rows {
		indent := strings.Repeat("  ", row.Node.Level)
		text := content.PlainText(row.Node.Content)
		fmt.Fprintf(w, "%*d  %s%s %s\n", width, i+1, indent, marker(row), text)

		pad := strings.Repeat(" ", width+2) + indent + "  "
		for _, idx := range []outline.MediaIndex{st.Images, st.Videos} {
			for _, a := range idx.ForOwner(row.Node.ID) {
				fmt.Fprintf(w, "%s[%s %s %s] %s\n", pad, idx.Kind(), a.ID, size(a), a.URL)
			}
		}
	}
}

func marker(row outline.Row) string {
	switch {
	case !row.HasChildren:
		return markLeaf
	case row.Collapsed:
		return markCollapsed
	default:
		return markExpanded
	}
}

func size(a outline.Attachment) string {
	s := fmt.Sprintf("%dpx", a.Width)
	if a.Height != nil {
		s = fmt.Sprintf("%dx%dpx", a.Width, *a.Height)
	}
	if a.Left != nil {
		for name, left := range alignments {
			if left == *a.Left {
				s += " " + name
			}
		}
	}
	return s
}
