package codec

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"

	"journal/internal/content"
	"journal/internal/outline"
)

// EncodeDOCX renders doc as a Word document: the title in bold and one
// paragraph per bullet, indented with tabs by level. Content is reduced to
// plain text.
func EncodeDOCX(doc Document) ([]byte, error) {
	w := docx.New().WithDefaultTheme()
	if doc.Title != "" {
		w.AddParagraph().AddText(doc.Title).Size("32").Bold()
	}

	outline.Walk(doc.Snapshot.Forest, func(n, _ *outline.Node) bool {
		p := w.AddParagraph()
		for i := 0; i < n.Level; i++ {
			p.AddTab()
		}
		p.AddText("• " + content.PlainText(n.Content))
		for _, img := range doc.Snapshot.Images.ForOwner(n.ID) {
			w.AddParagraph().AddText("[image] " + img.URL).Size("18")
		}
		for _, vid := range doc.Snapshot.Videos.ForOwner(n.ID) {
			w.AddParagraph().AddText("[video] " + vid.URL).Size("18")
		}
		return true
	})

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}
