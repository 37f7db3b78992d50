package codec

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"journal/internal/outline"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes the five XML special characters. Each character is
// replaced once, so entities already present in s are escaped exactly one
// more time and never mangled.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// EncodeOPML renders f as an OPML 2.0 document.
func EncodeOPML(title string, f outline.Forest, created time.Time) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<opml version="2.0">` + "\n")
	b.WriteString("  <head>\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", EscapeXML(title))
	fmt.Fprintf(&b, "    <dateCreated>%s</dateCreated>\n", created.UTC().Format(time.RFC1123Z))
	b.WriteString("  </head>\n")
	b.WriteString("  <body>\n")
	writeOutlines(&b, f, 2)
	b.WriteString("  </body>\n")
	b.WriteString("</opml>\n")
	return []byte(b.String())
}

func writeOutlines(b *strings.Builder, nodes []*outline.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if len(n.Children) == 0 {
			fmt.Fprintf(b, "%s<outline text=\"%s\"/>\n", indent, EscapeXML(n.Content))
			continue
		}
		fmt.Fprintf(b, "%s<outline text=\"%s\">\n", indent, EscapeXML(n.Content))
		writeOutlines(b, n.Children, depth+1)
		fmt.Fprintf(b, "%s</outline>\n", indent)
	}
}

type opmlDoc struct {
	XMLName xml.Name      `xml:"opml"`
	Title   string        `xml:"head>title"`
	Body    []opmlOutline `xml:"body>outline"`
}

type opmlOutline struct {
	Text     string        `xml:"text,attr"`
	Children []opmlOutline `xml:"outline"`
}

// ErrNotOPML is returned when the input cannot be read as OPML.
var ErrNotOPML = errors.New("input is not an OPML document")

// DecodeOPML parses an OPML document into a forest with freshly minted ids.
func DecodeOPML(r io.Reader, ids outline.IDGenerator) (string, outline.Forest, error) {
	var doc opmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrNotOPML, err)
	}
	return strings.TrimSpace(doc.Title), fromOPML(doc.Body, ids, 0), nil
}

func fromOPML(items []opmlOutline, ids outline.IDGenerator, level int) outline.Forest {
	out := outline.Forest{}
	for _, item := range items {
		out = append(out, &outline.Node{
			ID:       ids.NewID(),
			Content:  item.Text,
			Level:    level,
			Children: fromOPML(item.Children, ids, level+1),
		})
	}
	return out
}
