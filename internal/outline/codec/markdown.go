package codec

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"journal/internal/outline"
)

// MarkdownEncoder renders documents as nested Markdown lists.
type MarkdownEncoder struct {
	converter *md.Converter
}

// NewMarkdownEncoder creates an encoder with the default conversion rules.
func NewMarkdownEncoder() *MarkdownEncoder {
	return &MarkdownEncoder{converter: md.NewConverter("", true, nil)}
}

// Encode writes doc as a Markdown document: the title as a heading, one list
// item per bullet indented two spaces per level, and media as image or link
// lines beneath their owner.
func (e *MarkdownEncoder) Encode(doc Document) ([]byte, error) {
	var b strings.Builder
	if doc.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	}
	if err := e.writeItems(&b, doc.Snapshot, doc.Snapshot.Forest, 0); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func (e *MarkdownEncoder) writeItems(b *strings.Builder, snap Snapshot, nodes []*outline.Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		line, err := e.inline(n.Content)
		if err != nil {
			return fmt.Errorf("bullet %s: %w", n.ID, err)
		}
		fmt.Fprintf(b, "%s- %s\n", indent, line)
		for _, img := range snap.Images.ForOwner(n.ID) {
			fmt.Fprintf(b, "%s  ![](%s)\n", indent, img.URL)
		}
		for _, vid := range snap.Videos.ForOwner(n.ID) {
			fmt.Fprintf(b, "%s  [video](%s)\n", indent, vid.URL)
		}
		if err := e.writeItems(b, snap, n.Children, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// inline converts an HTML fragment into a single line of Markdown.
func (e *MarkdownEncoder) inline(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}
	converted, err := e.converter.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return strings.Join(strings.Fields(converted), " "), nil
}

// DecodeMarkdown builds a forest from a Markdown document. List items become
// bullets nested by list depth, other headings and paragraphs become root
// bullets, and the first level-one heading becomes the title unless a
// frontmatter block names one. Inline markup is kept as HTML.
func DecodeMarkdown(r io.Reader, ids outline.IDGenerator) (string, outline.Forest, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("read markdown: %w", err)
	}
	meta, src, err := splitFrontmatter(raw)
	if err != nil {
		return "", nil, err
	}

	m := goldmark.New()
	doc := m.Parser().Parse(text.NewReader(src))
	d := &mdDecoder{md: m, src: src, ids: ids}

	title := strings.TrimSpace(meta.Title)
	fromHeading := title == ""
	forest := outline.Forest{}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			content, err := d.render(node)
			if err != nil {
				return "", nil, err
			}
			if node.Level == 1 && fromHeading {
				title = string(node.Text(src))
				fromHeading = false
				continue
			}
			forest = append(forest, d.node(content, 0))
		case *ast.List:
			items, err := d.list(node, 0)
			if err != nil {
				return "", nil, err
			}
			forest = append(forest, items...)
		case *ast.Paragraph, *ast.TextBlock:
			content, err := d.render(node)
			if err != nil {
				return "", nil, err
			}
			forest = append(forest, d.node(content, 0))
		}
	}
	return title, forest, nil
}

type mdDecoder struct {
	md  goldmark.Markdown
	src []byte
	ids outline.IDGenerator
}

func (d *mdDecoder) node(content string, level int) *outline.Node {
	return &outline.Node{
		ID:       d.ids.NewID(),
		Content:  content,
		Level:    level,
		Children: []*outline.Node{},
	}
}

func (d *mdDecoder) list(list *ast.List, level int) ([]*outline.Node, error) {
	var out []*outline.Node
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		if _, ok := item.(*ast.ListItem); !ok {
			continue
		}
		bullet := d.node("", level)
		var parts []string
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				children, err := d.list(sub, level+1)
				if err != nil {
					return nil, err
				}
				bullet.Children = append(bullet.Children, children...)
				continue
			}
			content, err := d.render(c)
			if err != nil {
				return nil, err
			}
			if content != "" {
				parts = append(parts, content)
			}
		}
		bullet.Content = strings.Join(parts, "<br>")
		out = append(out, bullet)
	}
	return out, nil
}

// render returns the inline children of a block as HTML.
func (d *mdDecoder) render(block ast.Node) (string, error) {
	var buf bytes.Buffer
	for c := block.FirstChild(); c != nil; c = c.NextSibling() {
		if err := d.md.Renderer().Render(&buf, d.src, c); err != nil {
			return "", fmt.Errorf("render markdown: %w", err)
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
