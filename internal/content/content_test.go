package content

import (
	"strings"
	"testing"

	"journal/internal/outline"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "  hello   world ", want: "hello world"},
		{name: "inline tags", input: "<b>bold</b> and <i>italic</i>", want: "bold and italic"},
		{name: "entities", input: "fish &amp; chips", want: "fish & chips"},
		{name: "line breaks", input: "one<br>two", want: "one two"},
		{name: "script dropped", input: "a<script>alert(1)</script>b", want: "ab"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet("<p>abcdef</p>", 4); got != "abc…" {
		t.Errorf("Snippet = %q", got)
	}
	if got := Snippet("abc", 10); got != "abc" {
		t.Errorf("Snippet = %q", got)
	}
}

func TestCountWords(t *testing.T) {
	a := NewAnalyzer()
	if got := a.CountWords("<b>one</b> two - three"); got != 3 {
		t.Errorf("CountWords = %d, want 3", got)
	}

	f := outline.Forest{
		{ID: "a", Content: "hello world", Children: []*outline.Node{
			{ID: "b", Level: 1, Content: "x", Children: []*outline.Node{}},
		}},
	}
	stats := a.Outline(f)
	if stats.Bullets != 2 || stats.Words != 3 || stats.Depth != 2 {
		t.Errorf("Outline = %+v", stats)
	}
}

func TestSanitizeForest(t *testing.T) {
	s := NewSanitizer()
	f := outline.Forest{
		{ID: "a", Content: `<b>ok</b><script>alert(1)</script>`, Children: []*outline.Node{
			{ID: "b", Level: 1, Content: `<a href="javascript:alert(1)">x</a>`, Children: []*outline.Node{}},
		}},
	}

	clean := s.Forest(f)
	if strings.Contains(clean[0].Content, "script") || !strings.Contains(clean[0].Content, "<b>ok</b>") {
		t.Errorf("root content = %q", clean[0].Content)
	}
	if strings.Contains(clean[0].Children[0].Content, "javascript") {
		t.Errorf("child content = %q", clean[0].Children[0].Content)
	}
	if !strings.Contains(f[0].Content, "script") {
		t.Error("Forest mutated its input")
	}
}
