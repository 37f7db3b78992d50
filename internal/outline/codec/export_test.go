package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"journal/internal/outline"
)

var exportTime = time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)

func TestToExportTreeUsesCollapseSet(t *testing.T) {
	snap := sampleSnapshot()
	snap.Forest[1].IsCollapsed = true

	tree := ToExportTree(snap.Forest, snap.Collapsed)
	if len(tree) != 2 {
		t.Fatalf("roots = %d", len(tree))
	}
	if tree[1].IsCollapsed {
		t.Error("stale node flag leaked into export")
	}
	if !tree[0].Children[0].IsCollapsed {
		t.Error("a1 should be collapsed")
	}
	if tree[0].Children[0].Children[0].ID != "a1x" {
		t.Errorf("grandchild = %+v", tree[0].Children[0].Children[0])
	}
	if tree[1].Children == nil {
		t.Error("leaf children should be an empty list")
	}
}

func TestEncodeJSON(t *testing.T) {
	out, err := EncodeJSON(Document{Title: "Week 10", Snapshot: sampleSnapshot()}, exportTime)
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"title", "bullets", "images", "videos", "timestamp"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if got["timestamp"] != "2024-03-04T05:06:07Z" {
		t.Errorf("timestamp = %v", got["timestamp"])
	}
	first := got["bullets"].([]any)[0].(map[string]any)
	if _, ok := first["level"]; ok {
		t.Error("export nodes should not carry level")
	}
}

func TestEncodeYAML(t *testing.T) {
	out, err := EncodeYAML(Document{Title: "Week 10", Snapshot: sampleSnapshot()}, exportTime)
	if err != nil {
		t.Fatalf("EncodeYAML: %v", err)
	}
	var got JSONExport
	if err := yaml.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Title != "Week 10" || len(got.Bullets) != 2 || len(got.Images) != 1 {
		t.Fatalf("got %+v", got)
	}
	if got.Images[0].URL != "https://cdn/run.png" {
		t.Errorf("image url = %q", got.Images[0].URL)
	}
}

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`a & b`, `a &amp; b`},
		{`<b>"hi"</b>`, `&lt;b&gt;&quot;hi&quot;&lt;/b&gt;`},
		{`it's`, `it&apos;s`},
		{`&lt;`, `&amp;lt;`},
		{`plain`, `plain`},
	}
	for _, tt := range tests {
		if got := EscapeXML(tt.in); got != tt.want {
			t.Errorf("EscapeXML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodeOPML(t *testing.T) {
	out := string(EncodeOPML("Week <10>", sampleSnapshot().Forest, exportTime))

	for _, want := range []string{
		`<opml version="2.0">`,
		`<title>Week &lt;10&gt;</title>`,
		`<dateCreated>Mon, 04 Mar 2024 05:06:07 +0000</dateCreated>`,
		`<outline text="&lt;b&gt;Monday&lt;/b&gt;">`,
		`<outline text="woke up &amp; ran">`,
		`<outline text="5k"/>`,
		`<outline text="Tuesday"/>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s\n%s", want, out)
		}
	}
	if strings.Index(out, "Monday") > strings.Index(out, "Tuesday") {
		t.Error("roots out of order")
	}
}

func TestOPMLRoundTripPreservesContent(t *testing.T) {
	contents := []string{`a & b`, `<i>x</i>`, `"quoted" 'single'`, `&amp; already`, ``}
	f := outline.Forest{}
	for i, c := range contents {
		f = append(f, node(string(rune('a'+i)), c, 0))
	}
	f[0].Children = []*outline.Node{node("a1", "child & grandchild", 1)}

	title, got, err := DecodeOPML(bytes.NewReader(EncodeOPML("T & U", f, exportTime)), &outline.SequenceGenerator{Prefix: "o"})
	if err != nil {
		t.Fatalf("DecodeOPML: %v", err)
	}
	if title != "T & U" {
		t.Errorf("title = %q", title)
	}
	if len(got) != len(contents) {
		t.Fatalf("roots = %d, want %d", len(got), len(contents))
	}
	for i, c := range contents {
		if got[i].Content != c {
			t.Errorf("root %d content = %q, want %q", i, got[i].Content, c)
		}
	}
	if got[0].Children[0].Content != "child & grandchild" || got[0].Children[0].Level != 1 {
		t.Errorf("child = %+v", got[0].Children[0])
	}
	if got[0].ID != "o1" || got[0].Children[0].ID != "o2" {
		t.Errorf("ids = %s, %s", got[0].ID, got[0].Children[0].ID)
	}
}

func TestDecodeOPMLRejectsOtherXML(t *testing.T) {
	_, _, err := DecodeOPML(strings.NewReader(`<rss></rss>`), &outline.SequenceGenerator{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestMarkdownEncoder(t *testing.T) {
	out, err := NewMarkdownEncoder().Encode(Document{Title: "Week", Snapshot: sampleSnapshot()})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got := string(out)
	for _, want := range []string{
		"# Week\n",
		"- **Monday**\n",
		"    - 5k\n",
		"    ![](https://cdn/run.png)\n",
		"- Tuesday\n",
		"  [video](https://cdn/clip.mp4)\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
}

func TestDecodeMarkdown(t *testing.T) {
	src := `# My Week

- **Monday**
  - ran
    - 5k
- Tuesday

A note

## Later
`
	title, f, err := DecodeMarkdown(strings.NewReader(src), &outline.SequenceGenerator{Prefix: "m"})
	if err != nil {
		t.Fatalf("DecodeMarkdown: %v", err)
	}
	if title != "My Week" {
		t.Errorf("title = %q", title)
	}
	if len(f) != 4 {
		t.Fatalf("roots = %d, want 4", len(f))
	}
	if f[0].Content != "<strong>Monday</strong>" {
		t.Errorf("first = %q", f[0].Content)
	}
	ran := f[0].Children[0]
	if ran.Content != "ran" || ran.Level != 1 || ran.Children[0].Content != "5k" || ran.Children[0].Level != 2 {
		t.Errorf("nested = %+v", ran)
	}
	if f[1].Content != "Tuesday" || f[2].Content != "A note" || f[3].Content != "Later" {
		t.Errorf("roots = %q %q %q", f[1].Content, f[2].Content, f[3].Content)
	}
	if !outline.LevelsConsistent(f) {
		t.Error("levels inconsistent")
	}
}

func TestDecodeMarkdownFrontmatter(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantTitle string
		wantRoots []string
		wantErr   bool
	}{
		{
			name:      "title from frontmatter keeps heading as bullet",
			src:       "---\ntitle: Road trip\ntags: [travel]\n---\n# Day one\n- packed\n",
			wantTitle: "Road trip",
			wantRoots: []string{"Day one", "packed"},
		},
		{
			name:      "frontmatter without title",
			src:       "---\ntags: [travel]\n---\n# Day one\n- packed\n",
			wantTitle: "Day one",
			wantRoots: []string{"packed"},
		},
		{
			name:    "unterminated frontmatter",
			src:     "---\ntitle: Road trip\n- packed\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, f, err := DecodeMarkdown(strings.NewReader(tt.src), &outline.SequenceGenerator{Prefix: "m"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeMarkdown: %v", err)
			}
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			var roots []string
			for _, n := range f {
				roots = append(roots, n.Content)
			}
			if strings.Join(roots, "|") != strings.Join(tt.wantRoots, "|") {
				t.Errorf("roots = %q, want %q", roots, tt.wantRoots)
			}
		})
	}
}

func TestEncodeDOCX(t *testing.T) {
	out, err := EncodeDOCX(Document{Title: "Week", Snapshot: sampleSnapshot()})
	if err != nil {
		t.Fatalf("EncodeDOCX: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("PK")) {
		t.Fatal("output is not a zip archive")
	}
}
