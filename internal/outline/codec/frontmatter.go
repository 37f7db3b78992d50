package codec

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// frontmatter is the YAML block some note apps put at the top of Markdown
// files:
//
//	---
//	title: Road trip
//	---
//	- first bullet
type frontmatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
}

// splitFrontmatter separates an optional leading frontmatter block from the
// Markdown body. Files without one are returned unchanged.
func splitFrontmatter(src []byte) (frontmatter, []byte, error) {
	var meta frontmatter
	if !bytes.HasPrefix(src, []byte("---\n")) && !bytes.HasPrefix(src, []byte("---\r\n")) {
		return meta, src, nil
	}

	lines := bytes.Split(src, []byte("\n"))
	closing := 0
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			closing = i
			break
		}
	}
	if closing == 0 {
		return meta, nil, errors.New("missing closing frontmatter delimiter '---'")
	}

	block := bytes.Join(lines[1:closing], []byte("\n"))
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return meta, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta, bytes.Join(lines[closing+1:], []byte("\n")), nil
}
