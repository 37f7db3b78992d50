package content

import (
	"strings"
	"unicode"

	"journal/internal/outline"
)

// Analyzer computes statistics over bullet content.
type Analyzer struct{}

// NewAnalyzer creates a new content analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// CountWords counts the words of an HTML fragment.
func (a *Analyzer) CountWords(fragment string) int {
	count := 0
	for _, word := range strings.FieldsFunc(PlainText(fragment), unicode.IsSpace) {
		if strings.IndexFunc(word, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) >= 0 {
			count++
		}
	}
	return count
}

// Stats summarises a whole outline.
type Stats struct {
	Bullets int `json:"bullets"`
	Words   int `json:"words"`
	Depth   int `json:"depth"`
}

// Outline computes Stats for a forest.
func (a *Analyzer) Outline(f outline.Forest) Stats {
	stats := Stats{Depth: outline.Depth(f)}
	outline.Walk(f, func(n, _ *outline.Node) bool {
		stats.Bullets++
		stats.Words += a.CountWords(n.Content)
		return true
	})
	return stats
}
