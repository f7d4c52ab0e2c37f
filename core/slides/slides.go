// Package slides splits labeled sections into projectable slide units.
// Blank lines are hard boundaries; the configured maximum lines per slide
// further chunks long groups when auto-break is enabled.
package slides

import (
	"strings"

	"github.com/karllinder/ewexport/core/rtf"
	"github.com/karllinder/ewexport/core/sections"
)

// Slide is one projectable unit of lyric text.
type Slide struct {
	// Lines holds the slide's text lines in order.
	Lines []string
	// Label is the owning section's label.
	Label sections.Label
}

// Format converts a section's lines into slides. Natural groups form at
// every blank line; blank lines themselves never appear in a slide and
// never produce an empty one. With autoBreak set, groups longer than
// maxLines split into consecutive chunks of at most maxLines lines.
// maxLines <= 0 means no limit. Slides never cross section boundaries.
func Format(section sections.Section, maxLines int, autoBreak bool) []Slide {
	groups := naturalGroups(section.Lines)

	if !autoBreak || maxLines <= 0 {
		out := make([]Slide, 0, len(groups))
		for _, g := range groups {
			out = append(out, Slide{Lines: g, Label: section.Label})
		}
		return out
	}

	var out []Slide
	for _, g := range groups {
		for start := 0; start < len(g); start += maxLines {
			end := start + maxLines
			if end > len(g) {
				end = len(g)
			}
			out = append(out, Slide{Lines: g[start:end], Label: section.Label})
		}
	}
	return out
}

// FormatAll formats every section in order, keeping section boundaries.
func FormatAll(secs []sections.Section, maxLines int, autoBreak bool) [][]Slide {
	out := make([][]Slide, len(secs))
	for i, sec := range secs {
		out[i] = Format(sec, maxLines, autoBreak)
	}
	return out
}

// naturalGroups splits lines into blank-separated runs of text.
func naturalGroups(lines []rtf.Line) [][]string {
	var groups [][]string
	var cur []string

	for _, ln := range lines {
		text := strings.TrimSpace(ln.Text)
		if text == "" {
			if len(cur) > 0 {
				groups = append(groups, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, text)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}
