// Package songtext cleans decoded lyric lines before section detection.
// It normalizes whitespace and punctuation, removes markup remnants that
// survived decoding, and optionally filters out chord annotation lines.
package songtext

import (
	"regexp"
	"strings"

	"github.com/karllinder/ewexport/core/rtf"
)

// Options controls normalization behavior.
type Options struct {
	// StripChords removes lines matching the chord-line heuristic.
	StripChords bool
}

// punctuation maps typographic variants to their canonical forms.
var punctuation = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"–", "-",
	"—", "-",
	"…", "...",
	" ", " ",
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)

	// Repetition markers like (x2), (2x), [x3], and a trailing x2.
	repetitionMarkers = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\(x\d+\)`),
		regexp.MustCompile(`(?i)\(\d+x\)`),
		regexp.MustCompile(`(?i)\[x\d+\]`),
		regexp.MustCompile(`(?i)\[\d+x\]`),
		regexp.MustCompile(`(?i)\s+x\d+$`),
	}
)

// Normalize cleans a decoded line sequence.
// Runs of horizontal whitespace collapse to one space, lines are trimmed,
// punctuation variants are canonicalized, control-code remnants are dropped,
// and three or more consecutive empty lines collapse to exactly one (single
// and double blank lines are preserved as slide separators).
func Normalize(lines []rtf.Line, opts Options) []rtf.Line {
	out := make([]rtf.Line, 0, len(lines))
	blankRun := 0

	for _, ln := range lines {
		text := normalizeLine(ln.Text)

		if opts.StripChords && IsChordLine(text) {
			continue
		}

		if text == "" {
			blankRun++
			continue
		}

		// Flush the pending blank run: 1 or 2 blanks survive as-is,
		// longer runs collapse to a single blank line.
		if len(out) > 0 {
			n := blankRun
			if n > 2 {
				n = 1
			}
			for i := 0; i < n; i++ {
				out = append(out, rtf.Line{Text: "", Origin: rtf.OriginParagraph})
			}
		}
		blankRun = 0
		out = append(out, rtf.Line{Text: text, Origin: ln.Origin})
	}

	// Trailing blank lines are dropped entirely.
	return out
}

// normalizeLine cleans a single line of text.
func normalizeLine(s string) string {
	s = punctuation.Replace(s)
	s = stripControls(s)
	s = horizontalSpace.ReplaceAllString(s, " ")
	for _, re := range repetitionMarkers {
		s = re.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// stripControls removes control-code remnants that survived decoding.
func stripControls(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
