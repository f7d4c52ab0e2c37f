package sections

import (
	"strings"

	"github.com/karllinder/ewexport/core/rtf"
)

// Section is a labeled block of lyric lines. Blank lines inside a
// section are preserved; the slide formatter treats them as boundaries.
type Section struct {
	Label Label
	Lines []rtf.Line
}

// hasContent reports whether any line in the slice is non-blank.
func hasContent(lines []rtf.Line) bool {
	for _, ln := range lines {
		if strings.TrimSpace(ln.Text) != "" {
			return true
		}
	}
	return false
}

// Segment walks the decoded lines and groups them into labeled sections.
// A marker line closes the current open section (even if empty) and opens
// a new one. Lines before the first marker form an implicit unlabeled
// leading section only when they carry content. A song with no marker
// lines yields exactly one unlabeled section; with advanced set, the
// repetition heuristic is attempted first. Segment never fails: absence
// of structure degrades to the single unlabeled section.
func Segment(lines []rtf.Line, mapping *Mapping, advanced bool) []Section {
	if mapping == nil {
		mapping = DefaultMapping()
	}

	var out []Section
	var current []rtf.Line
	open := false
	var openLabel Label

	for _, ln := range lines {
		label, isMarker := mapping.Match(ln.Text)
		if !isMarker {
			current = append(current, ln)
			continue
		}

		if open {
			out = append(out, Section{Label: openLabel, Lines: current})
		} else if hasContent(current) {
			out = append(out, Section{Label: Label{Kind: KindNone}, Lines: current})
		}
		current = nil
		open = true
		openLabel = label
	}

	if open {
		out = append(out, Section{Label: openLabel, Lines: current})
		return out
	}

	// No marker lines anywhere.
	if !hasContent(current) {
		return nil
	}
	if advanced {
		if detected := detectByRepetition(current); detected != nil {
			return detected
		}
	}
	return []Section{{Label: Label{Kind: KindNone}, Lines: current}}
}

// block is a maximal contiguous run of non-blank lines used by the
// repetition heuristic.
type block struct {
	lines []rtf.Line
	key   string
}

// detectByRepetition labels blocks of an unmarked song by repetition:
// a block whose normalized text recurs verbatim becomes the Chorus, all
// other blocks become Verse 1..n in order of first appearance. Ambiguous
// repeats (two distinct blocks tied for most repeats) return nil so the
// caller falls back to a single unlabeled section.
func detectByRepetition(lines []rtf.Line) []Section {
	blocks := splitBlocks(lines)
	if len(blocks) < 2 {
		return nil
	}

	counts := make(map[string]int)
	for _, b := range blocks {
		counts[b.key]++
	}

	// Find the most repeated block text; require at least two occurrences
	// and a unique winner.
	var chorusKey string
	best := 0
	tied := false
	for key, n := range counts {
		switch {
		case n > best:
			chorusKey, best, tied = key, n, false
		case n == best:
			tied = true
		}
	}
	if best < 2 {
		return nil
	}
	if tied {
		return nil
	}

	var out []Section
	verseOrdinals := make(map[string]int)
	nextVerse := 1
	for _, b := range blocks {
		if b.key == chorusKey {
			out = append(out, Section{Label: Label{Kind: KindChorus}, Lines: b.lines})
			continue
		}
		ord, seen := verseOrdinals[b.key]
		if !seen {
			ord = nextVerse
			verseOrdinals[b.key] = ord
			nextVerse++
		}
		out = append(out, Section{Label: Label{Kind: KindVerse, Ordinal: ord}, Lines: b.lines})
	}
	return out
}

// splitBlocks splits lines into blank-separated blocks with a normalized
// comparison key per block.
func splitBlocks(lines []rtf.Line) []block {
	var blocks []block
	var cur []rtf.Line

	flush := func() {
		if len(cur) == 0 {
			return
		}
		keys := make([]string, len(cur))
		for i, ln := range cur {
			keys[i] = strings.ToLower(strings.TrimSpace(ln.Text))
		}
		blocks = append(blocks, block{lines: cur, key: strings.Join(keys, "\n")})
		cur = nil
	}

	for _, ln := range lines {
		if strings.TrimSpace(ln.Text) == "" {
			flush()
			continue
		}
		cur = append(cur, ln)
	}
	flush()
	return blocks
}
