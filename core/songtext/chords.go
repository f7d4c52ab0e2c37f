package songtext

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// chordGrammar parses a single chord token such as C, G7, Am, F#m7,
// Bb, Dsus4, Cadd9, or Dm7/G.
//
//nolint:govet // participle grammar tags are not standard struct tags
type chordGrammar struct {
	Root       string     `@Root`
	Accidental *string    `@Accidental?`
	Quality    []string   `@Quality*`
	Extension  *int       `@Int?`
	Bass       *bassChord `( "/" @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type bassChord struct {
	Root       string  `@Root`
	Accidental *string `@Accidental?`
}

// chordLexer tokenizes chord symbols. Root notes are the uppercase
// letters A-G; a lowercase b doubles as the flat accidental.
var chordLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Root", Pattern: `[A-G]`},
	{Name: "Quality", Pattern: `maj|min|dim|aug|sus|add|m`},
	{Name: "Accidental", Pattern: `[#b]`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Slash", Pattern: `/`},
})

var chordParser = participle.MustBuild[chordGrammar](
	participle.Lexer(chordLexer),
)

// lowercaseWord matches a standalone lowercase word of 3+ letters, the
// guard that keeps real lyric lines out of the chord filter.
var lowercaseWord = regexp.MustCompile(`\b\p{Ll}{3,}\b`)

// maxChordTokens bounds how long a line can be and still count as a
// chord annotation line.
const maxChordTokens = 8

// IsChordToken reports whether a single token parses as a chord symbol.
// Surrounding brackets or parentheses are ignored.
func IsChordToken(tok string) bool {
	tok = strings.Trim(tok, "[]()")
	if tok == "" {
		return false
	}
	_, err := chordParser.ParseString("", tok)
	return err == nil
}

// IsChordLine reports whether a line is a chord annotation line: a short
// line composed only of chord-grammar tokens (plus bar separators).
// This is a best-effort filter; a line containing any lowercase word
// longer than 2 characters is never classified as chords.
func IsChordLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if lowercaseWord.MatchString(line) {
		return false
	}

	fields := strings.Fields(line)
	if len(fields) > maxChordTokens {
		return false
	}

	sawChord := false
	for _, tok := range fields {
		if tok == "|" || tok == "-" || tok == "||" {
			continue
		}
		if !IsChordToken(tok) {
			return false
		}
		sawChord = true
	}
	return sawChord
}
