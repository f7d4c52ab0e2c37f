// Package rtf provides pure Go parsing of EasyWorship RTF lyric blobs.
// It decodes the rich-text markup into a flat sequence of plain-text lines,
// preserving the distinction between paragraph breaks and in-paragraph
// line breaks for the slide formatter downstream.
package rtf

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/karllinder/ewexport/core/errors"
)

// Origin marks how a decoded line was terminated in the source markup.
type Origin int

const (
	// OriginParagraph means the line ended with a paragraph break (\par).
	OriginParagraph Origin = iota
	// OriginLine means the line ended with an in-paragraph break (\line).
	OriginLine
)

// Line is a single decoded line of lyric text.
type Line struct {
	Text   string
	Origin Origin
}

// unicodeOverrides maps numeric escape code points that EasyWorship emits
// incorrectly (or that need canonical replacements) to their intended runes.
// Checked before the generic numeric-escape path.
var unicodeOverrides = map[int]rune{
	228:  'ä',
	229:  'å',
	246:  'ö',
	180:  '´',
	8217: '\'',
	8220: '"',
	8221: '"',
	8211: '–',
	8212: '—',
}

// cp1252High maps the 0x80-0x9F range of \'hh hex escapes, where Windows-1252
// diverges from Latin-1. Unmapped bytes in this range decode to U+FFFD.
var cp1252High = map[byte]rune{
	0x85: '…',
	0x91: '‘',
	0x92: '’',
	0x93: '“',
	0x94: '”',
	0x96: '–',
	0x97: '—',
	0x99: '™',
}

// replacementChar is substituted for any malformed escape sequence.
// Decoding never aborts on a single bad escape.
const replacementChar = '�'

// Document represents a parsed RTF lyric blob.
type Document struct {
	root *group
}

// group represents an RTF group (content within braces).
type group struct {
	children []interface{} // can be *group, controlWord, or string
}

// controlWord represents an RTF control word or control symbol.
type controlWord struct {
	word  string
	param int
	has   bool
}

// Parse parses RTF data and returns a Document.
// It fails only when the input is structurally unparsable: a missing
// \rtf header or unbalanced groups.
func Parse(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, errors.NewDecode(0, "empty RTF data")
	}

	if !bytes.HasPrefix(data, []byte("{\\rtf")) {
		return nil, errors.NewDecode(0, "not a valid RTF document: missing \\rtf header")
	}

	parser := &rtfParser{data: data, pos: 0}
	root, err := parser.parseGroup()
	if err != nil {
		return nil, err
	}

	return &Document{root: root}, nil
}

// DecodeLines parses raw lyric data and returns its decoded lines.
// Empty or whitespace-only input decodes to an empty sequence, not an error.
func DecodeLines(data []byte) ([]Line, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return doc.Lines(), nil
}

type rtfParser struct {
	data []byte
	pos  int
}

func (p *rtfParser) parseGroup() (*group, error) {
	if p.pos >= len(p.data) || p.data[p.pos] != '{' {
		return nil, errors.NewDecode(p.pos, "expected '{'")
	}
	p.pos++ // consume '{'

	g := &group{}

	for p.pos < len(p.data) {
		ch := p.data[p.pos]

		switch ch {
		case '}':
			p.pos++ // consume '}'
			return g, nil

		case '{':
			nested, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			g.children = append(g.children, nested)

		case '\\':
			cw, ok := p.parseControlWord()
			if !ok {
				// Malformed escape at end of input; the enclosing group
				// is unbalanced and the outer loop will report it.
				continue
			}
			g.children = append(g.children, cw)

		case '\r', '\n':
			p.pos++

		default:
			text := p.parseText()
			if text != "" {
				g.children = append(g.children, text)
			}
		}
	}

	return nil, errors.NewDecode(p.pos, "unclosed group")
}

func (p *rtfParser) parseControlWord() (controlWord, bool) {
	p.pos++ // consume '\'
	if p.pos >= len(p.data) {
		return controlWord{}, false
	}

	ch := p.data[p.pos]

	// Escaped delimiters: \{, \}, \\
	if ch == '{' || ch == '}' || ch == '\\' {
		p.pos++
		return controlWord{word: string(ch)}, true
	}

	// Hex escape: \'hh
	if ch == '\'' {
		p.pos++
		if p.pos+1 < len(p.data) {
			val, err := strconv.ParseUint(string(p.data[p.pos:p.pos+2]), 16, 8)
			if err == nil {
				p.pos += 2
				return controlWord{word: "'", param: int(val), has: true}, true
			}
		}
		// Malformed hex pair; downstream substitutes the replacement character.
		return controlWord{word: "'", param: -1, has: true}, true
	}

	// Control word
	if isLetter(ch) {
		start := p.pos
		for p.pos < len(p.data) && isLetter(p.data[p.pos]) {
			p.pos++
		}
		word := string(p.data[start:p.pos])

		var param int
		var hasParam bool
		if p.pos < len(p.data) && (p.data[p.pos] == '-' || isDigit(p.data[p.pos])) {
			numStart := p.pos
			if p.data[p.pos] == '-' {
				p.pos++
			}
			for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
				p.pos++
			}
			param, _ = strconv.Atoi(string(p.data[numStart:p.pos]))
			hasParam = true
		}

		// Skip delimiter space
		if p.pos < len(p.data) && p.data[p.pos] == ' ' {
			p.pos++
		}

		return controlWord{word: word, param: param, has: hasParam}, true
	}

	// Control symbol (single non-letter character after \)
	p.pos++
	return controlWord{word: string(ch)}, true
}

func (p *rtfParser) parseText() string {
	var buf bytes.Buffer
	for p.pos < len(p.data) {
		ch := p.data[p.pos]
		if ch == '{' || ch == '}' || ch == '\\' {
			break
		}
		if ch != '\r' && ch != '\n' {
			buf.WriteByte(ch)
		}
		p.pos++
	}
	return buf.String()
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// lineCollector accumulates decoded text and flushes completed lines.
type lineCollector struct {
	lines []Line
	buf   strings.Builder
	// skipFallback is set after a \uN escape so the ANSI fallback
	// character EasyWorship emits after it (a '?') is consumed.
	skipFallback bool
}

func (c *lineCollector) writeText(s string) {
	if c.skipFallback {
		c.skipFallback = false
		if strings.HasPrefix(s, "?") {
			s = s[1:]
		}
	}
	c.buf.WriteString(s)
}

func (c *lineCollector) writeRune(r rune) {
	c.skipFallback = false
	c.buf.WriteRune(r)
}

func (c *lineCollector) flush(origin Origin) {
	c.skipFallback = false
	c.lines = append(c.lines, Line{Text: c.buf.String(), Origin: origin})
	c.buf.Reset()
}

// Lines decodes the document into its sequence of lyric lines.
// A \par control ends the current line with OriginParagraph; a \line
// control ends it with OriginLine. Both become separate output lines.
func (doc *Document) Lines() []Line {
	if doc.root == nil {
		return nil
	}
	c := &lineCollector{}
	doc.extractLines(doc.root, c)
	if c.buf.Len() > 0 {
		c.flush(OriginParagraph)
	}
	return c.lines
}

// Text returns the decoded document as newline-joined plain text.
func (doc *Document) Text() string {
	lines := doc.Lines()
	parts := make([]string, len(lines))
	for i, ln := range lines {
		parts[i] = ln.Text
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func (doc *Document) extractLines(g *group, c *lineCollector) {
	for _, child := range g.children {
		switch v := child.(type) {
		case string:
			c.writeText(v)

		case controlWord:
			switch v.word {
			case "par":
				c.flush(OriginParagraph)
			case "line":
				c.flush(OriginLine)
			case "tab":
				c.writeRune('\t')
			case "{", "}", "\\":
				c.writeText(v.word)
			case "u":
				c.writeRune(decodeUnicodeEscape(v))
				c.skipFallback = true
			case "'":
				c.writeRune(decodeHexEscape(v))
			}
			// Unrecognized control words are ignored rather than failing.

		case *group:
			if isSpecialGroup(v) {
				continue
			}
			doc.extractLines(v, c)
		}
	}
}

// isSpecialGroup reports whether a group holds non-content structure
// (font tables, color tables, embedded objects) that must not leak
// into the lyric text.
func isSpecialGroup(g *group) bool {
	for _, c := range g.children {
		if cw, ok := c.(controlWord); ok {
			switch cw.word {
			case "fonttbl", "colortbl", "stylesheet", "info", "pict", "object":
				return true
			}
		}
	}
	return false
}

// decodeUnicodeEscape resolves a \uN escape to its rune.
// The override table wins over the generic code-point path; negative
// parameters are 16-bit two's complement.
func decodeUnicodeEscape(cw controlWord) rune {
	if !cw.has {
		return replacementChar
	}
	code := cw.param
	if r, ok := unicodeOverrides[code]; ok {
		return r
	}
	if code < 0 {
		code = 65536 + code
	}
	if code <= 0 || code > 0x10FFFF {
		return replacementChar
	}
	return rune(code)
}

// decodeHexEscape resolves a \'hh escape to its rune using the
// override table, the Windows-1252 high range, then Latin-1.
func decodeHexEscape(cw controlWord) rune {
	if cw.param < 0 || cw.param > 0xFF {
		return replacementChar
	}
	if r, ok := unicodeOverrides[cw.param]; ok {
		return r
	}
	b := byte(cw.param)
	if b >= 0x80 && b <= 0x9F {
		if r, ok := cp1252High[b]; ok {
			return r
		}
		return replacementChar
	}
	return rune(b)
}
