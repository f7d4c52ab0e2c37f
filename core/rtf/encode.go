package rtf

import (
	"fmt"
	"strings"
)

// escapeOverrides is the reverse of unicodeOverrides for non-ASCII runes,
// so encoding prefers the code points the decoder's override table honors.
var escapeOverrides = func() map[rune]int {
	m := make(map[rune]int, len(unicodeOverrides))
	for code, r := range unicodeOverrides {
		if r < 128 {
			continue
		}
		if prev, ok := m[r]; !ok || code < prev {
			m[r] = code
		}
	}
	return m
}()

// EscapeText encodes decoded lyric text back into RTF-safe text.
// Group delimiters and backslashes are escaped, and non-ASCII runes
// become \uN? numeric escapes using the same override table the
// decoder resolves, so accented letters round-trip losslessly.
func EscapeText(s string) string {
	var buf strings.Builder
	for _, r := range s {
		switch {
		case r == '\\':
			buf.WriteString(`\\`)
		case r == '{':
			buf.WriteString(`\{`)
		case r == '}':
			buf.WriteString(`\}`)
		case r < 128:
			buf.WriteRune(r)
		default:
			code, ok := escapeOverrides[r]
			if !ok {
				code = int(r)
			}
			fmt.Fprintf(&buf, `\u%d?`, code)
		}
	}
	return buf.String()
}
