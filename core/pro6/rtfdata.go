package pro6

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/karllinder/ewexport/core/rtf"
)

// rtfTemplate is the styling preamble for slide text. The chosen font
// occupies slot f4 in the font table; %d is the font size in
// half-point units.
const rtfTemplate = `{\rtf1\prortf1\ansi\ansicpg1252\uc1\htmautsp\deff2` +
	`{\fonttbl{\f0\fcharset0 Times New Roman;}{\f2\fcharset0 Georgia;}{\f3\fcharset0 Arial;}{\f4\fcharset0 %s;}}` +
	`{\colortbl;\red0\green0\blue0;\red255\green255\blue255;}` +
	`\loch\hich\dbch\pard\slleading0\plain\ltrpar\itap0` +
	`{\lang1033\fs%d\f4\cf1 \cf1\qc`

// buildRTFData encodes slide lines as a base64 RTF blob in the styling
// the target application expects: white centered text in the configured
// font. Font sizes are half-points, so a 60pt font encodes as \fs120.
func buildRTFData(lines []string, fontName string, fontSize int) string {
	var b strings.Builder
	fmt.Fprintf(&b, rtfTemplate, rtf.EscapeText(fontName), fontSize*2)
	for _, line := range lines {
		fmt.Fprintf(&b, `{\cf2\ltrch %s}\li0\sa0\sb0\fi0\qc\par`, rtf.EscapeText(line))
		b.WriteString("\r\n")
	}
	b.WriteString("}}")
	return base64.StdEncoding.EncodeToString([]byte(b.String()))
}
