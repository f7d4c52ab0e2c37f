package pro6

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/karllinder/ewexport/core/sections"
	"github.com/karllinder/ewexport/core/slides"
)

// xmlHeader opens every serialized document.
const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>` + "\n"

// SectionSlides pairs a section label with its formatted slides.
type SectionSlides struct {
	Label  sections.Label
	Slides []slides.Slide
}

// BuildSections formats every section into its slide list, keeping
// section order and boundaries.
func BuildSections(secs []sections.Section, maxLines int, autoBreak bool) []SectionSlides {
	formatted := slides.FormatAll(secs, maxLines, autoBreak)
	out := make([]SectionSlides, len(secs))
	for i, sec := range secs {
		out[i] = SectionSlides{Label: sec.Label, Slides: formatted[i]}
	}
	return out
}

// Assemble builds a presentation document from song metadata and
// formatted slide groups. One slide group is emitted per section, plus
// optional synthetic first and last groups. A song with no sections
// yields a valid document with metadata and no lyric groups.
func Assemble(meta SongMeta, secs []SectionSlides, opts Options) *Document {
	// Whitespace-only metadata counts as absent and emits no attribute.
	meta.Title = strings.TrimSpace(meta.Title)
	meta.Author = strings.TrimSpace(meta.Author)
	meta.Copyright = strings.TrimSpace(meta.Copyright)
	meta.Administrator = strings.TrimSpace(meta.Administrator)
	meta.ReferenceNumber = strings.TrimSpace(meta.ReferenceNumber)

	doc := &Document{
		Height:                 slideHeight,
		Width:                  slideWidth,
		VersionNumber:          "600",
		DocType:                "0",
		CreatorCode:            "1349676880",
		LastDateUsed:           time.Now().UTC().Format("2006-01-02T15:04:05+00:00"),
		UsedCount:              "0",
		Category:               "Song",
		ResourcesDirectory:     "",
		BackgroundColor:        "0 0 0 1",
		DrawingBackgroundColor: "0",
		Artist:                 meta.Author,
		Author:                 meta.Author,
		CCLIDisplay:            "0",
		CCLIPublisher:          meta.Administrator,
		CCLICopyright:          meta.Copyright,
		CCLISongTitle:          meta.Title,
		CCLIAuthor:             meta.Author,
		CCLISongNumber:         meta.ReferenceNumber,
		Timeline: Timeline{
			TimeOffset:              "0",
			SelectedMediaTrackIndex: "0",
			UnitOfMeasure:           "60",
			Duration:                "0",
			Loop:                    "0",
		},
	}
	if meta.ReferenceNumber != "" {
		doc.CCLIDisplay = "1"
	}

	a := assembler{opts: opts}

	if opts.FirstSlide {
		name := opts.FirstSlideGroup
		if name == "" {
			name = "Intro"
		}
		doc.Groups.Groups = append(doc.Groups.Groups,
			a.syntheticGroup(name, splitText(opts.FirstSlideText)))
	}

	for _, sec := range secs {
		doc.Groups.Groups = append(doc.Groups.Groups, a.lyricGroup(sec))
	}

	if opts.LastSlide {
		name := opts.LastSlideGroup
		if name == "" {
			name = "Blank"
		}
		doc.Groups.Groups = append(doc.Groups.Groups, a.syntheticGroup(name, nil))
	}

	ids := make([]string, len(doc.Groups.Groups))
	for i, g := range doc.Groups.Groups {
		ids[i] = g.UUID
	}
	doc.Arrangements.Arrangements = []Arrangement{{
		Name:     "Default",
		UUID:     newUUID(),
		Color:    defaultGroupColor,
		GroupIDs: ids,
	}}

	return doc
}

// Serialize renders the document as standalone UTF-8 XML.
func (doc *Document) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// assembler tracks running serial numbers across a single document.
type assembler struct {
	opts       Options
	groupIndex int
	slideIndex int
}

// lyricGroup builds the slide group for one song section. Unlabeled
// sections fall back to the "Verse" group name.
func (a *assembler) lyricGroup(sec SectionSlides) SlideGroup {
	name := sec.Label.Display()
	if name == "" {
		name = "Verse"
	}
	g := SlideGroup{
		Name:         name,
		UUID:         newUUID(),
		Color:        colorFor(sec.Label),
		SerialNumber: a.groupIndex,
	}
	a.groupIndex++
	for _, s := range sec.Slides {
		g.Slides = append(g.Slides, a.slide(s.Label.Display(), s.Lines))
	}
	return g
}

// syntheticGroup builds a first or last slide group. The group always
// contains exactly one slide, even when the text is empty.
func (a *assembler) syntheticGroup(name string, lines []string) SlideGroup {
	g := SlideGroup{
		Name:         name,
		UUID:         newUUID(),
		Color:        defaultGroupColor,
		SerialNumber: a.groupIndex,
	}
	a.groupIndex++
	g.Slides = append(g.Slides, a.slide(name, lines))
	return g
}

// slide builds one display slide carrying the given text lines.
func (a *assembler) slide(label string, lines []string) Slide {
	lines = trimBlankEdges(lines)

	s := Slide{
		BackgroundColor:        "0 0 0 1",
		Enabled:                "1",
		HighlightColor:         "0 0 0 0",
		Label:                  label,
		SlideType:              "1",
		SortIndex:              a.slideIndex,
		UUID:                   newUUID(),
		DrawingBackgroundColor: "0",
		SerialNumber:           a.slideIndex,
	}
	a.slideIndex++

	el := TextElement{
		DisplayDelay:       "0",
		DisplayName:        "Default",
		Locked:             "0",
		Persistent:         "0",
		TypeID:             "0",
		FromTemplate:       "0",
		BezelRadius:        "0",
		DrawingFill:        "0",
		DrawingShadow:      "1",
		DrawingStroke:      "0",
		FillColor:          "1 1 1 1",
		Rotation:           "0",
		Source:             "",
		AdjustsHeightToFit: "0",
		VerticalAlignment:  "0",
		Opacity:            "1",
		UUID:               newUUID(),
		RTFData:            buildRTFData(lines, a.opts.fontName(), a.opts.fontSize()),
		Position:           Position{X: 0, Y: 0, Z: 0},
		Size:               Size{Width: slideWidth, Height: slideHeight},
		Shadow: Shadow{
			ShadowColor:      "0 0 0 1",
			ShadowOffset:     "{5, -5}",
			ShadowBlurRadius: "10",
		},
	}
	for _, ln := range lines {
		el.Strings = append(el.Strings, NSString{Value: ln})
	}
	s.DisplayElements.Text = []TextElement{el}
	return s
}

// splitText breaks free-form text into slide lines.
func splitText(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// trimBlankEdges drops leading and trailing blank lines without
// touching interior ones.
func trimBlankEdges(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}
