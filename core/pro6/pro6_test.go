package pro6

import (
	"encoding/base64"
	"regexp"
	"strings"
	"testing"

	"github.com/karllinder/ewexport/core/rtf"
	"github.com/karllinder/ewexport/core/sections"
	"github.com/karllinder/ewexport/core/slides"
	ewxml "github.com/karllinder/ewexport/core/xml"
)

func sec(label sections.Label, lines ...string) SectionSlides {
	return SectionSlides{
		Label:  label,
		Slides: []slides.Slide{{Lines: lines, Label: label}},
	}
}

func mustSerialize(t *testing.T, doc *Document) *ewxml.Document {
	t.Helper()
	data, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	parsed, err := ewxml.Parse(data)
	if err != nil {
		t.Fatalf("Parse serialized output: %v", err)
	}
	return parsed
}

// TestAssembleBasic checks the overall document shape for a two-section
// song: one group per section, group names with ordinals, and slides
// under the right groups.
func TestAssembleBasic(t *testing.T) {
	verse := sections.Label{Kind: sections.KindVerse, Ordinal: 1}
	chorus := sections.Label{Kind: sections.KindChorus}

	doc := Assemble(
		SongMeta{ID: 7, Title: "Amazing Grace", Author: "John Newton"},
		[]SectionSlides{
			sec(verse, "Amazing grace how sweet the sound", "That saved a wretch like me"),
			sec(chorus, "Praise God"),
		},
		Options{},
	)

	if got := len(doc.Groups.Groups); got != 2 {
		t.Fatalf("groups = %d, want 2", got)
	}
	if got := doc.Groups.Groups[0].Name; got != "Verse 1" {
		t.Errorf("group[0].Name = %q, want %q", got, "Verse 1")
	}
	if got := doc.Groups.Groups[1].Name; got != "Chorus" {
		t.Errorf("group[1].Name = %q, want %q", got, "Chorus")
	}
	if got := doc.Groups.Groups[1].Color; got != "1 0 0 1" {
		t.Errorf("chorus color = %q, want %q", got, "1 0 0 1")
	}
	if got := len(doc.Groups.Groups[0].Slides); got != 1 {
		t.Fatalf("verse slides = %d, want 1", got)
	}

	parsed := mustSerialize(t, doc)
	n, err := parsed.Count("//RVDisplaySlide")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("serialized slide count = %d, want 2", n)
	}
	title, _, err := parsed.Attr("/RVPresentationDocument", "CCLISongTitle")
	if err != nil {
		t.Fatalf("Attr: %v", err)
	}
	if title != "Amazing Grace" {
		t.Errorf("CCLISongTitle = %q, want %q", title, "Amazing Grace")
	}
}

// TestAssembleMetadataOmission checks that empty metadata fields produce
// no attributes at all rather than empty ones.
func TestAssembleMetadataOmission(t *testing.T) {
	doc := Assemble(SongMeta{ID: 1, Title: "Bare", Author: "   "}, nil, Options{})
	data, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	out := string(data)

	for _, attr := range []string{"CCLICopyright", "CCLIPublisher", "CCLISongNumber", "CCLIAuthor", "author=", "artist="} {
		if strings.Contains(out, attr) {
			t.Errorf("output contains %q for empty metadata", attr)
		}
	}
	if !strings.Contains(out, `CCLISongTitle="Bare"`) {
		t.Errorf("output missing song title attribute")
	}
	if !strings.Contains(out, `CCLIDisplay="0"`) {
		t.Errorf("CCLIDisplay should be 0 without a reference number")
	}
}

func TestAssembleCCLIDisplay(t *testing.T) {
	doc := Assemble(SongMeta{Title: "T", ReferenceNumber: "12345"}, nil, Options{})
	if doc.CCLIDisplay != "1" {
		t.Errorf("CCLIDisplay = %q, want %q", doc.CCLIDisplay, "1")
	}
	if doc.CCLISongNumber != "12345" {
		t.Errorf("CCLISongNumber = %q, want %q", doc.CCLISongNumber, "12345")
	}
}

// TestAssembleEmptySong checks that a song with no sections still yields
// a valid document carrying only metadata.
func TestAssembleEmptySong(t *testing.T) {
	doc := Assemble(SongMeta{ID: 3, Title: "Tyst"}, nil, Options{})
	if len(doc.Groups.Groups) != 0 {
		t.Fatalf("groups = %d, want 0", len(doc.Groups.Groups))
	}

	data, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if res := ewxml.Validate(data); !res.Valid {
		t.Fatalf("empty-song document invalid: %v", res.Errors)
	}
}

func TestAssembleSyntheticSlides(t *testing.T) {
	verse := sections.Label{Kind: sections.KindVerse}
	doc := Assemble(
		SongMeta{Title: "T"},
		[]SectionSlides{sec(verse, "line")},
		Options{FirstSlide: true, FirstSlideText: "Welcome", LastSlide: true},
	)

	if got := len(doc.Groups.Groups); got != 3 {
		t.Fatalf("groups = %d, want 3", got)
	}
	first := doc.Groups.Groups[0]
	if first.Name != "Intro" {
		t.Errorf("first group name = %q, want %q", first.Name, "Intro")
	}
	if len(first.Slides) != 1 || len(first.Slides[0].DisplayElements.Text[0].Strings) != 1 {
		t.Fatalf("first slide should carry one text line")
	}
	if got := first.Slides[0].DisplayElements.Text[0].Strings[0].Value; got != "Welcome" {
		t.Errorf("first slide text = %q, want %q", got, "Welcome")
	}

	last := doc.Groups.Groups[2]
	if last.Name != "Blank" {
		t.Errorf("last group name = %q, want %q", last.Name, "Blank")
	}
	if len(last.Slides) != 1 {
		t.Fatalf("last group should still contain one slide")
	}
	if len(last.Slides[0].DisplayElements.Text[0].Strings) != 0 {
		t.Errorf("last slide should carry no text lines")
	}
}

func TestAssembleSyntheticGroupOverride(t *testing.T) {
	doc := Assemble(SongMeta{Title: "T"}, nil, Options{
		FirstSlide: true, FirstSlideGroup: "Countdown",
		LastSlide: true, LastSlideGroup: "Outro",
	})
	if got := doc.Groups.Groups[0].Name; got != "Countdown" {
		t.Errorf("first group = %q, want %q", got, "Countdown")
	}
	if got := doc.Groups.Groups[1].Name; got != "Outro" {
		t.Errorf("last group = %q, want %q", got, "Outro")
	}
}

// TestAssembleIdentifiers checks that every element identifier is a
// fresh uppercase UUID, unique within the document, and that the
// arrangement references the real group identifiers.
func TestAssembleIdentifiers(t *testing.T) {
	verse := sections.Label{Kind: sections.KindVerse}
	doc := Assemble(SongMeta{Title: "T"},
		[]SectionSlides{sec(verse, "a"), sec(verse, "b")}, Options{})

	uuidRe := regexp.MustCompile(`^[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}$`)
	seen := map[string]bool{}
	check := func(id string) {
		t.Helper()
		if !uuidRe.MatchString(id) {
			t.Errorf("identifier %q is not an uppercase UUID", id)
		}
		if seen[id] {
			t.Errorf("identifier %q reused within document", id)
		}
		seen[id] = true
	}
	for _, g := range doc.Groups.Groups {
		check(g.UUID)
		for _, s := range g.Slides {
			check(s.UUID)
			for _, el := range s.DisplayElements.Text {
				check(el.UUID)
			}
		}
	}
	check(doc.Arrangements.Arrangements[0].UUID)

	arr := doc.Arrangements.Arrangements[0]
	if len(arr.GroupIDs) != len(doc.Groups.Groups) {
		t.Fatalf("arrangement group ids = %d, want %d", len(arr.GroupIDs), len(doc.Groups.Groups))
	}
	for i, id := range arr.GroupIDs {
		if id != doc.Groups.Groups[i].UUID {
			t.Errorf("arrangement id[%d] = %q, want group uuid %q", i, id, doc.Groups.Groups[i].UUID)
		}
	}
}

// TestRTFDataStyling decodes the styling blob and checks the font name
// and half-point size encoding.
func TestRTFDataStyling(t *testing.T) {
	verse := sections.Label{Kind: sections.KindVerse}
	doc := Assemble(SongMeta{Title: "T"},
		[]SectionSlides{sec(verse, "Hello world")},
		Options{FontFamily: "Helvetica", FontSize: 72})

	blob := doc.Groups.Groups[0].Slides[0].DisplayElements.Text[0].RTFData
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		t.Fatalf("RTFData is not valid base64: %v", err)
	}
	s := string(raw)
	if !strings.Contains(s, `\fs144`) {
		t.Errorf("blob missing half-point size \\fs144:\n%s", s)
	}
	if !strings.Contains(s, `Helvetica;`) {
		t.Errorf("blob missing font name:\n%s", s)
	}
	if !strings.Contains(s, "Hello world") {
		t.Errorf("blob missing slide text:\n%s", s)
	}
}

// TestRTFDataNonASCII checks that non-ASCII slide text is escaped in the
// styling blob and decodes back to the original text.
func TestRTFDataNonASCII(t *testing.T) {
	line := "Välsigna oss, Fader"
	blob := buildRTFData([]string{line}, "Arial", 60)
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	s := string(raw)
	if !strings.Contains(s, `\u228?`) {
		t.Errorf("blob should escape 'ä' as \\u228?:\n%s", s)
	}

	got, err := rtf.DecodeLines(raw)
	if err != nil {
		t.Fatalf("DecodeLines: %v", err)
	}
	var joined []string
	for _, l := range got {
		if strings.TrimSpace(l.Text) != "" {
			joined = append(joined, strings.TrimSpace(l.Text))
		}
	}
	if len(joined) == 0 || joined[len(joined)-1] != line {
		t.Errorf("decoded blob lines = %q, want last %q", joined, line)
	}
}

// TestSerializeRoundTrip checks that non-ASCII text survives
// serialization and re-parsing unchanged.
func TestSerializeRoundTrip(t *testing.T) {
	verse := sections.Label{Kind: sections.KindVerse}
	line := "Glad sång och jubelljud"
	doc := Assemble(SongMeta{Title: "Sång"}, []SectionSlides{sec(verse, line)}, Options{})

	parsed := mustSerialize(t, doc)
	got, err := parsed.InnerText("//RVTextElement/NSString")
	if err != nil {
		t.Fatalf("InnerText: %v", err)
	}
	if got != line {
		t.Errorf("round-tripped text = %q, want %q", got, line)
	}
}

func TestSerializeHeader(t *testing.T) {
	doc := Assemble(SongMeta{Title: "T"}, nil, Options{})
	data, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.HasPrefix(string(data), xmlHeader) {
		t.Errorf("output missing XML declaration header")
	}
}

func TestBuildSections(t *testing.T) {
	verse := sections.Label{Kind: sections.KindVerse, Ordinal: 1}
	secs := []sections.Section{{
		Label: verse,
		Lines: []rtf.Line{
			{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}, {Text: "e"},
		},
	}}
	got := BuildSections(secs, 2, true)
	if len(got) != 1 {
		t.Fatalf("sections = %d, want 1", len(got))
	}
	if len(got[0].Slides) != 3 {
		t.Fatalf("slides = %d, want 3", len(got[0].Slides))
	}
	if got[0].Label != verse {
		t.Errorf("label = %+v, want %+v", got[0].Label, verse)
	}
}

func TestTrimBlankEdges(t *testing.T) {
	got := trimBlankEdges([]string{"", "  ", "a", "", "b", ""})
	want := []string{"a", "", "b"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}
