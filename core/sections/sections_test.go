package sections

import (
	"testing"

	"github.com/karllinder/ewexport/core/rtf"
)

func lines(texts ...string) []rtf.Line {
	out := make([]rtf.Line, len(texts))
	for i, t := range texts {
		out[i] = rtf.Line{Text: t, Origin: rtf.OriginParagraph}
	}
	return out
}

func swedishMapping() *Mapping {
	return &Mapping{
		Version:     MappingVersion,
		KeepOrdinal: true,
		Table: map[string]string{
			"vers":    "Verse",
			"refräng": "Chorus",
			"chorus":  "Chorus",
		},
	}
}

// TestLabelDisplay verifies canonical names and ordinal formatting.
func TestLabelDisplay(t *testing.T) {
	tests := []struct {
		label Label
		want  string
	}{
		{Label{Kind: KindVerse}, "Verse"},
		{Label{Kind: KindVerse, Ordinal: 2}, "Verse 2"},
		{Label{Kind: KindPreChorus}, "Pre-Chorus"},
		{Label{Kind: KindCustom, Custom: "Rap"}, "Rap"},
		{Label{Kind: KindNone}, ""},
	}
	for _, tt := range tests {
		if got := tt.label.Display(); got != tt.want {
			t.Errorf("Display() = %q, want %q", got, tt.want)
		}
	}
}

// TestLabelForUnknownName verifies unknown targets become custom labels.
func TestLabelForUnknownName(t *testing.T) {
	l := LabelFor("Rap Part")
	if l.Kind != KindCustom || l.Custom != "Rap Part" {
		t.Errorf("LabelFor = %+v, want custom", l)
	}
	if LabelFor("chorus").Kind != KindChorus {
		t.Error("LabelFor should be case-insensitive for canonical names")
	}
}

// TestMappingMatchExactToken verifies exact-token marker matching with
// optional ordinals and no substring false positives.
func TestMappingMatchExactToken(t *testing.T) {
	m := swedishMapping()

	tests := []struct {
		line    string
		match   bool
		display string
	}{
		{"vers", true, "Verse"},
		{"  Vers  ", true, "Verse"},
		{"REFRÄNG", true, "Chorus"},
		{"chorus 2", true, "Chorus 2"},
		{"vers 10", true, "Verse 10"},
		{"Chorus is loud", false, ""},
		{"chorus repeats forever", false, ""},
		{"versify", false, ""},
		{"chorus 0", false, ""},
		{"chorus two", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		label, ok := m.Match(tt.line)
		if ok != tt.match {
			t.Errorf("Match(%q) = %v, want %v", tt.line, ok, tt.match)
			continue
		}
		if ok && label.Display() != tt.display {
			t.Errorf("Match(%q) label = %q, want %q", tt.line, label.Display(), tt.display)
		}
	}
}

// TestMappingKeepOrdinalOff verifies ordinals are dropped when disabled.
func TestMappingKeepOrdinalOff(t *testing.T) {
	m := swedishMapping()
	m.KeepOrdinal = false

	label, ok := m.Match("vers 3")
	if !ok {
		t.Fatal("marker with ordinal should still match")
	}
	if label.Ordinal != 0 {
		t.Errorf("Ordinal = %d, want 0", label.Ordinal)
	}
}

// TestParseMapping verifies JSON loading lowercases keys.
func TestParseMapping(t *testing.T) {
	data := []byte(`{"version":"1.0","keep_ordinal":true,"table":{"Refräng":"Chorus"}}`)
	m, err := ParseMapping(data)
	if err != nil {
		t.Fatalf("ParseMapping failed: %v", err)
	}
	if _, ok := m.Match("refräng"); !ok {
		t.Error("lookup should be case-insensitive over loaded keys")
	}
	if _, ok := m.Match("refrang"); ok {
		t.Error("lookup must be diacritic-sensitive")
	}
}

// TestSegmentLabeled verifies marker lines open labeled sections.
func TestSegmentLabeled(t *testing.T) {
	in := lines("vers", "Rad ett", "Rad två", "", "refräng", "Glad sång")
	got := Segment(in, swedishMapping(), false)

	if len(got) != 2 {
		t.Fatalf("got %d sections, want 2", len(got))
	}
	if got[0].Label.Display() != "Verse" {
		t.Errorf("section 0 label = %q, want Verse", got[0].Label.Display())
	}
	if got[1].Label.Display() != "Chorus" {
		t.Errorf("section 1 label = %q, want Chorus", got[1].Label.Display())
	}
	if len(got[1].Lines) != 1 || got[1].Lines[0].Text != "Glad sång" {
		t.Errorf("chorus lines = %v", got[1].Lines)
	}
}

// TestSegmentLeadingContent verifies an implicit unlabeled leading section
// appears only when it has content.
func TestSegmentLeadingContent(t *testing.T) {
	withContent := Segment(lines("Intro text", "vers", "Rad"), swedishMapping(), false)
	if len(withContent) != 2 || withContent[0].Label.Kind != KindNone {
		t.Errorf("leading content should form an unlabeled section: %+v", withContent)
	}

	blankOnly := Segment(lines("", "vers", "Rad"), swedishMapping(), false)
	if len(blankOnly) != 1 {
		t.Errorf("blank leading lines should be dropped: %+v", blankOnly)
	}
}

// TestSegmentEmptyLabeledSectionKept verifies a marker immediately followed
// by another marker still closes and appends the empty section.
func TestSegmentEmptyLabeledSectionKept(t *testing.T) {
	got := Segment(lines("vers", "refräng", "Text"), swedishMapping(), false)
	if len(got) != 2 {
		t.Fatalf("got %d sections, want 2", len(got))
	}
	if len(got[0].Lines) != 0 {
		t.Errorf("first section should be empty, got %v", got[0].Lines)
	}
}

// TestSegmentNoMarkers verifies the single unlabeled section fallback.
func TestSegmentNoMarkers(t *testing.T) {
	got := Segment(lines("Rad ett", "Rad två"), swedishMapping(), false)
	if len(got) != 1 {
		t.Fatalf("got %d sections, want 1", len(got))
	}
	if got[0].Label.Kind != KindNone {
		t.Errorf("label = %+v, want unlabeled", got[0].Label)
	}
	if len(got[0].Lines) != 2 {
		t.Errorf("lines = %v", got[0].Lines)
	}
}

// TestSegmentEmptyInput verifies no sections for blank input.
func TestSegmentEmptyInput(t *testing.T) {
	if got := Segment(lines("", "  "), swedishMapping(), false); got != nil {
		t.Errorf("got %v, want nil", got)
	}
	if got := Segment(nil, swedishMapping(), true); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

// TestSegmentAdvancedRepetition verifies the repeated block becomes the
// chorus and other blocks become numbered verses.
func TestSegmentAdvancedRepetition(t *testing.T) {
	in := lines(
		"First verse line one", "First verse line two",
		"",
		"Shout it out", "Lift it high",
		"",
		"Second verse line one", "Second verse line two",
		"",
		"Shout it out", "Lift it high",
	)
	got := Segment(in, swedishMapping(), true)

	if len(got) != 4 {
		t.Fatalf("got %d sections, want 4: %+v", len(got), got)
	}
	wantLabels := []string{"Verse 1", "Chorus", "Verse 2", "Chorus"}
	for i, want := range wantLabels {
		if got[i].Label.Display() != want {
			t.Errorf("section %d label = %q, want %q", i, got[i].Label.Display(), want)
		}
	}
}

// TestSegmentAdvancedAmbiguous verifies ties degrade to one unlabeled section.
func TestSegmentAdvancedAmbiguous(t *testing.T) {
	in := lines(
		"Block A", "",
		"Block B", "",
		"Block A", "",
		"Block B",
	)
	got := Segment(in, swedishMapping(), true)
	if len(got) != 1 || got[0].Label.Kind != KindNone {
		t.Errorf("ambiguous repeats should yield one unlabeled section: %+v", got)
	}
}

// TestSegmentAdvancedNoRepeats verifies the heuristic refuses to guess
// when nothing repeats.
func TestSegmentAdvancedNoRepeats(t *testing.T) {
	in := lines("Block A", "", "Block B", "", "Block C")
	got := Segment(in, swedishMapping(), true)
	if len(got) != 1 || got[0].Label.Kind != KindNone {
		t.Errorf("no repeats should yield one unlabeled section: %+v", got)
	}
}
