package xml

import (
	"testing"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<RVPresentationDocument CCLISongTitle="Glad sång">
  <groups>
    <RVSlideGrouping name="Verse" uuid="AAA">
      <RVDisplaySlide UUID="S1"><NSString>Rad ett</NSString></RVDisplaySlide>
      <RVDisplaySlide UUID="S2"><NSString>Rad två</NSString></RVDisplaySlide>
    </RVSlideGrouping>
    <RVSlideGrouping name="Chorus" uuid="BBB">
      <RVDisplaySlide UUID="S3"><NSString>Glad sång</NSString></RVDisplaySlide>
    </RVSlideGrouping>
  </groups>
</RVPresentationDocument>`

// TestValidateWellFormed verifies valid XML passes validation.
func TestValidateWellFormed(t *testing.T) {
	result := Validate([]byte(sampleDoc))
	if !result.Valid {
		t.Errorf("expected valid, got errors: %v", result.Errors)
	}
}

// TestValidateMalformed verifies broken XML fails validation.
func TestValidateMalformed(t *testing.T) {
	tests := []string{
		`<root><unclosed></root>`,
		`<root attr=></root>`,
		`<a><b></a></b>`,
	}
	for _, data := range tests {
		if result := Validate([]byte(data)); result.Valid {
			t.Errorf("expected invalid for %q", data)
		}
	}
}

// TestQueryCount verifies counting nodes by XPath.
func TestQueryCount(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	n, err := doc.Count("//RVSlideGrouping")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("group count = %d, want 2", n)
	}

	n, err = doc.Count("//RVDisplaySlide")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("slide count = %d, want 3", n)
	}
}

// TestInnerText verifies non-ASCII content survives parse and query.
func TestInnerText(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	text, err := doc.InnerText("//RVSlideGrouping[@name='Chorus']//NSString")
	if err != nil {
		t.Fatalf("InnerText failed: %v", err)
	}
	if text != "Glad sång" {
		t.Errorf("InnerText = %q, want %q", text, "Glad sång")
	}
}

// TestAttr verifies attribute lookup.
func TestAttr(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	val, ok, err := doc.Attr("/RVPresentationDocument", "CCLISongTitle")
	if err != nil || !ok {
		t.Fatalf("Attr failed: ok=%v err=%v", ok, err)
	}
	if val != "Glad sång" {
		t.Errorf("Attr = %q, want %q", val, "Glad sång")
	}

	_, ok, err = doc.Attr("/RVPresentationDocument", "missing")
	if err != nil || ok {
		t.Error("missing attribute should report ok=false")
	}
}

// TestQueryInvalidXPath verifies bad expressions return an error.
func TestQueryInvalidXPath(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := doc.Query("///["); err == nil {
		t.Error("expected error for invalid xpath")
	}
}
