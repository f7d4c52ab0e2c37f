// Package sections groups decoded lyric lines into labeled song sections.
// Section markers are recognized through a configurable source-language
// mapping; songs without markers fall back to a single unlabeled section
// or, in advanced mode, a repetition-based heuristic.
package sections

import (
	"fmt"
	"strings"
)

// Kind identifies a canonical section label.
type Kind int

const (
	// KindNone marks an unlabeled section.
	KindNone Kind = iota
	KindVerse
	KindChorus
	KindBridge
	KindPreChorus
	KindIntro
	KindOutro
	KindTag
	KindInterlude
	KindEnding
	// KindCustom carries a label outside the canonical vocabulary.
	KindCustom
)

// kindNames holds the canonical display name per kind.
var kindNames = map[Kind]string{
	KindVerse:     "Verse",
	KindChorus:    "Chorus",
	KindBridge:    "Bridge",
	KindPreChorus: "Pre-Chorus",
	KindIntro:     "Intro",
	KindOutro:     "Outro",
	KindTag:       "Tag",
	KindInterlude: "Interlude",
	KindEnding:    "Ending",
}

// canonicalKinds maps canonical names (as they appear as mapping values)
// back to kinds.
var canonicalKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[strings.ToLower(name)] = k
	}
	return m
}()

// Label is a tagged section label: a canonical kind with an optional
// ordinal, or a custom name outside the closed vocabulary.
type Label struct {
	Kind    Kind
	Ordinal int    // 0 when absent
	Custom  string // set only for KindCustom
}

// LabelFor builds a Label from a canonical target name. Names outside
// the canonical vocabulary yield a custom label rather than an error.
func LabelFor(name string) Label {
	name = strings.TrimSpace(name)
	if k, ok := canonicalKinds[strings.ToLower(name)]; ok {
		return Label{Kind: k}
	}
	return Label{Kind: KindCustom, Custom: name}
}

// Name returns the label's base name without the ordinal.
func (l Label) Name() string {
	switch l.Kind {
	case KindNone:
		return ""
	case KindCustom:
		return l.Custom
	default:
		return kindNames[l.Kind]
	}
}

// Display returns the label's display name including the ordinal,
// e.g. "Verse 2".
func (l Label) Display() string {
	name := l.Name()
	if l.Ordinal > 0 && name != "" {
		return fmt.Sprintf("%s %d", name, l.Ordinal)
	}
	return name
}

// WithOrdinal returns a copy of the label carrying the given ordinal.
func (l Label) WithOrdinal(n int) Label {
	l.Ordinal = n
	return l
}
