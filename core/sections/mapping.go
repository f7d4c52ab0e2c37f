package sections

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/karllinder/ewexport/core/errors"
)

// MappingVersion is the current schema version of the mapping document.
const MappingVersion = "1.0"

// Mapping translates source-language section marker tokens to canonical
// labels. Lookup is case-insensitive but diacritic-sensitive. Loaded once
// per export run and read-only afterwards.
type Mapping struct {
	Version string `json:"version"`
	// Table maps a lowercase source token ("refräng") to a canonical
	// target name ("Chorus"). Values outside the canonical vocabulary
	// become custom labels.
	Table map[string]string `json:"table"`
	// KeepOrdinal controls whether a trailing numeral on a marker line
	// is preserved and re-attached to the canonical label.
	KeepOrdinal bool `json:"keep_ordinal"`
}

// ParseMapping decodes a mapping document from JSON.
func ParseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &errors.DecodeError{Message: "invalid mapping document", Err: err}
	}
	if m.Table == nil {
		m.Table = map[string]string{}
	}
	// Keys are matched lowercase; normalize once at load time.
	table := make(map[string]string, len(m.Table))
	for k, v := range m.Table {
		table[strings.ToLower(strings.TrimSpace(k))] = v
	}
	m.Table = table
	return &m, nil
}

// DefaultMapping returns the built-in multi-language table, merged from
// the marker vocabularies of the supported source languages.
func DefaultMapping() *Mapping {
	return &Mapping{
		Version:     MappingVersion,
		KeepOrdinal: true,
		Table: map[string]string{
			// English
			"verse": "Verse", "chorus": "Chorus", "bridge": "Bridge",
			"pre-chorus": "Pre-Chorus", "prechorus": "Pre-Chorus", "pre chorus": "Pre-Chorus",
			"intro": "Intro", "introduction": "Intro",
			"outro": "Outro", "ending": "Ending",
			"tag": "Tag", "coda": "Tag",
			"interlude": "Interlude", "instrumental": "Interlude",
			"refrain": "Chorus",
			// Swedish
			"vers": "Verse", "refräng": "Chorus", "refrang": "Chorus",
			"brygga": "Bridge", "stick": "Bridge",
			"förrefräng": "Pre-Chorus", "forrefrang": "Pre-Chorus",
			"slut": "Outro",
			// German
			"strophe": "Verse", "brücke": "Bridge", "brucke": "Bridge",
			"vorrefrain": "Pre-Chorus", "schluss": "Ending",
			// French
			"couplet": "Verse", "pont": "Bridge",
			"pré-refrain": "Pre-Chorus", "pre-refrain": "Pre-Chorus", "prérefrain": "Pre-Chorus",
			// Spanish
			"verso": "Verse", "estrofa": "Verse",
			"coro": "Chorus", "estribillo": "Chorus",
			"puente": "Bridge", "pre-coro": "Pre-Chorus", "precoro": "Pre-Chorus",
			"final": "Ending",
			// Norwegian
			"refreng": "Chorus", "bro": "Bridge", "bru": "Bridge",
			"mellomspill": "Interlude", "slutt": "Ending",
			// Danish
			"omkvæd": "Chorus", "omkvaed": "Chorus",
			"mellemspil": "Interlude", "slutning": "Ending",
		},
	}
}

// markerWithOrdinal splits "token 2" into its token and trailing integer.
var markerWithOrdinal = regexp.MustCompile(`^(.*\S)\s+(\d+)$`)

// Match reports whether a line is a section marker line and, if so, the
// resolved label. A line qualifies only when, after trimming and
// lowercasing, it exactly equals a table key or a key followed by
// whitespace and a positive integer. Substring matches never qualify.
func (m *Mapping) Match(line string) (Label, bool) {
	token := strings.ToLower(strings.TrimSpace(line))
	if token == "" {
		return Label{}, false
	}

	if target, ok := m.Table[token]; ok {
		return LabelFor(target), true
	}

	sub := markerWithOrdinal.FindStringSubmatch(token)
	if sub == nil {
		return Label{}, false
	}
	target, ok := m.Table[sub[1]]
	if !ok {
		return Label{}, false
	}
	n, err := strconv.Atoi(sub[2])
	if err != nil || n <= 0 {
		return Label{}, false
	}

	label := LabelFor(target)
	if m.KeepOrdinal {
		label = label.WithOrdinal(n)
	}
	return label, true
}
