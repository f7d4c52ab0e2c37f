// Package naming derives filesystem-safe output names from song titles
// and resolves collisions against a caller-owned index of existing paths.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/karllinder/ewexport/core/errors"
)

// Strategy selects how a filename collision is handled.
type Strategy int

const (
	// StrategySkip leaves the existing file alone and skips the song.
	StrategySkip Strategy = iota
	// StrategyOverwrite keeps the candidate path unchanged.
	StrategyOverwrite
	// StrategyRename appends an incrementing " (n)" suffix.
	StrategyRename
	// StrategyCustom sanitizes a caller-supplied replacement name.
	StrategyCustom
)

// Decision is the outcome handed to the file system writer.
type Decision int

const (
	DecisionWrite Decision = iota
	DecisionSkip
	DecisionOverwrite
	DecisionRename
	DecisionCustom
)

// maxNameLength bounds sanitized names to a safe filename length.
const maxNameLength = 200

// Index is the set of final paths already claimed during a batch run.
// The caller owns it and must serialize mutation; the resolver only
// reads it. Membership here, not a directory re-scan, defines a
// collision, so rapid successive writes cannot race on stale state.
type Index map[string]struct{}

// NewIndex builds an index from pre-existing paths.
func NewIndex(paths ...string) Index {
	idx := make(Index, len(paths))
	for _, p := range paths {
		idx[p] = struct{}{}
	}
	return idx
}

// Add records a claimed path.
func (idx Index) Add(path string) {
	idx[path] = struct{}{}
}

// Contains reports whether a path is already claimed.
func (idx Index) Contains(path string) bool {
	_, ok := idx[path]
	return ok
}

// forbidden is the fixed set of characters replaced during sanitization.
const forbidden = `<>:"/\|?*`

// Sanitize converts a song title into a filesystem-safe base name.
// Forbidden characters and control characters (including embedded
// newlines) become underscores, whitespace collapses, and the result is
// truncated to a safe length. Returns a NameError when nothing usable
// remains.
func Sanitize(title string) (string, error) {
	var buf strings.Builder
	for _, r := range title {
		switch {
		case strings.ContainsRune(forbidden, r):
			buf.WriteRune('_')
		case r < 0x20 || r == 0x7f:
			buf.WriteRune(' ')
		default:
			buf.WriteRune(r)
		}
	}

	name := strings.Join(strings.Fields(buf.String()), " ")
	name = strings.Trim(name, " .")
	if len(name) > maxNameLength {
		name = strings.TrimRight(name[:maxNameLength], " .")
	}
	if name == "" || strings.Trim(name, "_ ") == "" {
		return "", errors.NewName(title, "no usable characters after sanitization")
	}
	return name, nil
}

// PlaceholderName returns the fallback base name for a song whose title
// could not be sanitized.
func PlaceholderName(songID int64) string {
	return fmt.Sprintf("song-%d", songID)
}

// Resolve sanitizes a title and resolves the resulting path against the
// index using the given strategy. ext includes the dot (".pro6"); dir may
// be empty for relative output. For StrategyCustom, custom supplies the
// replacement base name. The caller must add the returned path to the
// index before resolving the next song.
func Resolve(title, dir, ext string, index Index, strategy Strategy, custom string) (string, Decision, error) {
	base := title
	if strategy == StrategyCustom {
		base = custom
	}

	name, err := Sanitize(base)
	if err != nil {
		return "", DecisionSkip, err
	}

	candidate := filepath.Join(dir, name+ext)
	if !index.Contains(candidate) {
		decision := DecisionWrite
		if strategy == StrategyCustom {
			decision = DecisionCustom
		}
		return candidate, decision, nil
	}

	switch strategy {
	case StrategySkip:
		return candidate, DecisionSkip, nil
	case StrategyOverwrite:
		return candidate, DecisionOverwrite, nil
	case StrategyCustom:
		// A colliding custom name falls through to numbered renaming.
		fallthrough
	case StrategyRename:
		for n := 2; ; n++ {
			renamed := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", name, n, ext))
			if !index.Contains(renamed) {
				return renamed, DecisionRename, nil
			}
		}
	default:
		return candidate, DecisionSkip, nil
	}
}
