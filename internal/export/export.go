// Package export runs the song conversion pipeline: decode the RTF
// lyric blob, normalize and segment the text, break it into slides,
// assemble the presentation document, and write it under a collision
// resolved filename. Batch runs fan songs out over a worker pool;
// a failing song never aborts the rest of the run.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ewerrors "github.com/karllinder/ewexport/core/errors"
	"github.com/karllinder/ewexport/core/naming"
	"github.com/karllinder/ewexport/core/pro6"
	"github.com/karllinder/ewexport/core/rtf"
	"github.com/karllinder/ewexport/core/sections"
	"github.com/karllinder/ewexport/core/songtext"
	ewxml "github.com/karllinder/ewexport/core/xml"
	"github.com/karllinder/ewexport/internal/songdb"
)

// Ext is the output file extension.
const Ext = ".pro6"

// Options configures an export run.
type Options struct {
	OutputDir string

	// Mapping resolves section marker lines; nil uses the built-in
	// multi-language default.
	Mapping  *sections.Mapping
	Advanced bool

	MaxLines  int
	AutoBreak bool

	StripChords bool

	Strategy   naming.Strategy
	CustomName string

	FontFamily string
	FontSize   int

	FirstSlide      bool
	FirstSlideText  string
	FirstSlideGroup string
	LastSlide       bool
	LastSlideGroup  string

	// Workers bounds batch concurrency; values below 1 mean serial.
	Workers int

	// ArchivePath, when set, bundles the output directory into a
	// tar.xz file after a batch run.
	ArchivePath string
}

func (o Options) mapping() *sections.Mapping {
	if o.Mapping != nil {
		return o.Mapping
	}
	return sections.DefaultMapping()
}

func (o Options) proOptions() pro6.Options {
	return pro6.Options{
		FirstSlide:      o.FirstSlide,
		FirstSlideText:  o.FirstSlideText,
		FirstSlideGroup: o.FirstSlideGroup,
		LastSlide:       o.LastSlide,
		LastSlideGroup:  o.LastSlideGroup,
		FontFamily:      o.FontFamily,
		FontSize:        o.FontSize,
	}
}

// Result reports the outcome of one song.
type Result struct {
	SongID   int64
	Title    string
	Path     string
	Decision naming.Decision
	// Warning is set for songs exported with degraded content, such as
	// an empty lyric blob.
	Warning string
	Size    int64
	Hash    string
	Err     error
}

// Exported reports whether the song produced an output file.
func (r Result) Exported() bool {
	return r.Err == nil && r.Decision != naming.DecisionSkip
}

// Build runs the text pipeline for one song and returns the assembled
// document. The second return is true when the song had no lyric
// content; the document then carries metadata only.
func Build(song songdb.Song, raw []byte, opts Options) (*pro6.Document, bool, error) {
	meta := pro6.SongMeta{
		ID:              song.ID,
		Title:           song.Title,
		Author:          song.Author,
		Copyright:       song.Copyright,
		Administrator:   song.Administrator,
		ReferenceNumber: song.ReferenceNumber,
	}

	lines, err := rtf.DecodeLines(raw)
	if err != nil {
		return nil, false, err
	}
	lines = songtext.Normalize(lines, songtext.Options{StripChords: opts.StripChords})

	if !hasText(lines) {
		doc := pro6.Assemble(meta, nil, opts.proOptions())
		return doc, true, nil
	}

	secs := sections.Segment(lines, opts.mapping(), opts.Advanced)
	groups := pro6.BuildSections(secs, opts.MaxLines, opts.AutoBreak)
	return pro6.Assemble(meta, groups, opts.proOptions()), false, nil
}

func hasText(lines []rtf.Line) bool {
	for _, l := range lines {
		if strings.TrimSpace(l.Text) != "" {
			return true
		}
	}
	return false
}

// Exporter writes documents for a batch run. The filename index is
// shared across workers and guarded by a mutex; path resolution and
// claiming happen atomically so two songs can never race into the same
// output file.
type Exporter struct {
	opts Options

	mu    sync.Mutex
	index naming.Index
}

// NewExporter creates an exporter whose collision index is seeded with
// the files already present in the output directory.
func NewExporter(opts Options) (*Exporter, error) {
	index := naming.NewIndex()
	entries, err := os.ReadDir(opts.OutputDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("scan output dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			index.Add(filepath.Join(opts.OutputDir, e.Name()))
		}
	}
	return &Exporter{opts: opts, index: index}, nil
}

// claimPath resolves and claims an output path for a song title. Titles
// that sanitize to nothing fall back to a placeholder name derived from
// the song ID.
func (e *Exporter) claimPath(song songdb.Song) (string, naming.Decision, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	title := song.Title
	path, decision, err := naming.Resolve(title, e.opts.OutputDir, Ext, e.index, e.opts.Strategy, e.opts.CustomName)
	if err != nil && ewerrors.Is(err, ewerrors.ErrInvalidName) {
		title = naming.PlaceholderName(song.ID)
		path, decision, err = naming.Resolve(title, e.opts.OutputDir, Ext, e.index, e.opts.Strategy, e.opts.CustomName)
	}
	if err != nil {
		return "", naming.DecisionSkip, err
	}
	if decision != naming.DecisionSkip {
		e.index.Add(path)
	}
	return path, decision, nil
}

// ExportSong converts one song and writes its document. Every failure
// is contained in the returned Result.
func (e *Exporter) ExportSong(song songdb.Song, raw []byte) Result {
	res := Result{SongID: song.ID, Title: song.Title}

	doc, empty, err := Build(song, raw, e.opts)
	if err != nil {
		res.Err = err
		return res
	}
	if empty {
		res.Warning = "no lyric content"
	}

	data, err := doc.Serialize()
	if err != nil {
		res.Err = err
		return res
	}
	if v := ewxml.Validate(data); !v.Valid {
		res.Err = fmt.Errorf("serialized document not well-formed: %s", strings.Join(v.Errors, "; "))
		return res
	}

	path, decision, err := e.claimPath(song)
	res.Path = path
	res.Decision = decision
	if err != nil {
		res.Err = err
		return res
	}
	if decision == naming.DecisionSkip {
		return res
	}

	if err := os.MkdirAll(e.opts.OutputDir, 0o755); err != nil {
		res.Err = ewerrors.NewWrite(path, err)
		return res
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		res.Err = ewerrors.NewWrite(path, err)
		return res
	}

	res.Size = int64(len(data))
	res.Hash = contentHash(data)
	return res
}
