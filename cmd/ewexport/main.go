// Command ewexport converts EasyWorship 6.1 song databases into
// ProPresenter 6 documents.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/karllinder/ewexport/core/naming"
	"github.com/karllinder/ewexport/internal/config"
	"github.com/karllinder/ewexport/internal/export"
	"github.com/karllinder/ewexport/internal/logging"
	"github.com/karllinder/ewexport/internal/songdb"
)

const version = "1.1.0"

// CLI defines the command-line interface for ewexport.
var CLI struct {
	// Global flags
	ConfigDir string `name:"config-dir" help:"Settings directory (defaults to the per-user config dir)" type:"path"`
	LogLevel  string `name:"log-level" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" default:"text" help:"Log format (text, json)"`

	Songs    SongsGroup   `cmd:"" help:"Song database operations (list, validate)"`
	Export   ExportCmd    `cmd:"" help:"Export songs to ProPresenter 6 documents"`
	Mapping  MappingGroup `cmd:"" help:"Section marker mapping operations"`
	Settings SettingsCmd  `cmd:"" help:"Show the resolved settings document"`
	Version  VersionCmd   `cmd:"" help:"Print version information"`
}

// SongsGroup contains database inspection operations.
type SongsGroup struct {
	List     SongsListCmd     `cmd:"" help:"List songs in a database directory"`
	Validate SongsValidateCmd `cmd:"" help:"Validate a database directory"`
}

// MappingGroup contains mapping operations.
type MappingGroup struct {
	Show MappingShowCmd `cmd:"" help:"Print the effective marker mapping as JSON"`
}

// SongsListCmd lists the songs in a database directory.
type SongsListCmd struct {
	DB string `arg:"" help:"EasyWorship database directory (contains Songs.db and SongWords.db)" type:"existingdir"`
}

func (c *SongsListCmd) Run() error {
	store, err := songdb.Open(c.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	songs, err := store.Songs(ctx)
	if err != nil {
		return err
	}

	for _, s := range songs {
		line := fmt.Sprintf("%6d  %s", s.ID, s.Title)
		if s.Author != "" {
			line += "  (" + s.Author + ")"
		}
		fmt.Println(line)
	}
	fmt.Printf("%d songs\n", len(songs))
	return nil
}

// SongsValidateCmd checks that a directory holds a readable database.
type SongsValidateCmd struct {
	DB string `arg:"" help:"EasyWorship database directory" type:"existingdir"`
}

func (c *SongsValidateCmd) Run() error {
	store, err := songdb.Open(c.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Validate(ctx); err != nil {
		return err
	}
	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	logging.DatabaseOpened(c.DB, n)
	fmt.Printf("ok: %d songs (driver %s)\n", n, songdb.DriverType)
	return nil
}

// ExportCmd runs a batch export.
type ExportCmd struct {
	DB  string `arg:"" help:"EasyWorship database directory" type:"existingdir"`
	Out string `name:"out" short:"o" help:"Output directory (defaults to the configured export directory)" type:"path"`

	IDs string `name:"ids" help:"Comma-separated song rowids to export (default: all)"`

	Strategy string `name:"on-duplicate" help:"Duplicate handling: skip, overwrite, rename" default:""`

	Mapping  string `name:"mapping" help:"Marker mapping JSON file (default: built-in multi-language table)" type:"path"`
	Advanced bool   `name:"advanced" help:"Use repetition-based section detection for unmarked songs"`

	MaxLines    int  `name:"max-lines" default:"-1" help:"Maximum lines per slide (overrides settings)"`
	NoAutoBreak bool `name:"no-auto-break" help:"Do not split long sections across slides"`
	StripChords bool `name:"strip-chords" help:"Drop chord-only lines from the lyrics"`

	Font     string `name:"font" help:"Font family for slide text (overrides settings)"`
	FontSize int    `name:"font-size" default:"0" help:"Font size in points (overrides settings)"`

	IntroSlide bool   `name:"intro-slide" help:"Prepend an intro slide group"`
	IntroText  string `name:"intro-text" help:"Text for the intro slide"`
	BlankSlide bool   `name:"blank-slide" help:"Append a blank slide group"`

	Workers int `name:"workers" default:"0" help:"Concurrent workers (overrides settings)"`

	Archive string `name:"archive" help:"Also bundle the output directory into this tar.xz file" type:"path"`
}

func (c *ExportCmd) Run(cfg *config.Manager) error {
	opts, err := c.options(cfg)
	if err != nil {
		return err
	}

	store, err := songdb.Open(c.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	songs, err := store.Songs(ctx)
	if err != nil {
		return err
	}
	songs, err = filterSongs(songs, c.IDs)
	if err != nil {
		return err
	}

	summary, err := export.Batch(ctx, store, songs, opts, nil)
	if err != nil {
		return err
	}

	fmt.Printf("exported %d of %d songs (%d skipped, %d failed, %d warnings) in %s\n",
		summary.Exported, summary.Total, summary.Skipped, summary.Failed,
		summary.Warnings, summary.Duration.Round(time.Millisecond))
	for _, r := range summary.Results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "  failed: %s: %v\n", r.Title, r.Err)
		}
	}

	cfg.Set("paths.last_easyworship_path", c.DB)
	cfg.Set("paths.last_export_path", opts.OutputDir)
	cfg.AddRecentDatabase(c.DB)
	if err := cfg.Save(); err != nil {
		logging.Warn("could not save settings", "error", err)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d songs failed", summary.Failed)
	}
	return nil
}

// options merges settings-file defaults with command line overrides;
// explicit flags win.
func (c *ExportCmd) options(cfg *config.Manager) (export.Options, error) {
	out := c.Out
	if out == "" {
		out = cfg.GetString("export.output_directory", "")
	}
	if out == "" {
		return export.Options{}, fmt.Errorf("no output directory: pass --out or configure export.output_directory")
	}

	strategyName := c.Strategy
	if strategyName == "" {
		strategyName = cfg.GetString("duplicate_handling.default_action", "skip")
	}
	strategy, err := parseStrategy(strategyName)
	if err != nil {
		return export.Options{}, err
	}

	mappingPath := c.Mapping
	mapping, err := config.LoadMapping(mappingPath)
	if err != nil {
		return export.Options{}, err
	}

	maxLines := c.MaxLines
	if maxLines < 0 {
		maxLines = cfg.GetInt("export.slides.max_lines_per_slide", 4)
	}
	autoBreak := !c.NoAutoBreak && cfg.GetBool("export.slides.auto_break_long_lines", true)

	font := c.Font
	if font == "" {
		font = cfg.GetString("export.font.family", "Arial")
	}
	fontSize := c.FontSize
	if fontSize <= 0 {
		fontSize = cfg.GetInt("export.font.size", 48)
	}

	workers := c.Workers
	if workers <= 0 {
		workers = cfg.GetInt("performance.max_workers", 4)
	}

	introSlide := c.IntroSlide || cfg.GetBool("export.slides.add_intro_slide", false)
	introText := c.IntroText
	if introText == "" {
		introText = cfg.GetString("export.slides.intro_slide_text", "")
	}
	blankSlide := c.BlankSlide || cfg.GetBool("export.slides.add_blank_slide", false)

	return export.Options{
		OutputDir:       out,
		Mapping:         mapping,
		Advanced:        c.Advanced,
		MaxLines:        maxLines,
		AutoBreak:       autoBreak,
		StripChords:     c.StripChords || cfg.GetBool("export.strip_chords", false),
		Strategy:        strategy,
		FontFamily:      font,
		FontSize:        fontSize,
		FirstSlide:      introSlide,
		FirstSlideText:  introText,
		FirstSlideGroup: cfg.GetString("export.slides.intro_slide_group", "Intro"),
		LastSlide:       blankSlide,
		LastSlideGroup:  cfg.GetString("export.slides.blank_slide_group", "Blank"),
		Workers:         workers,
		ArchivePath:     c.Archive,
	}, nil
}

// MappingShowCmd prints the effective marker mapping.
type MappingShowCmd struct {
	Mapping string `name:"mapping" help:"Marker mapping JSON file (default: built-in)" type:"path"`
}

func (c *MappingShowCmd) Run() error {
	m, err := config.LoadMapping(c.Mapping)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	// Stable summary of the canonical target names in use.
	targets := map[string]int{}
	for _, v := range m.Table {
		targets[v]++
	}
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(os.Stderr, "%d tokens -> %s\n", len(m.Table), strings.Join(names, ", "))
	return nil
}

// SettingsCmd prints the resolved settings document.
type SettingsCmd struct{}

func (c *SettingsCmd) Run(cfg *config.Manager) error {
	fmt.Fprintf(os.Stderr, "settings file: %s\n", cfg.Path())
	fmt.Printf("export directory: %s\n", cfg.GetString("export.output_directory", "(unset)"))
	fmt.Printf("font: %s %d\n", cfg.GetString("export.font.family", "Arial"), cfg.GetInt("export.font.size", 48))
	fmt.Printf("max lines per slide: %d\n", cfg.GetInt("export.slides.max_lines_per_slide", 4))
	fmt.Printf("duplicate handling: %s\n", cfg.GetString("duplicate_handling.default_action", "skip"))
	fmt.Printf("workers: %d\n", cfg.GetInt("performance.max_workers", 4))
	if recent := cfg.RecentDatabases(); len(recent) > 0 {
		fmt.Printf("recent databases: %s\n", strings.Join(recent, ", "))
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("ewexport %s (sqlite driver: %s)\n", version, songdb.DriverType)
	return nil
}

// parseStrategy maps a settings or flag value to a naming strategy.
func parseStrategy(name string) (naming.Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "skip", "ask":
		// The batch runner has no interactive prompt; "ask" degrades
		// to the safe default.
		return naming.StrategySkip, nil
	case "overwrite":
		return naming.StrategyOverwrite, nil
	case "rename":
		return naming.StrategyRename, nil
	default:
		return naming.StrategySkip, fmt.Errorf("unknown duplicate strategy %q", name)
	}
}

// parseIDs parses a comma-separated rowid list.
func parseIDs(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid song id %q", p)
		}
		out = append(out, id)
	}
	return out, nil
}

// filterSongs keeps only the songs named by the id list; an empty list
// keeps everything.
func filterSongs(songs []songdb.Song, ids string) ([]songdb.Song, error) {
	want, err := parseIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(want) == 0 {
		return songs, nil
	}
	set := make(map[int64]bool, len(want))
	for _, id := range want {
		set[id] = true
	}
	out := make([]songdb.Song, 0, len(want))
	for _, s := range songs {
		if set[s.ID] {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no songs match ids %s", ids)
	}
	return out, nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("ewexport"),
		kong.Description("EasyWorship to ProPresenter 6 song converter"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))

	dir := CLI.ConfigDir
	if dir == "" {
		dir = config.DefaultDir()
	}
	cfg, err := config.Load(dir)
	if err != nil {
		ctx.FatalIfErrorf(err)
	}

	err = ctx.Run(cfg)
	ctx.FatalIfErrorf(err)
}
