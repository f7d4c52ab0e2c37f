package export

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/karllinder/ewexport/internal/archive"
	"github.com/karllinder/ewexport/internal/logging"
	"github.com/karllinder/ewexport/internal/songdb"
)

// Summary aggregates a batch run.
type Summary struct {
	Total    int
	Exported int
	Skipped  int
	Failed   int
	Warnings int
	Duration time.Duration
	Results  []Result
}

// Batch exports the given songs concurrently. Workers post results to
// a buffered channel sized for the whole run, so a slow progress
// consumer never stalls them. Cancellation is honored between songs; a
// song already past its slide pipeline finishes its write.
func Batch(ctx context.Context, store *songdb.Store, songs []songdb.Song, opts Options, progress func(Result)) (*Summary, error) {
	start := time.Now()

	exporter, err := NewExporter(opts)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(songs) && len(songs) > 0 {
		workers = len(songs)
	}

	jobs := make(chan songdb.Song)
	resultCh := make(chan Result, len(songs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for song := range jobs {
				resultCh <- exportOne(ctx, exporter, store, song)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, song := range songs {
			select {
			case <-ctx.Done():
				return
			case jobs <- song:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	summary := &Summary{Total: len(songs)}
	for res := range resultCh {
		summary.Results = append(summary.Results, res)
		switch {
		case res.Err != nil:
			summary.Failed++
			logging.SongFailed(res.SongID, res.Title, res.Err)
		case !res.Exported():
			summary.Skipped++
			logging.SongSkipped(res.SongID, res.Title, "exists")
		default:
			summary.Exported++
			if res.Warning != "" {
				summary.Warnings++
			}
			logging.SongExported(res.SongID, res.Title, res.Path)
		}
		if progress != nil {
			progress(res)
		}
	}

	// Deterministic order for reporting regardless of worker timing.
	sort.Slice(summary.Results, func(i, j int) bool {
		return summary.Results[i].SongID < summary.Results[j].SongID
	})

	if err := ctx.Err(); err != nil {
		summary.Duration = time.Since(start)
		return summary, err
	}

	if summary.Exported > 0 {
		if err := WriteManifest(opts.OutputDir, summary.Results); err != nil {
			return summary, err
		}
	}
	if opts.ArchivePath != "" && summary.Exported > 0 {
		if err := archive.CreateExportTarXz(opts.OutputDir, opts.ArchivePath); err != nil {
			return summary, err
		}
	}

	summary.Duration = time.Since(start)
	logging.BatchSummary(summary.Total, summary.Exported, summary.Skipped, summary.Failed, summary.Duration)
	return summary, nil
}

// exportOne loads a song's lyrics and exports it, containing every
// failure in the Result.
func exportOne(ctx context.Context, exporter *Exporter, store *songdb.Store, song songdb.Song) Result {
	if err := ctx.Err(); err != nil {
		return Result{SongID: song.ID, Title: song.Title, Err: err}
	}
	raw, err := store.Lyrics(ctx, song.ID)
	if err != nil {
		return Result{SongID: song.ID, Title: song.Title, Err: err}
	}
	return exporter.ExportSong(song, raw)
}
