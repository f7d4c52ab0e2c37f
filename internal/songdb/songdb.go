// Package songdb reads song metadata and raw lyric blobs from an
// EasyWorship 6.1 database directory. The directory holds two SQLite
// files: Songs.db with the song records and SongWords.db with one RTF
// lyric blob per song, keyed by the song's rowid.
//
// The default build uses a pure Go SQLite driver. Build with
// -tags cgo_sqlite to use the CGO driver instead.
package songdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	ewerrors "github.com/karllinder/ewexport/core/errors"
)

const (
	songsFile = "Songs.db"
	wordsFile = "SongWords.db"
)

// Song is one song record from the source database. String fields may
// be empty; Title is the only field the exporter requires.
type Song struct {
	ID              int64
	Title           string
	Author          string
	Copyright       string
	Administrator   string
	ReferenceNumber string
	Tags            string
	Description     string
}

// Store provides read-only access to a song database directory.
type Store struct {
	dir   string
	songs *sql.DB
	words *sql.DB
}

// Open opens the Songs.db and SongWords.db files under dir read-only.
// A missing file yields ErrNotFound.
func Open(dir string) (*Store, error) {
	songsPath := filepath.Join(dir, songsFile)
	wordsPath := filepath.Join(dir, wordsFile)

	for _, p := range []string{songsPath, wordsPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, ewerrors.NewNotFound("database", p)
		}
	}

	songs, err := sql.Open(driverName, roDSN(songsPath))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", songsPath, err)
	}
	words, err := sql.Open(driverName, roDSN(wordsPath))
	if err != nil {
		songs.Close()
		return nil, fmt.Errorf("open %s: %w", wordsPath, err)
	}

	return &Store{dir: dir, songs: songs, words: words}, nil
}

// roDSN builds a read-only connection string for a database file.
func roDSN(path string) string {
	return "file:" + path + "?mode=ro"
}

// Close releases both database handles.
func (s *Store) Close() error {
	werr := s.words.Close()
	serr := s.songs.Close()
	if serr != nil {
		return serr
	}
	return werr
}

// Dir returns the database directory the store was opened on.
func (s *Store) Dir() string {
	return s.dir
}

// Validate checks that both files are readable SQLite databases with
// the expected tables.
func (s *Store) Validate(ctx context.Context) error {
	var n int
	if err := s.songs.QueryRowContext(ctx, "SELECT COUNT(*) FROM song").Scan(&n); err != nil {
		return fmt.Errorf("validate %s: %w", songsFile, err)
	}
	if err := s.words.QueryRowContext(ctx, "SELECT COUNT(*) FROM word").Scan(&n); err != nil {
		return fmt.Errorf("validate %s: %w", wordsFile, err)
	}
	return nil
}

// Count returns the number of songs in the database.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.songs.QueryRowContext(ctx, "SELECT COUNT(*) FROM song").Scan(&n); err != nil {
		return 0, fmt.Errorf("count songs: %w", err)
	}
	return n, nil
}

// songQuery selects the metadata columns, coalescing nullable fields to
// empty strings so callers never see NULLs.
const songQuery = `
SELECT
    rowid,
    title,
    COALESCE(author, '') AS author,
    COALESCE(copyright, '') AS copyright,
    COALESCE(administrator, '') AS administrator,
    COALESCE(reference_number, '') AS reference_number,
    COALESCE(tags, '') AS tags,
    COALESCE(description, '') AS description
FROM song`

// Songs returns every song ordered by title, case-insensitively.
func (s *Store) Songs(ctx context.Context) ([]Song, error) {
	rows, err := s.songs.QueryContext(ctx, songQuery+" ORDER BY title COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	var out []Song
	for rows.Next() {
		var sg Song
		if err := rows.Scan(&sg.ID, &sg.Title, &sg.Author, &sg.Copyright,
			&sg.Administrator, &sg.ReferenceNumber, &sg.Tags, &sg.Description); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		out = append(out, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	return out, nil
}

// Song returns a single song by rowid. A missing row yields ErrNotFound.
func (s *Store) Song(ctx context.Context, id int64) (Song, error) {
	var sg Song
	err := s.songs.QueryRowContext(ctx, songQuery+" WHERE rowid = ?", id).
		Scan(&sg.ID, &sg.Title, &sg.Author, &sg.Copyright,
			&sg.Administrator, &sg.ReferenceNumber, &sg.Tags, &sg.Description)
	if err == sql.ErrNoRows {
		return Song{}, ewerrors.NewNotFound("song", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return Song{}, fmt.Errorf("load song %d: %w", id, err)
	}
	return sg, nil
}

// Lyrics returns the raw RTF lyric blob for a song. A song with no
// lyrics row returns nil with no error; callers treat that as empty
// content rather than a failure.
func (s *Store) Lyrics(ctx context.Context, songID int64) ([]byte, error) {
	var words []byte
	err := s.words.QueryRowContext(ctx,
		"SELECT words FROM word WHERE song_id = ?", songID).Scan(&words)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load lyrics for song %d: %w", songID, err)
	}
	return words, nil
}
