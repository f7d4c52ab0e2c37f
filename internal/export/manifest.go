package export

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// ManifestName is the manifest file written alongside the exported
// documents.
const ManifestName = "manifest.json"

// contentHash returns the hex BLAKE3 digest of a written document.
func contentHash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ManifestEntry records one exported file.
type ManifestEntry struct {
	SongID int64  `json:"song_id"`
	Title  string `json:"title"`
	File   string `json:"file"`
	Size   int64  `json:"size"`
	Hash   string `json:"blake3"`
}

// Manifest describes a finished export run.
type Manifest struct {
	CreatedAt time.Time       `json:"created_at"`
	Songs     []ManifestEntry `json:"songs"`
}

// WriteManifest writes the manifest for the exported results into dir.
// Only results that produced a file are listed.
func WriteManifest(dir string, results []Result) error {
	m := Manifest{CreatedAt: time.Now().UTC()}
	for _, r := range results {
		if !r.Exported() {
			continue
		}
		m.Songs = append(m.Songs, ManifestEntry{
			SongID: r.SongID,
			Title:  r.Title,
			File:   filepath.Base(r.Path),
			Size:   r.Size,
			Hash:   r.Hash,
		})
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by a previous run.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
