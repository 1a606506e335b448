// Package snapshot persists a built index to a local JSON file of the form
// {"term": [posting, ...], ...}. Writes are atomic: readers see either the
// previous snapshot or the new one, never a partial file.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/humor-index/pkg/errors"
)

// Write replaces the snapshot at path with idx. It writes to a temporary
// file in the same directory, fsyncs it and renames it into place.
func Write(path string, idx *index.InvertedIndex) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot file: %w", err)
	}
	tmpPath := f.Name()
	committed := false
	defer func() {
		if !committed {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(idx); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing snapshot file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming snapshot file: %w", err)
	}
	committed = true
	return nil
}

// Load reads a snapshot written by Write. A file that is not a valid
// term -> postings object yields ErrSnapshotCorrupt.
func Load(path string) (*index.InvertedIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	idx := index.New()
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(idx); err != nil {
		return nil, apperrors.Newf(apperrors.ErrSnapshotCorrupt, "%s: %v", path, err)
	}
	return idx, nil
}
