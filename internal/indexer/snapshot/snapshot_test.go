package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/humor-index/pkg/errors"
)

func sampleIndex() *index.InvertedIndex {
	idx := index.New()
	idx.Put("bear", index.PostingList{{DocID: "2", HumorType: "wordplay", EmojiPresence: true, HumorTypeScore: 0.8, Weight: 1.3863}})
	idx.Put("outstand", index.PostingList{
		{DocID: "1", HumorType: "pun", HumorTypeScore: 0.9},
		{DocID: "3", HumorType: "pun", HumorTypeScore: 0.85},
	})
	return idx
}

func TestWriteLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "index.json")
	idx := sampleIndex()
	if err := Write(path, idx); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !idx.Equal(got) {
		t.Fatal("loaded snapshot differs from the written index")
	}
}

func TestWriteOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	if err := Write(path, sampleIndex()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Write(path, index.New()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 0 {
		t.Fatalf("expected the empty index to replace the old snapshot, got %d terms", got.Len())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	if err := os.WriteFile(path, []byte(`{"bear": [{"id": "2", "weight": `), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, apperrors.ErrSnapshotCorrupt) {
		t.Fatalf("expected ErrSnapshotCorrupt, got %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil || errors.Is(err, apperrors.ErrSnapshotCorrupt) {
		t.Fatalf("expected a plain open error, got %v", err)
	}
}
