// Package store implements the external document stores the index is
// synchronised to. Each term is one document holding its posting list and
// is written at most once; re-running a sync never overwrites it.
package store

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/index"
)

// Store is a key-value-per-term collection.
type Store interface {
	// ListTerms returns every term already present remotely.
	ListTerms(ctx context.Context) (map[string]struct{}, error)
	// Upsert writes postings under term unless the term already exists.
	// It reports whether this call created the document.
	Upsert(ctx context.Context, term string, postings index.PostingList) (bool, error)
}

// ContentStore holds the corpus records themselves, keyed by id.
type ContentStore interface {
	// PutRecord writes rec unless a record with the same id exists and
	// reports whether it was written.
	PutRecord(ctx context.Context, rec corpus.Record) (bool, error)
}

var collectionName = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// ValidateCollection rejects names that are not safe to use as a table
// name or key prefix.
func ValidateCollection(name string) error {
	if !collectionName.MatchString(name) {
		return fmt.Errorf("invalid collection name %q: want lowercase letters, digits and underscores", name)
	}
	return nil
}
