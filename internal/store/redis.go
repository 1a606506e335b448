package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/index"
)

// KV is the subset of pkg/redis.Client the Redis store needs.
type KV interface {
	SetNX(ctx context.Context, key string, value interface{}) (bool, error)
	ScanKeys(ctx context.Context, pattern string, fn func(key string)) error
}

// RedisStore keeps each term under "<collection>:<term>" as a JSON posting
// list and each record under "<contentCollection>:<id>".
type RedisStore struct {
	kv                KV
	collection        string
	contentCollection string
}

func NewRedisStore(kv KV, collection, contentCollection string) (*RedisStore, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	if contentCollection != "" {
		if err := ValidateCollection(contentCollection); err != nil {
			return nil, err
		}
	}
	return &RedisStore{kv: kv, collection: collection, contentCollection: contentCollection}, nil
}

func (s *RedisStore) ListTerms(ctx context.Context) (map[string]struct{}, error) {
	prefix := s.collection + ":"
	terms := make(map[string]struct{})
	err := s.kv.ScanKeys(ctx, prefix+"*", func(key string) {
		terms[strings.TrimPrefix(key, prefix)] = struct{}{}
	})
	if err != nil {
		return nil, fmt.Errorf("listing terms in %s: %w", s.collection, err)
	}
	return terms, nil
}

func (s *RedisStore) Upsert(ctx context.Context, term string, postings index.PostingList) (bool, error) {
	data, err := json.Marshal(postings)
	if err != nil {
		return false, fmt.Errorf("marshaling postings for %q: %w", term, err)
	}
	written, err := s.kv.SetNX(ctx, s.collection+":"+term, data)
	if err != nil {
		return false, fmt.Errorf("writing term %q: %w", term, err)
	}
	return written, nil
}

func (s *RedisStore) PutRecord(ctx context.Context, rec corpus.Record) (bool, error) {
	if s.contentCollection == "" {
		return false, fmt.Errorf("no content collection configured")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshaling record %s: %w", rec.ID, err)
	}
	written, err := s.kv.SetNX(ctx, s.contentCollection+":"+rec.ID, data)
	if err != nil {
		return false, fmt.Errorf("writing record %s: %w", rec.ID, err)
	}
	return written, nil
}
