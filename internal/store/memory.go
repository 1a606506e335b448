package store

import (
	"context"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/index"
)

// MemoryStore is a process-local Store and ContentStore. FailOn lets tests
// make writes of specific terms fail.
type MemoryStore struct {
	mu      sync.Mutex
	terms   map[string]index.PostingList
	records map[string]corpus.Record
	writes  map[string]int
	// FailOn, when non-nil, is consulted before every term write.
	FailOn func(term string) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		terms:   make(map[string]index.PostingList),
		records: make(map[string]corpus.Record),
		writes:  make(map[string]int),
	}
}

func (s *MemoryStore) ListTerms(_ context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]struct{}, len(s.terms))
	for term := range s.terms {
		out[term] = struct{}{}
	}
	return out, nil
}

func (s *MemoryStore) Upsert(_ context.Context, term string, postings index.PostingList) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailOn != nil {
		if err := s.FailOn(term); err != nil {
			return false, err
		}
	}
	if _, ok := s.terms[term]; ok {
		return false, nil
	}
	s.terms[term] = append(index.PostingList(nil), postings...)
	s.writes[term]++
	return true, nil
}

func (s *MemoryStore) PutRecord(_ context.Context, rec corpus.Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; ok {
		return false, nil
	}
	s.records[rec.ID] = rec
	return true, nil
}

// Postings returns what was stored under term.
func (s *MemoryStore) Postings(term string) (index.PostingList, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.terms[term]
	return p, ok
}

// Writes returns how many times term was written.
func (s *MemoryStore) Writes(term string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[term]
}

func (s *MemoryStore) Record(id string) (corpus.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	return r, ok
}
