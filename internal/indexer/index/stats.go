package index

import (
	"math"
)

// DocMeta is the per-document metadata copied into each posting.
type DocMeta struct {
	ID             string
	HumorType      string
	EmojiPresence  bool
	HumorTypeScore float64
}

// Stats accumulates corpus statistics during the reduce phase. It is not
// safe for concurrent use; a single goroutine owns it.
//
// For every term, DocFreq(term) equals the number of distinct documents
// with a non-zero TermFreq, since the count is derived from the same
// first-occurrence list.
type Stats struct {
	docCount int
	meta     map[string]DocMeta
	termFreq map[string]map[string]int
	// termDocs lists each term's documents in first-occurrence order.
	termDocs map[string][]string
}

func NewStats() *Stats {
	return &Stats{
		meta:     make(map[string]DocMeta),
		termFreq: make(map[string]map[string]int),
		termDocs: make(map[string][]string),
	}
}

// AddDocument counts one corpus record. Every record counts toward
// DocCount, including records that yield no terms. If ids repeat, the first
// record's metadata is kept.
func (s *Stats) AddDocument(doc DocMeta) {
	s.docCount++
	if _, ok := s.meta[doc.ID]; !ok {
		s.meta[doc.ID] = doc
	}
}

// Add records one occurrence of term in docID.
func (s *Stats) Add(term, docID string) {
	docs, ok := s.termFreq[term]
	if !ok {
		docs = make(map[string]int)
		s.termFreq[term] = docs
	}
	if docs[docID] == 0 {
		s.termDocs[term] = append(s.termDocs[term], docID)
	}
	docs[docID]++
}

func (s *Stats) DocCount() int {
	return s.docCount
}

func (s *Stats) TermFreq(term, docID string) int {
	return s.termFreq[term][docID]
}

// DocFreq is the number of distinct documents containing term.
func (s *Stats) DocFreq(term string) int {
	return len(s.termDocs[term])
}

func (s *Stats) TermCount() int {
	return len(s.termFreq)
}

type computeOptions struct {
	smoothing bool
}

type ComputeOption func(*computeOptions)

// WithSmoothing uses ln(N/(df+1)) instead of ln(N/df).
func WithSmoothing() ComputeOption {
	return func(o *computeOptions) {
		o.smoothing = true
	}
}

// Compute turns stats into an inverted index. Each posting's weight is
// tf * ln(N/df) rounded to four decimals. Postings keep the order in which
// documents first contributed the term. An empty corpus yields an empty
// index; a term with no documents is left out.
func Compute(s *Stats, opts ...ComputeOption) *InvertedIndex {
	var o computeOptions
	for _, opt := range opts {
		opt(&o)
	}
	idx := New()
	if s.docCount == 0 {
		return idx
	}
	n := float64(s.docCount)
	for term, docs := range s.termDocs {
		df := len(docs)
		if df == 0 {
			continue
		}
		idf := math.Log(n / float64(df))
		if o.smoothing {
			idf = math.Log(n / float64(df+1))
		}
		postings := make(PostingList, 0, df)
		for _, docID := range docs {
			meta := s.meta[docID]
			postings = append(postings, Posting{
				DocID:          docID,
				HumorType:      meta.HumorType,
				EmojiPresence:  meta.EmojiPresence,
				HumorTypeScore: meta.HumorTypeScore,
				Weight:         round4(float64(s.termFreq[term][docID]) * idf),
			})
		}
		idx.Put(term, postings)
	}
	return idx
}

func round4(x float64) float64 {
	r := math.Round(x*1e4) / 1e4
	if r == 0 {
		return 0
	}
	return r
}
