// Package index holds the inverted index produced by a build: per-term
// posting lists weighted by TF-IDF, and the corpus statistics they are
// computed from.
package index

import (
	"encoding/json"
	"sort"
)

// Posting records one (term, document) pair together with the document
// metadata a search result needs without a second lookup.
type Posting struct {
	DocID          string  `json:"id"`
	HumorType      string  `json:"humor_type"`
	EmojiPresence  bool    `json:"emoji_presence"`
	HumorTypeScore float64 `json:"humor_type_score"`
	Weight         float64 `json:"weight"`
}

type PostingList []Posting

// TermEntry pairs a term with its postings for ordered iteration.
type TermEntry struct {
	Term     string
	Postings PostingList
}

// InvertedIndex maps terms to posting lists. It is built once per run and
// not mutated after Compute returns, except by SortPostings.
type InvertedIndex struct {
	terms map[string]PostingList
}

func New() *InvertedIndex {
	return &InvertedIndex{terms: make(map[string]PostingList)}
}

// Put replaces the posting list of term.
func (idx *InvertedIndex) Put(term string, postings PostingList) {
	idx.terms[term] = postings
}

// Postings returns the posting list of term, or nil if the term is absent.
func (idx *InvertedIndex) Postings(term string) PostingList {
	return idx.terms[term]
}

func (idx *InvertedIndex) Len() int {
	return len(idx.terms)
}

// Terms returns every term in lexical order.
func (idx *InvertedIndex) Terms() []string {
	out := make([]string, 0, len(idx.terms))
	for term := range idx.terms {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

// Entries returns every term with its postings, ordered by term.
func (idx *InvertedIndex) Entries() []TermEntry {
	terms := idx.Terms()
	entries := make([]TermEntry, 0, len(terms))
	for _, term := range terms {
		entries = append(entries, TermEntry{Term: term, Postings: idx.terms[term]})
	}
	return entries
}

// SortPostings orders every posting list by document id.
func (idx *InvertedIndex) SortPostings() {
	for _, postings := range idx.terms {
		sort.SliceStable(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
	}
}

// Equal reports whether both indexes hold the same term set and the same
// postings per term. Posting order within a term is ignored.
func (idx *InvertedIndex) Equal(other *InvertedIndex) bool {
	if other == nil || len(idx.terms) != len(other.terms) {
		return false
	}
	for term, postings := range idx.terms {
		theirs, ok := other.terms[term]
		if !ok || len(theirs) != len(postings) {
			return false
		}
		byDoc := make(map[string]Posting, len(theirs))
		for _, p := range theirs {
			byDoc[p.DocID] = p
		}
		for _, p := range postings {
			if q, ok := byDoc[p.DocID]; !ok || q != p {
				return false
			}
		}
	}
	return true
}

// MarshalJSON encodes the index as a term -> postings object. Keys are
// emitted in sorted order.
func (idx *InvertedIndex) MarshalJSON() ([]byte, error) {
	return json.Marshal(idx.terms)
}

func (idx *InvertedIndex) UnmarshalJSON(data []byte) error {
	terms := make(map[string]PostingList)
	if err := json.Unmarshal(data, &terms); err != nil {
		return err
	}
	idx.terms = terms
	return nil
}
