package index

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func bearStats() *Stats {
	s := NewStats()
	s.AddDocument(DocMeta{ID: "1", HumorType: "pun", HumorTypeScore: 0.9})
	s.AddDocument(DocMeta{ID: "2", HumorType: "wordplay", EmojiPresence: true, HumorTypeScore: 0.8})
	for _, term := range []string{"scarecrow", "becom", "comedian", "outstand"} {
		s.Add(term, "1")
	}
	for _, term := range []string{"call", "bear", "teeth", "gummi", "bear"} {
		s.Add(term, "2")
	}
	return s
}

func TestStatsInvariants(t *testing.T) {
	s := bearStats()
	if s.DocCount() != 2 {
		t.Fatalf("expected 2 documents, got %d", s.DocCount())
	}
	if got := s.TermFreq("bear", "2"); got != 2 {
		t.Fatalf("tf(bear, 2) = %d, want 2", got)
	}
	if got := s.DocFreq("bear"); got != 1 {
		t.Fatalf("df(bear) = %d, want 1", got)
	}
	for term, docs := range s.termFreq {
		if s.DocFreq(term) != len(docs) {
			t.Errorf("df(%s) = %d, but %d documents have a frequency", term, s.DocFreq(term), len(docs))
		}
		if s.DocFreq(term) < 1 {
			t.Errorf("df(%s) must be at least 1", term)
		}
	}
	if s.TermCount() != 8 {
		t.Fatalf("expected 8 distinct terms, got %d", s.TermCount())
	}
}

func TestCompute(t *testing.T) {
	idx := Compute(bearStats())
	want := PostingList{{DocID: "2", HumorType: "wordplay", EmojiPresence: true, HumorTypeScore: 0.8, Weight: 1.3863}}
	if diff := cmp.Diff(want, idx.Postings("bear")); diff != "" {
		t.Fatalf("bear postings mismatch (-want +got):\n%s", diff)
	}
	if got := idx.Postings("scarecrow")[0].Weight; got != 0.6931 {
		t.Fatalf("scarecrow weight = %v, want 0.6931", got)
	}
	if idx.Len() != 8 {
		t.Fatalf("expected 8 terms, got %d", idx.Len())
	}
}

func TestComputeTermInEveryDocument(t *testing.T) {
	s := NewStats()
	s.AddDocument(DocMeta{ID: "a"})
	s.AddDocument(DocMeta{ID: "b"})
	s.Add("joke", "a")
	s.Add("joke", "b")
	s.Add("joke", "b")
	idx := Compute(s)
	for _, p := range idx.Postings("joke") {
		if p.Weight != 0 {
			t.Fatalf("expected zero weight for a term in every document, got %v", p.Weight)
		}
	}
	if got := []string{idx.Postings("joke")[0].DocID, idx.Postings("joke")[1].DocID}; !cmp.Equal(got, []string{"a", "b"}) {
		t.Fatalf("postings should keep first-occurrence order, got %v", got)
	}
}

func TestComputeSmoothing(t *testing.T) {
	s := NewStats()
	for _, id := range []string{"1", "2", "3"} {
		s.AddDocument(DocMeta{ID: id})
	}
	s.Add("scarecrow", "1")
	s.Add("outstand", "1")
	s.Add("outstand", "3")
	s.Add("bear", "2")
	s.Add("bear", "2")

	idx := Compute(s, WithSmoothing())
	tests := []struct {
		term, doc string
		want      float64
	}{
		{"scarecrow", "1", 0.4055},
		{"outstand", "3", 0},
		{"bear", "2", 0.8109},
	}
	for _, tt := range tests {
		var got float64 = -1
		for _, p := range idx.Postings(tt.term) {
			if p.DocID == tt.doc {
				got = p.Weight
			}
		}
		if got != tt.want {
			t.Errorf("weight(%s, %s) = %v, want %v", tt.term, tt.doc, got, tt.want)
		}
	}
}

func TestComputeEmpty(t *testing.T) {
	idx := Compute(NewStats())
	if idx.Len() != 0 {
		t.Fatalf("expected empty index, got %d terms", idx.Len())
	}
}

func TestSortPostingsAndEqual(t *testing.T) {
	a := New()
	a.Put("bear", PostingList{{DocID: "9", Weight: 1}, {DocID: "10", Weight: 2}})
	b := New()
	b.Put("bear", PostingList{{DocID: "10", Weight: 2}, {DocID: "9", Weight: 1}})
	if !a.Equal(b) {
		t.Fatal("indexes differing only in posting order should be equal")
	}
	a.SortPostings()
	if a.Postings("bear")[0].DocID != "10" {
		t.Fatalf("expected lexical doc id order, got %v", a.Postings("bear"))
	}
	b.Put("bear", PostingList{{DocID: "10", Weight: 2}, {DocID: "9", Weight: 1.5}})
	if a.Equal(b) {
		t.Fatal("different weights must not compare equal")
	}
	b.Put("teeth", nil)
	if a.Equal(b) {
		t.Fatal("different term sets must not compare equal")
	}
}

func TestIndexJSON(t *testing.T) {
	idx := Compute(bearStats())
	data, err := json.Marshal(idx)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string][]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("snapshot should be a term -> postings object: %v", err)
	}
	if raw["bear"][0]["id"] != "2" || raw["bear"][0]["weight"] != 1.3863 {
		t.Fatalf("unexpected bear entry %v", raw["bear"])
	}
	decoded := New()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !idx.Equal(decoded) {
		t.Fatal("decoded index differs from the original")
	}
	if diff := cmp.Diff(idx.Terms(), decoded.Terms()); diff != "" {
		t.Fatalf("terms mismatch (-want +got):\n%s", diff)
	}
}
