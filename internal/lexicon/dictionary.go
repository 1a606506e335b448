// Package lexicon implements the lexical collaborators consumed by the
// normalization pipeline: a frequency-dictionary spelling corrector, a
// YAML thesaurus, and wrappers that bound their latency (timeout, circuit
// breaker) or cache their answers in Redis.
package lexicon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/Adithya-Monish-Kumar-K/humor-index/pkg/errors"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz'"
	// Second-order edits grow quadratically; skip them for long words.
	maxDistance2Len = 12
)

// Dictionary is a word-frequency list. It corrects misspellings to the most
// frequent known word within edit distance two, and doubles as the
// stemmer's base-word set. It is read-only after loading.
type Dictionary struct {
	freq map[string]int64
}

// LoadDictionary reads a dictionary file. See ParseDictionary for the format.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary %s: %w", path, err)
	}
	defer f.Close()
	d, err := ParseDictionary(f)
	if err != nil {
		return nil, fmt.Errorf("parsing dictionary %s: %w", path, err)
	}
	return d, nil
}

// ParseDictionary reads one entry per line: a word optionally followed by
// whitespace and an integer frequency (default 1). Blank lines and lines
// starting with # are ignored. Words are case-folded; repeated words
// accumulate frequency.
func ParseDictionary(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{freq: make(map[string]int64)}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		count := int64(1)
		if len(fields) > 1 {
			n, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad frequency %q: %w", line, fields[1], err)
			}
			count = n
		}
		d.freq[strings.ToLower(fields[0])] += count
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDictionary builds a Dictionary from an in-memory frequency map.
func NewDictionary(freq map[string]int64) *Dictionary {
	d := &Dictionary{freq: make(map[string]int64, len(freq))}
	for w, n := range freq {
		d.freq[strings.ToLower(w)] += n
	}
	return d
}

func (d *Dictionary) Len() int {
	return len(d.freq)
}

func (d *Dictionary) Contains(word string) bool {
	_, ok := d.freq[word]
	return ok
}

// Correct returns the best known spelling for token. Surrounding
// punctuation and a leading capital are preserved. Known words, words
// containing digits and words with no candidate yield ErrNoSuggestion.
func (d *Dictionary) Correct(_ context.Context, token string) (string, error) {
	start, end := coreBounds(token)
	if start >= end {
		return "", apperrors.ErrNoSuggestion
	}
	core := token[start:end]
	lower := strings.ToLower(core)
	if d.Contains(lower) || strings.IndexFunc(lower, unicode.IsDigit) >= 0 {
		return "", apperrors.ErrNoSuggestion
	}

	best := d.bestOf(edits1(lower))
	if best == "" && len(lower) <= maxDistance2Len {
		var second []string
		for _, e := range edits1(lower) {
			second = append(second, edits1(e)...)
		}
		best = d.bestOf(second)
	}
	if best == "" {
		return "", apperrors.ErrNoSuggestion
	}
	if r := []rune(core); len(r) > 0 && unicode.IsUpper(r[0]) {
		br := []rune(best)
		br[0] = unicode.ToUpper(br[0])
		best = string(br)
	}
	return token[:start] + best + token[end:], nil
}

// bestOf picks the most frequent known candidate, breaking ties
// alphabetically so corrections are deterministic.
func (d *Dictionary) bestOf(candidates []string) string {
	var best string
	var bestFreq int64 = -1
	for _, c := range candidates {
		f, ok := d.freq[c]
		if !ok {
			continue
		}
		if f > bestFreq || (f == bestFreq && c < best) {
			best, bestFreq = c, f
		}
	}
	return best
}

func edits1(w string) []string {
	out := make([]string, 0, 54*len(w)+27)
	for i := 0; i <= len(w); i++ {
		left, right := w[:i], w[i:]
		if right != "" {
			out = append(out, left+right[1:])
		}
		if len(right) > 1 {
			out = append(out, left+string(right[1])+string(right[0])+right[2:])
		}
		for j := 0; j < len(alphabet); j++ {
			c := string(alphabet[j])
			if right != "" {
				out = append(out, left+c+right[1:])
			}
			out = append(out, left+c+right)
		}
	}
	return out
}

// coreBounds returns the byte range of token without leading and trailing
// characters that are neither letters, digits nor apostrophes.
func coreBounds(token string) (int, int) {
	keep := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
	}
	start := strings.IndexFunc(token, keep)
	if start < 0 {
		return 0, 0
	}
	end := strings.LastIndexFunc(token, keep)
	_, size := utf8.DecodeRuneInString(token[end:])
	return start, end + size
}
