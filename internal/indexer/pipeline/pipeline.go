// Package pipeline turns raw text into index terms. The canonical stage
// order is tokenize, correct spelling, remove stop words, normalize, stem,
// expand synonyms and weigh. Indexing stops after stemming.
//
// Stages never fail. Unknown tokens pass through unchanged and collaborator
// errors are treated as "no result".
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/stemmer"
	apperrors "github.com/Adithya-Monish-Kumar-K/humor-index/pkg/errors"
)

// SpellCorrector suggests a correction for a single token. Implementations
// return apperrors.ErrNoSuggestion when they have nothing better.
type SpellCorrector interface {
	Correct(ctx context.Context, token string) (string, error)
}

// SynonymSource returns lexically related words for a token. An unknown
// token yields an empty slice, not an error.
type SynonymSource interface {
	Lookup(ctx context.Context, token string) ([]string, error)
}

// Result holds the output of every stage of Preprocess.
type Result struct {
	Tokens     []string           `json:"tokens"`
	Corrected  []string           `json:"corrected_tokens"`
	Filtered   []string           `json:"filtered_tokens"`
	Normalized []string           `json:"normalized_tokens"`
	Stemmed    []string           `json:"stemmed_tokens"`
	Expanded   []string           `json:"expanded_tokens"`
	Weights    map[string]float64 `json:"term_weights"`
}

// Pipeline is safe for concurrent use as long as its collaborators are.
type Pipeline struct {
	stemmer  stemmer.Stemmer
	spell    SpellCorrector
	synonyms SynonymSource
	logger   *slog.Logger
}

type Option func(*Pipeline)

func WithSpellCorrector(s SpellCorrector) Option {
	return func(p *Pipeline) {
		p.spell = s
	}
}

func WithSynonyms(s SynonymSource) Option {
	return func(p *Pipeline) {
		p.synonyms = s
	}
}

// New creates a Pipeline around st. Without a spell corrector or synonym
// source the corresponding stages are identity transforms.
func New(st stemmer.Stemmer, opts ...Option) *Pipeline {
	p := &Pipeline{
		stemmer: st,
		logger:  slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Preprocess runs every stage and returns all intermediate token lists.
func (p *Pipeline) Preprocess(ctx context.Context, text string) Result {
	var r Result
	r.Tokens = Tokenize(text)
	r.Corrected = p.CorrectSpelling(ctx, r.Tokens)
	r.Filtered = RemoveStopWords(r.Corrected)
	r.Normalized = Normalize(r.Filtered)
	r.Stemmed = p.StemTokens(r.Normalized)
	r.Expanded = p.ExpandSynonyms(ctx, r.Stemmed)
	r.Weights = WeighTerms(r.Expanded)
	return r
}

// Terms runs the indexing subset of the pipeline. Repeated terms are kept so
// callers can count term frequency.
func (p *Pipeline) Terms(ctx context.Context, text string) []string {
	tokens := p.CorrectSpelling(ctx, Tokenize(text))
	return p.StemTokens(Normalize(RemoveStopWords(tokens)))
}

// Tokenize splits on whitespace only.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// CorrectSpelling replaces each token with the corrector's suggestion, or
// keeps it when there is none or the corrector fails.
func (p *Pipeline) CorrectSpelling(ctx context.Context, tokens []string) []string {
	out := make([]string, len(tokens))
	copy(out, tokens)
	if p.spell == nil {
		return out
	}
	for i, tok := range tokens {
		fixed, err := p.spell.Correct(ctx, tok)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNoSuggestion) {
				p.logger.Debug("spelling lookup failed", "token", tok, "error", err)
			}
			continue
		}
		if fixed != "" {
			out[i] = fixed
		}
	}
	return out
}

func RemoveStopWords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !IsStopWord(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// Normalize lowercases, trims, folds diacritics and strips everything but
// letters, digits and underscores. Tokens that end up empty are dropped; if
// that would drop every token the input is returned unchanged.
func Normalize(tokens []string) []string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		s := strings.TrimSpace(strings.ToLower(tok))
		if folded, _, err := transform.String(fold, s); err == nil {
			s = folded
		}
		s = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
				return r
			}
			return -1
		}, s)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(tokens) > 0 {
		return append([]string(nil), tokens...)
	}
	return out
}

// StemTokens stems every non-empty token.
func (p *Pipeline) StemTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		out = append(out, p.stemmer.Stem(tok))
	}
	return out
}

// ExpandSynonyms returns the sorted union of tokens and their synonyms.
// Synonyms are case-folded and multi-word synonyms are joined with spaces.
func (p *Pipeline) ExpandSynonyms(ctx context.Context, tokens []string) []string {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	if p.synonyms != nil {
		for _, tok := range tokens {
			syns, err := p.synonyms.Lookup(ctx, tok)
			if err != nil {
				p.logger.Debug("synonym lookup failed", "token", tok, "error", err)
				continue
			}
			for _, syn := range syns {
				syn = canonicalSynonym(syn)
				if syn != "" {
					set[syn] = struct{}{}
				}
			}
		}
	}
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

func canonicalSynonym(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// WeighTerms maps each token to its relative frequency in tokens, rounded
// to three decimals.
func WeighTerms(tokens []string) map[string]float64 {
	weights := make(map[string]float64, len(tokens))
	if len(tokens) == 0 {
		return weights
	}
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	total := float64(len(tokens))
	for tok, n := range counts {
		weights[tok] = math.Round(float64(n)/total*1000) / 1000
	}
	return weights
}
