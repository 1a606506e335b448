// Package indexer builds the TF-IDF inverted index from a corpus and keeps
// the external document store in step with it.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/tracing"
)

// TermExtractor turns a document's text into its index terms, one entry per
// occurrence. *pipeline.Pipeline implements it.
type TermExtractor interface {
	Terms(ctx context.Context, text string) []string
}

// TermOccurrence is one (term, document) pair emitted by the map phase.
type TermOccurrence struct {
	Term  string
	DocID string
}

// Builder runs term extraction on a bounded worker pool and reduces the
// results on the calling goroutine. Workers never touch the frequency
// tables.
type Builder struct {
	extractor    TermExtractor
	workers      int
	sortPostings bool
	smoothing    bool
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

type BuilderOption func(*Builder)

// WithWorkers sets the pool size. Zero or less means GOMAXPROCS.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) {
		b.workers = n
	}
}

// WithSortPostings orders every posting list by document id, making output
// independent of reduce order.
func WithSortPostings(sort bool) BuilderOption {
	return func(b *Builder) {
		b.sortPostings = sort
	}
}

func WithIDFSmoothing(on bool) BuilderOption {
	return func(b *Builder) {
		b.smoothing = on
	}
}

func WithMetrics(m *metrics.Metrics) BuilderOption {
	return func(b *Builder) {
		b.metrics = m
	}
}

func NewBuilder(extractor TermExtractor, opts ...BuilderOption) *Builder {
	b := &Builder{
		extractor:    extractor,
		sortPostings: true,
		logger:       logger.WithComponent("builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.workers <= 0 {
		b.workers = runtime.GOMAXPROCS(0)
	}
	return b
}

// ProcessRecord extracts the term occurrences of a single record. Repeated
// terms are emitted once per occurrence.
func (b *Builder) ProcessRecord(ctx context.Context, rec corpus.Record) ([]TermOccurrence, corpus.Record) {
	terms := b.extractor.Terms(ctx, rec.Text)
	out := make([]TermOccurrence, 0, len(terms))
	for _, term := range terms {
		out = append(out, TermOccurrence{Term: term, DocID: rec.ID})
	}
	return out, rec
}

type docResult struct {
	terms []TermOccurrence
	rec   corpus.Record
}

// BuildIndex computes the inverted index for records. A record whose
// extraction panics is logged and contributes no terms, but still counts
// toward the corpus size. The build fails only if ctx is cancelled.
func (b *Builder) BuildIndex(ctx context.Context, records []corpus.Record) (*index.InvertedIndex, error) {
	start := time.Now()
	log := logger.FromContext(ctx).With("component", "builder")

	extractCtx, extractSpan := tracing.StartChild(ctx, "extract")
	extractSpan.SetAttr("documents", len(records))
	extractSpan.SetAttr("workers", b.workers)
	results := make([]docResult, len(records))
	g, gctx := errgroup.WithContext(extractCtx)
	g.SetLimit(b.workers)
	for i := range records {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = b.extract(gctx, records[i])
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	extractSpan.End()
	if err != nil {
		extractSpan.SetAttr("error", err.Error())
		return nil, fmt.Errorf("extracting terms: %w", err)
	}

	_, reduceSpan := tracing.StartChild(ctx, "reduce")
	stats := index.NewStats()
	occurrences := 0
	for _, r := range results {
		stats.AddDocument(index.DocMeta{
			ID:             r.rec.ID,
			HumorType:      r.rec.HumorType,
			EmojiPresence:  r.rec.EmojiPresence,
			HumorTypeScore: r.rec.HumorTypeScore,
		})
		for _, occ := range r.terms {
			stats.Add(occ.Term, occ.DocID)
		}
		occurrences += len(r.terms)
	}

	var opts []index.ComputeOption
	if b.smoothing {
		opts = append(opts, index.WithSmoothing())
	}
	idx := index.Compute(stats, opts...)
	if b.sortPostings {
		idx.SortPostings()
	}
	reduceSpan.SetAttr("terms", idx.Len())
	reduceSpan.End()

	elapsed := time.Since(start)
	b.metrics.BuildFinished(elapsed.Seconds(), idx.Len())
	log.Info("index built",
		"documents", stats.DocCount(),
		"terms", idx.Len(),
		"occurrences", occurrences,
		"workers", b.workers,
		"duration", elapsed,
	)
	return idx, nil
}

func (b *Builder) extract(ctx context.Context, rec corpus.Record) (res docResult) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("term extraction failed, skipping document", "doc_id", rec.ID, "panic", r)
			b.metrics.DocProcessed(false)
			res = docResult{rec: rec}
		}
	}()
	terms, rec := b.ProcessRecord(ctx, rec)
	b.metrics.DocProcessed(true)
	return docResult{terms: terms, rec: rec}
}
