package indexer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/humor-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/resilience"
)

// SyncReport summarises one Sync call. Existing counts terms that were
// already remote before the call; Skipped counts terms another writer
// created between listing and upserting.
type SyncReport struct {
	Existing    int      `json:"existing"`
	Written     int      `json:"written"`
	Skipped     int      `json:"skipped"`
	Failed      int      `json:"failed"`
	FailedTerms []string `json:"failed_terms,omitempty"`
}

// Syncer copies an index into a Store. Sync is additive: terms already
// present remotely are never rewritten, so re-running after a partial
// failure uploads only what is still missing.
type Syncer struct {
	store   store.Store
	content store.ContentStore
	retry   resilience.RetryConfig
	metrics *metrics.Metrics

	mu sync.Mutex
	// confirmed holds terms known to be remote, so a second Sync on the
	// same Syncer does not depend on the listing alone.
	confirmed map[string]struct{}
}

type SyncerOption func(*Syncer)

func WithContentStore(cs store.ContentStore) SyncerOption {
	return func(s *Syncer) {
		s.content = cs
	}
}

// WithRetry sets the per-write retry policy.
func WithRetry(attempts int, delay time.Duration) SyncerOption {
	return func(s *Syncer) {
		s.retry.Attempts = attempts
		s.retry.Backoff.Initial = delay
	}
}

func WithSyncMetrics(m *metrics.Metrics) SyncerOption {
	return func(s *Syncer) {
		s.metrics = m
	}
}

func NewSyncer(st store.Store, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		store:     st,
		retry:     resilience.RetryConfig{Retryable: retryable},
		confirmed: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func retryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// policy returns the retry config with warnings routed to log.
func (s *Syncer) policy(log *slog.Logger, op string) resilience.RetryConfig {
	cfg := s.retry
	cfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.Warn("store call failed, retrying", "operation", op, "attempt", attempt, "wait", wait, "error", err)
	}
	return cfg
}

// Sync lists the remote terms once and upserts every local term that is
// missing. Individual write failures do not stop the sync; they are
// reported and the returned error wraps ErrStoreUnavailable.
func (s *Syncer) Sync(ctx context.Context, idx *index.InvertedIndex) (SyncReport, error) {
	var report SyncReport
	log := logger.FromContext(ctx).With("component", "syncer")

	var remote map[string]struct{}
	err := resilience.Retry(ctx, "list remote terms", s.policy(log, "list remote terms"), func() error {
		var err error
		remote, err = s.store.ListTerms(ctx)
		return err
	})
	if err != nil {
		return report, apperrors.Newf(apperrors.ErrStoreUnavailable, "listing remote terms: %v", err)
	}

	for _, term := range idx.Terms() {
		if s.known(term, remote) {
			report.Existing++
			continue
		}
		if ctx.Err() != nil {
			report.Failed++
			report.FailedTerms = append(report.FailedTerms, term)
			continue
		}
		postings := idx.Postings(term)
		var written bool
		err := resilience.Retry(ctx, "upsert term", s.policy(log, "upsert term"), func() error {
			var err error
			written, err = s.store.Upsert(ctx, term, postings)
			return err
		})
		switch {
		case err != nil:
			report.Failed++
			report.FailedTerms = append(report.FailedTerms, term)
			s.metrics.Upsert("failed")
			log.Warn("term upsert failed", "term", term, "error", err)
		case written:
			report.Written++
			s.confirm(term)
			s.metrics.Upsert("written")
		default:
			report.Skipped++
			s.confirm(term)
			s.metrics.Upsert("skipped")
		}
	}

	log.Info("sync finished",
		"terms", idx.Len(),
		"existing", report.Existing,
		"written", report.Written,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	if report.Failed > 0 {
		return report, apperrors.Newf(apperrors.ErrStoreUnavailable, "%d of %d terms failed to sync", report.Failed, idx.Len())
	}
	return report, nil
}

func (s *Syncer) known(term string, remote map[string]struct{}) bool {
	if _, ok := remote[term]; ok {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.confirmed[term]
	return ok
}

func (s *Syncer) confirm(term string) {
	s.mu.Lock()
	s.confirmed[term] = struct{}{}
	s.mu.Unlock()
}

// batchContentStore is implemented by stores that can write many records
// in one round trip.
type batchContentStore interface {
	PutRecords(ctx context.Context, recs []corpus.Record) (int, error)
}

// PushContent uploads the corpus records to the content store. Records
// whose id already exists are left untouched. It returns how many records
// were newly written.
func (s *Syncer) PushContent(ctx context.Context, records []corpus.Record) (int, error) {
	if s.content == nil {
		return 0, apperrors.New(apperrors.ErrStoreUnavailable, "no content store configured")
	}
	log := logger.FromContext(ctx).With("component", "syncer")

	if batch, ok := s.content.(batchContentStore); ok {
		var written int
		err := resilience.Retry(ctx, "push content", s.policy(log, "push content"), func() error {
			var err error
			written, err = batch.PutRecords(ctx, records)
			return err
		})
		if err != nil {
			return 0, apperrors.Newf(apperrors.ErrStoreUnavailable, "pushing content: %v", err)
		}
		log.Info("content pushed", "records", len(records), "written", written)
		return written, nil
	}

	written, failed := 0, 0
	for _, rec := range records {
		var ok bool
		err := resilience.Retry(ctx, "push record", s.policy(log, "push record"), func() error {
			var err error
			ok, err = s.content.PutRecord(ctx, rec)
			return err
		})
		if err != nil {
			failed++
			log.Warn("record push failed", "doc_id", rec.ID, "error", err)
			continue
		}
		if ok {
			written++
		}
	}
	log.Info("content pushed", "records", len(records), "written", written, "failed", failed)
	if failed > 0 {
		return written, apperrors.Newf(apperrors.ErrStoreUnavailable, "%d of %d records failed to push", failed, len(records))
	}
	return written, nil
}
