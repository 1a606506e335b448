package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/pipeline"
	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/snapshot"
	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/stemmer"
	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/lexicon"
	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/store"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/humor-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/tracing"
)

type options struct {
	syncOnly    bool
	pushContent bool
	analyze     string
}

func main() {
	configPath := flag.String("config", "configs/indexer.yaml", "path to config file")
	var opts options
	flag.BoolVar(&opts.syncOnly, "sync-only", false, "sync the existing snapshot to the store without rebuilding")
	flag.BoolVar(&opts.pushContent, "push-content", false, "also upload corpus records to the content collection")
	flag.StringVar(&opts.analyze, "analyze", "", "print every pipeline stage for the given text and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(apperrors.ExitFailure)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, opts)
	stop()
	if err != nil {
		slog.Error("indexer failed", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	var m *metrics.Metrics
	checker := health.NewChecker()
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
		shutdown := metrics.StartServer(cfg.Metrics.Port, checker)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	var rc *redis.Client
	if cfg.Store.Backend == "redis" || cfg.Pipeline.SynonymCacheInRedis {
		var err error
		rc, err = redis.NewClient(cfg.Redis)
		if err != nil {
			return apperrors.Newf(apperrors.ErrStoreUnavailable, "connecting to redis: %v", err)
		}
		defer rc.Close()
		checker.Register("redis", health.PingCheck(rc.Ping, cfg.Store.Backend != "redis"))
	}

	if cfg.Kafka.Enabled {
		checker.Register("kafka", health.PingCheck(kafka.Ping(cfg.Kafka.Brokers), true))
	}

	var cache lexicon.Cache
	if rc != nil && cfg.Pipeline.SynonymCacheInRedis {
		cache = rc
	}
	p, err := newPipeline(cfg.Pipeline, m, cache, checker)
	if err != nil {
		return err
	}
	if opts.analyze != "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p.Preprocess(ctx, opts.analyze))
	}

	st, content, closeStore, err := openStore(ctx, cfg, rc, checker)
	if err != nil {
		return err
	}
	defer closeStore()

	buildID := strconv.FormatInt(time.Now().UnixNano(), 36)
	ctx = logger.WithBuildID(ctx, buildID)
	log := logger.FromContext(ctx)
	ctx, runSpan := tracing.Start(ctx, "index-run", buildID)
	defer func() {
		runSpan.End()
		runSpan.Log(log)
	}()
	if deps := checker.Run(ctx); len(deps.Components) > 0 {
		log.Info("dependencies checked", "status", deps.Status)
	}

	var records []corpus.Record
	if !opts.syncOnly || opts.pushContent {
		records, err = corpus.LoadFile(cfg.Corpus.Path)
		if err != nil {
			return fmt.Errorf("loading corpus: %w", err)
		}
		log.Info("corpus loaded", "path", cfg.Corpus.Path, "records", len(records))
	}

	var idx *index.InvertedIndex
	phaseCtx, phase := tracing.StartChild(ctx, "build")
	if opts.syncOnly {
		idx, err = snapshot.Load(cfg.Snapshot.Path)
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
		log.Info("snapshot loaded", "path", cfg.Snapshot.Path, "terms", idx.Len())
	} else {
		builder := indexer.NewBuilder(p,
			indexer.WithWorkers(cfg.Indexer.Workers),
			indexer.WithSortPostings(cfg.Indexer.SortPostings),
			indexer.WithIDFSmoothing(cfg.Indexer.IDFSmoothing),
			indexer.WithMetrics(m),
		)
		idx, err = builder.BuildIndex(phaseCtx, records)
		if err != nil {
			return fmt.Errorf("building index: %w", err)
		}
		err = snapshot.Write(cfg.Snapshot.Path, idx)
		m.SnapshotWritten(err)
		if err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		log.Info("snapshot written", "path", cfg.Snapshot.Path, "terms", idx.Len())
	}
	phase.End()

	var report indexer.SyncReport
	var syncErr error
	if st != nil {
		_, syncSpan := tracing.StartChild(ctx, "sync")
		defer syncSpan.End()
		syncer := indexer.NewSyncer(st,
			indexer.WithContentStore(content),
			indexer.WithRetry(cfg.Store.RetryAttempts, cfg.Store.RetryDelay),
			indexer.WithSyncMetrics(m),
		)
		report, syncErr = syncer.Sync(ctx, idx)
		if syncErr == nil && opts.pushContent {
			_, syncErr = syncer.PushContent(ctx, records)
		}
	}

	if cfg.Kafka.Enabled && syncErr == nil {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.IndexCompleteTopic)
		defer producer.Close()
		event := indexer.IndexCompleteEvent{
			BuildID:     buildID,
			Documents:   len(records),
			Terms:       idx.Len(),
			Snapshot:    cfg.Snapshot.Path,
			Sync:        report,
			CompletedAt: time.Now().UTC(),
		}
		if err := indexer.NewKafkaNotifier(producer).IndexComplete(ctx, event); err != nil {
			log.Error("failed to publish index.complete event", "error", err)
		}
	}
	return syncErr
}

func newPipeline(cfg config.PipelineConfig, m *metrics.Metrics, cache lexicon.Cache, checker *health.Checker) (*pipeline.Pipeline, error) {
	var st stemmer.Stemmer
	switch cfg.Stemmer {
	case "snowball":
		st = stemmer.NewSnowball()
	default:
		var stemOpts []stemmer.Option
		if cfg.BaseWordsPath != "" {
			words, err := lexicon.LoadDictionary(cfg.BaseWordsPath)
			if err != nil {
				return nil, fmt.Errorf("loading base words: %w", err)
			}
			stemOpts = append(stemOpts, stemmer.WithDictionary(words))
		}
		st = stemmer.New(stemOpts...)
	}

	guard := lexicon.GuardConfig{
		Timeout:          cfg.LookupTimeout,
		FailureThreshold: cfg.BreakerThreshold,
		ResetTimeout:     cfg.BreakerResetTimeout,
		Metrics:          m,
	}
	var opts []pipeline.Option
	if cfg.DictionaryPath != "" {
		dict, err := lexicon.LoadDictionary(cfg.DictionaryPath)
		if err != nil {
			return nil, fmt.Errorf("loading spelling dictionary: %w", err)
		}
		corrector := lexicon.NewGuardedCorrector(dict, guard)
		checker.Register("spelling", health.BreakerCheck(corrector.State))
		opts = append(opts, pipeline.WithSpellCorrector(corrector))
	}
	if cfg.ThesaurusPath != "" {
		th, err := lexicon.LoadThesaurus(cfg.ThesaurusPath)
		if err != nil {
			return nil, fmt.Errorf("loading thesaurus: %w", err)
		}
		var src pipeline.SynonymSource = th
		if cache != nil {
			src = lexicon.NewCachedSynonyms(src, cache, cfg.SynonymCacheTTL)
		}
		synonyms := lexicon.NewGuardedSynonyms(src, guard)
		checker.Register("synonyms", health.BreakerCheck(synonyms.State))
		opts = append(opts, pipeline.WithSynonyms(synonyms))
	}
	return pipeline.New(st, opts...), nil
}

func openStore(ctx context.Context, cfg *config.Config, rc *redis.Client, checker *health.Checker) (store.Store, store.ContentStore, func(), error) {
	noop := func() {}
	switch cfg.Store.Backend {
	case "memory":
		ms := store.NewMemoryStore()
		return ms, ms, noop, nil
	case "redis":
		rs, err := store.NewRedisStore(rc, cfg.Store.Collection, cfg.Store.ContentCollection)
		if err != nil {
			return nil, nil, noop, apperrors.Newf(apperrors.ErrInvalidInput, "redis store: %v", err)
		}
		return rs, rs, noop, nil
	case "postgres":
		pg, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, noop, apperrors.Newf(apperrors.ErrStoreUnavailable, "connecting to postgres: %v", err)
		}
		checker.Register("postgres", health.PingCheck(pg.Ping, false))
		ss, err := store.NewSQLStore(pg.DB, cfg.Store.Collection, cfg.Store.ContentCollection)
		if err != nil {
			pg.Close()
			return nil, nil, noop, apperrors.Newf(apperrors.ErrInvalidInput, "postgres store: %v", err)
		}
		if err := ss.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, noop, apperrors.Newf(apperrors.ErrStoreUnavailable, "preparing schema: %v", err)
		}
		return ss, ss, func() { pg.Close() }, nil
	default:
		slog.Info("no document store configured, skipping sync")
		return nil, nil, noop, nil
	}
}
