package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/postgres"
)

// SQLStore keeps terms and records in PostgreSQL, one row per key. Table
// names are the collection names:
//
//	CREATE TABLE content_index (
//	    term       TEXT PRIMARY KEY,
//	    postings   JSONB NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//	CREATE TABLE humor_content (
//	    id         TEXT PRIMARY KEY,
//	    record     JSONB NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type SQLStore struct {
	db                *sql.DB
	collection        string
	contentCollection string
	logger            *slog.Logger
}

func NewSQLStore(db *sql.DB, collection, contentCollection string) (*SQLStore, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	if contentCollection != "" {
		if err := ValidateCollection(contentCollection); err != nil {
			return nil, err
		}
	}
	return &SQLStore{
		db:                db,
		collection:        collection,
		contentCollection: contentCollection,
		logger:            slog.Default().With("component", "sql-store"),
	}, nil
}

// EnsureSchema creates the term and content tables if they are missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	return postgres.InTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
				term       TEXT PRIMARY KEY,
				postings   JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, s.collection)); err != nil {
			return fmt.Errorf("creating table %s: %w", s.collection, err)
		}
		if s.contentCollection == "" {
			return nil
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
				id         TEXT PRIMARY KEY,
				record     JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, s.contentCollection)); err != nil {
			return fmt.Errorf("creating table %s: %w", s.contentCollection, err)
		}
		return nil
	})
}

func (s *SQLStore) ListTerms(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT term FROM %s`, s.collection))
	if err != nil {
		return nil, fmt.Errorf("listing terms in %s: %w", s.collection, err)
	}
	defer rows.Close()

	terms := make(map[string]struct{})
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, fmt.Errorf("scanning term row: %w", err)
		}
		terms[term] = struct{}{}
	}
	return terms, rows.Err()
}

func (s *SQLStore) Upsert(ctx context.Context, term string, postings index.PostingList) (bool, error) {
	data, err := json.Marshal(postings)
	if err != nil {
		return false, fmt.Errorf("marshaling postings for %q: %w", term, err)
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (term, postings) VALUES ($1, $2)
		ON CONFLICT (term) DO NOTHING`, s.collection),
		term, data,
	)
	if err != nil {
		return false, fmt.Errorf("writing term %q: %w", term, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("writing term %q: %w", term, err)
	}
	return n == 1, nil
}

func (s *SQLStore) PutRecord(ctx context.Context, rec corpus.Record) (bool, error) {
	if s.contentCollection == "" {
		return false, fmt.Errorf("no content collection configured")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshaling record %s: %w", rec.ID, err)
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, record) VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`, s.contentCollection),
		rec.ID, data,
	)
	if err != nil {
		return false, fmt.Errorf("writing record %s: %w", rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("writing record %s: %w", rec.ID, err)
	}
	return n == 1, nil
}

// PutRecords writes a batch of records in one transaction and returns how
// many were new.
func (s *SQLStore) PutRecords(ctx context.Context, recs []corpus.Record) (int, error) {
	if s.contentCollection == "" {
		return 0, fmt.Errorf("no content collection configured")
	}
	written := 0
	err := postgres.InTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
			`INSERT INTO %s (id, record) VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING`, s.contentCollection))
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()
		for _, rec := range recs {
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshaling record %s: %w", rec.ID, err)
			}
			res, err := stmt.ExecContext(ctx, rec.ID, data)
			if err != nil {
				return fmt.Errorf("writing record %s: %w", rec.ID, err)
			}
			if n, _ := res.RowsAffected(); n == 1 {
				written++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("content batch written", "records", len(recs), "new", written)
	return written, nil
}
