package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"nature_poster/internal/model"
	"nature_poster/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// BadWords returns the bad-word set. Entries are stored pre-normalized
// (lowercase); they are returned as-is.
func (s *SQLite) BadWords(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word FROM bad_words`)
	if err != nil {
		return nil, fmt.Errorf("query bad words: %w", err)
	}
	defer func() { _ = rows.Close() }()

	words := make(map[string]struct{})
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan bad word: %w", err)
		}
		words[w] = struct{}{}
	}
	return words, rows.Err()
}

// AddBadWord inserts a word into the bad-word set. Duplicates are ignored.
func (s *SQLite) AddBadWord(ctx context.Context, word string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO bad_words (word) VALUES (?)`, word)
	if err != nil {
		return fmt.Errorf("insert bad word: %w", err)
	}
	return nil
}

// SearchTerms returns all configured search terms.
func (s *SQLite) SearchTerms(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT term FROM search_terms ORDER BY term`)
	if err != nil {
		return nil, fmt.Errorf("query search terms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var terms []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan search term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// AddSearchTerm inserts a search term. Duplicates are ignored.
func (s *SQLite) AddSearchTerm(ctx context.Context, term string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO search_terms (term) VALUES (?)`, term)
	if err != nil {
		return fmt.Errorf("insert search term: %w", err)
	}
	return nil
}

// HasPost reports whether a publish record with the given source ID exists.
func (s *SQLite) HasPost(ctx context.Context, sourceID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM post_log WHERE source_id = ?`, sourceID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check post: %w", err)
	}
	return count > 0, nil
}

// AppendPost writes a publish record and populates its ID.
// The post log is append-only; no update or delete path exists.
func (s *SQLite) AppendPost(ctx context.Context, rec *model.PublishRecord) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO post_log (posted_at, raw_response, description, author, source_id, permalink, source_url, media_url, size_kb)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.PostedAt.UTC().Format(timeLayout), rec.RawResponse, rec.Description, rec.Author,
		rec.SourceID, rec.Permalink, rec.SourceURL, rec.MediaURL, rec.SizeKB,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	rec.ID = id
	return nil
}

// Posts returns all publish records in insertion order.
func (s *SQLite) Posts(ctx context.Context) ([]model.PublishRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, posted_at, raw_response, description, author, source_id, permalink, source_url, media_url, size_kb
		 FROM post_log ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []model.PublishRecord
	for rows.Next() {
		var r model.PublishRecord
		var postedAt string
		err := rows.Scan(&r.ID, &postedAt, &r.RawResponse, &r.Description, &r.Author,
			&r.SourceID, &r.Permalink, &r.SourceURL, &r.MediaURL, &r.SizeKB)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		r.PostedAt, _ = time.Parse(timeLayout, postedAt)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}
