// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pmid-pdf/pkg/types"
)

const articlesTable = "articles"

var articleColumns = []string{
	"pmid", "doi", "title", "authors", "journal", "year",
	"has_pdf", "has_abstract", "full_text_available", "commercial_use_allowed",
	"relative_path", "download_attempted", "created_at", "updated_at",
}

// SQLite stores articles in a single SQLite table. The pool is limited to
// one connection, so transactions are serialized.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the database at path and creates the schema
// if it does not exist. Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) createSchema() error {
	statements := []string{
		// The UNIQUE constraint gives pmid its lookup index.
		`CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pmid TEXT NOT NULL UNIQUE,
			doi TEXT,
			title TEXT,
			authors TEXT,
			journal TEXT,
			year INTEGER,
			has_pdf INTEGER NOT NULL DEFAULT 0,
			has_abstract INTEGER NOT NULL DEFAULT 0,
			full_text_available INTEGER NOT NULL DEFAULT 0,
			commercial_use_allowed INTEGER NOT NULL DEFAULT 0,
			relative_path TEXT,
			download_attempted INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_doi ON articles(doi) WHERE doi IS NOT NULL`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Find returns the record for pmid, or nil if none exists.
func (s *SQLite) Find(ctx context.Context, pmid string) (*types.ArticleRecord, error) {
	if pmid == "" {
		return nil, ErrEmptyPMID
	}
	rec, err := findArticle(ctx, s.db, pmid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding article %s: %w", pmid, err)
	}
	return rec, nil
}

// Upsert inserts a record for pmid with the fields of u, or updates only
// those fields if the record exists. The write and the read-back share one
// transaction.
func (s *SQLite) Upsert(ctx context.Context, pmid string, u types.ArticleUpdate) (*types.ArticleRecord, error) {
	if pmid == "" {
		return nil, ErrEmptyPMID
	}

	fields := u.Fields()
	now := s.now().Format(time.RFC3339Nano)

	values := make(map[string]any, len(fields)+3)
	for col, v := range fields {
		values[col] = v
	}
	values["pmid"] = pmid
	values["created_at"] = now
	values["updated_at"] = now

	query, args, err := sq.Insert(articlesTable).
		SetMap(values).
		Suffix(conflictClause(fields)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building upsert: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("upserting article %s: %w", pmid, err)
	}

	rec, err := findArticle(ctx, tx, pmid)
	if err != nil {
		return nil, fmt.Errorf("reading back article %s: %w", pmid, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing article %s: %w", pmid, err)
	}
	return rec, nil
}

// conflictClause turns an insert into an upsert that touches only the given
// columns and updated_at on an existing row.
func conflictClause(fields map[string]any) string {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+1)
	for _, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", col, col))
	}
	sets = append(sets, "updated_at = excluded.updated_at")
	return "ON CONFLICT(pmid) DO UPDATE SET " + strings.Join(sets, ", ")
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findArticle(ctx context.Context, q queryRower, pmid string) (*types.ArticleRecord, error) {
	query, args, err := sq.Select(articleColumns...).
		From(articlesTable).
		Where(sq.Eq{"pmid": pmid}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}
	return scanArticle(q.QueryRowContext(ctx, query, args...))
}

func scanArticle(row *sql.Row) (*types.ArticleRecord, error) {
	var (
		rec                          types.ArticleRecord
		doi, title, authors, journal sql.NullString
		relativePath                 sql.NullString
		year                         sql.NullInt64
		createdAt, updatedAt         string
	)
	err := row.Scan(
		&rec.PMID, &doi, &title, &authors, &journal, &year,
		&rec.HasPDF, &rec.HasAbstract, &rec.FullTextAvailable, &rec.CommercialUseAllowed,
		&relativePath, &rec.DownloadAttempted, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.DOI = nullString(doi)
	rec.Title = nullString(title)
	rec.Authors = nullString(authors)
	rec.Journal = nullString(journal)
	rec.RelativePath = nullString(relativePath)
	if year.Valid {
		rec.Year = types.Int(int(year.Int64))
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		rec.UpdatedAt = t
	}
	return &rec, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return types.String(ns.String)
}
