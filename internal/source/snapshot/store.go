// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snapshot mirrors bibliographic records into a local SQLite database
// and serves them through the record source contract. A snapshot is seeded
// with Import (for example from the offline corpus or an exported dump) and
// then used as the primary backend when the remote API is not wanted.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/collab-finder/internal/logging"
	"github.com/pdiddy/collab-finder/internal/source"
	"github.com/pdiddy/collab-finder/pkg/types"
)

// Name identifies the snapshot backend in logs and metrics.
const Name = "snapshot"

// Store is a SQLite-backed record source.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

var (
	_ source.Source = (*Store)(nil)
	_ source.Dumper = (*Store)(nil)
)

// Open opens or creates the snapshot database at path, creating parent
// directories and the schema as needed.
func Open(path string, log *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}

	s := &Store{db: db, log: logging.OrNop(log)}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS concepts (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			description TEXT,
			works_count INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS authors (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			works_count INTEGER,
			cited_by_count INTEGER,
			inst_id TEXT,
			inst_name TEXT,
			inst_type TEXT,
			inst_country TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS author_concepts (
			author_id TEXT NOT NULL,
			concept_id TEXT NOT NULL,
			PRIMARY KEY (author_id, concept_id)
		)`,
		`CREATE TABLE IF NOT EXISTS institutions (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			type TEXT,
			works_count INTEGER,
			cited_by_count INTEGER,
			latitude REAL,
			longitude REAL,
			city TEXT,
			region TEXT,
			country_code TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS institution_concepts (
			institution_id TEXT NOT NULL,
			concept_id TEXT NOT NULL,
			PRIMARY KEY (institution_id, concept_id)
		)`,
		`CREATE TABLE IF NOT EXISTS works (
			id TEXT PRIMARY KEY,
			title TEXT,
			publication_year INTEGER,
			publication_date TEXT,
			published TEXT,
			cited_by_count INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS work_concepts (
			work_id TEXT NOT NULL,
			concept_id TEXT NOT NULL,
			display_name TEXT,
			score REAL,
			position INTEGER,
			PRIMARY KEY (work_id, concept_id)
		)`,
		`CREATE TABLE IF NOT EXISTS work_authors (
			work_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			author_name TEXT,
			position INTEGER,
			PRIMARY KEY (work_id, author_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_works_published ON works(published)`,
		`CREATE INDEX IF NOT EXISTS idx_work_concepts_concept ON work_concepts(concept_id)`,
		`CREATE INDEX IF NOT EXISTS idx_work_authors_author ON work_authors(author_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ImportSummary holds record counts from an Import run.
type ImportSummary struct {
	Concepts     int `json:"concepts" yaml:"concepts"`
	Authors      int `json:"authors" yaml:"authors"`
	Institutions int `json:"institutions" yaml:"institutions"`
	Works        int `json:"works" yaml:"works"`
	Skipped      int `json:"skipped" yaml:"skipped"`
}

// Total returns the number of records written.
func (s ImportSummary) Total() int {
	return s.Concepts + s.Authors + s.Institutions + s.Works
}

// Import upserts every record of d in a single transaction. Records without
// an id are skipped and counted.
func (s *Store) Import(ctx context.Context, d source.Dump) (ImportSummary, error) {
	var sum ImportSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sum, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range d.Concepts {
		if c.ID == "" {
			sum.Skipped++
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO concepts (id, display_name, description, works_count) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				display_name=excluded.display_name, description=excluded.description, works_count=excluded.works_count`,
			c.ID, c.DisplayName, c.Description, c.WorksCount,
		); err != nil {
			return sum, fmt.Errorf("upserting concept %s: %w", c.ID, err)
		}
		sum.Concepts++
	}

	for _, a := range d.Authors {
		if a.ID == "" {
			sum.Skipped++
			continue
		}
		var inst types.Institution
		if a.LastKnownInstitution != nil {
			inst = *a.LastKnownInstitution
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO authors (id, display_name, works_count, cited_by_count, inst_id, inst_name, inst_type, inst_country)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				display_name=excluded.display_name, works_count=excluded.works_count,
				cited_by_count=excluded.cited_by_count, inst_id=excluded.inst_id,
				inst_name=excluded.inst_name, inst_type=excluded.inst_type, inst_country=excluded.inst_country`,
			a.ID, a.DisplayName, a.WorksCount, a.CitedByCount,
			inst.ID, inst.DisplayName, inst.Type, inst.CountryCode,
		); err != nil {
			return sum, fmt.Errorf("upserting author %s: %w", a.ID, err)
		}
		if err := replaceLinks(ctx, tx, "author_concepts", "author_id", a.ID, a.ConceptIDs); err != nil {
			return sum, err
		}
		sum.Authors++
	}

	for _, i := range d.Institutions {
		if i.ID == "" {
			sum.Skipped++
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO institutions (id, display_name, type, works_count, cited_by_count, latitude, longitude, city, region, country_code)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				display_name=excluded.display_name, type=excluded.type, works_count=excluded.works_count,
				cited_by_count=excluded.cited_by_count, latitude=excluded.latitude, longitude=excluded.longitude,
				city=excluded.city, region=excluded.region, country_code=excluded.country_code`,
			i.ID, i.DisplayName, i.Type, i.WorksCount, i.CitedByCount,
			nullFloat(i.Latitude), nullFloat(i.Longitude), i.City, i.Region, i.CountryCode,
		); err != nil {
			return sum, fmt.Errorf("upserting institution %s: %w", i.ID, err)
		}
		if err := replaceLinks(ctx, tx, "institution_concepts", "institution_id", i.ID, i.ConceptIDs); err != nil {
			return sum, err
		}
		sum.Institutions++
	}

	for _, w := range d.Works {
		if w.ID == "" {
			sum.Skipped++
			continue
		}
		if err := importWork(ctx, tx, w); err != nil {
			return sum, err
		}
		sum.Works++
	}

	if err := tx.Commit(); err != nil {
		return sum, fmt.Errorf("committing import: %w", err)
	}
	s.log.Info("snapshot import complete",
		zap.Int("concepts", sum.Concepts),
		zap.Int("authors", sum.Authors),
		zap.Int("institutions", sum.Institutions),
		zap.Int("works", sum.Works),
		zap.Int("skipped", sum.Skipped),
	)
	return sum, nil
}

func importWork(ctx context.Context, tx *sql.Tx, w types.WorkRecord) error {
	published := ""
	if t := w.Published(); !t.IsZero() {
		published = t.Format(types.DateLayout)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO works (id, title, publication_year, publication_date, published, cited_by_count)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, publication_year=excluded.publication_year,
			publication_date=excluded.publication_date, published=excluded.published,
			cited_by_count=excluded.cited_by_count`,
		w.ID, w.Title, w.PublicationYear, w.PublicationDate, published, w.CitedByCount,
	); err != nil {
		return fmt.Errorf("upserting work %s: %w", w.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM work_concepts WHERE work_id = ?`, w.ID); err != nil {
		return fmt.Errorf("clearing concepts of work %s: %w", w.ID, err)
	}
	for pos, c := range w.Concepts {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO work_concepts (work_id, concept_id, display_name, score, position) VALUES (?, ?, ?, ?, ?)`,
			w.ID, c.ID, c.DisplayName, c.Score, pos,
		); err != nil {
			return fmt.Errorf("inserting concept of work %s: %w", w.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM work_authors WHERE work_id = ?`, w.ID); err != nil {
		return fmt.Errorf("clearing authors of work %s: %w", w.ID, err)
	}
	for pos, a := range w.Authorships {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO work_authors (work_id, author_id, author_name, position) VALUES (?, ?, ?, ?)`,
			w.ID, a.AuthorID, a.AuthorName, pos,
		); err != nil {
			return fmt.Errorf("inserting author of work %s: %w", w.ID, err)
		}
	}
	return nil
}

// replaceLinks rewrites the concept links of one owner row. table and column
// are compile-time constants, never user input.
func replaceLinks(ctx context.Context, tx *sql.Tx, table, column, ownerID string, conceptIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+column+` = ?`, ownerID); err != nil {
		return fmt.Errorf("clearing %s for %s: %w", table, ownerID, err)
	}
	for _, cid := range conceptIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO `+table+` (`+column+`, concept_id) VALUES (?, ?)`, ownerID, cid,
		); err != nil {
			return fmt.Errorf("inserting %s for %s: %w", table, ownerID, err)
		}
	}
	return nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

// sqlLimit maps a non-positive limit to SQLite's "no limit".
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// queryErr classifies a database error for the fallback resolver.
func queryErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("snapshot %s: %w", op, source.ErrNotFound)
	}
	return source.Unavailable("snapshot "+op, err)
}
