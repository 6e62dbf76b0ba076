package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/vectorstore"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driven/vectorstore/sqlite/migrations"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a safety index collection in a SQLite database.
type Store struct {
	db         *sql.DB
	path       string
	collection string
}

// NewStore opens (or creates) the database at path and the named collection.
// If path is empty, defaults to ~/.pillmate/data/safety.db.
func NewStore(path, collection string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".pillmate", "data", "safety.db")
	}
	if collection == "" {
		collection = domain.DefaultCollection
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: path, collection: collection}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if _, err := db.Exec(
		"INSERT OR IGNORE INTO collections (name, dimensions) VALUES (?, 0)", collection,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dimensions returns the collection's embedding width, 0 while empty.
func (s *Store) dimensions(ctx context.Context, q queryRower) (int, error) {
	var dims int
	err := q.QueryRowContext(ctx,
		"SELECT dimensions FROM collections WHERE name = ?", s.collection,
	).Scan(&dims)
	if err != nil {
		return 0, fmt.Errorf("reading collection dimensions: %w", err)
	}
	return dims, nil
}

// Add upserts documents in one transaction.
func (s *Store) Add(ctx context.Context, docs []domain.SafetyDocument) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	dims, err := s.dimensions(ctx, tx)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO safety_documents (
			collection, id, category, primary_drug, secondary_drug,
			primary_product, secondary_product, restriction, detail,
			notice_date, content, embedding
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			category = excluded.category,
			primary_drug = excluded.primary_drug,
			secondary_drug = excluded.secondary_drug,
			primary_product = excluded.primary_product,
			secondary_product = excluded.secondary_product,
			restriction = excluded.restriction,
			detail = excluded.detail,
			notice_date = excluded.notice_date,
			content = excluded.content,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range docs {
		d := &docs[i]
		if d.ID == "" {
			return fmt.Errorf("%w: document without id", domain.ErrInvalidInput)
		}
		if len(d.Embedding) == 0 {
			return fmt.Errorf("%w: document %s has no embedding", domain.ErrInvalidInput, d.ID)
		}
		if err := vectorstore.CheckDimensions(dims, len(d.Embedding)); err != nil {
			return err
		}
		dims = len(d.Embedding)

		if _, err := stmt.ExecContext(ctx,
			s.collection, d.ID, string(d.Category), d.PrimaryDrug, d.SecondaryDrug,
			d.PrimaryProduct, d.SecondaryProduct, d.Restriction, d.Detail,
			d.NoticeDate, d.Content, vectorstore.EncodeVector(d.Embedding),
		); err != nil {
			return fmt.Errorf("inserting document %s: %w", d.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE collections SET dimensions = ? WHERE name = ?", dims, s.collection,
	); err != nil {
		return fmt.Errorf("updating collection dimensions: %w", err)
	}

	return tx.Commit()
}

// Search ranks the collection by cosine similarity to query.
func (s *Store) Search(
	ctx context.Context, query []float32, k int, filter *driven.SearchFilter,
) ([]domain.SafetyDocument, error) {
	if k <= 0 {
		return []domain.SafetyDocument{}, nil
	}

	dims, err := s.dimensions(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if dims == 0 {
		return []domain.SafetyDocument{}, nil
	}
	if err := vectorstore.CheckDimensions(dims, len(query)); err != nil {
		return nil, err
	}

	q := `SELECT id, category, primary_drug, secondary_drug, primary_product,
			secondary_product, restriction, detail, notice_date, content, embedding
		FROM safety_documents WHERE collection = ?`
	args := []any{s.collection}
	if filter != nil && filter.Category != "" {
		q += " AND category = ?"
		args = append(args, string(filter.Category))
	}
	q += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var hits []vectorstore.Scored
	for rows.Next() {
		var (
			d        domain.SafetyDocument
			category string
			blob     []byte
		)
		if err := rows.Scan(
			&d.ID, &category, &d.PrimaryDrug, &d.SecondaryDrug, &d.PrimaryProduct,
			&d.SecondaryProduct, &d.Restriction, &d.Detail, &d.NoticeDate, &d.Content, &blob,
		); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		vec, err := vectorstore.DecodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", d.ID, err)
		}
		d.Category = domain.SafetyCategory(category)
		hits = append(hits, vectorstore.Scored{Doc: d, Score: vectorstore.CosineSimilarity(query, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return vectorstore.TopK(hits, k), nil
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM safety_documents WHERE collection = ?", s.collection,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// CountByCategory returns document counts per category.
func (s *Store) CountByCategory(ctx context.Context) (map[domain.SafetyCategory]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category, COUNT(*) FROM safety_documents WHERE collection = ? GROUP BY category",
		s.collection,
	)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.SafetyCategory]int)
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[domain.SafetyCategory(category)] = n
	}
	return counts, rows.Err()
}

// Reset removes every document in the collection and forgets its dimensions.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM safety_documents WHERE collection = ?", s.collection,
	); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE collections SET dimensions = 0 WHERE name = ?", s.collection,
	); err != nil {
		return fmt.Errorf("resetting collection: %w", err)
	}
	return tx.Commit()
}

// ErrNoDatabase reports that the database file does not exist yet.
var ErrNoDatabase = errors.New("safety database not found")

// OpenExisting opens the database only if the file is already present.
func OpenExisting(path, collection string) (*Store, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrNoDatabase, path)
			}
			return nil, fmt.Errorf("checking database: %w", err)
		}
	}
	return NewStore(path, collection)
}
