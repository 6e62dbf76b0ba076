// Package pgvector provides a PostgreSQL safety index using the pgvector
// extension. Similarity ranking happens in the database with the cosine
// distance operator.
package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a safety index collection in a PostgreSQL table.
type Store struct {
	db         *sql.DB
	collection string
	dimension  int
}

// NewStore connects to dsn and prepares the schema for vectors of the given
// dimension.
func NewStore(ctx context.Context, dsn, collection string, dimension int) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is empty", domain.ErrInvalidInput)
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive", domain.ErrInvalidInput)
	}
	if collection == "" {
		collection = domain.DefaultCollection
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{db: db, collection: collection, dimension: dimension}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS safety_documents (
			collection        TEXT NOT NULL,
			id                TEXT NOT NULL,
			category          TEXT NOT NULL,
			primary_drug      TEXT NOT NULL DEFAULT '',
			secondary_drug    TEXT NOT NULL DEFAULT '',
			primary_product   TEXT NOT NULL DEFAULT '',
			secondary_product TEXT NOT NULL DEFAULT '',
			restriction       TEXT NOT NULL DEFAULT '',
			detail            TEXT NOT NULL DEFAULT '',
			notice_date       TEXT NOT NULL DEFAULT '',
			content           TEXT NOT NULL,
			embedding         vector(%d) NOT NULL,
			created_at        TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (collection, id)
		)`, s.dimension),
		`CREATE INDEX IF NOT EXISTS idx_safety_documents_category
			ON safety_documents (collection, category)`,
		`CREATE INDEX IF NOT EXISTS idx_safety_documents_embedding
			ON safety_documents USING hnsw (embedding vector_cosine_ops)`,
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

// Add upserts documents in one transaction.
func (s *Store) Add(ctx context.Context, docs []domain.SafetyDocument) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range docs {
		d := &docs[i]
		if d.ID == "" {
			return fmt.Errorf("%w: document without id", domain.ErrInvalidInput)
		}
		if len(d.Embedding) != s.dimension {
			return fmt.Errorf("%w: index has %d dimensions, document %s has %d",
				domain.ErrDimensionMismatch, s.dimension, d.ID, len(d.Embedding))
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO safety_documents (
				collection, id, category, primary_drug, secondary_drug,
				primary_product, secondary_product, restriction, detail,
				notice_date, content, embedding
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::vector)
			ON CONFLICT (collection, id) DO UPDATE SET
				category = EXCLUDED.category,
				primary_drug = EXCLUDED.primary_drug,
				secondary_drug = EXCLUDED.secondary_drug,
				primary_product = EXCLUDED.primary_product,
				secondary_product = EXCLUDED.secondary_product,
				restriction = EXCLUDED.restriction,
				detail = EXCLUDED.detail,
				notice_date = EXCLUDED.notice_date,
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding
		`, s.collection, d.ID, string(d.Category), d.PrimaryDrug, d.SecondaryDrug,
			d.PrimaryProduct, d.SecondaryProduct, d.Restriction, d.Detail,
			d.NoticeDate, d.Content, FormatVector(d.Embedding))
		if err != nil {
			return fmt.Errorf("upsert document %s: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

// Search returns the k nearest documents by cosine distance.
func (s *Store) Search(
	ctx context.Context, query []float32, k int, filter *driven.SearchFilter,
) ([]domain.SafetyDocument, error) {
	if k <= 0 {
		return []domain.SafetyDocument{}, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: index has %d dimensions, query has %d",
			domain.ErrDimensionMismatch, s.dimension, len(query))
	}

	q := `SELECT id, category, primary_drug, secondary_drug, primary_product,
			secondary_product, restriction, detail, notice_date, content,
			1 - (embedding <=> $1::vector) AS score
		FROM safety_documents
		WHERE collection = $2`
	args := []any{FormatVector(query), s.collection}
	if filter != nil && filter.Category != "" {
		q += " AND category = $3"
		args = append(args, string(filter.Category))
	}
	q += fmt.Sprintf(" ORDER BY embedding <=> $1::vector LIMIT %d", k)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	docs := []domain.SafetyDocument{}
	for rows.Next() {
		var (
			d        domain.SafetyDocument
			category string
		)
		if err := rows.Scan(
			&d.ID, &category, &d.PrimaryDrug, &d.SecondaryDrug, &d.PrimaryProduct,
			&d.SecondaryProduct, &d.Restriction, &d.Detail, &d.NoticeDate, &d.Content,
			&d.Similarity,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		d.Category = domain.SafetyCategory(category)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM safety_documents WHERE collection = $1", s.collection,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Reset removes every document in the collection.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM safety_documents WHERE collection = $1", s.collection)
	if err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// FormatVector renders v in pgvector text form: "[0.1,0.2,0.3]".
func FormatVector(v []float32) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(float64(x), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ParseVector reads pgvector text form back into a slice.
func ParseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("parse vector component %d: %w", i, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}
