// Package storage implements the content API's document repository over
// PostgreSQL. Every collection shares one table: documents are stored as
// JSONB with identity and timestamps in dedicated columns, mirroring the
// document model of the client-side store.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avetrovs/vitrine/internal/dbx"
	"github.com/avetrovs/vitrine/internal/server/migrations"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Repository provides collection-scoped CRUD over the documents table.
type Repository struct {
	db  dbx.DBTX
	sql *sql.DB
}

// NewRepository returns a Repository bound to the given database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, sql: db}
}

// withTx returns a Repository whose operations run on tx.
func (r *Repository) withTx(tx dbx.DBTX) *Repository {
	return &Repository{db: tx, sql: r.sql}
}

// Open connects to PostgreSQL and runs the embedded migrations.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return db, nil
}

// document assembles the API representation: stored fields plus identity and
// timestamps.
func document(id string, data []byte, createdAt, updatedAt time.Time) (map[string]any, error) {
	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document %q: %w", id, err)
	}
	doc["id"] = id
	doc["createdAt"] = createdAt.UTC().Format(time.RFC3339Nano)
	doc["updatedAt"] = updatedAt.UTC().Format(time.RFC3339Nano)
	return doc, nil
}

// stripMeta removes identity and timestamp fields before persisting; they
// live in their own columns.
func stripMeta(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == "id" || k == "createdAt" || k == "updatedAt" {
			continue
		}
		out[k] = v
	}
	return out
}

// List returns every document of a collection in insertion order.
func (r *Repository) List(ctx context.Context, collection string) ([]map[string]any, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, data, created_at, updated_at FROM documents
		 WHERE collection = $1 ORDER BY created_at, id`, collection)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []map[string]any{}
	for rows.Next() {
		var (
			id            string
			data          []byte
			created, updt time.Time
		)
		if err := rows.Scan(&id, &data, &created, &updt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		doc, err := document(id, data, created, updt)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// GetByID returns one document; absence is reported through the boolean.
func (r *Repository) GetByID(ctx context.Context, collection, id string) (map[string]any, bool, error) {
	var (
		data          []byte
		created, updt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT data, created_at, updated_at FROM documents
		 WHERE collection = $1 AND id = $2`, collection, id).Scan(&data, &created, &updt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("db error: %w", err)
	}
	doc, err := document(id, data, created, updt)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// FindByField returns the first document whose stored field equals value.
func (r *Repository) FindByField(ctx context.Context, collection, field, value string) (map[string]any, bool, error) {
	var (
		id            string
		data          []byte
		created, updt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, data, created_at, updated_at FROM documents
		 WHERE collection = $1 AND data->>$2 = $3
		 ORDER BY created_at, id LIMIT 1`, collection, field, value).
		Scan(&id, &data, &created, &updt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("db error: %w", err)
	}
	doc, err := document(id, data, created, updt)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// Create stores a new document under the given id and returns the stored
// representation.
func (r *Repository) Create(ctx context.Context, collection, id string, fields map[string]any) (map[string]any, error) {
	blob, err := json.Marshal(stripMeta(fields))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	var created, updt time.Time
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO documents (collection, id, data)
		 VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`, collection, id, blob).Scan(&created, &updt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return document(id, blob, created, updt)
}

// CreateUnique inserts a document unless one with the same field value
// already exists in the collection. Lookup and insert run in a single
// transaction, so concurrent calls for the same value cannot both create;
// the partial unique index on users.email backs this at the database level.
// When a document already exists it is returned with created=false.
func (r *Repository) CreateUnique(ctx context.Context, collection, id, field, value string, fields map[string]any) (map[string]any, bool, error) {
	var (
		doc     map[string]any
		created bool
	)
	err := dbx.WithTx(ctx, r.sql, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := r.withTx(tx)

		existing, ok, err := repo.FindByField(ctx, collection, field, value)
		if err != nil {
			return err
		}
		if ok {
			doc = existing
			return nil
		}

		doc, err = repo.Create(ctx, collection, id, fields)
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return doc, created, nil
}

// Update merges fields into an existing document's data and refreshes
// updated_at. Absence is reported through the boolean.
func (r *Repository) Update(ctx context.Context, collection, id string, fields map[string]any) (map[string]any, bool, error) {
	blob, err := json.Marshal(stripMeta(fields))
	if err != nil {
		return nil, false, fmt.Errorf("encode document: %w", err)
	}

	var (
		data          []byte
		created, updt time.Time
	)
	err = r.db.QueryRowContext(ctx,
		`UPDATE documents SET data = data || $3, updated_at = now()
		 WHERE collection = $1 AND id = $2
		 RETURNING data, created_at, updated_at`, collection, id, blob).
		Scan(&data, &created, &updt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("db error: %w", err)
	}
	doc, err := document(id, data, created, updt)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// Delete removes a document and reports whether a removal occurred.
func (r *Repository) Delete(ctx context.Context, collection, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
