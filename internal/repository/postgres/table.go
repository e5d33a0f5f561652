package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository"
)

// tableNamePattern restricts table names to plain identifiers. Names
// come from configuration and are interpolated into SQL text.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Table is a single-key-per-item document table backed by a jsonb
// column. All entity repositories are thin typed wrappers over this.
type Table struct {
	db   *DB
	name string
}

// NewTable creates (if needed) and returns the named document table.
func NewTable(ctx context.Context, db *DB, name string) (*Table, error) {
	if !tableNamePattern.MatchString(name) {
		return nil, fmt.Errorf("invalid table name %q", name)
	}

	ddl := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, doc JSONB NOT NULL)`,
		name,
	)
	if _, err := db.Pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", name, err)
	}

	return &Table{db: db, name: name}, nil
}

// Get retrieves the raw document for a key.
func (t *Table) Get(ctx context.Context, id string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, t.name)

	var doc []byte
	err := t.db.Pool.QueryRow(ctx, query, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from %s: %w", t.name, err)
	}
	return doc, nil
}

// Put stores a document under a key, replacing any existing document.
func (t *Table) Put(ctx context.Context, id string, doc []byte) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (id, doc) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`,
		t.name,
	)
	if _, err := t.db.Pool.Exec(ctx, query, id, doc); err != nil {
		return fmt.Errorf("failed to put into %s: %w", t.name, err)
	}
	return nil
}

// Update merges the changes into the stored document in a single atomic
// statement and returns the merged document.
func (t *Table) Update(ctx context.Context, id string, changes repository.Changes) ([]byte, error) {
	patch, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode changes: %w", err)
	}

	query := fmt.Sprintf(
		`UPDATE %s SET doc = doc || $1::jsonb WHERE id = $2 RETURNING doc`,
		t.name,
	)

	var doc []byte
	err = t.db.Pool.QueryRow(ctx, query, patch, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update %s: %w", t.name, err)
	}
	return doc, nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (t *Table) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.name)
	if _, err := t.db.Pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", t.name, err)
	}
	return nil
}

// Scan returns every document in the table, unordered.
func (t *Table) Scan(ctx context.Context) ([][]byte, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s`, t.name)

	rows, err := t.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", t.name, err)
	}
	defer rows.Close()

	return collectDocs(rows, t.name)
}

// ScanWhereField returns documents whose top-level field equals value.
func (t *Table) ScanWhereField(ctx context.Context, field, value string) ([][]byte, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE doc->>$1 = $2`, t.name)

	rows, err := t.db.Pool.Query(ctx, query, field, value)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s by %s: %w", t.name, field, err)
	}
	defer rows.Close()

	return collectDocs(rows, t.name)
}

// Exists reports whether a key is present.
func (t *Table) Exists(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, t.name)

	var exists bool
	if err := t.db.Pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", t.name, err)
	}
	return exists, nil
}

func collectDocs(rows pgx.Rows, table string) ([][]byte, error) {
	var docs [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", table, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return docs, nil
}
