// Package refdata implements the uniform CRUD contract shared by the five
// reference-data tables (bid lists, curve points, ratings, rule names,
// trades). One generic Postgres repository is instantiated per table from a
// small descriptor; the tables differ only in columns.
package refdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/poseidon/internal/common"
	"github.com/dmitrijs2005/poseidon/internal/dbx"
)

// RowScanner is the subset of *sql.Row / *sql.Rows used when reading a row.
type RowScanner interface {
	Scan(dest ...any) error
}

// Table describes how entity T maps onto its SQL table. Columns excludes the
// id primary key.
type Table[T any] struct {
	Name    string
	Columns []string
	// Scan reads one full row (id first, then Columns) into a new entity.
	Scan func(s RowScanner) (*T, error)
	// Args returns the values of Columns, in order, for INSERT/UPDATE.
	Args func(e *T) []any
	// ID returns the entity's primary key.
	ID func(e *T) int64
	// SetID assigns the server-generated primary key after insert.
	SetID func(e *T, id int64)
}

// Repository is a PostgreSQL-backed CRUD store for one reference-data table,
// bound to dbx.DBTX (satisfied by *sql.DB or *sql.Tx).
type Repository[T any] struct {
	db    dbx.DBTX
	table Table[T]
}

// NewRepository constructs a repository for the described table.
func NewRepository[T any](db dbx.DBTX, table Table[T]) *Repository[T] {
	return &Repository[T]{db: db, table: table}
}

func (r *Repository[T]) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

// Create inserts the entity and fills in its server-assigned id.
func (r *Repository[T]) Create(ctx context.Context, e *T) (*T, error) {
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		r.table.Name,
		strings.Join(r.table.Columns, ", "),
		r.placeholders(len(r.table.Columns)),
	)
	var id int64
	if err := r.db.QueryRowContext(ctx, query, r.table.Args(e)...).Scan(&id); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	r.table.SetID(e, id)
	return e, nil
}

// FindAll returns every row ordered by id.
func (r *Repository[T]) FindAll(ctx context.Context) ([]*T, error) {
	query := fmt.Sprintf(
		"SELECT id, %s FROM %s ORDER BY id",
		strings.Join(r.table.Columns, ", "),
		r.table.Name,
	)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*T
	for rows.Next() {
		e, err := r.table.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// FindByID returns the row with the given id or common.ErrNotFound.
func (r *Repository[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	query := fmt.Sprintf(
		"SELECT id, %s FROM %s WHERE id = $1",
		strings.Join(r.table.Columns, ", "),
		r.table.Name,
	)
	e, err := r.table.Scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// Update rewrites all columns of the entity's row.
func (r *Repository[T]) Update(ctx context.Context, e *T) (*T, error) {
	sets := make([]string, len(r.table.Columns))
	for i, col := range r.table.Columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+2)
	}
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $1",
		r.table.Name,
		strings.Join(sets, ", "),
	)
	args := append([]any{r.table.ID(e)}, r.table.Args(e)...)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return nil, common.ErrNotFound
	}
	return e, nil
}

// Delete removes the row with the given id, or common.ErrNotFound if absent.
func (r *Repository[T]) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.table.Name)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
