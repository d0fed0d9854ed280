// Package repository provides a generic CRUD/query engine over a single
// PostgreSQL table. Entity repositories compose it for the common operations
// and keep their joined read models and aggregations in plain SQL.
//
// Every operation returns its failure as an error value; nothing panics
// across this boundary. No retries and no timeouts are added here —
// cancellation rides on the caller's context.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a single-row fetch matches no rows.
var ErrNotFound = errors.New("record not found")

// DB is the querying capability the repository needs. Both *pgxpool.Pool
// and pgx.Tx satisfy it, so repositories run unchanged inside transactions.
type DB interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Base is a generic repository over one table. T is the row struct; its
// fields map to columns through `db` tags. Construct one per entity and
// inject it; there are no package-level instances.
type Base[T any] struct {
	db       DB
	table    string
	idColumn string
	// defaultCols is the projection used when Options.Select is empty and
	// re-selected by RETURNING so generated columns come back populated.
	defaultCols []string
}

// New creates a repository for table with the given default projection.
// The primary key column is assumed to be "id"; see WithIDColumn.
func New[T any](db DB, table string, defaultCols ...string) *Base[T] {
	return &Base[T]{db: db, table: table, idColumn: "id", defaultCols: defaultCols}
}

// WithIDColumn overrides the primary key column used by FindByID, Update,
// Delete and Exists.
func (b *Base[T]) WithIDColumn(column string) *Base[T] {
	b.idColumn = column
	return b
}

// Table returns the table name the repository is bound to.
func (b *Base[T]) Table() string { return b.table }

// DB exposes the underlying querying handle for entity-specific SQL.
func (b *Base[T]) DB() DB { return b.db }

// Columns returns the default projection.
func (b *Base[T]) Columns() []string { return b.defaultCols }

func (b *Base[T]) projection(selected []string) []string {
	if len(selected) > 0 {
		return selected
	}
	return b.defaultCols
}

func collect[T any](rows pgx.Rows) ([]T, error) {
	// Lax matching so narrow projections scan into the full row struct.
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
}

// FindByID fetches a single row by primary key. Returns ErrNotFound when
// the id matches nothing.
func (b *Base[T]) FindByID(ctx context.Context, id interface{}, selectCols ...string) (T, error) {
	var zero T
	opts := Options{
		Select:  selectCols,
		Filters: []Filter{Eq(b.idColumn, id)},
		Limit:   1,
	}
	items, _, err := b.FindAll(ctx, opts)
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, fmt.Errorf("%s %v: %w", b.table, id, ErrNotFound)
	}
	return items[0], nil
}

// FindBy lists rows matching one equality predicate, honoring any further
// options supplied.
func (b *Base[T]) FindBy(ctx context.Context, column string, value interface{}, opts Options) ([]T, int64, error) {
	opts.Filters = append([]Filter{Eq(column, value)}, opts.Filters...)
	return b.FindAll(ctx, opts)
}

// FindAll lists rows per the options. The returned total is the exact
// matching-row count when opts.WithCount is set, otherwise the number of
// rows returned.
func (b *Base[T]) FindAll(ctx context.Context, opts Options) ([]T, int64, error) {
	query, args, err := buildSelect(b.table, b.projection(opts.Select), opts)
	if err != nil {
		return nil, 0, fmt.Errorf("build query for %s: %w", b.table, err)
	}

	var total int64 = -1
	if opts.WithCount {
		total, err = b.Count(ctx, opts.Filters...)
		if err != nil {
			return nil, 0, err
		}
	}

	rows, err := b.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query %s: %w", b.table, err)
	}
	items, err := collect[T](rows)
	if err != nil {
		return nil, 0, fmt.Errorf("scan %s: %w", b.table, err)
	}

	if total < 0 {
		total = int64(len(items))
	}
	return items, total, nil
}

// First returns the first row matching the options, or ErrNotFound.
func (b *Base[T]) First(ctx context.Context, opts Options) (T, error) {
	var zero T
	opts.Limit = 1
	opts.WithCount = false
	items, _, err := b.FindAll(ctx, opts)
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, fmt.Errorf("%s: %w", b.table, ErrNotFound)
	}
	return items[0], nil
}

// FindPaginated lists one page of rows. Pages are 1-indexed; page and
// pageSize are clamped to sane values. TotalPages is ceil(count/pageSize).
func (b *Base[T]) FindPaginated(ctx context.Context, page, pageSize int, opts Options) (Page[T], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	opts.Limit = pageSize
	opts.Offset = (page - 1) * pageSize
	opts.WithCount = true

	items, total, err := b.FindAll(ctx, opts)
	if err != nil {
		return Page[T]{}, err
	}

	return Page[T]{
		Data:       items,
		Count:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// Create inserts a row and returns it with generated columns populated.
func (b *Base[T]) Create(ctx context.Context, values Values) (T, error) {
	var zero T
	query, args, err := buildInsert(b.table, values, b.defaultCols)
	if err != nil {
		return zero, fmt.Errorf("build insert for %s: %w", b.table, err)
	}
	return b.queryOne(ctx, query, args)
}

// CreateMany inserts several rows in one statement and returns them.
// All rows must carry the same columns.
func (b *Base[T]) CreateMany(ctx context.Context, items []Values) ([]T, error) {
	if len(items) == 0 {
		return nil, nil
	}
	query, args, err := buildInsertMany(b.table, items, b.defaultCols)
	if err != nil {
		return nil, fmt.Errorf("build insert for %s: %w", b.table, err)
	}
	rows, err := b.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", b.table, err)
	}
	created, err := collect[T](rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", b.table, err)
	}
	return created, nil
}

// Update partially updates the row with the given primary key and returns
// the updated row. Returns ErrNotFound when the id matches nothing.
func (b *Base[T]) Update(ctx context.Context, id interface{}, values Values) (T, error) {
	var zero T
	query, args, err := buildUpdate(b.table, values, b.idColumn, id, b.defaultCols)
	if err != nil {
		return zero, fmt.Errorf("build update for %s: %w", b.table, err)
	}
	return b.queryOne(ctx, query, args)
}

// UpdateWhere partially updates every row matching one equality predicate
// and returns the updated rows.
func (b *Base[T]) UpdateWhere(ctx context.Context, column string, value interface{}, values Values) ([]T, error) {
	query, args, err := buildUpdate(b.table, values, column, value, b.defaultCols)
	if err != nil {
		return nil, fmt.Errorf("build update for %s: %w", b.table, err)
	}
	rows, err := b.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", b.table, err)
	}
	updated, err := collect[T](rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", b.table, err)
	}
	return updated, nil
}

// Upsert inserts the row or, on a conflict over conflictColumn, updates
// updateColumns from the incoming row. With no updateColumns given, every
// non-conflict column is updated. Returns the resulting row.
func (b *Base[T]) Upsert(ctx context.Context, values Values, conflictColumn string, updateColumns ...string) (T, error) {
	var zero T
	query, args, err := buildUpsert(b.table, values, conflictColumn, updateColumns, b.defaultCols)
	if err != nil {
		return zero, fmt.Errorf("build upsert for %s: %w", b.table, err)
	}
	return b.queryOne(ctx, query, args)
}

// Delete hard-deletes the row with the given primary key. Reports whether
// a row was actually removed.
func (b *Base[T]) Delete(ctx context.Context, id interface{}) (bool, error) {
	query, err := buildDelete(b.table, b.idColumn)
	if err != nil {
		return false, fmt.Errorf("build delete for %s: %w", b.table, err)
	}
	tag, err := b.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", b.table, err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteWhere hard-deletes every row matching one equality predicate and
// returns the number removed.
func (b *Base[T]) DeleteWhere(ctx context.Context, column string, value interface{}) (int64, error) {
	query, err := buildDelete(b.table, column)
	if err != nil {
		return 0, fmt.Errorf("build delete for %s: %w", b.table, err)
	}
	tag, err := b.db.Exec(ctx, query, value)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", b.table, err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of rows matching the filters. No row payload is
// fetched.
func (b *Base[T]) Count(ctx context.Context, filters ...Filter) (int64, error) {
	query, args, err := buildCount(b.table, filters)
	if err != nil {
		return 0, fmt.Errorf("build count for %s: %w", b.table, err)
	}
	var total int64
	if err := b.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", b.table, err)
	}
	return total, nil
}

// Exists reports whether a row with the given primary key exists.
func (b *Base[T]) Exists(ctx context.Context, id interface{}) (bool, error) {
	total, err := b.Count(ctx, Eq(b.idColumn, id))
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

func (b *Base[T]) queryOne(ctx context.Context, query string, args []interface{}) (T, error) {
	var zero T
	rows, err := b.db.Query(ctx, query, args...)
	if err != nil {
		return zero, fmt.Errorf("query %s: %w", b.table, err)
	}
	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, fmt.Errorf("%s: %w", b.table, ErrNotFound)
		}
		return zero, fmt.Errorf("scan %s: %w", b.table, err)
	}
	return item, nil
}
