package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/helixml/mt2mw/domain/store"
)

// ErrNotFound indicates the requested row was not found.
var ErrNotFound = errors.New("row not found")

// EntityMapper converts between a domain value and its table row.
type EntityMapper[D any, E any] interface {
	ToDomain(entity E) D
	ToModel(domain D) E
}

// Repository reads and writes rows of model E in one table, exposing them as
// domain values D.
type Repository[D any, E any] struct {
	db     Database
	mapper EntityMapper[D, E]
	label  string
	table  string
}

// NewRepository creates a Repository. An empty table uses the table name of
// E. Target wikis may prefix their tables, so the name is set per session
// rather than through a TableName method.
func NewRepository[D any, E any](db Database, mapper EntityMapper[D, E], label, table string) Repository[D, E] {
	return Repository[D, E]{
		db:     db,
		mapper: mapper,
		label:  label,
		table:  table,
	}
}

// Table returns the configured table name, or "" for the model's default.
func (r Repository[D, E]) Table() string {
	return r.table
}

// scoped returns a fresh session on the repository's table. The trailing
// Session call makes the result safe to chain from more than once.
func (r Repository[D, E]) scoped(db *gorm.DB) *gorm.DB {
	db = db.Model(new(E))
	if r.table != "" {
		db = db.Table(r.table)
	}
	return db.Session(&gorm.Session{})
}

// Find returns every row matching options.
func (r Repository[D, E]) Find(ctx context.Context, options ...store.Option) ([]D, error) {
	var rows []E
	if err := ApplyOptions(r.scoped(r.db.Session(ctx)), options...).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find %s: %w", r.label, err)
	}
	result := make([]D, len(rows))
	for i, row := range rows {
		result[i] = r.mapper.ToDomain(row)
	}
	return result, nil
}

// FindOne returns the first row matching options, or ErrNotFound.
func (r Repository[D, E]) FindOne(ctx context.Context, options ...store.Option) (D, error) {
	var (
		row  E
		zero D
	)
	err := ApplyOptions(r.scoped(r.db.Session(ctx)), options...).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zero, fmt.Errorf("%s: %w", r.label, ErrNotFound)
	}
	if err != nil {
		return zero, fmt.Errorf("find one %s: %w", r.label, err)
	}
	return r.mapper.ToDomain(row), nil
}

// Count returns the number of rows matching the conditions in options.
// Limits and ordering are ignored.
func (r Repository[D, E]) Count(ctx context.Context, options ...store.Option) (int64, error) {
	var n int64
	if err := ApplyConditions(r.scoped(r.db.Session(ctx)), options...).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", r.label, err)
	}
	return n, nil
}

// Exists reports whether any row matches the conditions in options.
func (r Repository[D, E]) Exists(ctx context.Context, options ...store.Option) (bool, error) {
	n, err := r.Count(ctx, options...)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Insert stores one row in its own transaction.
func (r Repository[D, E]) Insert(ctx context.Context, domain D) error {
	return WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		return r.InsertIn(tx, domain)
	})
}

// InsertIn stores one row using tx.
func (r Repository[D, E]) InsertIn(tx *gorm.DB, domain D) error {
	row := r.mapper.ToModel(domain)
	if r.table != "" {
		tx = tx.Table(r.table)
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("insert %s: %w", r.label, err)
	}
	return nil
}
