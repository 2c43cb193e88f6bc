package persistence

import (
	"context"
	"fmt"

	"github.com/helixml/mt2mw/domain/media"
	"github.com/helixml/mt2mw/internal/database"
)

// ImageStore reads and writes the target wiki's file table.
type ImageStore struct {
	database.Repository[media.Record, ImageModel]
}

// NewImageStore creates an ImageStore over the given table. An empty table
// name selects DefaultImageTable.
func NewImageStore(db database.Database, table string) ImageStore {
	if table == "" {
		table = DefaultImageTable
	}
	return ImageStore{
		Repository: database.NewRepository[media.Record, ImageModel](db, ImageMapper{}, "image", table),
	}
}

// Exists reports whether a record with exactly this name is stored.
func (s ImageStore) Exists(ctx context.Context, name string) (bool, error) {
	return s.Repository.Exists(ctx, media.WithName(name))
}

// Get returns the record stored under name.
func (s ImageStore) Get(ctx context.Context, name string) (media.Record, error) {
	return s.FindOne(ctx, media.WithName(name))
}

// Insert stores one record in its own transaction, so an earlier insert is
// never rolled back by a later failure.
func (s ImageStore) Insert(ctx context.Context, record media.Record) error {
	if err := s.Repository.Insert(ctx, record); err != nil {
		return fmt.Errorf("insert %s: %w", record.Name(), err)
	}
	return nil
}

// AutoMigrate creates the file table when it does not exist. Real target
// wikis own their schema; this is for sqlite targets and tests.
func AutoMigrate(ctx context.Context, db database.Database, table string) error {
	if table == "" {
		table = DefaultImageTable
	}
	if err := db.Session(ctx).Table(table).AutoMigrate(&ImageModel{}); err != nil {
		return fmt.Errorf("auto migrate %s: %w", table, err)
	}
	return nil
}
