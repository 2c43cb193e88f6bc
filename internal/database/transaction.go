package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// WithTransaction runs fn inside one transaction on db. The transaction
// commits when fn returns nil and rolls back on an error or a panic, so each
// call stands alone: a failure never undoes an earlier committed call.
func WithTransaction(ctx context.Context, db Database, fn func(tx *gorm.DB) error) error {
	err := db.Session(ctx).Transaction(fn)
	if err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	return nil
}
