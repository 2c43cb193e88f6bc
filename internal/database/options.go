package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/helixml/mt2mw/domain/store"
)

// ApplyOptions applies the query built from options to db: conditions,
// ordering, limit and offset.
func ApplyOptions(db *gorm.DB, options ...store.Option) *gorm.DB {
	q := store.Build(options...)
	return db.Scopes(whereScope(q), pageScope(q))
}

// ApplyConditions applies only the WHERE part of options, for COUNT queries.
func ApplyConditions(db *gorm.DB, options ...store.Option) *gorm.DB {
	return db.Scopes(whereScope(store.Build(options...)))
}

func whereScope(q store.Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, cond := range q.Conditions() {
			op := "="
			if cond.In() {
				op = "IN"
			}
			db = db.Where(fmt.Sprintf("%s %s ?", cond.Field(), op), cond.Value())
		}
		return db
	}
}

func pageScope(q store.Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, ord := range q.Orders() {
			dir := "DESC"
			if ord.Ascending() {
				dir = "ASC"
			}
			db = db.Order(ord.Field() + " " + dir)
		}
		if n := q.LimitValue(); n > 0 {
			db = db.Limit(n)
		}
		if n := q.OffsetValue(); n > 0 {
			db = db.Offset(n)
		}
		return db
	}
}
