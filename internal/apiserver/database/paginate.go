package database

import (
	"context"

	"gorm.io/gorm"
)

// Page is one materialised page of an ordered query
type Page[T any] struct {
	Items       []T   `json:"items"`
	TotalCount  int64 `json:"totalCount"`
	PageIndex   int   `json:"pageIndex"`
	PageSize    int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
	HasPrevious bool  `json:"hasPrevious"`
	HasNext     bool  `json:"hasNext"`
}

// NewPage builds a page and derives the navigation fields
func NewPage[T any](items []T, totalCount int64, pageIndex, pageSize int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	}
	return &Page[T]{
		Items:       items,
		TotalCount:  totalCount,
		PageIndex:   pageIndex,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		HasPrevious: pageIndex > 1,
		HasNext:     pageIndex < totalPages,
	}
}

// Paginate materialises one page of query.
//
// query carries the model and filters only; ordering and preloads go in scopes so
// the COUNT runs over the bare filtered set. When pageIndex or pageSize is nil every
// row is returned as a single page whose size equals the row count. Otherwise both
// are clamped to a minimum of 1 and pageIndex is 1-based.
func Paginate[T any](ctx context.Context, query *gorm.DB, pageIndex, pageSize *int, scopes ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	base := query.WithContext(ctx).Session(&gorm.Session{})

	var items []T
	if pageIndex == nil || pageSize == nil {
		if err := base.Scopes(scopes...).Find(&items).Error; err != nil {
			return nil, err
		}
		return NewPage(items, int64(len(items)), 1, len(items)), nil
	}

	index, size := max(*pageIndex, 1), max(*pageSize, 1)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}
	if err := base.Scopes(scopes...).Offset((index - 1) * size).Limit(size).Find(&items).Error; err != nil {
		return nil, err
	}
	return NewPage(items, total, index, size), nil
}

// OrderBy returns a scope ordering by the given SQL expressions
func OrderBy(columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range columns {
			db = db.Order(c)
		}
		return db
	}
}

// Preload returns a scope preloading the given associations
func Preload(associations ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, a := range associations {
			db = db.Preload(a)
		}
		return db
	}
}
