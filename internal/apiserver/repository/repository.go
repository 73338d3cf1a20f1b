package repository

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/amoylab/shopinspector/internal/apiserver/database"

	"gorm.io/gorm"
)

// ErrVanished is returned when a row checked at the start of a delete is gone by the time
// the delete itself runs, i.e. a concurrent request removed it first.
var ErrVanished = errors.New("record was removed by another request")

// IsNotFound reports whether err means the requested row does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Repositories groups every entity repository over one database handle
type Repositories struct {
	Companies       *CompanyRepository
	Employees       *EmployeeRepository
	AssetTypes      *AssetTypeRepository
	Assets          *AssetRepository
	CheckLists      *InspectionCheckListRepository
	Frequencies     *InspectionFrequencyRepository
	AssetCheckLists *AssetCheckListRepository
	Inspections     *AssetInspectionRepository
	Photos          *InspectionPhotoRepository
	db              *gorm.DB
}

// New creates all repositories
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Companies:       &CompanyRepository{db: db},
		Employees:       &EmployeeRepository{db: db},
		AssetTypes:      &AssetTypeRepository{db: db},
		Assets:          &AssetRepository{db: db},
		CheckLists:      &InspectionCheckListRepository{db: db},
		Frequencies:     &InspectionFrequencyRepository{db: db},
		AssetCheckLists: &AssetCheckListRepository{db: db},
		Inspections:     &AssetInspectionRepository{db: db},
		Photos:          &InspectionPhotoRepository{db: db},
		db:              db,
	}
}

// Transaction runs fn in one transaction; repositories called with the ctx passed to fn join it
func (r *Repositories) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.WithTransaction(ctx, r.db, fn)
}

// likePattern returns a case-insensitive LIKE pattern, or "" when term is blank
func likePattern(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return ""
	}
	return "%" + term + "%"
}

// normalizeName is the comparison form used by the uniqueness checks
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// distinctSorted replaces blank names with fallback, then sorts and de-duplicates
func distinctSorted(names []string, fallback string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			n = fallback
		}
		out = append(out, n)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// boundaryInspectionDate returns the earliest (latest when desc) inspection_date of q, or nil when q is empty.
// q must be scoped to the asset_inspections table.
func boundaryInspectionDate(q *gorm.DB, desc bool) (*time.Time, error) {
	order := "inspection_date"
	if desc {
		order += " DESC"
	}
	var dates []time.Time
	if err := q.Order(order).Limit(1).Pluck("inspection_date", &dates).Error; err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, nil
	}
	d := dates[0]
	return &d, nil
}

// exists reports whether any row of model matches the query built by scope
func exists(conn *gorm.DB, model any, scope func(*gorm.DB) *gorm.DB) (bool, error) {
	var count int64
	if err := scope(conn.Model(model)).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// noDependents turns a dependent-row probe into a CanDelete answer; a failed probe never allows deletion
func noDependents(found bool, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	return !found, nil
}

// countOf counts rows of model matching scope
func countOf(conn *gorm.DB, model any, scope func(*gorm.DB) *gorm.DB) (int, error) {
	var count int64
	if err := scope(conn.Model(model)).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// getByID loads one row with optional preloads; a missing row yields gorm.ErrRecordNotFound
func getByID[T any](ctx context.Context, db *gorm.DB, id int, preloads ...string) (*T, error) {
	var out T
	if err := database.Conn(ctx, db).Scopes(database.Preload(preloads...)).First(&out, id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// deleteByID removes one row; a missing row yields gorm.ErrRecordNotFound
func deleteByID[T any](ctx context.Context, db *gorm.DB, id int) error {
	res := database.Conn(ctx, db).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// updateRow saves every column of a row that must already exist
func updateRow[T any](ctx context.Context, db *gorm.DB, id int, row *T) error {
	conn := database.Conn(ctx, db)
	found, err := exists(conn, new(T), func(q *gorm.DB) *gorm.DB { return q.Where("id = ?", id) })
	if err != nil {
		return err
	}
	if !found {
		return gorm.ErrRecordNotFound
	}
	return conn.Save(row).Error
}
