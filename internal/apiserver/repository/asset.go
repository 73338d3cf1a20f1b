package repository

import (
	"context"

	"github.com/amoylab/shopinspector/internal/apiserver/database"

	"gorm.io/gorm"
)

type AssetRepository struct {
	db *gorm.DB
}

// List pages assets with their type. Without a search term rows are ordered by id;
// with one they match name, code or location and are ordered by name.
func (r *AssetRepository) List(ctx context.Context, pageIndex, pageSize *int, search string) (*database.Page[database.Asset], error) {
	q := database.Conn(ctx, r.db).Model(&database.Asset{})
	order := database.OrderBy("id")
	if p := likePattern(search); p != "" {
		q = q.Where("LOWER(asset_name) LIKE ? OR LOWER(asset_code) LIKE ? OR LOWER(asset_location) LIKE ?", p, p, p)
		order = database.OrderBy("asset_name", "id")
	}
	return database.Paginate[database.Asset](ctx, q, pageIndex, pageSize, order, database.Preload("AssetType"))
}

func (r *AssetRepository) GetByID(ctx context.Context, id int) (*database.Asset, error) {
	return getByID[database.Asset](ctx, r.db, id, "AssetType")
}

func (r *AssetRepository) Create(ctx context.Context, a *database.Asset) error {
	return database.Conn(ctx, r.db).Omit("AssetType").Create(a).Error
}

func (r *AssetRepository) Update(ctx context.Context, a *database.Asset) error {
	a.AssetType = nil
	return updateRow(ctx, r.db, a.ID, a)
}

// ExistsByCode reports whether another asset already carries code (case-insensitive)
func (r *AssetRepository) ExistsByCode(ctx context.Context, code string, excludeID int) (bool, error) {
	return exists(database.Conn(ctx, r.db), &database.Asset{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("LOWER(TRIM(asset_code)) = ? AND id <> ?", normalizeName(code), excludeID)
	})
}

// Exists reports whether the asset row is present
func (r *AssetRepository) Exists(ctx context.Context, id int) (bool, error) {
	return exists(database.Conn(ctx, r.db), &database.Asset{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("id = ?", id)
	})
}

// Delete always cascades: photos, checklist rows, inspections, checklist bindings, then the asset.
// A missing asset yields gorm.ErrRecordNotFound and one removed mid-flight yields ErrVanished.
func (r *AssetRepository) Delete(ctx context.Context, id int) error {
	return database.WithTransaction(ctx, r.db, func(ctx context.Context) error {
		tx := database.Conn(ctx, r.db)
		if err := requireRow(tx, &database.Asset{}, id); err != nil {
			return err
		}

		ids, err := inspectionIDs(tx, "asset_id = ?", id)
		if err != nil {
			return err
		}
		return runSteps(tx,
			deletePhotosIn(ids),
			deleteIn("delete inspection checklist rows", &database.AssetInspectionCheckList{}, "asset_inspection_id", ids),
			deleteIn("delete inspections", &database.AssetInspection{}, "id", ids),
			deleteWhere("delete checklist bindings", &database.AssetCheckList{}, "asset_id = ?", id),
			deleteRoot("delete asset", &database.Asset{}, id),
		)
	})
}
