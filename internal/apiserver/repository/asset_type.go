package repository

import (
	"context"

	"github.com/amoylab/shopinspector/internal/apiserver/database"

	"gorm.io/gorm"
)

type AssetTypeRepository struct {
	db *gorm.DB
}

func (r *AssetTypeRepository) List(ctx context.Context, pageIndex, pageSize *int, search string) (*database.Page[database.AssetType], error) {
	q := database.Conn(ctx, r.db).Model(&database.AssetType{})
	if p := likePattern(search); p != "" {
		q = q.Where("LOWER(asset_type_name) LIKE ?", p)
	}
	return database.Paginate[database.AssetType](ctx, q, pageIndex, pageSize, database.OrderBy("asset_type_name", "id"))
}

func (r *AssetTypeRepository) GetByID(ctx context.Context, id int) (*database.AssetType, error) {
	return getByID[database.AssetType](ctx, r.db, id)
}

func (r *AssetTypeRepository) Create(ctx context.Context, t *database.AssetType) error {
	return database.Conn(ctx, r.db).Create(t).Error
}

func (r *AssetTypeRepository) Update(ctx context.Context, t *database.AssetType) error {
	return updateRow(ctx, r.db, t.ID, t)
}

// Delete removes the type; the database cascades to assets that nothing else references
func (r *AssetTypeRepository) Delete(ctx context.Context, id int) error {
	return deleteByID[database.AssetType](ctx, r.db, id)
}

func (r *AssetTypeRepository) ExistsByName(ctx context.Context, name string, excludeID int) (bool, error) {
	return exists(database.Conn(ctx, r.db), &database.AssetType{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("LOWER(TRIM(asset_type_name)) = ? AND id <> ?", normalizeName(name), excludeID)
	})
}

// CountAssets returns how many assets use the type
func (r *AssetTypeRepository) CountAssets(ctx context.Context, id int) (int, error) {
	return countOf(database.Conn(ctx, r.db), &database.Asset{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("asset_type_id = ?", id)
	})
}
