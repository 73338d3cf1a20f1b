package repository

import (
	"context"

	"github.com/amoylab/shopinspector/internal/apiserver/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssetInspectionRepository struct {
	db *gorm.DB
}

// Create inserts the inspection row only; answers and photos are written with CreateItems and the photo repository
func (r *AssetInspectionRepository) Create(ctx context.Context, insp *database.AssetInspection) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(insp).Error
}

// CreateItems inserts the answered checklist rows of an inspection
func (r *AssetInspectionRepository) CreateItems(ctx context.Context, items []database.AssetInspectionCheckList) error {
	if len(items) == 0 {
		return nil
	}
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(&items).Error
}

// SetAttachment stores the primary photo path of the inspection
func (r *AssetInspectionRepository) SetAttachment(ctx context.Context, id int, path string) error {
	res := database.Conn(ctx, r.db).Model(&database.AssetInspection{}).Where("id = ?", id).Update("attachment", path)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetDetails loads the inspection with its asset, employee, frequency, answers and photos.
// Answers keep insertion order and photos follow their display order.
func (r *AssetInspectionRepository) GetDetails(ctx context.Context, id int) (*database.AssetInspection, error) {
	var out database.AssetInspection
	err := database.Conn(ctx, r.db).
		Preload("Asset.AssetType").
		Preload("Employee.Company").
		Preload("InspectionFrequency").
		Preload("CheckListItems", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("CheckListItems.AssetCheckList.InspectionCheckList").
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("display_order").Order("id") }).
		First(&out, id).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByAsset pages the inspections of an asset, newest first
func (r *AssetInspectionRepository) ListByAsset(ctx context.Context, assetID int, pageIndex, pageSize *int) (*database.Page[database.AssetInspection], error) {
	q := database.Conn(ctx, r.db).Model(&database.AssetInspection{}).Where("asset_id = ?", assetID)
	return database.Paginate[database.AssetInspection](ctx, q, pageIndex, pageSize,
		database.OrderBy("inspection_date DESC", "id DESC"), database.Preload("Employee", "InspectionFrequency"))
}

// LastByAsset returns the most recent inspection of an asset, or gorm.ErrRecordNotFound when there is none
func (r *AssetInspectionRepository) LastByAsset(ctx context.Context, assetID int) (*database.AssetInspection, error) {
	var out database.AssetInspection
	err := database.Conn(ctx, r.db).
		Preload("Employee").
		Preload("InspectionFrequency").
		Where("asset_id = ?", assetID).
		Order("inspection_date DESC").Order("id DESC").
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}
