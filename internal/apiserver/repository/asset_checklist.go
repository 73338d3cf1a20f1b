package repository

import (
	"context"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/common/cnst"

	"gorm.io/gorm"
)

type AssetCheckListRepository struct {
	db *gorm.DB
}

// List pages bindings with their asset and checklist item, ordered by asset then display order.
// The search term matches the asset name, asset code or checklist item name.
func (r *AssetCheckListRepository) List(ctx context.Context, pageIndex, pageSize *int, search string) (*database.Page[database.AssetCheckList], error) {
	conn := database.Conn(ctx, r.db)
	q := conn.Model(&database.AssetCheckList{})
	if p := likePattern(search); p != "" {
		assets := conn.Model(&database.Asset{}).Select("id").
			Where("LOWER(asset_name) LIKE ? OR LOWER(asset_code) LIKE ?", p, p)
		items := conn.Model(&database.InspectionCheckList{}).Select("id").
			Where("LOWER(inspection_check_list_name) LIKE ?", p)
		q = q.Where("asset_id IN (?) OR inspection_check_list_id IN (?)", assets, items)
	}
	return database.Paginate[database.AssetCheckList](ctx, q, pageIndex, pageSize,
		database.OrderBy("asset_id", "display_order", "id"), database.Preload("Asset", "InspectionCheckList"))
}

// ListActiveByAsset returns the active bindings of an asset in display order with their checklist item
func (r *AssetCheckListRepository) ListActiveByAsset(ctx context.Context, assetID int) ([]database.AssetCheckList, error) {
	var out []database.AssetCheckList
	err := database.Conn(ctx, r.db).Preload("InspectionCheckList").
		Where("asset_id = ? AND active = ?", assetID, true).
		Order("display_order").Order("id").
		Find(&out).Error
	return out, err
}

// ListByIDs returns the bindings with the given ids
func (r *AssetCheckListRepository) ListByIDs(ctx context.Context, ids []int) ([]database.AssetCheckList, error) {
	var out []database.AssetCheckList
	if len(ids) == 0 {
		return out, nil
	}
	err := database.Conn(ctx, r.db).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *AssetCheckListRepository) GetByID(ctx context.Context, id int) (*database.AssetCheckList, error) {
	return getByID[database.AssetCheckList](ctx, r.db, id, "Asset", "InspectionCheckList")
}

// GetByAssetAndChecklist returns the binding of the pair, or gorm.ErrRecordNotFound
func (r *AssetCheckListRepository) GetByAssetAndChecklist(ctx context.Context, assetID, checklistID int) (*database.AssetCheckList, error) {
	var out database.AssetCheckList
	err := database.Conn(ctx, r.db).
		Where("asset_id = ? AND inspection_check_list_id = ?", assetID, checklistID).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Exists reports whether the pair is already bound
func (r *AssetCheckListRepository) Exists(ctx context.Context, assetID, checklistID int) (bool, error) {
	return exists(database.Conn(ctx, r.db), &database.AssetCheckList{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("asset_id = ? AND inspection_check_list_id = ?", assetID, checklistID)
	})
}

func (r *AssetCheckListRepository) Create(ctx context.Context, b *database.AssetCheckList) error {
	return database.Conn(ctx, r.db).Omit("Asset", "InspectionCheckList").Create(b).Error
}

func (r *AssetCheckListRepository) Update(ctx context.Context, b *database.AssetCheckList) error {
	b.Asset, b.InspectionCheckList = nil, nil
	return updateRow(ctx, r.db, b.ID, b)
}

// Delete removes only the binding; callers check CanDelete first
func (r *AssetCheckListRepository) Delete(ctx context.Context, id int) error {
	return deleteByID[database.AssetCheckList](ctx, r.db, id)
}

// CountAssetsWithActiveChecklists returns how many distinct assets have at least one active binding
func (r *AssetCheckListRepository) CountAssetsWithActiveChecklists(ctx context.Context) (int, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&database.AssetCheckList{}).
		Where("active = ?", true).
		Distinct("asset_id").
		Count(&count).Error
	return int(count), err
}

// CountActiveAssignments returns how many bindings are active
func (r *AssetCheckListRepository) CountActiveAssignments(ctx context.Context) (int, error) {
	return countOf(database.Conn(ctx, r.db), &database.AssetCheckList{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("active = ?", true)
	})
}

// CanDelete is true when no inspection answered the binding
func (r *AssetCheckListRepository) CanDelete(ctx context.Context, id int) (bool, error) {
	found, err := exists(database.Conn(ctx, r.db), &database.AssetInspectionCheckList{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("asset_check_list_id = ?", id)
	})
	return noDependents(found, err)
}

// RelatedData describes the answers recorded against the binding
func (r *AssetCheckListRepository) RelatedData(ctx context.Context, id int) (*AssetCheckListRelatedData, error) {
	conn := database.Conn(ctx, r.db)
	out := &AssetCheckListRelatedData{AssetName: cnst.UnknownAsset, CheckListName: cnst.UnknownChecklist}

	binding, err := getByID[database.AssetCheckList](ctx, r.db, id, "Asset", "InspectionCheckList")
	if err != nil {
		return nil, err
	}
	if binding.Asset != nil && binding.Asset.AssetName != "" {
		out.AssetName = binding.Asset.AssetName
	}
	if binding.InspectionCheckList != nil && binding.InspectionCheckList.Name != "" {
		out.CheckListName = binding.InspectionCheckList.Name
	}

	answered := func() *gorm.DB {
		return conn.Model(&database.AssetInspectionCheckList{}).Select("asset_inspection_id").Where("asset_check_list_id = ?", id)
	}
	inspections := func() *gorm.DB {
		return conn.Model(&database.AssetInspection{}).Where("id IN (?)", answered())
	}

	if out.TotalInspectionRecords, err = countOf(conn, &database.AssetInspectionCheckList{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("asset_check_list_id = ?", id)
	}); err != nil {
		return nil, err
	}
	if out.FirstInspectionDate, err = boundaryInspectionDate(inspections(), false); err != nil {
		return nil, err
	}
	if out.LastInspectionDate, err = boundaryInspectionDate(inspections(), true); err != nil {
		return nil, err
	}

	var employees, frequencies []string
	if err := conn.Model(&database.Employee{}).
		Where("id IN (?)", inspections().Select("employee_id")).
		Pluck("employee_name", &employees).Error; err != nil {
		return nil, err
	}
	out.EmployeeNames = distinctSorted(employees, cnst.UnknownEmployee)

	if err := conn.Model(&database.InspectionFrequency{}).
		Where("id IN (?)", inspections().Select("inspection_frequency_id")).
		Pluck("frequency_name", &frequencies).Error; err != nil {
		return nil, err
	}
	out.InspectionFrequencies = distinctSorted(frequencies, cnst.UnknownFrequency)
	return out, nil
}

// ForceDelete removes the binding and every answer recorded against it, atomically
func (r *AssetCheckListRepository) ForceDelete(ctx context.Context, id int) error {
	return database.WithTransaction(ctx, r.db, func(ctx context.Context) error {
		tx := database.Conn(ctx, r.db)
		if err := requireRow(tx, &database.AssetCheckList{}, id); err != nil {
			return err
		}
		return runSteps(tx,
			deleteWhere("delete inspection checklist rows", &database.AssetInspectionCheckList{}, "asset_check_list_id = ?", id),
			deleteRoot("delete checklist binding", &database.AssetCheckList{}, id),
		)
	})
}
