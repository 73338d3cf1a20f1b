package repository

import (
	"context"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/common/cnst"

	"gorm.io/gorm"
)

type InspectionCheckListRepository struct {
	db *gorm.DB
}

func (r *InspectionCheckListRepository) List(ctx context.Context, pageIndex, pageSize *int, search string) (*database.Page[database.InspectionCheckList], error) {
	q := database.Conn(ctx, r.db).Model(&database.InspectionCheckList{})
	if p := likePattern(search); p != "" {
		q = q.Where("LOWER(inspection_check_list_name) LIKE ? OR LOWER(inspection_check_list_title) LIKE ?", p, p)
	}
	return database.Paginate[database.InspectionCheckList](ctx, q, pageIndex, pageSize,
		database.OrderBy("inspection_check_list_name", "id"))
}

// ListActive returns the active checklist items, used when binding items to an asset
func (r *InspectionCheckListRepository) ListActive(ctx context.Context) ([]database.InspectionCheckList, error) {
	var out []database.InspectionCheckList
	err := database.Conn(ctx, r.db).Where("active = ?", true).Order("inspection_check_list_name").Find(&out).Error
	return out, err
}

func (r *InspectionCheckListRepository) GetByID(ctx context.Context, id int) (*database.InspectionCheckList, error) {
	return getByID[database.InspectionCheckList](ctx, r.db, id)
}

// CountExisting returns how many of ids refer to existing checklist items
func (r *InspectionCheckListRepository) CountExisting(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return countOf(database.Conn(ctx, r.db), &database.InspectionCheckList{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("id IN ?", ids)
	})
}

func (r *InspectionCheckListRepository) Create(ctx context.Context, c *database.InspectionCheckList) error {
	return database.Conn(ctx, r.db).Create(c).Error
}

func (r *InspectionCheckListRepository) Update(ctx context.Context, c *database.InspectionCheckList) error {
	return updateRow(ctx, r.db, c.ID, c)
}

// Delete removes only the checklist item; callers check CanDelete first
func (r *InspectionCheckListRepository) Delete(ctx context.Context, id int) error {
	return deleteByID[database.InspectionCheckList](ctx, r.db, id)
}

// CanDelete is true when no asset binds the checklist item
func (r *InspectionCheckListRepository) CanDelete(ctx context.Context, id int) (bool, error) {
	found, err := exists(database.Conn(ctx, r.db), &database.AssetCheckList{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("inspection_check_list_id = ?", id)
	})
	return noDependents(found, err)
}

// RelatedData describes the assets binding the item and the answers recorded through those bindings.
// Assets carry no company link, so their department stands in for the company.
func (r *InspectionCheckListRepository) RelatedData(ctx context.Context, id int) (*InspectionCheckListRelatedData, error) {
	conn := database.Conn(ctx, r.db)
	bindings := func() *gorm.DB {
		return conn.Model(&database.AssetCheckList{}).Where("inspection_check_list_id = ?", id)
	}
	answered := func() *gorm.DB {
		return conn.Model(&database.AssetInspectionCheckList{}).Where("asset_check_list_id IN (?)", bindings().Select("id"))
	}
	inspections := func() *gorm.DB {
		return conn.Model(&database.AssetInspection{}).Where("id IN (?)", answered().Select("asset_inspection_id"))
	}

	out := &InspectionCheckListRelatedData{}
	var err error
	if out.TotalAssetCheckLists, err = countOf(conn, &database.AssetCheckList{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("inspection_check_list_id = ?", id)
	}); err != nil {
		return nil, err
	}

	var assets []database.Asset
	if err := conn.Select("asset_name", "department").
		Where("id IN (?)", bindings().Select("asset_id")).
		Find(&assets).Error; err != nil {
		return nil, err
	}
	names := make([]string, 0, len(assets))
	departments := make([]string, 0, len(assets))
	for _, a := range assets {
		names = append(names, a.AssetName)
		departments = append(departments, a.Department)
	}
	out.AffectedAssetNames = distinctSorted(names, cnst.UnknownAsset)
	out.AssignedCompanyNames = distinctSorted(departments, cnst.UnknownDepartment)

	if out.TotalInspectionItems, err = countOf(conn, &database.AssetInspectionCheckList{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("asset_check_list_id IN (?)", bindings().Select("id"))
	}); err != nil {
		return nil, err
	}
	if out.FirstUsedDate, err = boundaryInspectionDate(inspections(), false); err != nil {
		return nil, err
	}
	if out.LastUsedDate, err = boundaryInspectionDate(inspections(), true); err != nil {
		return nil, err
	}
	return out, nil
}

// ForceDelete removes the item with every binding and every answer recorded through them, atomically.
// The order is inspection checklist rows, asset bindings, checklist item.
func (r *InspectionCheckListRepository) ForceDelete(ctx context.Context, id int) error {
	return database.WithTransaction(ctx, r.db, func(ctx context.Context) error {
		tx := database.Conn(ctx, r.db)
		if err := requireRow(tx, &database.InspectionCheckList{}, id); err != nil {
			return err
		}

		var bindingIDs []int
		if err := tx.Model(&database.AssetCheckList{}).
			Where("inspection_check_list_id = ?", id).
			Pluck("id", &bindingIDs).Error; err != nil {
			return err
		}
		return runSteps(tx,
			deleteIn("delete inspection checklist rows", &database.AssetInspectionCheckList{}, "asset_check_list_id", bindingIDs),
			deleteIn("delete checklist bindings", &database.AssetCheckList{}, "id", bindingIDs),
			deleteRoot("delete checklist item", &database.InspectionCheckList{}, id),
		)
	})
}
