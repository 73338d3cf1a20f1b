package repository

import (
	"context"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/common/cnst"

	"gorm.io/gorm"
)

type InspectionFrequencyRepository struct {
	db *gorm.DB
}

func (r *InspectionFrequencyRepository) List(ctx context.Context, pageIndex, pageSize *int, search string) (*database.Page[database.InspectionFrequency], error) {
	q := database.Conn(ctx, r.db).Model(&database.InspectionFrequency{})
	if p := likePattern(search); p != "" {
		q = q.Where("LOWER(frequency_name) LIKE ?", p)
	}
	return database.Paginate[database.InspectionFrequency](ctx, q, pageIndex, pageSize, database.OrderBy("frequency_name", "id"))
}

func (r *InspectionFrequencyRepository) GetByID(ctx context.Context, id int) (*database.InspectionFrequency, error) {
	return getByID[database.InspectionFrequency](ctx, r.db, id)
}

func (r *InspectionFrequencyRepository) Create(ctx context.Context, f *database.InspectionFrequency) error {
	return database.Conn(ctx, r.db).Create(f).Error
}

func (r *InspectionFrequencyRepository) Update(ctx context.Context, f *database.InspectionFrequency) error {
	return updateRow(ctx, r.db, f.ID, f)
}

// Delete removes only the frequency row; callers check CanDelete first
func (r *InspectionFrequencyRepository) Delete(ctx context.Context, id int) error {
	return deleteByID[database.InspectionFrequency](ctx, r.db, id)
}

func (r *InspectionFrequencyRepository) ExistsByName(ctx context.Context, name string, excludeID int) (bool, error) {
	return exists(database.Conn(ctx, r.db), &database.InspectionFrequency{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("LOWER(TRIM(frequency_name)) = ? AND id <> ?", normalizeName(name), excludeID)
	})
}

// CanDelete is true when no inspection was recorded under the frequency
func (r *InspectionFrequencyRepository) CanDelete(ctx context.Context, id int) (bool, error) {
	found, err := exists(database.Conn(ctx, r.db), &database.AssetInspection{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("inspection_frequency_id = ?", id)
	})
	return noDependents(found, err)
}

// RelatedData describes the inspections recorded under the frequency
func (r *InspectionFrequencyRepository) RelatedData(ctx context.Context, id int) (*InspectionFrequencyRelatedData, error) {
	conn := database.Conn(ctx, r.db)
	inspections := func() *gorm.DB {
		return conn.Model(&database.AssetInspection{}).Where("inspection_frequency_id = ?", id)
	}

	out := &InspectionFrequencyRelatedData{}
	var err error
	if out.TotalInspections, err = countOf(conn, &database.AssetInspection{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("inspection_frequency_id = ?", id)
	}); err != nil {
		return nil, err
	}
	if out.FirstInspectionDate, err = boundaryInspectionDate(inspections(), false); err != nil {
		return nil, err
	}
	if out.LastInspectionDate, err = boundaryInspectionDate(inspections(), true); err != nil {
		return nil, err
	}

	var assets, employees []string
	if err := conn.Model(&database.Asset{}).
		Where("id IN (?)", inspections().Select("asset_id")).
		Pluck("asset_name", &assets).Error; err != nil {
		return nil, err
	}
	out.AffectedAssetNames = distinctSorted(assets, cnst.UnknownAsset)

	if err := conn.Model(&database.Employee{}).
		Where("id IN (?)", inspections().Select("employee_id")).
		Pluck("employee_name", &employees).Error; err != nil {
		return nil, err
	}
	out.AssignedEmployeeNames = distinctSorted(employees, cnst.UnknownEmployee)

	if out.ChecklistItemsCount, err = countOf(conn, &database.AssetInspectionCheckList{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("asset_inspection_id IN (?)", inspections().Select("id"))
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// ForceDelete removes the frequency and every inspection recorded under it, atomically.
// The order is checklist rows, photos, inspections, frequency.
func (r *InspectionFrequencyRepository) ForceDelete(ctx context.Context, id int) error {
	return database.WithTransaction(ctx, r.db, func(ctx context.Context) error {
		tx := database.Conn(ctx, r.db)
		if err := requireRow(tx, &database.InspectionFrequency{}, id); err != nil {
			return err
		}

		ids, err := inspectionIDs(tx, "inspection_frequency_id = ?", id)
		if err != nil {
			return err
		}
		steps := append(inspectionTree(ids), deleteRoot("delete frequency", &database.InspectionFrequency{}, id))
		return runSteps(tx, steps...)
	})
}
