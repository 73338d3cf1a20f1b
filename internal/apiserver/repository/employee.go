package repository

import (
	"context"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/common/cnst"

	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

// List pages employees with their company, ordered by name. The search term matches the
// employee name or the company name.
func (r *EmployeeRepository) List(ctx context.Context, pageIndex, pageSize *int, search string) (*database.Page[database.Employee], error) {
	conn := database.Conn(ctx, r.db)
	q := conn.Model(&database.Employee{})
	if p := likePattern(search); p != "" {
		companies := conn.Model(&database.Company{}).Select("id").Where("LOWER(company_name) LIKE ?", p)
		q = q.Where("LOWER(employee_name) LIKE ? OR company_id IN (?)", p, companies)
	}
	return database.Paginate[database.Employee](ctx, q, pageIndex, pageSize,
		database.OrderBy("employee_name", "id"), database.Preload("Company"))
}

// ListActive returns active employees of active companies, used by the public inspection form
func (r *EmployeeRepository) ListActive(ctx context.Context) ([]database.Employee, error) {
	conn := database.Conn(ctx, r.db)
	var out []database.Employee
	err := conn.Preload("Company").
		Where("active = ? AND company_id IN (?)", true, conn.Model(&database.Company{}).Select("id").Where("active = ?", true)).
		Order("employee_name").Find(&out).Error
	return out, err
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int) (*database.Employee, error) {
	return getByID[database.Employee](ctx, r.db, id, "Company")
}

func (r *EmployeeRepository) Create(ctx context.Context, e *database.Employee) error {
	return database.Conn(ctx, r.db).Omit("Company").Create(e).Error
}

func (r *EmployeeRepository) Update(ctx context.Context, e *database.Employee) error {
	e.Company = nil
	return updateRow(ctx, r.db, e.ID, e)
}

// Delete removes only the employee row; callers check CanDelete first
func (r *EmployeeRepository) Delete(ctx context.Context, id int) error {
	return deleteByID[database.Employee](ctx, r.db, id)
}

// ExistsInCompany reports whether another employee of the company already uses name
func (r *EmployeeRepository) ExistsInCompany(ctx context.Context, name string, companyID, excludeID int) (bool, error) {
	return exists(database.Conn(ctx, r.db), &database.Employee{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("LOWER(TRIM(employee_name)) = ? AND company_id = ? AND id <> ?", normalizeName(name), companyID, excludeID)
	})
}

// CanDelete is true when the employee recorded no inspection
func (r *EmployeeRepository) CanDelete(ctx context.Context, id int) (bool, error) {
	found, err := exists(database.Conn(ctx, r.db), &database.AssetInspection{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("employee_id = ?", id)
	})
	return noDependents(found, err)
}

// RelatedData describes the inspections the employee recorded
func (r *EmployeeRepository) RelatedData(ctx context.Context, id int) (*EmployeeRelatedData, error) {
	conn := database.Conn(ctx, r.db)
	inspections := func() *gorm.DB {
		return conn.Model(&database.AssetInspection{}).Where("employee_id = ?", id)
	}

	out := &EmployeeRelatedData{}
	var err error
	if out.TotalInspections, err = countOf(conn, &database.AssetInspection{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("employee_id = ?", id)
	}); err != nil {
		return nil, err
	}
	if out.LastInspectionDate, err = boundaryInspectionDate(inspections(), true); err != nil {
		return nil, err
	}

	var assets []string
	if err := conn.Model(&database.Asset{}).
		Where("id IN (?)", inspections().Select("asset_id")).
		Pluck("asset_name", &assets).Error; err != nil {
		return nil, err
	}
	out.AffectedAssetNames = distinctSorted(assets, cnst.UnknownAsset)

	if out.ChecklistItemsCount, err = countOf(conn, &database.AssetInspectionCheckList{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("asset_inspection_id IN (?)", inspections().Select("id"))
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// ForceDelete removes the employee and every inspection they recorded, atomically.
// The order is checklist rows, photos, inspections, employee.
func (r *EmployeeRepository) ForceDelete(ctx context.Context, id int) error {
	return database.WithTransaction(ctx, r.db, func(ctx context.Context) error {
		tx := database.Conn(ctx, r.db)
		if err := requireRow(tx, &database.Employee{}, id); err != nil {
			return err
		}

		ids, err := inspectionIDs(tx, "employee_id = ?", id)
		if err != nil {
			return err
		}
		steps := append(inspectionTree(ids), deleteRoot("delete employee", &database.Employee{}, id))
		return runSteps(tx, steps...)
	})
}
