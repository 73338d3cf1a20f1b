package repository

import (
	"context"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/common/cnst"

	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *gorm.DB
}

// List pages companies ordered by name, optionally filtered by a name/email/contact search term
func (r *CompanyRepository) List(ctx context.Context, pageIndex, pageSize *int, search string) (*database.Page[database.Company], error) {
	q := database.Conn(ctx, r.db).Model(&database.Company{})
	if p := likePattern(search); p != "" {
		q = q.Where("LOWER(company_name) LIKE ? OR LOWER(company_admin_email) LIKE ? OR LOWER(company_contact_name) LIKE ?", p, p, p)
	}
	return database.Paginate[database.Company](ctx, q, pageIndex, pageSize, database.OrderBy("company_name", "id"))
}

// ListActive returns active companies for selection lists
func (r *CompanyRepository) ListActive(ctx context.Context) ([]database.Company, error) {
	var out []database.Company
	err := database.Conn(ctx, r.db).Where("active = ?", true).Order("company_name").Find(&out).Error
	return out, err
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int) (*database.Company, error) {
	return getByID[database.Company](ctx, r.db, id)
}

func (r *CompanyRepository) Create(ctx context.Context, c *database.Company) error {
	return database.Conn(ctx, r.db).Create(c).Error
}

func (r *CompanyRepository) Update(ctx context.Context, c *database.Company) error {
	return updateRow(ctx, r.db, c.ID, c)
}

// Delete removes only the company row; callers check CanDelete first
func (r *CompanyRepository) Delete(ctx context.Context, id int) error {
	return deleteByID[database.Company](ctx, r.db, id)
}

// ExistsByName reports whether another company already uses name (case-insensitive)
func (r *CompanyRepository) ExistsByName(ctx context.Context, name string, excludeID int) (bool, error) {
	return exists(database.Conn(ctx, r.db), &database.Company{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("LOWER(TRIM(company_name)) = ? AND id <> ?", normalizeName(name), excludeID)
	})
}

// ExistsByEmail reports whether another company already uses the admin email (case-insensitive)
func (r *CompanyRepository) ExistsByEmail(ctx context.Context, email string, excludeID int) (bool, error) {
	return exists(database.Conn(ctx, r.db), &database.Company{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("LOWER(TRIM(company_admin_email)) = ? AND id <> ?", normalizeName(email), excludeID)
	})
}

// CanDelete is true when no employee references the company
func (r *CompanyRepository) CanDelete(ctx context.Context, id int) (bool, error) {
	found, err := exists(database.Conn(ctx, r.db), &database.Employee{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("company_id = ?", id)
	})
	return noDependents(found, err)
}

// RelatedData describes the employees of the company and the inspections they recorded
func (r *CompanyRepository) RelatedData(ctx context.Context, id int) (*CompanyRelatedData, error) {
	conn := database.Conn(ctx, r.db)
	out := &CompanyRelatedData{}

	var names []string
	if err := conn.Model(&database.Employee{}).Where("company_id = ?", id).Pluck("employee_name", &names).Error; err != nil {
		return nil, err
	}
	out.EmployeeCount = len(names)
	out.EmployeeNames = distinctSorted(names, cnst.UnknownEmployee)

	employees := conn.Model(&database.Employee{}).Select("id").Where("company_id = ?", id)
	inspections := func() *gorm.DB {
		return conn.Model(&database.AssetInspection{}).Where("employee_id IN (?)", employees)
	}

	var err error
	if out.TotalInspections, err = countOf(conn, &database.AssetInspection{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("employee_id IN (?)", employees)
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
	return out, nil
}

// ForceDelete removes the company with its employees and every inspection they recorded, atomically.
// The order is checklist rows, photos, inspections, employees, company.
func (r *CompanyRepository) ForceDelete(ctx context.Context, id int) error {
	return database.WithTransaction(ctx, r.db, func(ctx context.Context) error {
		tx := database.Conn(ctx, r.db)
		if err := requireRow(tx, &database.Company{}, id); err != nil {
			return err
		}

		ids, err := inspectionIDs(tx, "employee_id IN (?)", tx.Model(&database.Employee{}).Select("id").Where("company_id = ?", id))
		if err != nil {
			return err
		}

		steps := append(inspectionTree(ids),
			deleteWhere("delete employees", &database.Employee{}, "company_id = ?", id),
			deleteRoot("delete company", &database.Company{}, id),
		)
		return runSteps(tx, steps...)
	})
}
