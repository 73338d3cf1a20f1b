package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/common/config"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	jan10 = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	mar05 = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
)

// fixture builds an inspection graph on a private in-memory database
type fixture struct {
	t     *testing.T
	db    *gorm.DB
	repos *Repositories
	seq   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dbi, err := database.NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbi.Close() })
	return &fixture{t: t, db: dbi.DB(), repos: New(dbi.DB())}
}

// failDeletesOn makes every delete against table fail with the returned error
func (f *fixture) failDeletesOn(table string) error {
	f.t.Helper()
	injected := fmt.Errorf("delete from %s failed", table)
	require.NoError(f.t, f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(injected)
		}
	}))
	return injected
}

func (f *fixture) create(v any) {
	f.t.Helper()
	require.NoError(f.t, f.db.Omit(clause.Associations).Create(v).Error)
}

func (f *fixture) company(name string) *database.Company {
	c := &database.Company{CompanyName: name, CompanyAdminEmail: name + "@example.com", CompanyContactName: "Contact", Active: true, CreatedOn: jan10, CreatedBy: "test"}
	f.create(c)
	return c
}

func (f *fixture) employee(companyID int, name string) *database.Employee {
	e := &database.Employee{EmployeeName: name, CompanyID: companyID, Active: true, CreatedOn: jan10, CreatedBy: "test"}
	f.create(e)
	return e
}

func (f *fixture) asset(name string) *database.Asset {
	f.seq++
	at := &database.AssetType{AssetTypeName: fmt.Sprintf("Type %d", f.seq)}
	f.create(at)
	a := &database.Asset{AssetName: name, AssetTypeID: at.ID, AssetCode: fmt.Sprintf("A-%03d", f.seq), Department: "Dept " + name, Active: true, CreatedOn: jan10, CreatedBy: "test"}
	f.create(a)
	return a
}

func (f *fixture) checklist(name string) *database.InspectionCheckList {
	c := &database.InspectionCheckList{Name: name, Title: name + " title", Active: true}
	f.create(c)
	return c
}

func (f *fixture) binding(assetID, checklistID int) *database.AssetCheckList {
	b := &database.AssetCheckList{AssetID: assetID, InspectionCheckListID: checklistID, Active: true}
	f.create(b)
	return b
}

func (f *fixture) frequency(name string) *database.InspectionFrequency {
	fr := &database.InspectionFrequency{FrequencyName: name}
	f.create(fr)
	return fr
}

// inspection records one inspection answering every binding and carrying the given number of photos
func (f *fixture) inspection(assetID, employeeID, frequencyID int, date time.Time, bindings []*database.AssetCheckList, photos int) *database.AssetInspection {
	insp := &database.AssetInspection{
		AssetID: assetID, EmployeeID: employeeID, InspectionFrequencyID: frequencyID,
		InspectorName: "Inspector", InspectionDate: date, CreatedOn: date, CreatedBy: "test",
	}
	f.create(insp)
	for _, b := range bindings {
		f.create(&database.AssetInspectionCheckList{AssetInspectionID: insp.ID, AssetCheckListID: b.ID, IsChecked: true})
	}
	for i := range photos {
		f.create(&database.InspectionPhoto{AssetInspectionID: insp.ID, PhotoPath: fmt.Sprintf("/uploads/inspections/%d_%d.jpg", insp.ID, i), UploadedOn: date, DisplayOrder: i})
	}
	return insp
}

func (f *fixture) count(model any) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Model(model).Count(&n).Error)
	return n
}

// snapshot counts every table so a failed cascade can be compared against the state before it
func (f *fixture) snapshot() map[string]int64 {
	out := map[string]int64{}
	for _, m := range database.Models() {
		out[fmt.Sprintf("%T", m)] = f.count(m)
	}
	return out
}

// acmeGraph builds a company with two employees, each with one inspection of two answers and one photo
type acmeGraph struct {
	company   *database.Company
	employees []*database.Employee
	asset     *database.Asset
	bindings  []*database.AssetCheckList
	frequency *database.InspectionFrequency
	inspected []*database.AssetInspection
}

func (f *fixture) acme() *acmeGraph {
	g := &acmeGraph{company: f.company("Acme")}
	g.asset = f.asset("Forklift")
	g.bindings = []*database.AssetCheckList{
		f.binding(g.asset.ID, f.checklist("Brakes").ID),
		f.binding(g.asset.ID, f.checklist("Horn").ID),
	}
	g.frequency = f.frequency("Weekly")
	for i, name := range []string{"Zoe", "Adam"} {
		e := f.employee(g.company.ID, name)
		g.employees = append(g.employees, e)
		date := jan10
		if i == 1 {
			date = mar05
		}
		g.inspected = append(g.inspected, f.inspection(g.asset.ID, e.ID, g.frequency.ID, date, g.bindings, 1))
	}
	return g
}
