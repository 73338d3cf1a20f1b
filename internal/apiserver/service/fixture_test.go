package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/amoylab/shopinspector/internal/apiserver/cache"
	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/apiserver/repository"
	"github.com/amoylab/shopinspector/internal/common/config"
	"github.com/amoylab/shopinspector/internal/common/errorx"
	"github.com/amoylab/shopinspector/internal/storage"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var testNow = time.Date(2024, 5, 20, 8, 15, 0, 0, time.UTC)

// recorder is an Observer that remembers what it was told
type recorder struct {
	deletes   []string
	reports   []error
	submitted [][2]int
}

func (r *recorder) DeleteDone(entity, mode, outcome string) {
	r.deletes = append(r.deletes, fmt.Sprintf("%s/%s/%s", entity, mode, outcome))
}

func (r *recorder) ReportDone(_ time.Time, err error) { r.reports = append(r.reports, err) }

func (r *recorder) InspectionSubmitted(saved, skipped int) {
	r.submitted = append(r.submitted, [2]int{saved, skipped})
}

type env struct {
	t     *testing.T
	db    *gorm.DB
	store *storage.DiskStorage
	obs   *recorder
	qr    *cache.Cache
	svc   *Services
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dbi, err := database.NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbi.Close() })

	store, err := storage.NewDiskStorage(zap.NewNop(), t.TempDir())
	require.NoError(t, err)

	obs := &recorder{}
	qr := cache.New(cache.Config{}, zap.NewNop())
	svc := New(Deps{
		Repos:         repository.New(dbi.DB()),
		Storage:       store,
		Observer:      obs,
		Cache:         qr,
		Logger:        zap.NewNop(),
		PublicBaseURL: "https://inspect.example.com/",
	})
	return &env{t: t, db: dbi.DB(), store: store, obs: obs, qr: qr, svc: svc}
}

func (e *env) create(v any) {
	e.t.Helper()
	require.NoError(e.t, e.db.Omit(clause.Associations).Create(v).Error)
}

func (e *env) company(name string) *database.Company {
	c := &database.Company{CompanyName: name, CompanyAdminEmail: name + "@example.com", CompanyContactName: "Contact", Active: true, CreatedOn: testNow, CreatedBy: "test"}
	e.create(c)
	return c
}

func (e *env) employee(companyID int, name string) *database.Employee {
	emp := &database.Employee{EmployeeName: name, CompanyID: companyID, Active: true, CreatedOn: testNow, CreatedBy: "test"}
	e.create(emp)
	return emp
}

func (e *env) assetType(name string) *database.AssetType {
	at := &database.AssetType{AssetTypeName: name}
	e.create(at)
	return at
}

func (e *env) asset(typeID int, name, code string) *database.Asset {
	a := &database.Asset{AssetName: name, AssetTypeID: typeID, AssetCode: code, Department: "Maintenance", Active: true, CreatedOn: testNow, CreatedBy: "test"}
	e.create(a)
	return a
}

func (e *env) checklist(name string) *database.InspectionCheckList {
	c := &database.InspectionCheckList{Name: name, Title: name + " title", Active: true}
	e.create(c)
	return c
}

func (e *env) binding(assetID, checklistID, order int) *database.AssetCheckList {
	b := &database.AssetCheckList{AssetID: assetID, InspectionCheckListID: checklistID, DisplayOrder: order, Active: true}
	e.create(b)
	return b
}

func (e *env) frequency(name string) *database.InspectionFrequency {
	f := &database.InspectionFrequency{FrequencyName: name}
	e.create(f)
	return f
}

func (e *env) count(model any) int64 {
	e.t.Helper()
	var n int64
	require.NoError(e.t, e.db.Model(model).Count(&n).Error)
	return n
}

// site is one asset with two bound checklist items, an employee and a frequency
type site struct {
	company   *database.Company
	employee  *database.Employee
	asset     *database.Asset
	bindings  []*database.AssetCheckList
	frequency *database.InspectionFrequency
}

func (e *env) site() *site {
	s := &site{company: e.company("Acme")}
	s.employee = e.employee(s.company.ID, "Zoe")
	s.asset = e.asset(e.assetType("Forklift").ID, "Forklift 1", "FL-001")
	s.bindings = []*database.AssetCheckList{
		e.binding(s.asset.ID, e.checklist("Brakes").ID, 0),
		e.binding(s.asset.ID, e.checklist("Horn").ID, 1),
	}
	s.frequency = e.frequency("Weekly")
	return s
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for x := range 8 {
		img.Set(x, x%6, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// requireCode asserts that err is an APIError with the given code
func requireCode(t *testing.T, err error, code string) *errorx.APIError {
	t.Helper()
	var apiErr *errorx.APIError
	require.True(t, errors.As(err, &apiErr), "expected an APIError, got %v", err)
	require.Equal(t, code, apiErr.Code, apiErr.Message)
	return apiErr
}

func boolPtr(v bool) *bool { return &v }
