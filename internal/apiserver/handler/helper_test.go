package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/apiserver/middleware"
	"github.com/amoylab/shopinspector/internal/apiserver/report"
	"github.com/amoylab/shopinspector/internal/apiserver/repository"
	"github.com/amoylab/shopinspector/internal/apiserver/service"
	"github.com/amoylab/shopinspector/internal/auth/jwt"
	"github.com/amoylab/shopinspector/internal/common/config"
	"github.com/amoylab/shopinspector/internal/common/errorx"
	"github.com/amoylab/shopinspector/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	testAdmin    = "root"
	testPassword = "s3cret-pass"
)

type server struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	token  string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbi, err := database.NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbi.Close() })

	store, err := storage.NewDiskStorage(zap.NewNop(), t.TempDir())
	require.NoError(t, err)

	svc := service.New(service.Deps{
		Repos:         repository.New(dbi.DB()),
		Storage:       store,
		Reports:       report.NewGenerator(zap.NewNop()),
		Logger:        zap.NewNop(),
		PublicBaseURL: "https://inspect.example.com",
	})

	jwtService, err := jwt.NewService(jwt.Config{SecretKey: "this-is-a-very-long-secret-key-for-testing", Duration: time.Hour})
	require.NoError(t, err)
	errs := errorx.NewErrorHandler(zap.NewNop())
	auth, err := NewAuthHandler(config.SuperAdminConfig{Username: testAdmin, Password: testPassword}, jwtService, errs, zap.NewNop())
	require.NoError(t, err)

	router := gin.New()
	Routes{
		API:         NewHandler(svc, errs, zap.NewNop(), 0),
		Auth:        auth,
		Info:        NewServiceInfoHandler(),
		RequireAuth: middleware.JWTAuthMiddleware(jwtService, errs),
	}.Register(router)

	token, _, err := jwtService.GenerateToken(testAdmin, RoleAdmin)
	require.NoError(t, err)
	return &server{t: t, db: dbi.DB(), router: router, token: token}
}

func (s *server) serve(req *http.Request, authed bool) *httptest.ResponseRecorder {
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// do sends an authenticated JSON request
func (s *server) do(method, url string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, url, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.serve(req, true)
}

func (s *server) create(v any) {
	s.t.Helper()
	require.NoError(s.t, s.db.Omit(clause.Associations).Create(v).Error)
}

// fixture is one bound asset with an employee and a frequency to inspect it with
type fixture struct {
	company   database.Company
	employee  database.Employee
	asset     database.Asset
	bindings  []database.AssetCheckList
	frequency database.InspectionFrequency
}

func (s *server) fixture() *fixture {
	now := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)
	f := &fixture{}
	f.company = database.Company{CompanyName: "Acme", CompanyAdminEmail: "ops@acme.test", CompanyContactName: "Ann", Active: true, CreatedOn: now, CreatedBy: "test"}
	s.create(&f.company)
	f.employee = database.Employee{EmployeeName: "Zoe", CompanyID: f.company.ID, Active: true, CreatedOn: now, CreatedBy: "test"}
	s.create(&f.employee)

	at := database.AssetType{AssetTypeName: "Forklift"}
	s.create(&at)
	f.asset = database.Asset{AssetName: "Forklift 1", AssetTypeID: at.ID, AssetCode: "FL-001", Active: true, CreatedOn: now, CreatedBy: "test"}
	s.create(&f.asset)

	for i, name := range []string{"Brakes", "Horn"} {
		cl := database.InspectionCheckList{Name: name, Title: name + " check", Active: true}
		s.create(&cl)
		b := database.AssetCheckList{AssetID: f.asset.ID, InspectionCheckListID: cl.ID, DisplayOrder: i, Active: true}
		s.create(&b)
		f.bindings = append(f.bindings, b)
	}
	f.frequency = database.InspectionFrequency{FrequencyName: "Weekly"}
	s.create(&f.frequency)
	return f
}

// inspectionForm builds a multipart submission answering every binding of f
func inspectionForm(t *testing.T, f *fixture, photos map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	items := make([]map[string]any, 0, len(f.bindings))
	for _, b := range f.bindings {
		items = append(items, map[string]any{"assetCheckListId": b.ID, "isChecked": true})
	}
	rawItems, err := json.Marshal(items)
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"employeeId":            strconv.Itoa(f.employee.ID),
		"inspectionFrequencyId": strconv.Itoa(f.frequency.ID),
		"items":                 string(rawItems),
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, data := range photos {
		fw, err := mw.CreateFormFile(photoField, name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 2, color.RGBA{G: 180, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// apiError decodes the error envelope written by errorx
func apiError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Error map[string]any `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error, "no error in %s", w.Body.String())
	return body.Error
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
