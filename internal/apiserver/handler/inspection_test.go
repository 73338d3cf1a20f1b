package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/common/cnst"
	"github.com/amoylab/shopinspector/internal/common/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *server) submit(path string, f *fixture, photos map[string][]byte, authed bool) *httptest.ResponseRecorder {
	s.t.Helper()
	body, contentType := inspectionForm(s.t, f, photos)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return s.serve(req, authed)
}

func TestPublicInspection_StartAndSubmit(t *testing.T) {
	s := newServer(t)
	f := s.fixture()
	path := fmt.Sprintf("/api/public/assets/%d/inspection", f.asset.ID)

	w := s.serve(httptest.NewRequest(http.MethodGet, path, nil), false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[struct {
		Asset      database.Asset      `json:"asset"`
		CheckLists []dto.CheckListView `json:"checkLists"`
	}](t, w)
	assert.Equal(t, "Forklift 1", view.Asset.AssetName)
	require.Len(t, view.CheckLists, 2)
	assert.Equal(t, "Brakes", view.CheckLists[0].Name)

	w = s.submit(fmt.Sprintf("/api/public/assets/%d/inspections", f.asset.ID), f, map[string][]byte{
		"front.png": pngImage(t),
		"notes.txt": []byte("not an image"),
	}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[dto.SubmitInspectionResponse](t, w)
	assert.Equal(t, 1, res.PhotosSaved)
	assert.Equal(t, 1, res.PhotosSkipped)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/inspections/%d", res.InspectionID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	insp := decode[database.AssetInspection](t, w)
	assert.Equal(t, cnst.ActorPublic, insp.CreatedBy)
	assert.True(t, strings.HasPrefix(insp.Attachment, "/uploads/inspections/"), insp.Attachment)
}

func TestAdminInspection_SubmitListAndExport(t *testing.T) {
	s := newServer(t)
	f := s.fixture()
	base := fmt.Sprintf("/api/assets/%d/inspections", f.asset.ID)

	w := s.submit(base, f, nil, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[dto.SubmitInspectionResponse](t, w).InspectionID

	w = s.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[database.Page[database.AssetInspection]](t, w)
	require.EqualValues(t, 1, page.TotalCount)
	assert.Equal(t, testAdmin, page.Items[0].CreatedBy)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/inspections/%d/export", id), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, fmt.Sprintf(`attachment; filename="Inspection_%d.pdf"`, id), w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = s.do(http.MethodGet, fmt.Sprintf("/api/inspections/%d/report", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "inline;"))

	w = s.do(http.MethodGet, "/api/inspections/999/export", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitInspection_Rejections(t *testing.T) {
	s := newServer(t)
	f := s.fixture()

	w := s.submit("/api/public/assets/999/inspections", f, nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/public/assets/%d/inspections", f.asset.ID),
		strings.NewReader("employeeId=1&inspectionFrequencyId=1&items=nope"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = s.serve(req, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "E1001", apiError(t, w)["code"])
}

func TestAssetQRCode(t *testing.T) {
	s := newServer(t)
	f := s.fixture()

	w := s.do(http.MethodGet, fmt.Sprintf("/api/assets/%d/qrcode", f.asset.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = s.do(http.MethodGet, "/api/assets/999/qrcode", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
