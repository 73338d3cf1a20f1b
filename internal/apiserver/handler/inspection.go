package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/amoylab/shopinspector/internal/apiserver/middleware"
	"github.com/amoylab/shopinspector/internal/apiserver/service"
	"github.com/amoylab/shopinspector/internal/common/cnst"
	"github.com/amoylab/shopinspector/internal/common/dto"
	"github.com/amoylab/shopinspector/internal/common/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// photoField is the multipart field carrying inspection photos
const photoField = "photos"

// StartInspection serves the inspection form data of an asset
func (h *Handler) StartInspection(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}
	view, err := h.svc.Inspections.StartInspection(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SubmitInspection records an inspection from the admin area; the actor is the signed in user
func (h *Handler) SubmitInspection(c *gin.Context) {
	h.submit(c, middleware.Actor(c, cnst.ActorAdmin))
}

// SubmitPublicInspection records an inspection submitted through an asset QR code
func (h *Handler) SubmitPublicInspection(c *gin.Context) {
	h.submit(c, cnst.ActorPublic)
}

func (h *Handler) submit(c *gin.Context, actor string) {
	assetID, ok := h.id(c)
	if !ok {
		return
	}

	var form dto.SubmitInspectionForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, errorx.ErrInvalidInput.WithMessage("Invalid inspection form").WithDetail("reason", err.Error()))
		return
	}
	items, err := dto.DecodeInspectionItems(form.Items)
	if err != nil {
		h.fail(c, errorx.ValidationError("items", form.Items, "items must be a JSON array of checklist answers"))
		return
	}
	photos, err := h.readPhotos(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.svc.Inspections.SubmitInspection(c.Request.Context(), service.SubmitInspectionInput{
		AssetID:               assetID,
		EmployeeID:            form.EmployeeID,
		InspectionFrequencyID: form.InspectionFrequencyID,
		InspectorName:         form.InspectorName,
		ThirdParty:            form.ThirdParty,
		Items:                 items,
		Photos:                photos,
	}, service.NewStamp(actor, h.now()))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// readPhotos loads the uploaded photos; files over the size limit are truncated to limit+1
// bytes so the service rejects them without holding the whole upload.
func (h *Handler) readPhotos(c *gin.Context) ([]service.PhotoUpload, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, errorx.ErrInvalidInput.WithMessage("Invalid multipart form").WithDetail("reason", err.Error())
	}

	files := form.File[photoField]
	photos := make([]service.PhotoUpload, 0, len(files))
	for _, fh := range files {
		data, err := h.readPhoto(fh)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %q: %w", fh.Filename, err)
		}
		photos = append(photos, service.PhotoUpload{Filename: fh.Filename, Content: data})
	}
	return photos, nil
}

func (h *Handler) readPhoto(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, h.maxPhotoSize+1))
}

// ListInspections pages the inspection history of an asset
func (h *Handler) ListInspections(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}
	q, ok := h.listQuery(c)
	if !ok {
		return
	}
	page, err := h.svc.Inspections.ListInspections(c.Request.Context(), id, q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Report shows the PDF report inline
func (h *Handler) Report(c *gin.Context) {
	h.report(c, "inline")
}

// Export downloads the PDF report
func (h *Handler) Export(c *gin.Context) {
	h.report(c, "attachment")
}

func (h *Handler) report(c *gin.Context, disposition string) {
	id, ok := h.id(c)
	if !ok {
		return
	}
	file, err := h.svc.Inspections.ExportInspection(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, file.Name))
	c.Data(http.StatusOK, "application/pdf", file.Content)
}

// AssetQRCode serves the PNG QR code linking to the public inspection page of an asset
func (h *Handler) AssetQRCode(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}
	png, err := h.svc.Assets.AssetQRCode(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Debug("QR code served", zap.Int("asset_id", id), zap.Int("bytes", len(png)))
	c.Data(http.StatusOK, "image/png", png)
}

// DeleteAsset removes an asset with all of its inspections
func (h *Handler) DeleteAsset(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}
	if err := h.svc.Assets.DeleteAsset(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteResponse{ID: id, Deleted: true, Mode: dto.DeleteModeForce})
}

// DeleteAssetType removes an asset type that no bound asset still uses
func (h *Handler) DeleteAssetType(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}
	if err := h.svc.AssetTypes.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteResponse{ID: id, Deleted: true, Mode: dto.DeleteModeGuarded})
}

// AssignCheckLists binds several checklist items to an asset
func (h *Handler) AssignCheckLists(c *gin.Context) {
	var req dto.AssignCheckListsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	active := req.Active == nil || *req.Active
	res, err := h.svc.AssetCheckLists.AssignChecklists(c.Request.Context(), req.AssetID, req.CheckListIDs, req.DisplayOrder, active)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// AssignmentStats serves the checklist assignment figures
func (h *Handler) AssignmentStats(c *gin.Context) {
	st, err := h.svc.AssetCheckLists.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
