package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/apiserver/middleware"
	"github.com/amoylab/shopinspector/internal/apiserver/service"
	"github.com/amoylab/shopinspector/internal/common/cnst"
	"github.com/amoylab/shopinspector/internal/common/dto"
	"github.com/amoylab/shopinspector/internal/common/errorx"
	"github.com/amoylab/shopinspector/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the admin and public inspection API
type Handler struct {
	svc          *service.Services
	errs         *errorx.ErrorHandler
	logger       *zap.Logger
	maxPhotoSize int64
	now          func() time.Time
}

// NewHandler creates the API handler; maxPhotoSize bounds every uploaded photo
func NewHandler(svc *service.Services, errs *errorx.ErrorHandler, logger *zap.Logger, maxPhotoSize int64) *Handler {
	if maxPhotoSize <= 0 {
		maxPhotoSize = storage.DefaultMaxImageSize
	}
	return &Handler{
		svc:          svc,
		errs:         errs,
		logger:       logger.Named("handler"),
		maxPhotoSize: maxPhotoSize,
		now:          time.Now,
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.errs.HandleError(c, err)
}

// id parses the :id path parameter
func (h *Handler) id(c *gin.Context) (int, bool) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		h.fail(c, errorx.ValidationError("id", raw, "id must be an integer"))
		return 0, false
	}
	return id, true
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		h.fail(c, errorx.ErrInvalidInput.WithMessage("Invalid request body").WithDetail("reason", err.Error()))
		return false
	}
	return true
}

func (h *Handler) listQuery(c *gin.Context) (dto.ListQuery, bool) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, errorx.ErrInvalidInput.WithMessage("Invalid paging parameters").WithDetail("reason", err.Error()))
		return q, false
	}
	return q, true
}

// stamp attributes a write to the authenticated user
func (h *Handler) stamp(c *gin.Context) service.Stamp {
	return service.NewStamp(middleware.Actor(c, cnst.ActorSystem), h.now())
}

func list[T any](h *Handler, fn func(context.Context, dto.ListQuery) (*database.Page[T], error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := h.listQuery(c)
		if !ok {
			return
		}
		page, err := fn(c.Request.Context(), q)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func all[T any](h *Handler, fn func(context.Context) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := fn(c.Request.Context())
		if err != nil {
			h.fail(c, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		c.JSON(http.StatusOK, items)
	}
}

func get[T any](h *Handler, fn func(context.Context, int) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.id(c)
		if !ok {
			return
		}
		v, err := fn(c.Request.Context(), id)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// create binds R and hands it to fn together with the write stamp
func create[R, T any](h *Handler, fn func(context.Context, R, service.Stamp) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req R
		if !h.bindJSON(c, &req) {
			return
		}
		v, err := fn(c.Request.Context(), req, h.stamp(c))
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, v)
	}
}

// unstamped adapts a create operation whose rows carry no audit columns
func unstamped[R, T any](fn func(context.Context, R) (*T, error)) func(context.Context, R, service.Stamp) (*T, error) {
	return func(ctx context.Context, req R, _ service.Stamp) (*T, error) { return fn(ctx, req) }
}

func update[R, T any](h *Handler, fn func(context.Context, int, R) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.id(c)
		if !ok {
			return
		}
		var req R
		if !h.bindJSON(c, &req) {
			return
		}
		v, err := fn(c.Request.Context(), id, req)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}
