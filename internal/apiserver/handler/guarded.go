package handler

import (
	"context"
	"net/http"

	"github.com/amoylab/shopinspector/internal/apiserver/service"
	"github.com/amoylab/shopinspector/internal/common/dto"
	"github.com/amoylab/shopinspector/internal/common/errorx"

	"github.com/gin-gonic/gin"
)

// guardedService is a root entity service with guarded and forced deletes
type guardedService[S service.RelatedSummary[S]] interface {
	CanDelete(ctx context.Context, id int) bool
	RelatedData(ctx context.Context, id int) S
	Delete(ctx context.Context, id int) (service.DeleteOutcome[S], error)
	ForceDelete(ctx context.Context, id int) error
}

// registerGuarded adds the related-data, can-delete, guarded delete and force delete routes
func registerGuarded[S service.RelatedSummary[S]](g gin.IRouter, h *Handler, resource string, svc guardedService[S]) {
	g.GET("/:id/related", func(c *gin.Context) {
		id, ok := h.id(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, svc.RelatedData(c.Request.Context(), id).Preview())
	})

	g.GET("/:id/can-delete", func(c *gin.Context) {
		id, ok := h.id(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"canDelete": svc.CanDelete(c.Request.Context(), id)})
	})

	g.DELETE("/:id", func(c *gin.Context) {
		id, ok := h.id(c)
		if !ok {
			return
		}
		out, err := svc.Delete(c.Request.Context(), id)
		if err != nil {
			h.fail(c, err)
			return
		}
		switch out.Status {
		case service.DeleteDeleted:
			c.JSON(http.StatusOK, dto.DeleteResponse{ID: id, Deleted: true, Mode: dto.DeleteModeGuarded})
		case service.DeleteBlocked:
			h.fail(c, out.Blocked(resource))
		default:
			h.fail(c, errorx.NotFoundError(resource, int64(id)))
		}
	})

	g.DELETE("/:id/force", func(c *gin.Context) {
		id, ok := h.id(c)
		if !ok {
			return
		}
		if err := svc.ForceDelete(c.Request.Context(), id); err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.DeleteResponse{ID: id, Deleted: true, Mode: dto.DeleteModeForce})
	})
}
