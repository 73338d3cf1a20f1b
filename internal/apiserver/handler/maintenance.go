package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/amoylab/shopinspector/internal/apiserver/scheduler"
	"github.com/amoylab/shopinspector/internal/common/errorx"

	"github.com/gin-gonic/gin"
)

// MaintenanceHandler exposes the background tasks
type MaintenanceHandler struct {
	tasks *scheduler.Scheduler
	errs  *errorx.ErrorHandler
}

func NewMaintenanceHandler(tasks *scheduler.Scheduler, errs *errorx.ErrorHandler) *MaintenanceHandler {
	return &MaintenanceHandler{tasks: tasks, errs: errs}
}

// ListTasks reports the scheduler state and every task with its last result
func (h *MaintenanceHandler) ListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": h.tasks.Status(),
		"tasks":  h.tasks.ListTasks(),
	})
}

// RunTask runs a task right away and returns its result
func (h *MaintenanceHandler) RunTask(c *gin.Context) {
	name := c.Param("name")
	res, err := h.tasks.RunNow(c.Request.Context(), name)
	switch {
	case errors.Is(err, scheduler.ErrTaskNotFound):
		h.errs.HandleError(c, errorx.ErrResourceNotFound.WithMessage(fmt.Sprintf("Maintenance task %q not found", name)).
			WithDetail("resource_type", "MaintenanceTask"))
	case res == nil && err != nil:
		h.errs.HandleError(c, errorx.ErrConcurrentModification.WithMessage(err.Error()))
	default:
		// a failed run is reported in the result
		c.JSON(http.StatusOK, res)
	}
}
