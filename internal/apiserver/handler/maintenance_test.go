package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amoylab/shopinspector/internal/apiserver/scheduler"
	"github.com/amoylab/shopinspector/internal/common/errorx"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func maintenanceRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tasks := scheduler.New(zap.NewNop())
	require.NoError(t, tasks.AddTask("sweep", time.Hour, scheduler.RetryPolicy{}, func(context.Context) (map[string]any, error) {
		return map[string]any{"removed": 3}, nil
	}))
	require.NoError(t, tasks.AddTask("broken", time.Hour, scheduler.RetryPolicy{}, func(context.Context) (map[string]any, error) {
		return nil, errors.New("disk full")
	}))

	h := NewMaintenanceHandler(tasks, errorx.NewErrorHandler(zap.NewNop()))
	r := gin.New()
	r.GET("/tasks", h.ListTasks)
	r.POST("/tasks/:name/run", h.RunTask)
	return r
}

func TestMaintenanceHandler(t *testing.T) {
	r := maintenanceRouter(t)
	serve := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w
	}

	w := serve(http.MethodPost, "/tasks/sweep/run")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[scheduler.Result](t, w)
	assert.Equal(t, scheduler.StatusSuccess, res.Status)
	assert.EqualValues(t, 3, res.Summary["removed"])

	w = serve(http.MethodPost, "/tasks/broken/run")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "disk full", decode[scheduler.Result](t, w).Error)

	w = serve(http.MethodPost, "/tasks/nope/run")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "E4001", apiError(t, w)["code"])

	w = serve(http.MethodGet, "/tasks")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Status scheduler.Status `json:"status"`
		Tasks  []scheduler.Task `json:"tasks"`
	}](t, w)
	assert.Equal(t, scheduler.Status{TotalTasks: 2, Succeeded: 1, Failed: 1}, body.Status)
	require.Len(t, body.Tasks, 2)
	assert.Equal(t, "broken", body.Tasks[0].Name)
}
