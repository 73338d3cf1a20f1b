package handler

import (
	"net/http"

	"github.com/amoylab/shopinspector/pkg/version"

	"github.com/gin-gonic/gin"
)

// ServiceInfoHandler represents the service information handler
type ServiceInfoHandler struct{}

// NewServiceInfoHandler creates a new service information handler
func NewServiceInfoHandler() *ServiceInfoHandler {
	return &ServiceInfoHandler{}
}

// ServiceInfo represents the service identity information
type ServiceInfo struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

// HandleServiceInfo serves service identity information as JSON
func (h *ServiceInfoHandler) HandleServiceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, ServiceInfo{
		Name:        "ShopInspector",
		Description: "Facility and equipment inspection management",
		Version:     version.Get(),
		Capabilities: []string{
			"asset-checklists",
			"qr-inspections",
			"photo-uploads",
			"pdf-reports",
			"guarded-deletes",
		},
	})
}

// HandleHealth reports that the process is serving requests
func (h *ServiceInfoHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
