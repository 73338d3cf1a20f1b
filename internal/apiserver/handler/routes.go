package handler

import (
	"github.com/amoylab/shopinspector/internal/apiserver/repository"

	"github.com/gin-gonic/gin"
)

// Routes collects the handlers mounted by Register
type Routes struct {
	API         *Handler
	Auth        *AuthHandler
	Info        *ServiceInfoHandler
	Maintenance *MaintenanceHandler // optional
	RequireAuth gin.HandlerFunc
}

// Register mounts the API under /api
func (rt Routes) Register(r gin.IRouter) {
	h := rt.API
	svc := h.svc

	r.GET("/healthz", rt.Info.HandleHealth)

	api := r.Group("/api")
	api.GET("/info", rt.Info.HandleServiceInfo)
	api.POST("/auth/login", rt.Auth.Login)

	public := api.Group("/public")
	public.GET("/assets/:id/inspection", h.StartInspection)
	public.POST("/assets/:id/inspections", h.SubmitPublicInspection)

	admin := api.Group("", rt.RequireAuth)
	admin.GET("/auth/me", rt.Auth.Me)

	companies := admin.Group("/companies")
	companies.GET("", list(h, svc.Companies.List))
	companies.GET("/active", all(h, svc.Companies.ListActive))
	companies.GET("/:id", get(h, svc.Companies.Get))
	companies.POST("", create(h, svc.Companies.Create))
	companies.PUT("/:id", update(h, svc.Companies.Update))
	registerGuarded[repository.CompanyRelatedData](companies, h, "Company", svc.Companies)

	employees := admin.Group("/employees")
	employees.GET("", list(h, svc.Employees.List))
	employees.GET("/active", all(h, svc.Employees.ListActive))
	employees.GET("/:id", get(h, svc.Employees.Get))
	employees.POST("", create(h, svc.Employees.Create))
	employees.PUT("/:id", update(h, svc.Employees.Update))
	registerGuarded[repository.EmployeeRelatedData](employees, h, "Employee", svc.Employees)

	assetTypes := admin.Group("/asset-types")
	assetTypes.GET("", list(h, svc.AssetTypes.List))
	assetTypes.GET("/:id", get(h, svc.AssetTypes.Get))
	assetTypes.POST("", create(h, unstamped(svc.AssetTypes.Create)))
	assetTypes.PUT("/:id", update(h, svc.AssetTypes.Update))
	assetTypes.DELETE("/:id", h.DeleteAssetType)

	assets := admin.Group("/assets")
	assets.GET("", list(h, svc.Assets.List))
	assets.GET("/:id", get(h, svc.Assets.Get))
	assets.POST("", create(h, svc.Assets.Create))
	assets.PUT("/:id", update(h, svc.Assets.Update))
	assets.DELETE("/:id", h.DeleteAsset)
	assets.GET("/:id/qrcode", h.AssetQRCode)
	assets.GET("/:id/inspection", h.StartInspection)
	assets.GET("/:id/inspections", h.ListInspections)
	assets.POST("/:id/inspections", h.SubmitInspection)

	checklists := admin.Group("/checklists")
	checklists.GET("", list(h, svc.CheckLists.List))
	checklists.GET("/active", all(h, svc.CheckLists.ListActive))
	checklists.GET("/:id", get(h, svc.CheckLists.Get))
	checklists.POST("", create(h, unstamped(svc.CheckLists.Create)))
	checklists.PUT("/:id", update(h, svc.CheckLists.Update))
	registerGuarded[repository.InspectionCheckListRelatedData](checklists, h, "InspectionCheckList", svc.CheckLists)

	frequencies := admin.Group("/frequencies")
	frequencies.GET("", list(h, svc.Frequencies.List))
	frequencies.GET("/:id", get(h, svc.Frequencies.Get))
	frequencies.POST("", create(h, unstamped(svc.Frequencies.Create)))
	frequencies.PUT("/:id", update(h, svc.Frequencies.Update))
	registerGuarded[repository.InspectionFrequencyRelatedData](frequencies, h, "InspectionFrequency", svc.Frequencies)

	bindings := admin.Group("/asset-checklists")
	bindings.GET("", list(h, svc.AssetCheckLists.List))
	bindings.GET("/stats", h.AssignmentStats)
	bindings.POST("/assign", h.AssignCheckLists)
	bindings.GET("/:id", get(h, svc.AssetCheckLists.Get))
	bindings.POST("", create(h, unstamped(svc.AssetCheckLists.Create)))
	bindings.PUT("/:id", update(h, svc.AssetCheckLists.Update))
	registerGuarded[repository.AssetCheckListRelatedData](bindings, h, "AssetCheckList", svc.AssetCheckLists)

	inspections := admin.Group("/inspections")
	inspections.GET("/:id", get(h, svc.Inspections.GetInspection))
	inspections.GET("/:id/report", h.Report)
	inspections.GET("/:id/export", h.Export)

	if m := rt.Maintenance; m != nil {
		maintenance := admin.Group("/maintenance")
		maintenance.GET("/tasks", m.ListTasks)
		maintenance.POST("/tasks/:name/run", m.RunTask)
	}
}
