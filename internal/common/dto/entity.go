package dto

// ListQuery carries the optional paging and search parameters of every list endpoint.
// Leaving either page parameter out returns all rows.
type ListQuery struct {
	PageIndex *int   `form:"pageIndex"`
	PageSize  *int   `form:"pageSize"`
	Search    string `form:"search"`
}

type CompanyRequest struct {
	CompanyName        string `json:"companyName"`
	CompanyAdminEmail  string `json:"companyAdminEmail"`
	CompanyContactName string `json:"companyContactName"`
	Active             *bool  `json:"active,omitempty"`
}

type EmployeeRequest struct {
	EmployeeName string `json:"employeeName"`
	CompanyID    int    `json:"companyId"`
	Active       *bool  `json:"active,omitempty"`
}

type AssetTypeRequest struct {
	AssetTypeName string `json:"assetTypeName"`
}

type AssetRequest struct {
	AssetName     string `json:"assetName"`
	AssetLocation string `json:"assetLocation"`
	AssetTypeID   int    `json:"assetTypeId"`
	AssetCode     string `json:"assetCode"`
	Department    string `json:"department"`
	Active        *bool  `json:"active,omitempty"`
}

type CheckListRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Title       string `json:"title"`
	Active      *bool  `json:"active,omitempty"`
}

type FrequencyRequest struct {
	FrequencyName string `json:"frequencyName"`
}

type AssetCheckListRequest struct {
	AssetID               int   `json:"assetId"`
	InspectionCheckListID int   `json:"inspectionCheckListId"`
	DisplayOrder          int   `json:"displayOrder"`
	Active                *bool `json:"active,omitempty"`
}

// AssignCheckListsRequest binds several checklist items to one asset at once
type AssignCheckListsRequest struct {
	AssetID      int   `json:"assetId"`
	CheckListIDs []int `json:"checkListIds"`
	DisplayOrder int   `json:"displayOrder"`
	Active       *bool `json:"active,omitempty"`
}

type AssignCheckListsResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// DeleteResponse is returned by successful guarded and forced deletes
type DeleteResponse struct {
	ID      int    `json:"id"`
	Deleted bool   `json:"deleted"`
	Mode    string `json:"mode"`
}

const (
	DeleteModeGuarded = "guarded"
	DeleteModeForce   = "force"
)
