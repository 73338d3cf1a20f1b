package dto

import (
	"encoding/json"
	"strings"
	"time"
)

// InspectionItemRequest is one answered checklist binding of a submitted inspection
type InspectionItemRequest struct {
	AssetCheckListID int     `json:"assetCheckListId"`
	IsChecked        bool    `json:"isChecked"`
	Remarks          *string `json:"remarks,omitempty"`
}

// SubmitInspectionForm is the multipart form of the public inspection endpoint.
// Items holds a JSON array of InspectionItemRequest; photos travel as "photos" file parts.
type SubmitInspectionForm struct {
	EmployeeID            int    `form:"employeeId"`
	InspectionFrequencyID int    `form:"inspectionFrequencyId"`
	InspectorName         string `form:"inspectorName"`
	ThirdParty            *bool  `form:"thirdParty"`
	Items                 string `form:"items"`
}

// DecodeInspectionItems parses the items field of SubmitInspectionForm; blank means no answers
func DecodeInspectionItems(raw string) ([]InspectionItemRequest, error) {
	var items []InspectionItemRequest
	if strings.TrimSpace(raw) == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

type SubmitInspectionResponse struct {
	InspectionID  int `json:"inspectionId"`
	PhotosSaved   int `json:"photosSaved"`
	PhotosSkipped int `json:"photosSkipped"`
}

// LastInspectionSummary is shown on the start page of an asset inspection
type LastInspectionSummary struct {
	ID             int       `json:"id"`
	InspectionDate time.Time `json:"inspectionDate"`
	InspectorName  string    `json:"inspectorName"`
	EmployeeName   string    `json:"employeeName"`
	FrequencyName  string    `json:"frequencyName"`
	ThirdParty     bool      `json:"thirdParty"`
	Attachment     string    `json:"attachment,omitempty"`
	PhotoCount     int       `json:"photoCount"`
}

// CheckListView is one checklist item to answer on the inspection form
type CheckListView struct {
	AssetCheckListID int    `json:"assetCheckListId"`
	Name             string `json:"name"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	DisplayOrder     int    `json:"displayOrder"`
}
