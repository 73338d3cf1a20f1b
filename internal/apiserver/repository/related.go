package repository

import (
	"time"

	"github.com/amoylab/shopinspector/internal/common/cnst"
)

// CompanyRelatedData summarises what a forced company delete removes
type CompanyRelatedData struct {
	EmployeeCount      int        `json:"employeeCount"`
	TotalInspections   int        `json:"totalInspections"`
	LastInspectionDate *time.Time `json:"lastInspectionDate"`
	EmployeeNames      []string   `json:"employeeNames"`
	AffectedAssetNames []string   `json:"affectedAssetNames"`
}

// EmployeeRelatedData summarises the inspections recorded by an employee
type EmployeeRelatedData struct {
	TotalInspections    int        `json:"totalInspections"`
	LastInspectionDate  *time.Time `json:"lastInspectionDate"`
	AffectedAssetNames  []string   `json:"affectedAssetNames"`
	ChecklistItemsCount int        `json:"checklistItemsCount"`
}

// AssetCheckListRelatedData summarises the answers recorded against one asset/checklist binding
type AssetCheckListRelatedData struct {
	AssetName              string     `json:"assetName"`
	CheckListName          string     `json:"checkListName"`
	TotalInspectionRecords int        `json:"totalInspectionRecords"`
	FirstInspectionDate    *time.Time `json:"firstInspectionDate"`
	LastInspectionDate     *time.Time `json:"lastInspectionDate"`
	EmployeeNames          []string   `json:"employeeNames"`
	InspectionFrequencies  []string   `json:"inspectionFrequencies"`
}

// InspectionCheckListRelatedData summarises where a checklist item is bound and answered
type InspectionCheckListRelatedData struct {
	TotalAssetCheckLists int        `json:"totalAssetCheckLists"`
	AffectedAssetNames   []string   `json:"affectedAssetNames"`
	AssignedCompanyNames []string   `json:"assignedCompanyNames"`
	TotalInspectionItems int        `json:"totalInspectionItems"`
	FirstUsedDate        *time.Time `json:"firstUsedDate"`
	LastUsedDate         *time.Time `json:"lastUsedDate"`
}

// InspectionFrequencyRelatedData summarises the inspections recorded under a frequency
type InspectionFrequencyRelatedData struct {
	TotalInspections      int        `json:"totalInspections"`
	FirstInspectionDate   *time.Time `json:"firstInspectionDate"`
	LastInspectionDate    *time.Time `json:"lastInspectionDate"`
	AffectedAssetNames    []string   `json:"affectedAssetNames"`
	AssignedEmployeeNames []string   `json:"assignedEmployeeNames"`
	ChecklistItemsCount   int        `json:"checklistItemsCount"`
}

// capNames copies at most cnst.RelatedPreviewLimit names; the result is never nil
func capNames(names []string) []string {
	n := min(len(names), cnst.RelatedPreviewLimit)
	out := make([]string, n)
	copy(out, names[:n])
	return out
}

// Preview returns a copy whose name lists are capped for a confirmation prompt
func (d CompanyRelatedData) Preview() CompanyRelatedData {
	d.EmployeeNames = capNames(d.EmployeeNames)
	d.AffectedAssetNames = capNames(d.AffectedAssetNames)
	return d
}

func (d EmployeeRelatedData) Preview() EmployeeRelatedData {
	d.AffectedAssetNames = capNames(d.AffectedAssetNames)
	return d
}

func (d AssetCheckListRelatedData) Preview() AssetCheckListRelatedData {
	d.EmployeeNames = capNames(d.EmployeeNames)
	d.InspectionFrequencies = capNames(d.InspectionFrequencies)
	return d
}

func (d InspectionCheckListRelatedData) Preview() InspectionCheckListRelatedData {
	d.AffectedAssetNames = capNames(d.AffectedAssetNames)
	d.AssignedCompanyNames = capNames(d.AssignedCompanyNames)
	return d
}

func (d InspectionFrequencyRelatedData) Preview() InspectionFrequencyRelatedData {
	d.AffectedAssetNames = capNames(d.AffectedAssetNames)
	d.AssignedEmployeeNames = capNames(d.AssignedEmployeeNames)
	return d
}
