package database

import "time"

// Company is an organisation whose employees perform inspections
type Company struct {
	ID                 int       `json:"id" gorm:"primaryKey;autoIncrement"`
	CompanyName        string    `json:"companyName" gorm:"type:varchar(100);not null"`
	CompanyAdminEmail  string    `json:"companyAdminEmail" gorm:"type:varchar(150);not null"`
	CompanyContactName string    `json:"companyContactName" gorm:"type:varchar(100);not null"`
	Active             bool      `json:"active" gorm:"not null"`
	CreatedOn          time.Time `json:"createdOn" gorm:"not null"`
	CreatedBy          string    `json:"createdBy" gorm:"type:varchar(100);not null"`
}

func (Company) TableName() string { return "companies" }

// Employee belongs to exactly one company
type Employee struct {
	ID           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	EmployeeName string    `json:"employeeName" gorm:"type:varchar(100);not null"`
	CompanyID    int       `json:"companyId" gorm:"not null;index"`
	Active       bool      `json:"active" gorm:"not null"`
	CreatedOn    time.Time `json:"createdOn" gorm:"not null"`
	CreatedBy    string    `json:"createdBy" gorm:"type:varchar(100);not null"`

	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (Employee) TableName() string { return "employees" }

type AssetType struct {
	ID            int    `json:"id" gorm:"primaryKey;autoIncrement"`
	AssetTypeName string `json:"assetTypeName" gorm:"type:varchar(100);not null"`
}

func (AssetType) TableName() string { return "asset_types" }

// Asset is a piece of inspected equipment. Removing its type removes the asset.
type Asset struct {
	ID            int       `json:"id" gorm:"primaryKey;autoIncrement"`
	AssetName     string    `json:"assetName" gorm:"type:varchar(150);not null"`
	AssetLocation string    `json:"assetLocation" gorm:"type:varchar(150)"`
	AssetTypeID   int       `json:"assetTypeId" gorm:"not null;index"`
	AssetCode     string    `json:"assetCode" gorm:"type:varchar(50)"`
	Department    string    `json:"department" gorm:"type:varchar(100)"`
	Active        bool      `json:"active" gorm:"not null"`
	CreatedOn     time.Time `json:"createdOn" gorm:"not null"`
	CreatedBy     string    `json:"createdBy" gorm:"type:varchar(100);not null"`

	AssetType *AssetType `json:"assetType,omitempty" gorm:"foreignKey:AssetTypeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Asset) TableName() string { return "assets" }

// InspectionCheckList is a reusable checklist item definition
type InspectionCheckList struct {
	ID          int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"column:inspection_check_list_name;type:varchar(200);not null"`
	Description string `json:"description" gorm:"column:inspection_check_list_description;type:varchar(500)"`
	Title       string `json:"title" gorm:"column:inspection_check_list_title;type:varchar(200)"`
	Active      bool   `json:"active" gorm:"not null"`
}

func (InspectionCheckList) TableName() string { return "inspection_check_lists" }

// AssetCheckList binds a checklist item to an asset
type AssetCheckList struct {
	ID                    int  `json:"id" gorm:"primaryKey;autoIncrement"`
	AssetID               int  `json:"assetId" gorm:"not null;uniqueIndex:idx_asset_check_list_pair,priority:1"`
	InspectionCheckListID int  `json:"inspectionCheckListId" gorm:"not null;index;uniqueIndex:idx_asset_check_list_pair,priority:2"`
	DisplayOrder          int  `json:"displayOrder" gorm:"not null"`
	Active                bool `json:"active" gorm:"not null"`

	Asset               *Asset               `json:"asset,omitempty" gorm:"foreignKey:AssetID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	InspectionCheckList *InspectionCheckList `json:"inspectionCheckList,omitempty" gorm:"foreignKey:InspectionCheckListID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (AssetCheckList) TableName() string { return "asset_check_lists" }

type InspectionFrequency struct {
	ID            int    `json:"id" gorm:"primaryKey;autoIncrement"`
	FrequencyName string `json:"frequencyName" gorm:"type:varchar(100);not null"`
}

func (InspectionFrequency) TableName() string { return "inspection_frequencies" }

// AssetInspection is one completed inspection event
type AssetInspection struct {
	ID                    int       `json:"id" gorm:"primaryKey;autoIncrement"`
	AssetID               int       `json:"assetId" gorm:"not null;index"`
	InspectorName         string    `json:"inspectorName" gorm:"type:varchar(100);not null"`
	InspectionDate        time.Time `json:"inspectionDate" gorm:"not null;index"`
	Attachment            string    `json:"attachment" gorm:"type:varchar(500)"`
	InspectionFrequencyID int       `json:"inspectionFrequencyId" gorm:"not null;index"`
	CreatedOn             time.Time `json:"createdOn" gorm:"not null"`
	CreatedBy             string    `json:"createdBy" gorm:"type:varchar(100);not null"`
	EmployeeID            int       `json:"employeeId" gorm:"not null;index"`
	ThirdParty            *bool     `json:"thirdParty"`

	Asset               *Asset                     `json:"asset,omitempty" gorm:"foreignKey:AssetID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Employee            *Employee                  `json:"employee,omitempty" gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	InspectionFrequency *InspectionFrequency       `json:"inspectionFrequency,omitempty" gorm:"foreignKey:InspectionFrequencyID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CheckListItems      []AssetInspectionCheckList `json:"checkListItems,omitempty" gorm:"foreignKey:AssetInspectionID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Photos              []InspectionPhoto          `json:"photos,omitempty" gorm:"foreignKey:AssetInspectionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (AssetInspection) TableName() string { return "asset_inspections" }

// AssetInspectionCheckList is one answered checklist row of an inspection.
// It is the highest volume table, hence the 64-bit key.
type AssetInspectionCheckList struct {
	ID                int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	AssetInspectionID int     `json:"assetInspectionId" gorm:"not null;index"`
	AssetCheckListID  int     `json:"assetCheckListId" gorm:"not null;index"`
	IsChecked         bool    `json:"isChecked" gorm:"not null"`
	Remarks           *string `json:"remarks" gorm:"type:varchar(1000)"`

	AssetCheckList *AssetCheckList `json:"assetCheckList,omitempty" gorm:"foreignKey:AssetCheckListID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (AssetInspectionCheckList) TableName() string { return "asset_inspection_check_lists" }

// InspectionPhoto is one uploaded image. DisplayOrder 0 is the primary photo.
type InspectionPhoto struct {
	ID                int       `json:"id" gorm:"primaryKey;autoIncrement"`
	AssetInspectionID int       `json:"assetInspectionId" gorm:"not null;index"`
	PhotoPath         string    `json:"photoPath" gorm:"type:varchar(500);not null"`
	UploadedOn        time.Time `json:"uploadedOn" gorm:"not null"`
	DisplayOrder      int       `json:"displayOrder" gorm:"not null"`
}

func (InspectionPhoto) TableName() string { return "inspection_photos" }

// Models lists every persisted type in migration order
func Models() []any {
	return []any{
		&Company{},
		&Employee{},
		&AssetType{},
		&Asset{},
		&InspectionCheckList{},
		&AssetCheckList{},
		&InspectionFrequency{},
		&AssetInspection{},
		&AssetInspectionCheckList{},
		&InspectionPhoto{},
	}
}
