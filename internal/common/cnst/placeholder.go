package cnst

// Fallback names used when a navigation reference is missing.
const (
	NotAvailable      = "N/A"
	UnknownName       = "Unknown"
	UnknownAsset      = "Unknown Asset"
	UnknownEmployee   = "Unknown Employee"
	UnknownChecklist  = "Unknown Checklist"
	UnknownFrequency  = "Unknown Frequency"
	UnknownDepartment = "Unknown Department"
)

// Date layouts
const (
	DateLayout          = "2006-01-02"
	DateTimeLayout      = "2006-01-02 15:04"
	TimestampLayout     = "2006-01-02 15:04:05"
	RelatedPreviewLimit = 5
)
