package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/amoylab/shopinspector/internal/apiserver/database"
	"github.com/amoylab/shopinspector/internal/common/cnst"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

const (
	Title = "Inspection Report"

	// PhotosPerRow is the width of the photo grid
	PhotosPerRow = 3

	StatusOK   = "OK"
	StatusFail = "Fail"

	noChecklist   = "No checklist items."
	noPhotos      = "No photos uploaded."
	noValidPhotos = "No valid photos found."

	placeholderMissing = "Missing"
	placeholderError   = "Error"
)

// Photo is one resolved photo of an inspection: the label printed under it and its file on disk
type Photo struct {
	Label string
	Path  string
}

// CellState tells how a photo cell is drawn
type CellState int

const (
	CellImage CellState = iota
	CellMissing
	CellError
)

// PhotoCell is one cell of the photo grid. Image holds a baseline JPEG re-encoding of the
// source so every readable format renders the same way.
type PhotoCell struct {
	Label  string
	State  CellState
	Image  []byte
	Width  int
	Height int

	// Reason explains a CellError state for logging
	Reason string
}

// Placeholder is the text drawn instead of the image, empty for CellImage
func (c PhotoCell) Placeholder() string {
	switch c.State {
	case CellMissing:
		return placeholderMissing
	case CellError:
		return placeholderError
	default:
		return ""
	}
}

type Field struct {
	Label string
	Value string
}

type ItemRow struct {
	Name    string
	Status  string
	Passed  bool
	Remarks string
}

// Layout is the complete content of a report in drawing order
type Layout struct {
	InspectionID int
	Title        string
	Subtitle     string
	Fields       []Field

	Items []ItemRow
	// EmptyChecklist is the line shown instead of the table when there are no items
	EmptyChecklist string
	Notes          []string

	PhotoHeading string
	// PhotoMessage replaces the grid when there is nothing to draw
	PhotoMessage string
	PhotoRows    [][]PhotoCell

	Footer string
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return cnst.NotAvailable
	}
	return s
}

func itemName(row database.AssetInspectionCheckList, fallback string) string {
	if row.AssetCheckList != nil && row.AssetCheckList.InspectionCheckList != nil {
		if name := strings.TrimSpace(row.AssetCheckList.InspectionCheckList.Name); name != "" {
			return name
		}
	}
	return fallback
}

func remarks(row database.AssetInspectionCheckList) string {
	if row.Remarks == nil {
		return ""
	}
	return strings.TrimSpace(*row.Remarks)
}

// BuildLayout composes the report of insp. Missing associations render as placeholders and
// unreadable photos become placeholder cells, so only a nil inspection is an error.
func BuildLayout(insp *database.AssetInspection, photos []Photo, generatedAt time.Time) (*Layout, error) {
	if insp == nil {
		return nil, errors.New("inspection is nil")
	}

	l := &Layout{
		InspectionID: insp.ID,
		Title:        Title,
		Subtitle:     fmt.Sprintf("#%d", insp.ID),
		Footer:       "Generated: " + generatedAt.UTC().Format(cnst.TimestampLayout) + " UTC",
	}

	var assetName, assetCode, employee, frequency, date string
	if insp.Asset != nil {
		assetName, assetCode = insp.Asset.AssetName, insp.Asset.AssetCode
	}
	if insp.Employee != nil {
		employee = insp.Employee.EmployeeName
	}
	if insp.InspectionFrequency != nil {
		frequency = insp.InspectionFrequency.FrequencyName
	}
	if !insp.InspectionDate.IsZero() {
		date = insp.InspectionDate.Format(cnst.DateTimeLayout)
	}
	inspector := insp.InspectorName
	if strings.TrimSpace(inspector) == "" {
		inspector = cnst.DefaultInspectorName
	}
	thirdParty := "No"
	if insp.ThirdParty != nil && *insp.ThirdParty {
		thirdParty = "Yes"
	}
	l.Fields = []Field{
		{"Asset", orNA(assetName)},
		{"Code", orNA(assetCode)},
		{"Inspector", inspector},
		{"Employee", orNA(employee)},
		{"Frequency", orNA(frequency)},
		{"Date", orNA(date)},
		{"Third Party", thirdParty},
	}

	if len(insp.CheckListItems) == 0 {
		l.EmptyChecklist = noChecklist
	}
	for _, row := range insp.CheckListItems {
		item := ItemRow{Name: itemName(row, cnst.UnknownName), Passed: row.IsChecked, Status: StatusFail, Remarks: "-"}
		if row.IsChecked {
			item.Status = StatusOK
		}
		if r := remarks(row); r != "" {
			item.Remarks = r
			l.Notes = append(l.Notes, fmt.Sprintf("• %s: %s", itemName(row, "Item"), r))
		}
		l.Items = append(l.Items, item)
	}

	l.PhotoHeading = fmt.Sprintf("Photos (%d)", len(photos))
	if len(photos) == 0 {
		l.PhotoMessage = noPhotos
		return l, nil
	}

	var cells []PhotoCell
	for _, p := range photos {
		if strings.TrimSpace(p.Path) == "" || strings.TrimSpace(p.Label) == "" {
			continue
		}
		cells = append(cells, loadPhoto(p))
	}
	if len(cells) == 0 {
		l.PhotoMessage = noValidPhotos
		return l, nil
	}
	for start := 0; start < len(cells); start += PhotosPerRow {
		l.PhotoRows = append(l.PhotoRows, cells[start:min(start+PhotosPerRow, len(cells))])
	}
	return l, nil
}

// decodable reports whether a registered image decoder handles mt
func decodable(mt *mimetype.MIME) bool {
	for _, m := range []string{"image/jpeg", "image/png", "image/gif", "image/webp"} {
		if mt.Is(m) {
			return true
		}
	}
	return false
}

// loadPhoto reads and re-encodes one photo; any failure becomes a placeholder cell
func loadPhoto(p Photo) PhotoCell {
	cell := PhotoCell{Label: p.Label}

	data, err := os.ReadFile(p.Path)
	if errors.Is(err, fs.ErrNotExist) {
		cell.State = CellMissing
		return cell
	}
	if err != nil {
		cell.State, cell.Reason = CellError, err.Error()
		return cell
	}

	mt := mimetype.Detect(data)
	if !decodable(mt) {
		cell.State, cell.Reason = CellError, "cannot embed "+mt.String()
		return cell
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		cell.State, cell.Reason = CellError, err.Error()
		return cell
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		cell.State, cell.Reason = CellError, err.Error()
		return cell
	}

	bounds := img.Bounds()
	cell.State = CellImage
	cell.Image = buf.Bytes()
	cell.Width, cell.Height = bounds.Dx(), bounds.Dy()
	return cell
}
