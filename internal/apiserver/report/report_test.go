package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amoylab/shopinspector/internal/apiserver/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var generatedAt = time.Date(2024, 5, 1, 8, 30, 15, 0, time.UTC)

func strPtr(s string) *string { return &s }

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		img.Set(x, 1, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func fullInspection() *database.AssetInspection {
	third := true
	return &database.AssetInspection{
		ID:                  12,
		InspectorName:       "Jane",
		InspectionDate:      time.Date(2024, 4, 30, 16, 5, 0, 0, time.UTC),
		ThirdParty:          &third,
		Asset:               &database.Asset{AssetName: "Forklift", AssetCode: "FL-1"},
		Employee:            &database.Employee{EmployeeName: "Bob"},
		InspectionFrequency: &database.InspectionFrequency{FrequencyName: "Weekly"},
		CheckListItems: []database.AssetInspectionCheckList{
			{IsChecked: true, AssetCheckList: &database.AssetCheckList{InspectionCheckList: &database.InspectionCheckList{Name: "Brakes"}}},
			{IsChecked: false, Remarks: strPtr("  leaking "), AssetCheckList: &database.AssetCheckList{InspectionCheckList: &database.InspectionCheckList{Name: "Hydraulics"}}},
			{IsChecked: false, Remarks: strPtr("no name")},
		},
	}
}

func TestBuildLayout_Fields(t *testing.T) {
	l, err := BuildLayout(fullInspection(), nil, generatedAt)
	require.NoError(t, err)

	assert.Equal(t, "Inspection Report", l.Title)
	assert.Equal(t, "#12", l.Subtitle)
	assert.Equal(t, []Field{
		{"Asset", "Forklift"},
		{"Code", "FL-1"},
		{"Inspector", "Jane"},
		{"Employee", "Bob"},
		{"Frequency", "Weekly"},
		{"Date", "2024-04-30 16:05"},
		{"Third Party", "Yes"},
	}, l.Fields)
	assert.Equal(t, "Generated: 2024-05-01 08:30:15 UTC", l.Footer)
}

func TestBuildLayout_ChecklistAndNotes(t *testing.T) {
	l, err := BuildLayout(fullInspection(), nil, generatedAt)
	require.NoError(t, err)

	require.Len(t, l.Items, 3)
	assert.Equal(t, ItemRow{Name: "Brakes", Status: StatusOK, Passed: true, Remarks: "-"}, l.Items[0])
	assert.Equal(t, ItemRow{Name: "Hydraulics", Status: StatusFail, Remarks: "leaking"}, l.Items[1])
	assert.Equal(t, "Unknown", l.Items[2].Name)
	assert.Empty(t, l.EmptyChecklist)
	assert.Equal(t, []string{"• Hydraulics: leaking", "• Item: no name"}, l.Notes)
}

func TestBuildLayout_NullReferencesUsePlaceholders(t *testing.T) {
	insp := &database.AssetInspection{ID: 3}

	l, err := BuildLayout(insp, nil, generatedAt)
	require.NoError(t, err)

	values := map[string]string{}
	for _, f := range l.Fields {
		values[f.Label] = f.Value
	}
	assert.Equal(t, "N/A", values["Asset"])
	assert.Equal(t, "N/A", values["Code"])
	assert.Equal(t, "Anonymous", values["Inspector"])
	assert.Equal(t, "N/A", values["Employee"])
	assert.Equal(t, "N/A", values["Frequency"])
	assert.Equal(t, "N/A", values["Date"])
	assert.Equal(t, "No", values["Third Party"])
	assert.Equal(t, "No checklist items.", l.EmptyChecklist)
	assert.Equal(t, "Photos (0)", l.PhotoHeading)
	assert.Equal(t, "No photos uploaded.", l.PhotoMessage)

	g := NewGenerator(zap.NewNop())
	out, err := g.Generate(insp, nil, generatedAt)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestBuildLayout_PhotoGrid(t *testing.T) {
	dir := t.TempDir()
	var photos []Photo
	for i := range 6 {
		name := fmt.Sprintf("p%d.png", i)
		photos = append(photos, Photo{Label: name, Path: writePNG(t, dir, name)})
	}
	photos = append(photos, Photo{Label: "gone.jpg", Path: filepath.Join(dir, "gone.jpg")})

	l, err := BuildLayout(fullInspection(), photos, generatedAt)
	require.NoError(t, err)

	assert.Equal(t, "Photos (7)", l.PhotoHeading)
	require.Len(t, l.PhotoRows, 3)
	assert.Len(t, l.PhotoRows[0], 3)
	assert.Len(t, l.PhotoRows[1], 3)
	assert.Len(t, l.PhotoRows[2], 1)

	first := l.PhotoRows[0][0]
	assert.Equal(t, CellImage, first.State)
	assert.Equal(t, 8, first.Width)
	assert.Equal(t, 4, first.Height)
	assert.NotEmpty(t, first.Image)

	last := l.PhotoRows[2][0]
	assert.Equal(t, CellMissing, last.State)
	assert.Equal(t, "Missing", last.Placeholder())
	assert.Equal(t, "gone.jpg", last.Label)
}

// lossless 1x1 webp
const webpPixel = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func TestBuildLayout_WebpPhotosAreEmbedded(t *testing.T) {
	data, err := base64.StdEncoding.DecodeString(webpPixel)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "a.webp")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	l, err := BuildLayout(fullInspection(), []Photo{{"a.webp", path}}, generatedAt)
	require.NoError(t, err)
	require.Len(t, l.PhotoRows, 1)
	cell := l.PhotoRows[0][0]
	assert.Equal(t, CellImage, cell.State, cell.Reason)
	assert.Equal(t, 1, cell.Width)
	assert.Equal(t, 1, cell.Height)
	assert.NotEmpty(t, cell.Image)
}

func TestBuildLayout_UnreadablePhotosBecomeErrors(t *testing.T) {
	broken := filepath.Join(t.TempDir(), "b.png")
	require.NoError(t, os.WriteFile(broken, []byte("\x89PNG\r\n\x1a\ntruncated"), 0o644))

	l, err := BuildLayout(fullInspection(), []Photo{{"b.png", broken}}, generatedAt)
	require.NoError(t, err)
	require.Len(t, l.PhotoRows, 1)
	cell := l.PhotoRows[0][0]
	assert.Equal(t, CellError, cell.State)
	assert.Equal(t, "Error", cell.Placeholder())
	assert.NotEmpty(t, cell.Reason)
}

func TestBuildLayout_OnlyInvalidPhotoEntries(t *testing.T) {
	l, err := BuildLayout(fullInspection(), []Photo{{Label: "x", Path: " "}, {Label: "", Path: "/tmp/y.jpg"}}, generatedAt)
	require.NoError(t, err)
	assert.Equal(t, "Photos (2)", l.PhotoHeading)
	assert.Equal(t, "No valid photos found.", l.PhotoMessage)
	assert.Empty(t, l.PhotoRows)
}

func TestGenerate_RendersContent(t *testing.T) {
	dir := t.TempDir()
	photos := []Photo{
		{Label: "front.png", Path: writePNG(t, dir, "front.png")},
		{Label: "back.jpg", Path: filepath.Join(dir, "back.jpg")},
	}

	g := NewGenerator(zap.NewNop())
	g.compress = false
	out, err := g.Generate(fullInspection(), photos, generatedAt)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	for _, text := range []string{"Inspection Report", "Forklift", "Hydraulics", "leaking", "Missing", "front.png", "Generated: 2024-05-01 08:30:15 UTC"} {
		assert.True(t, bytes.Contains(out, []byte(text)), text)
	}
}

func TestGenerate_NilInspection(t *testing.T) {
	g := NewGenerator(zap.NewNop())
	_, err := g.Generate(nil, nil, generatedAt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate PDF for inspection 0")
}

func TestGenerate_ManyRowsSpanPages(t *testing.T) {
	insp := fullInspection()
	for i := range 80 {
		insp.CheckListItems = append(insp.CheckListItems, database.AssetInspectionCheckList{
			IsChecked: i%2 == 0,
			Remarks:   strPtr(fmt.Sprintf("remark %d", i)),
		})
	}

	g := NewGenerator(zap.NewNop())
	g.compress = false
	out, err := g.Generate(insp, nil, generatedAt)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, bytes.Contains(out, []byte("remark 79")))
}
