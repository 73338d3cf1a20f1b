package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/amoylab/shopinspector/internal/apiserver/database"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

const (
	margin      = 14.0
	lineHeight  = 5.0
	photoBoxH   = 42.0
	photoGap    = 3.0
	labelHeight = 5.0
	fontFamily  = "Helvetica"
)

type rgb struct{ r, g, b int }

var (
	colorBlack     = rgb{0, 0, 0}
	colorGrey      = rgb{97, 97, 97}
	colorGreyLight = rgb{238, 238, 238}
	colorHeader    = rgb{21, 101, 192}
	colorWhite     = rgb{255, 255, 255}
	colorOKFill    = rgb{232, 245, 233}
	colorOKText    = rgb{56, 142, 60}
	colorFailFill  = rgb{255, 235, 238}
	colorFailText  = rgb{211, 47, 47}
)

// Generator renders inspection reports as PDF
type Generator struct {
	logger *zap.Logger
	// compress is switched off by tests so the content streams stay readable
	compress bool
}

func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{logger: logger.Named("report"), compress: true}
}

// Generate renders the report of insp with the given photos; generatedAt is printed in the footer
func (g *Generator) Generate(insp *database.AssetInspection, photos []Photo, generatedAt time.Time) ([]byte, error) {
	id := 0
	if insp != nil {
		id = insp.ID
	}

	layout, err := BuildLayout(insp, photos, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF for inspection %d: %w", id, err)
	}
	for _, row := range layout.PhotoRows {
		for _, cell := range row {
			if cell.State == CellError {
				g.logger.Warn("photo rendered as placeholder",
					zap.Int("inspection_id", id),
					zap.String("label", cell.Label),
					zap.String("reason", cell.Reason))
			}
		}
	}

	out, err := g.Render(layout, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF for inspection %d: %w", id, err)
	}
	return out, nil
}

// Render draws a layout on A4 portrait pages
func (g *Generator) Render(l *Layout, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(g.compress)
	pdf.SetCreationDate(generatedAt.UTC())
	pdf.SetTitle(fmt.Sprintf("%s %s", l.Title, l.Subtitle), true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()

	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	r.header(l)
	r.fields(l.Fields)
	r.checklist(l)
	r.notes(l.Notes)
	r.photos(l)
	r.footer(l.Footer)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type renderer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (r *renderer) color(c rgb) { r.pdf.SetTextColor(c.r, c.g, c.b) }
func (r *renderer) fill(c rgb)  { r.pdf.SetFillColor(c.r, c.g, c.b) }

func (r *renderer) contentWidth() float64 {
	w, _ := r.pdf.GetPageSize()
	return w - 2*margin
}

func (r *renderer) section(title string) {
	r.pdf.Ln(4)
	r.pdf.SetFont(fontFamily, "B", 14)
	r.color(colorBlack)
	r.pdf.CellFormat(0, 8, r.tr(title), "", 1, "L", false, 0, "")
}

func (r *renderer) muted(text string) {
	r.pdf.SetFont(fontFamily, "I", 10)
	r.color(colorGrey)
	r.pdf.CellFormat(0, lineHeight+1, r.tr(text), "", 1, "L", false, 0, "")
}

func (r *renderer) header(l *Layout) {
	r.pdf.SetFont(fontFamily, "B", 22)
	r.color(colorBlack)
	r.pdf.CellFormat(0, 10, r.tr(l.Title), "", 1, "L", false, 0, "")
	r.pdf.SetFont(fontFamily, "", 12)
	r.color(colorGrey)
	r.pdf.CellFormat(0, 6, r.tr(l.Subtitle), "", 1, "L", false, 0, "")
	r.pdf.Ln(4)
}

// fields draws the key/value rows two pairs per line
func (r *renderer) fields(fields []Field) {
	labelW := 28.0
	valueW := r.contentWidth()/2 - labelW
	for i, f := range fields {
		r.pdf.SetFont(fontFamily, "B", 10)
		r.color(colorBlack)
		r.fill(colorGreyLight)
		r.pdf.CellFormat(labelW, lineHeight+2, r.tr(f.Label+":"), "", 0, "L", true, 0, "")
		r.pdf.SetFont(fontFamily, "", 10)
		ln := 0
		if i%2 == 1 || i == len(fields)-1 {
			ln = 1
		}
		r.pdf.CellFormat(valueW, lineHeight+2, r.tr(f.Value), "", ln, "L", false, 0, "")
	}
}

func (r *renderer) checklist(l *Layout) {
	r.section("Checklist")
	if l.EmptyChecklist != "" {
		r.muted(l.EmptyChecklist)
		return
	}

	width := r.contentWidth()
	cols := []float64{width * 0.5, 22, width*0.5 - 22}

	r.pdf.SetFont(fontFamily, "B", 10)
	r.fill(colorHeader)
	r.color(colorWhite)
	for i, h := range []string{"Item", "Status", "Remarks"} {
		align := "L"
		if i == 1 {
			align = "C"
		}
		r.pdf.CellFormat(cols[i], lineHeight+2, h, "", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetFont(fontFamily, "", 10)
	for _, item := range l.Items {
		nameLines := r.pdf.SplitLines([]byte(r.tr(item.Name)), cols[0]-2)
		remarkLines := r.pdf.SplitLines([]byte(r.tr(item.Remarks)), cols[2]-2)
		h := float64(max(len(nameLines), len(remarkLines), 1))*lineHeight + 2

		_, pageH := r.pdf.GetPageSize()
		if r.pdf.GetY()+h > pageH-margin {
			r.pdf.AddPage()
		}

		bg, fg := colorFailFill, colorFailText
		if item.Passed {
			bg, fg = colorOKFill, colorOKText
		}
		x, y := r.pdf.GetX(), r.pdf.GetY()
		r.fill(bg)
		r.pdf.Rect(x, y, width, h, "F")

		r.color(colorBlack)
		r.pdf.SetXY(x, y+1)
		r.pdf.MultiCell(cols[0], lineHeight, r.tr(item.Name), "", "L", false)

		r.pdf.SetFont(fontFamily, "B", 10)
		r.color(fg)
		r.pdf.SetXY(x+cols[0], y+1)
		r.pdf.CellFormat(cols[1], lineHeight, item.Status, "", 0, "C", false, 0, "")

		r.pdf.SetFont(fontFamily, "", 10)
		r.color(colorBlack)
		r.pdf.SetXY(x+cols[0]+cols[1], y+1)
		r.pdf.MultiCell(cols[2], lineHeight, r.tr(item.Remarks), "", "L", false)

		r.pdf.SetXY(x, y+h)
	}
}

func (r *renderer) notes(notes []string) {
	if len(notes) == 0 {
		return
	}
	r.section("Notes")
	r.pdf.SetFont(fontFamily, "", 10)
	r.color(colorBlack)
	for _, n := range notes {
		r.pdf.MultiCell(0, lineHeight, r.tr(n), "", "L", false)
	}
}

func (r *renderer) photos(l *Layout) {
	r.section(l.PhotoHeading)
	if l.PhotoMessage != "" {
		r.muted(l.PhotoMessage)
		return
	}

	cellW := (r.contentWidth() - photoGap*(PhotosPerRow-1)) / PhotosPerRow
	rowH := photoBoxH + labelHeight + photoGap
	_, pageH := r.pdf.GetPageSize()

	for _, row := range l.PhotoRows {
		if r.pdf.GetY()+rowH > pageH-margin {
			r.pdf.AddPage()
		}
		y := r.pdf.GetY()
		for i, cell := range row {
			x := margin + float64(i)*(cellW+photoGap)
			r.photoCell(cell, x, y, cellW)
		}
		r.pdf.SetXY(margin, y+rowH)
	}
}

func (r *renderer) photoCell(cell PhotoCell, x, y, w float64) {
	r.pdf.SetDrawColor(189, 189, 189)
	r.pdf.Rect(x, y, w, photoBoxH+labelHeight, "D")

	if cell.State == CellImage {
		name := fmt.Sprintf("photo-%d-%.0f-%.0f", r.pdf.PageNo(), x, y)
		opts := fpdf.ImageOptions{ImageType: "JPG"}
		r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(cell.Image))

		maxW, maxH := w-2, photoBoxH-2
		iw, ih := maxW, maxH
		if cell.Width > 0 && cell.Height > 0 {
			scale := min(maxW/float64(cell.Width), maxH/float64(cell.Height))
			iw, ih = float64(cell.Width)*scale, float64(cell.Height)*scale
		}
		r.pdf.ImageOptions(name, x+(w-iw)/2, y+1+(maxH-ih)/2, iw, ih, false, opts, 0, "")
	} else {
		r.fill(colorGreyLight)
		r.pdf.Rect(x+1, y+1, w-2, photoBoxH-2, "F")
		r.pdf.SetFont(fontFamily, "", 10)
		r.color(colorFailText)
		r.pdf.SetXY(x, y+photoBoxH/2-lineHeight/2)
		r.pdf.CellFormat(w, lineHeight, cell.Placeholder(), "", 0, "C", false, 0, "")
	}

	r.pdf.SetFont(fontFamily, "", 8)
	r.color(colorGrey)
	r.pdf.SetXY(x+1, y+photoBoxH)
	r.pdf.CellFormat(w-2, labelHeight, r.tr(cell.Label), "", 0, "L", false, 0, "")
}

func (r *renderer) footer(text string) {
	r.pdf.Ln(6)
	y := r.pdf.GetY()
	r.pdf.SetDrawColor(224, 224, 224)
	r.pdf.Line(margin, y, margin+r.contentWidth(), y)
	r.pdf.Ln(2)
	r.pdf.SetFont(fontFamily, "", 8)
	r.color(colorGrey)
	r.pdf.CellFormat(0, lineHeight, r.tr(text), "", 1, "L", false, 0, "")
}
