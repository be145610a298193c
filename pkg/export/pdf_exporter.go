package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfLineHeight = 5.0
	pdfCellPad    = 1.0
)

// PDFExporter renders a Document as an A4 table. Cells wrap, so long diary content grows the row.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType implements Renderer.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension implements Renderer.
func (e *PDFExporter) Extension() string { return "pdf" }

// Render creates the PDF bytes.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(false, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	}
	if len(doc.Details) > 0 {
		pdf.SetFont("Arial", "", 10)
		for _, kv := range doc.Details {
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(40, 6, tr(kv[0]), "", 0, "", false, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(0, 6, tr(kv[1]), "", 1, "", false, 0, "")
		}
	}
	pdf.Ln(4)

	widths := columnWidths(pdf, doc.Columns)

	pdf.SetFont("Arial", "B", 10)
	for i, col := range doc.Columns {
		pdf.CellFormat(widths[i], 8, tr(col.Header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range doc.Rows {
		cells := make([]string, len(doc.Columns))
		lines := 1
		for i, col := range doc.Columns {
			cells[i] = tr(row[col.Key])
			if n := len(pdf.SplitLines([]byte(cells[i]), widths[i]-2*pdfCellPad)); n > lines {
				lines = n
			}
		}
		height := float64(lines)*pdfLineHeight + 2*pdfCellPad
		ensureSpace(pdf, height)

		left, top := pdf.GetXY()
		x := left
		for i, text := range cells {
			pdf.Rect(x, top, widths[i], height, "D")
			pdf.SetXY(x+pdfCellPad, top+pdfCellPad)
			pdf.MultiCell(widths[i]-2*pdfCellPad, pdfLineHeight, text, "", "L", false)
			x += widths[i]
		}
		pdf.SetXY(left, top+height)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(pdf *gofpdf.Fpdf, cols []Column) []float64 {
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageW - left - right

	total := 0.0
	for _, col := range cols {
		total += weight(col)
	}
	widths := make([]float64, len(cols))
	for i, col := range cols {
		widths[i] = usable * weight(col) / total
	}
	return widths
}

func weight(col Column) float64 {
	if col.Width <= 0 {
		return 1
	}
	return col.Width
}

func ensureSpace(pdf *gofpdf.Fpdf, height float64) {
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+height > pageH-bottom {
		pdf.AddPage()
	}
}
