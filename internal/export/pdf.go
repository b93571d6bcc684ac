package export

import (
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pdfPageWidth  = 277.0 // A4 landscape minus margins, in mm
	pdfLineHeight = 6.0
	pdfMaxCell    = 40
)

// PDFEncoder renders rows as a table on landscape A4 pages.
type PDFEncoder struct {
	w       io.Writer
	pdf     *fpdf.Fpdf
	columns []string
	width   float64
	flushed bool
}

// NewPDFEncoder creates a new PDF encoder.
func NewPDFEncoder(w io.Writer) *PDFEncoder {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 8)
	pdf.AddPage()
	return &PDFEncoder{w: w, pdf: pdf}
}

// WriteHeader writes the bold header row. Column widths split the page evenly.
func (e *PDFEncoder) WriteHeader(columns []string) error {
	e.columns = columns
	if len(columns) > 0 {
		e.width = pdfPageWidth / float64(len(columns))
	}

	e.pdf.SetFont("Arial", "B", 8)
	e.pdf.SetFillColor(220, 220, 220)
	e.line(columns, true)
	e.pdf.SetFont("Arial", "", 8)
	return e.pdf.Error()
}

// WriteRow writes one row of cells.
func (e *PDFEncoder) WriteRow(values []interface{}) error {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = truncate(toString(v), pdfMaxCell)
	}
	e.line(cells, false)
	return e.pdf.Error()
}

func (e *PDFEncoder) line(cells []string, fill bool) {
	width := e.width
	if width == 0 && len(cells) > 0 {
		width = pdfPageWidth / float64(len(cells))
	}
	for _, c := range cells {
		e.pdf.CellFormat(width, pdfLineHeight, c, "1", 0, "L", fill, 0, "")
	}
	e.pdf.Ln(-1)
}

// Flush writes the document. It can run only once.
func (e *PDFEncoder) Flush() error {
	if e.flushed {
		return e.pdf.Error()
	}
	e.flushed = true
	return e.pdf.Output(e.w)
}

// Error returns the document error, if any.
func (e *PDFEncoder) Error() error {
	return e.pdf.Error()
}

// Close writes the document if needed.
func (e *PDFEncoder) Close() error {
	return e.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
