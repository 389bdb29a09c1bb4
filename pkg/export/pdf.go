package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 277.0
	pdfRowHeight  = 6.5
	pdfCoreFamily = "Arial"
	pdfUTF8Family = "export"
)

// PDFExporter renders datasets into a landscape tabular PDF, repeating the
// header row on every page.
//
// Without a UTF-8 font the core Arial font is used and text is translated to
// cp1252, so characters outside Latin-1 (Arabic script for example) are lost.
type PDFExporter struct {
	fontPath string
}

// PDFOption customises a PDFExporter.
type PDFOption func(*PDFExporter)

// WithUTF8Font renders all text with the TrueType font at path.
// gofpdf does not shape right-to-left scripts, so Arabic glyphs appear unjoined.
func WithUTF8Font(path string) PDFOption {
	return func(e *PDFExporter) {
		e.fontPath = path
	}
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter(opts ...PDFOption) *PDFExporter {
	e := &PDFExporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render creates a PDF document with the dataset title and table body.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}

	widths := columnWidths(data.Columns)
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	family, tr, err := e.setupFont(pdf)
	if err != nil {
		return nil, err
	}

	header := func() {
		pdf.SetFont(family, "B", 9)
		pdf.SetFillColor(230, 236, 230)
		for i, col := range data.Columns {
			pdf.CellFormat(widths[i], 7, tr(col.Title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(family, "", 8)
	}

	pdf.AddPage()
	if data.Title != "" {
		pdf.SetFont(family, "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(data.Title)), "", 1, "C", false, 0, "")
		pdf.Ln(2)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range data.Rows {
		if pdf.GetY()+pdfRowHeight > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for i, col := range data.Columns {
			pdf.CellFormat(widths[i], pdfRowHeight, tr(fit(pdf, row[col.Key], widths[i])), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// setupFont registers the configured UTF-8 font, or falls back to the cp1252 core font.
func (e *PDFExporter) setupFont(pdf *gofpdf.Fpdf) (string, func(string) string, error) {
	if e.fontPath == "" {
		return pdfCoreFamily, pdf.UnicodeTranslatorFromDescriptor(""), nil
	}
	pdf.AddUTF8Font(pdfUTF8Family, "", e.fontPath)
	pdf.AddUTF8Font(pdfUTF8Family, "B", e.fontPath)
	if err := pdf.Error(); err != nil {
		return "", nil, fmt.Errorf("load pdf font %s: %w", e.fontPath, err)
	}
	return pdfUTF8Family, func(s string) string { return s }, nil
}

func columnWidths(cols []Column) []float64 {
	total := 0.0
	for _, c := range cols {
		total += weight(c)
	}
	widths := make([]float64, len(cols))
	for i, c := range cols {
		widths[i] = pdfPageWidth * weight(c) / total
	}
	return widths
}

func weight(c Column) float64 {
	if c.Width <= 0 {
		return 1
	}
	return c.Width
}

// fit truncates value so it stays inside a cell of the given width.
func fit(pdf *gofpdf.Fpdf, value string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(value) <= limit {
		return value
	}
	runes := []rune(value)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
