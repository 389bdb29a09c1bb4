package export

import (
	"fmt"
	"strings"
)

// Format identifies an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ParseFormat normalises a user supplied format. Empty input selects CSV.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatJSON, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Column describes one exported field.
type Column struct {
	Key   string
	Title string
	// Width is the relative PDF column width; zero means 1.
	Width float64
}

// Dataset defines tabular export content. Each row maps column keys to values.
type Dataset struct {
	Title   string
	Columns []Column
	Rows    []map[string]string
}

func (d Dataset) validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("dataset requires at least one column")
	}
	return nil
}

// Renderer encodes a dataset.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
}

// RendererFor returns the renderer for f. PDF options are ignored by other formats.
func RendererFor(f Format, pdfOpts ...PDFOption) Renderer {
	switch f {
	case FormatJSON:
		return NewJSONExporter()
	case FormatPDF:
		return NewPDFExporter(pdfOpts...)
	default:
		return NewCSVExporter()
	}
}
