package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title: "Registrations",
		Columns: []Column{
			{Key: "registration_id", Title: "Registration ID"},
			{Key: "student_name", Title: "Student", Width: 2},
			{Key: "section", Title: "Section"},
		},
		Rows: []map[string]string{
			{"registration_id": "MBU000001", "student_name": "Amina, Yusuf", "section": "Tahfiz"},
			{"registration_id": "MBU000002", "student_name": "Bilal", "section": "Primary", "ignored": "x"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCSVExporter(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	expected := "Registration ID,Student,Section\nMBU000001,\"Amina, Yusuf\",Tahfiz\nMBU000002,Bilal,Primary\n"
	assert.Equal(t, expected, string(out))
}

func TestCSVExporterEscapesFormulas(t *testing.T) {
	data := Dataset{
		Columns: []Column{{Key: "name", Title: "Student"}},
		Rows: []map[string]string{
			{"name": `=HYPERLINK("http://x","y")`},
			{"name": "+2348012345678"},
			{"name": "-1+1"},
			{"name": "@SUM(A1)"},
			{"name": "\tTab"},
			{"name": "Amina"},
			{"name": ""},
		},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 8)
	assert.Equal(t, `'=HYPERLINK("http://x","y")`, records[1][0])
	assert.Equal(t, "'+2348012345678", records[2][0])
	assert.Equal(t, "'-1+1", records[3][0])
	assert.Equal(t, "'@SUM(A1)", records[4][0])
	assert.Equal(t, "'\tTab", records[5][0])
	assert.Equal(t, "Amina", records[6][0])
	assert.Equal(t, "", records[7][0])
}

func TestJSONExporterOnlyKeepsColumns(t *testing.T) {
	out, err := NewJSONExporter().Render(sampleDataset())
	require.NoError(t, err)

	var records []map[string]string
	require.NoError(t, json.Unmarshal(out, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Bilal", records[1]["student_name"])
	_, found := records[1]["ignored"]
	assert.False(t, found)
}

func TestPDFExporterPaginates(t *testing.T) {
	data := sampleDataset()
	for i := 3; i <= 80; i++ {
		data.Rows = append(data.Rows, map[string]string{
			"registration_id": fmt.Sprintf("MBU%06d", i),
			"student_name":    "A very long student name that should be truncated to fit inside its cell nicely",
			"section":         "Arabic",
		})
	}
	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterMissingFont(t *testing.T) {
	_, err := NewPDFExporter(WithUTF8Font(filepath.Join(t.TempDir(), "missing.ttf"))).Render(sampleDataset())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load pdf font")
}

func TestPDFExporterUTF8Font(t *testing.T) {
	font := "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"
	if _, err := os.Stat(font); err != nil {
		t.Skipf("no system font at %s", font)
	}
	data := sampleDataset()
	data.Rows = append(data.Rows, map[string]string{"registration_id": "MBU000003", "student_name": "عائشة بلو", "section": "Arabic"})

	out, err := NewPDFExporter(WithUTF8Font(font)).Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRequiresColumns(t *testing.T) {
	for _, f := range []Format{FormatCSV, FormatJSON, FormatPDF} {
		_, err := RendererFor(f).Render(Dataset{})
		assert.Error(t, err, string(f))
	}
}

func TestColumnWidths(t *testing.T) {
	widths := columnWidths(sampleDataset().Columns)
	assert.InDelta(t, pdfPageWidth/4, widths[0], 0.001)
	assert.InDelta(t, pdfPageWidth/2, widths[1], 0.001)
}
