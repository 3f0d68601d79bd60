package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset(rows int) Dataset {
	data := Dataset{
		Title:   "Daily Goals Attendance",
		Notes:   []string{"Present: 1", "Absent: 1"},
		Headers: []string{"Student", "Status"},
	}
	for i := 0; i < rows; i++ {
		data.Rows = append(data.Rows, map[string]string{"Student": fmt.Sprintf("Student, %03d", i), "Status": "present"})
	}
	return data
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(2))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student,Status", lines[0])
	assert.Equal(t, `"Student, 000",present`, lines[1])
}

func TestCSVRenderWithNotesAndBOM(t *testing.T) {
	out, err := NewCSVExporter(WithNotes(), WithExcelBOM()).Render(sampleDataset(1))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, utf8BOM))

	lines := strings.Split(strings.TrimSpace(string(out[len(utf8BOM):])), "\n")
	assert.Equal(t, []string{
		"# Daily Goals Attendance",
		"# Present: 1",
		"# Absent: 1",
		"Student,Status",
		`"Student, 000",present`,
	}, lines)
}

func TestCSVRenderNeutralizesFormulas(t *testing.T) {
	data := Dataset{
		Headers: []string{"Student"},
		Rows: []map[string]string{
			{"Student": "=HYPERLINK(\"http://x\")"},
			{"Student": "@SUM(A1)"},
			{"Student": "-1"},
			{"Student": "Ana"},
		},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, `"'=HYPERLINK(""http://x"")"`, lines[1])
	assert.Equal(t, "'@SUM(A1)", lines[2])
	assert.Equal(t, "'-1", lines[3])
	assert.Equal(t, "Ana", lines[4])
	assert.Len(t, lines, 5)
}

func TestRendersRequireHeaders(t *testing.T) {
	renderers := []Renderer{NewCSVExporter(), NewPDFExporter()}
	for _, r := range renderers {
		_, err := r.Render(Dataset{})
		assert.ErrorIs(t, err, ErrNoHeaders)
	}
}

func TestPDFRenderSpansPages(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(120))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
