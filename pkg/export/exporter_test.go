package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Student", "Total Earned"},
		Rows: []map[string]string{
			{"Student": "Alma", "Total Earned": "50"},
			{"Student": "Bruno", "Total Earned": "30"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	content, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student,Total Earned", lines[0])
	assert.Equal(t, "Alma,50", lines[1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	content, err := NewPDFExporter().Render(sampleDataset(), "Earnings Report")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	content, err := NewXLSXExporter().Render(sampleDataset(), "Earnings")
	require.NoError(t, err)
	require.NotEmpty(t, content)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	value, err := f.GetCellValue("Earnings", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Student", value)

	value, err = f.GetCellValue("Earnings", "B2")
	require.NoError(t, err)
	assert.Equal(t, "50", value)
}

func TestXLSXExporterRequiresHeaders(t *testing.T) {
	_, err := NewXLSXExporter().Render(Dataset{}, "Sheet")
	require.Error(t, err)
}
