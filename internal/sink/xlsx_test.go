package sink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestXLSXWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newsletters.xlsx")
	s := NewXLSX(path)

	require.NoError(t, s.Write(context.Background(), sampleNewsletters(), sampleResult()))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Newsletters", sheet.Name)
	require.Len(t, sheet.Rows, 3, "header plus two records")

	assert.Equal(t, "name", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "The Copy Letter", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "12300", sheet.Rows[1].Cells[4].String())
	assert.Equal(t, "Growth Notes", sheet.Rows[2].Cells[0].String())
	assert.Equal(t, "", sheet.Rows[2].Cells[4].String())
}

func TestXLSXWrite_EmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	s := NewXLSX(path)

	require.NoError(t, s.Write(context.Background(), nil, sampleResult()))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	assert.Len(t, file.Sheets[0].Rows, 1)
}
