package xlsxparser

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/disperse-validator/internal/config"
	"github.com/ginjaninja78/disperse-validator/internal/csvparser"
	"github.com/ginjaninja78/disperse-validator/internal/validation"
)

var (
	addrA = "0x" + strings.Repeat("a", 40)
	addrB = "0x" + strings.Repeat("b", 40)
)

// writeWorkbook saves rows to the named sheet of a new workbook.
func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}

	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}

	path := filepath.Join(t.TempDir(), "recipients.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParse_FirstSheetWithHeader(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{
		{"address", "amount"},
		{addrA, 10},
		{addrB, "2.5"},
	})

	s := config.Default().Import
	s.HeaderRows = 1

	doc, err := Parse(path, s)
	require.NoError(t, err)

	assert.Equal(t, addrA+",10\n"+addrB+",2.5", doc.Text)
	assert.Equal(t, []int{2, 3}, doc.SourceRows)
	assert.Equal(t, path, doc.SourceFile)
	assert.True(t, validation.Validate(doc.Text).Valid())
}

func TestParse_NamedSheetAndColumns(t *testing.T) {
	path := writeWorkbook(t, "Payouts", [][]interface{}{
		{"7", "memo", addrA},
		{"8", "memo", addrA},
	})

	s := config.Default().Import
	s.Sheet = "Payouts"
	s.AddressColumn = 2
	amount := 0
	s.AmountColumn = &amount

	doc, err := Parse(path, s)
	require.NoError(t, err)

	result := validation.Validate(doc.Text)
	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, []int{1, 2}, result.Duplicates[0].Lines)
}

func TestParse_UnknownSheet(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{{addrA, 1}})

	s := config.Default().Import
	s.Sheet = "Missing"

	_, err := Parse(path, s)
	assert.ErrorContains(t, err, `sheet "Missing" not found`)
}

func TestParse_EmptySheet(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", nil)

	_, err := Parse(path, config.Default().Import)
	assert.ErrorIs(t, err, csvparser.ErrNoRows)
}

func TestParse_MissingSheetListsAvailableSheets(t *testing.T) {
	path := writeWorkbook(t, "Extra", [][]interface{}{{addrA, 1}})

	s := config.Default().Import
	s.Sheet = "Recipients"

	_, err := Parse(path, s)
	assert.ErrorContains(t, err, "available: Sheet1, Extra")
}

func TestParse_NotAWorkbook(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.xlsx"), config.Default().Import)
	assert.Error(t, err)
}
