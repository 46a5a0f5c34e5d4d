// =============================================================================
// Disperse Validator - XLSX Import Module
// =============================================================================
//
// This module reads recipient spreadsheets saved as Excel workbooks. The
// configured sheet (or the first sheet) is read row by row and rendered as
// recipient-list text by the same routine the CSV importer uses, so a list
// imported from either format validates identically.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/disperse-validator/internal/config"
	"github.com/ginjaninja78/disperse-validator/internal/csvparser"
)

// Parse reads an XLSX workbook and converts it to recipient-list text.
//
// PARAMETERS:
//   - filePath: The path to the workbook.
//   - settings: The import settings from the main configuration.
//
// RETURNS:
//   - A pointer to the imported document.
//   - An error if the workbook cannot be opened, the sheet does not exist,
//     or no recipient rows were found.
func Parse(filePath string, settings config.ImportSettings) (*csvparser.Document, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	doc, err := ParseFile(f, settings)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = filePath

	return doc, nil
}

// ParseFile converts an already opened workbook.
func ParseFile(f *excelize.File, settings config.ImportSettings) (*csvparser.Document, error) {
	sheetName, err := resolveSheet(f, settings.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %q: %w", sheetName, err)
	}

	doc, err := csvparser.FromRows(rows, settings)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
	}

	return doc, nil
}

// resolveSheet returns the requested sheet, or the first one when unset.
func resolveSheet(f *excelize.File, requested string) (string, error) {
	if requested == "" {
		name := f.GetSheetName(0)
		if name == "" {
			return "", fmt.Errorf("workbook has no sheets")
		}
		return name, nil
	}

	index, err := f.GetSheetIndex(requested)
	if err != nil || index < 0 {
		return "", fmt.Errorf("sheet %q not found (available: %s)",
			requested, strings.Join(f.GetSheetList(), ", "))
	}

	return requested, nil
}
