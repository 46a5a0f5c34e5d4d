// =============================================================================
// Disperse Validator - CSV Import Module
// =============================================================================
//
// This module turns an uploaded CSV spreadsheet into recipient-list text, the
// same "address,amount" lines a user would type by hand. The validator never
// sees the spreadsheet itself, only the text produced here.
//
// FEATURES:
//   - Configurable delimiter (comma, semicolon, pipe, tab)
//   - Header rows skipped before the first recipient
//   - Configurable address and amount columns
//   - Cells trimmed and NFC-normalized, UTF-8 BOM removed
//   - Fully empty rows skipped
//
// The XLSX importer reuses FromRows so both formats produce identical text.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/disperse-validator/internal/config"
	"github.com/ginjaninja78/disperse-validator/internal/lineparser"
)

// ErrNoRows is returned when a spreadsheet holds no recipient rows.
var ErrNoRows = errors.New("no recipient rows found")

// =============================================================================
// DOCUMENT STRUCTURE
// =============================================================================

// Document is an imported spreadsheet rendered as recipient-list text.
type Document struct {
	// Text is the recipient list, one "address,amount" line per data row.
	Text string

	// SourceRows maps each text line (index 0 = line 1) to its 1-based row
	// in the spreadsheet, so errors can be traced back to the upload.
	SourceRows []int

	// SourceFile is the path of the imported file, if any.
	SourceFile string

	// RowCount is the number of recipient rows imported.
	RowCount int
}

// SourceRow returns the spreadsheet row for a 1-based text line, or 0.
func (d *Document) SourceRow(line int) int {
	if line < 1 || line > len(d.SourceRows) {
		return 0
	}
	return d.SourceRows[line-1]
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and converts it to recipient-list text.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The import settings from the main configuration.
//
// RETURNS:
//   - A pointer to the Document.
//   - An error if the file cannot be read or holds no recipient rows.
func Parse(filePath string, settings config.ImportSettings) (*Document, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	doc, err := ParseReader(bufio.NewReader(file), settings)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = filePath

	return doc, nil
}

// ParseReader converts CSV content from any reader.
func ParseReader(r io.Reader, settings config.ImportSettings) (*Document, error) {
	csvReader := csv.NewReader(r)
	configureReader(csvReader, settings)

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return FromRows(rows, settings)
}

// FromRows renders spreadsheet rows as recipient-list text.
//
// Rows before settings.HeaderRows are skipped, as are rows whose cells are
// all blank. A row missing the amount cell still produces a line ("address,")
// so the validator reports it instead of the import silently losing it.
func FromRows(rows [][]string, settings config.ImportSettings) (*Document, error) {
	addressCol := settings.AddressColumn
	amountCol := settings.AmountCol()

	doc := &Document{}
	lines := make([]string, 0, len(rows))

	for i := settings.HeaderRows; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		address := cell(row, addressCol)
		amount := cell(row, amountCol)

		lines = append(lines, address+","+amount)
		doc.SourceRows = append(doc.SourceRows, i+1)
	}

	if len(lines) == 0 {
		return nil, ErrNoRows
	}

	doc.Text = lineparser.Join(lines)
	doc.RowCount = len(lines)

	return doc, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.ImportSettings) {
	reader.Comma = Delimiter(settings.Delimiter)

	// Recipient sheets often carry notes in trailing columns.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// Delimiter resolves a configured delimiter name to the separator rune.
func Delimiter(name string) rune {
	switch name {
	case "\\t", "\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	case "", "comma":
		return ','
	default:
		return []rune(name)[0]
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cell returns the cleaned value at index, or "" when the row is too short.
func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return CleanCell(row[index])
}

// CleanCell trims a cell and normalizes it to NFC.
func CleanCell(value string) string {
	value = strings.TrimPrefix(value, "\ufeff")
	return norm.NFC.String(strings.TrimSpace(value))
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, c := range row {
		if CleanCell(c) != "" {
			return false
		}
	}
	return true
}
