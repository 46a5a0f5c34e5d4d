package processor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/disperse-validator/internal/config"
	"github.com/ginjaninja78/disperse-validator/internal/csvparser"
	"github.com/ginjaninja78/disperse-validator/internal/xlsxparser"
)

// InputKind identifies how a recipient file was read.
type InputKind string

const (
	KindText InputKind = "text"
	KindCSV  InputKind = "csv"
	KindXLSX InputKind = "xlsx"
)

// Input is recipient-list text loaded from a file or stream.
type Input struct {
	Kind InputKind
	Text string

	// rows maps text lines back to spreadsheet rows for imported files.
	rows *csvparser.Document
}

// SourceRow returns the spreadsheet row behind a text line, or 0 for text input.
func (in *Input) SourceRow(line int) int {
	if in.rows == nil {
		return 0
	}
	return in.rows.SourceRow(line)
}

// DetectKind picks the loader for a path by its extension.
func DetectKind(path string) InputKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return KindCSV
	case ".xlsx", ".xlsm":
		return KindXLSX
	default:
		return KindText
	}
}

// Load reads a recipient file. CSV and XLSX files are imported with the
// configured settings; anything else is read as plain text.
func Load(path string, settings config.ImportSettings) (*Input, error) {
	switch kind := DetectKind(path); kind {
	case KindCSV:
		if strings.EqualFold(filepath.Ext(path), ".tsv") && settings.Delimiter == "," {
			settings.Delimiter = "tab"
		}
		doc, err := csvparser.Parse(path, settings)
		if err != nil {
			return nil, fmt.Errorf("failed to import CSV: %w", err)
		}
		return &Input{Kind: kind, Text: doc.Text, rows: doc}, nil

	case KindXLSX:
		doc, err := xlsxparser.Parse(path, settings)
		if err != nil {
			return nil, fmt.Errorf("failed to import workbook: %w", err)
		}
		return &Input{Kind: kind, Text: doc.Text, rows: doc}, nil

	default:
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer file.Close()
		return LoadText(file)
	}
}

// LoadText reads plain recipient text from r.
//
// Windows line endings are converted to "\n" and one trailing line terminator
// is dropped, so a file saved by an editor validates like the same list
// pasted into a text box.
func LoadText(r io.Reader) (*Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return &Input{Kind: KindText, Text: NormalizeText(string(data))}, nil
}

// NormalizeText applies the text-file conventions described on LoadText.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSuffix(text, "\n")
}
