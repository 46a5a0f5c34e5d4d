// =============================================================================
// Disperse Validator - Report Writer Module
// =============================================================================
//
// This module renders a validation result for people and for other tools.
//
// FORMATS:
//   text - The error box shown to users: one message per line, errors first,
//          then one duplicate message per group.
//   yaml - Machine-readable report (gopkg.in/yaml.v3).
//   xml  - Machine-readable report for systems that ingest XML:
//
//   <validationReport id="..." generatedAt="..." lineCount="4" valid="false">
//     <errors>
//       <error line="3" kind="missing_fields">Line 3: ...</error>
//     </errors>
//     <duplicates>
//       <duplicate address="0xabc...">
//         <line>1</line>
//         <line>2</line>
//         <message>Duplicate addresses ...</message>
//       </duplicate>
//     </duplicates>
//   </validationReport>
//
// =============================================================================

package report

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/disperse-validator/internal/validation"
)

// Format selects how a report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatXML  Format = "xml"
)

// ParseFormat converts a user-supplied format name into a Format.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "text", "txt":
		return FormatText, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xml":
		return FormatXML, nil
	default:
		return "", fmt.Errorf("unknown report format %q (expected text, yaml or xml)", value)
	}
}

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatXML:
		return ".xml"
	default:
		return ".txt"
	}
}

// =============================================================================
// REPORT STRUCTURE
// =============================================================================

// Report is the serializable view of a validation result.
type Report struct {
	XMLName xml.Name `xml:"validationReport" yaml:"-"`

	ID          string    `xml:"id,attr" yaml:"id"`
	Source      string    `xml:"source,attr,omitempty" yaml:"source,omitempty"`
	GeneratedAt time.Time `xml:"generatedAt,attr" yaml:"generated_at"`
	Policy      string    `xml:"policy,attr,omitempty" yaml:"policy,omitempty"`

	LineCount    int  `xml:"lineCount,attr" yaml:"line_count"`
	LinesRemoved int  `xml:"linesRemoved,attr,omitempty" yaml:"lines_removed,omitempty"`
	Valid        bool `xml:"valid,attr" yaml:"valid"`

	Errors     []validation.ValidationError `xml:"errors>error" yaml:"errors"`
	Duplicates []Duplicate                  `xml:"duplicates>duplicate" yaml:"duplicates"`
}

// Duplicate is a duplicate group together with its user-facing message.
type Duplicate struct {
	Address string `xml:"address,attr" yaml:"address"`
	Lines   []int  `xml:"line" yaml:"lines"`
	Message string `xml:"message" yaml:"message"`
}

// Options carries the context a result alone does not have.
type Options struct {
	// Source names the validated input (file path, "stdin", "api").
	Source string

	// Policy is the duplicate policy applied before the final validation.
	Policy string

	// LinesRemoved is how many lines the policy removed.
	LinesRemoved int

	// ID overrides the generated report ID.
	ID string

	// GeneratedAt overrides the report timestamp.
	GeneratedAt time.Time

	// Indent is the indentation used by the XML renderer. Default: "  "
	Indent string
}

// New builds a report for a validation result.
func New(result validation.Result, options Options) *Report {
	id := options.ID
	if id == "" {
		id = uuid.NewString()
	}

	generatedAt := options.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	duplicates := make([]Duplicate, len(result.Duplicates))
	for i, group := range result.Duplicates {
		duplicates[i] = Duplicate{
			Address: group.Address,
			Lines:   group.Lines,
			Message: group.Message(),
		}
	}

	errors := result.Errors
	if errors == nil {
		errors = []validation.ValidationError{}
	}

	return &Report{
		ID:           id,
		Source:       options.Source,
		GeneratedAt:  generatedAt,
		Policy:       options.Policy,
		LineCount:    result.LineCount,
		LinesRemoved: options.LinesRemoved,
		Valid:        result.Valid(),
		Errors:       errors,
		Duplicates:   duplicates,
	}
}

// Messages returns the text-format lines of the report.
func (r *Report) Messages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Duplicates))
	for _, e := range r.Errors {
		messages = append(messages, e.Message)
	}
	for _, d := range r.Duplicates {
		messages = append(messages, d.Message)
	}
	return messages
}

// =============================================================================
// RENDERING
// =============================================================================

// Write renders the report to w in the given format.
//
// PARAMETERS:
//   - w: The destination writer.
//   - r: The report to render.
//   - format: One of FormatText, FormatYAML, FormatXML.
//
// RETURNS:
//   - An error if encoding or writing fails.
func Write(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatText, "":
		return writeText(w, r)
	case FormatYAML:
		return writeYAML(w, r)
	case FormatXML:
		return writeXML(w, r, "  ")
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Render renders the report into a byte slice.
func Render(r *Report, format Format) ([]byte, error) {
	var buffer bytes.Buffer
	if err := Write(&buffer, r, format); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// RenderResult is a shortcut for New followed by Render.
func RenderResult(result validation.Result, format Format, options Options) ([]byte, error) {
	r := New(result, options)
	if format == FormatXML && options.Indent != "" {
		var buffer bytes.Buffer
		if err := writeXML(&buffer, r, options.Indent); err != nil {
			return nil, err
		}
		return buffer.Bytes(), nil
	}
	return Render(r, format)
}

func writeText(w io.Writer, r *Report) error {
	if r.Valid {
		_, err := fmt.Fprintf(w, "No validation errors. %d line(s) checked.\n", r.LineCount)
		return err
	}

	for _, message := range r.Messages() {
		if _, err := fmt.Fprintln(w, message); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

func writeYAML(w io.Writer, r *Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode YAML report: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to flush YAML report: %w", err)
	}
	return nil
}

func writeXML(w io.Writer, r *Report, indent string) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML declaration: %w", err)
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", indent)

	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode XML report: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to flush XML report: %w", err)
	}

	_, err := io.WriteString(w, "\n")
	return err
}
