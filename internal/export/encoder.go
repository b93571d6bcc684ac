// Package export streams query results into file formats.
package export

import (
	"fmt"
	"io"
	"strings"
)

// RowEncoder writes rows in one output format. WriteHeader is called once
// before any row; Close flushes and finishes the output.
type RowEncoder interface {
	// WriteHeader writes or records the column names.
	WriteHeader(columns []string) error

	// WriteRow writes a single row. Values are nil, int64, float64, bool,
	// string or []byte.
	WriteRow(values []interface{}) error

	// Flush writes buffered data to the underlying writer.
	Flush() error

	// Error returns the first error that occurred during encoding, if any.
	Error() error

	io.Closer
}

// Format names an output format.
type Format string

// Supported formats.
const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatExcel   Format = "xlsx"
	FormatPDF     Format = "pdf"
	FormatParquet Format = "parquet"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatExcel, FormatPDF, FormatParquet}
}

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "csv":
		return FormatCSV, nil
	case "json", "jsonl", "ndjson":
		return FormatJSON, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// NewEncoder returns the encoder for format writing to w.
func NewEncoder(format Format, w io.Writer) (RowEncoder, error) {
	switch format {
	case FormatCSV:
		return NewCSVEncoder(w), nil
	case FormatJSON:
		return NewJSONEncoder(w), nil
	case FormatExcel:
		return NewExcelEncoder(w), nil
	case FormatPDF:
		return NewPDFEncoder(w), nil
	case FormatParquet:
		return NewParquetEncoder(w), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// guardFormula prefixes values a spreadsheet would evaluate as a formula.
func guardFormula(s string) string {
	if len(s) > 0 {
		switch s[0] {
		case '=', '+', '-', '@':
			return "'" + s
		}
	}
	return s
}
