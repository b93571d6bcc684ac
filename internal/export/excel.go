package export

import (
	"errors"
	"io"

	"github.com/xuri/excelize/v2"
)

// MaxExcelRows is the row limit of one worksheet, header included.
const MaxExcelRows = 1048576

// ErrTooManyRows is returned when a result does not fit a worksheet.
var ErrTooManyRows = errors.New("result exceeds the worksheet row limit")

const sheetName = "Sheet1"

// ExcelEncoder writes an .xlsx workbook using the excelize stream writer.
// The workbook is written to the underlying writer on Flush.
type ExcelEncoder struct {
	w       io.Writer
	f       *excelize.File
	sw      *excelize.StreamWriter
	row     int
	err     error
	flushed bool
}

// NewExcelEncoder creates a new Excel encoder.
func NewExcelEncoder(w io.Writer) *ExcelEncoder {
	f := excelize.NewFile()
	sw, err := f.NewStreamWriter(sheetName)
	return &ExcelEncoder{
		w:   w,
		f:   f,
		sw:  sw,
		row: 1,
		err: err,
	}
}

// WriteHeader writes the header row.
func (e *ExcelEncoder) WriteHeader(columns []string) error {
	values := make([]interface{}, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	return e.writeRow(values)
}

// WriteRow writes one row. Text is guarded against formula evaluation and
// blobs are written as hex literals.
func (e *ExcelEncoder) WriteRow(values []interface{}) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case nil:
			cells[i] = nil
		case int64, float64, bool:
			cells[i] = v
		default:
			cells[i] = toString(v)
		}
	}
	return e.writeRow(cells)
}

func (e *ExcelEncoder) writeRow(values []interface{}) error {
	if e.err != nil {
		return e.err
	}
	if e.row > MaxExcelRows {
		e.err = ErrTooManyRows
		return e.err
	}

	cell, err := excelize.CoordinatesToCellName(1, e.row)
	if err != nil {
		e.err = err
		return err
	}
	if err := e.sw.SetRow(cell, values); err != nil {
		e.err = err
		return err
	}
	e.row++
	return nil
}

// Flush finishes the sheet and writes the workbook. It can run only once.
func (e *ExcelEncoder) Flush() error {
	if e.err != nil || e.flushed {
		return e.err
	}
	e.flushed = true

	if err := e.sw.Flush(); err != nil {
		e.err = err
		return err
	}
	if _, err := e.f.WriteTo(e.w); err != nil {
		e.err = err
		return err
	}
	return nil
}

// Error returns the first encoding error.
func (e *ExcelEncoder) Error() error {
	return e.err
}

// Close writes the workbook if needed and releases its resources.
func (e *ExcelEncoder) Close() error {
	err := e.Flush()
	if cerr := e.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
