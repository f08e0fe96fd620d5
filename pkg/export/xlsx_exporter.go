package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is used when a dataset does not name its sheet.
const DefaultSheet = "Sheet1"

// XLSXExporter renders a dataset into a single-sheet workbook.
type XLSXExporter struct {
	// NumericColumns are written as numbers instead of text when they parse.
	NumericColumns map[string]bool
}

// NewXLSXExporter builds an XLSX exporter. Headers listed in numeric are stored as numbers.
func NewXLSXExporter(numeric ...string) *XLSXExporter {
	cols := make(map[string]bool, len(numeric))
	for _, name := range numeric {
		cols[name] = true
	}
	return &XLSXExporter{NumericColumns: cols}
}

func (e *XLSXExporter) Format() string { return FormatXLSX }

// Render writes the header row then one row per dataset row.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(FormatXLSX); err != nil {
		return nil, err
	}
	sheet := data.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return nil, fmt.Errorf("name sheet: %w", err)
		}
	}

	header := make([]interface{}, len(data.Headers))
	for i, h := range data.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write xlsx header: %w", err)
	}

	for r, row := range data.Rows {
		values := make([]interface{}, len(data.Headers))
		for i, h := range data.Headers {
			values[i] = e.value(h, cell(row, i))
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", r, err)
		}
		if err := f.SetSheetRow(sheet, axis, &values); err != nil {
			return nil, fmt.Errorf("write xlsx row %d: %w", r, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *XLSXExporter) value(header, raw string) interface{} {
	if !e.NumericColumns[header] {
		return raw
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}
