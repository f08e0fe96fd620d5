package export

import "fmt"

// Supported output formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// Dataset defines tabular export content. Rows are positional and follow Headers.
type Dataset struct {
	Title   string
	Sheet   string
	Headers []string
	Rows    [][]string
}

// Renderer turns a dataset into the bytes of one file format.
type Renderer interface {
	Format() string
	Render(data Dataset) ([]byte, error)
}

func (d Dataset) validate(format string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", format)
	}
	for i, row := range d.Rows {
		if len(row) > len(d.Headers) {
			return fmt.Errorf("%s row %d has %d cells for %d headers", format, i, len(row), len(d.Headers))
		}
	}
	return nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
