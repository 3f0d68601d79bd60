// Package export renders tabular reports as CSV or PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// ErrNoHeaders is returned for a dataset without columns.
var ErrNoHeaders = errors.New("dataset has no headers")

// Dataset is a table plus optional summary notes shown above it.
type Dataset struct {
	Title   string
	Notes   []string
	Headers []string
	Rows    []map[string]string
}

// Validate checks the dataset can be laid out as a table.
func (d Dataset) Validate() error {
	if len(d.Headers) == 0 {
		return ErrNoHeaders
	}
	return nil
}

// Renderer encodes a Dataset in one output format.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOption tweaks CSV output.
type CSVOption func(*CSVExporter)

// WithNotes writes the title and notes as "# " prefixed lines before the header row.
func WithNotes() CSVOption {
	return func(e *CSVExporter) { e.notes = true }
}

// WithExcelBOM prefixes the output with a UTF-8 byte order mark so
// spreadsheet apps detect the encoding of non-ASCII names.
func WithExcelBOM() CSVOption {
	return func(e *CSVExporter) { e.bom = true }
}

// CSVExporter renders a Dataset as CSV. Cells that a spreadsheet would
// evaluate as a formula are prefixed with a single quote.
type CSVExporter struct {
	notes bool
	bom   bool
}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	buf := &bytes.Buffer{}
	if e.bom {
		buf.Write(utf8BOM)
	}
	if e.notes {
		if data.Title != "" {
			fmt.Fprintf(buf, "# %s\n", data.Title)
		}
		for _, note := range data.Notes {
			fmt.Fprintf(buf, "# %s\n", note)
		}
	}

	w := csv.NewWriter(buf)
	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	record := make([]string, len(data.Headers))
	for n, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = neutralizeFormula(row[header])
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("csv row %d: %w", n+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}
	return buf.Bytes(), nil
}

// ContentType is the MIME type for Render output.
func (e *CSVExporter) ContentType() string {
	return "text/csv; charset=utf-8"
}

func neutralizeFormula(cell string) string {
	if cell == "" {
		return cell
	}
	if strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}
