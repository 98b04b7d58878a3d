package csvexport

import (
	"encoding/csv"
	"io"

	"medchron/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Entry Date",
	"Issue Type",
	"Severity",
	"Description",
}

// Writer wraps csv.Writer for exporting verification findings as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteFindings writes one row per finding.
func (w *Writer) WriteFindings(findings []domain.VerificationFinding) error {
	for i := range findings {
		if err := w.csv.Write(findingToRow(&findings[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Columns returns a copy of the header row.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

func findingToRow(f *domain.VerificationFinding) []string {
	return []string{
		f.EntryDate,
		string(f.IssueType),
		string(f.Severity),
		f.Description,
	}
}

// Export writes a BOM, the header and every finding to w.
func Export(w io.Writer, findings []domain.VerificationFinding) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	if err := cw.WriteFindings(findings); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
