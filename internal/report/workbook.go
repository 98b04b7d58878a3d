package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"medchron/internal/csvexport"
	"medchron/internal/domain"
)

const (
	findingsSheet = "Findings"
	summarySheet  = "Summary"
)

// WriteFindingsWorkbook renders findings and the run summary as an xlsx workbook.
func WriteFindingsWorkbook(w io.Writer, findings []domain.VerificationFinding, summary *domain.RunSummary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), findingsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]interface{}, 0, 4)
	for _, c := range csvexport.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(findingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, fd := range findings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{fd.EntryDate, string(fd.IssueType), string(fd.Severity), fd.Description}
		if err := f.SetSheetRow(findingsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing finding row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(findingsSheet, "D", "D", 80); err != nil {
		return err
	}
	if err := f.AutoFilter(findingsSheet, fmt.Sprintf("A1:D%d", len(findings)+1), nil); err != nil {
		return fmt.Errorf("adding filter: %w", err)
	}

	if summary != nil {
		if _, err := f.NewSheet(summarySheet); err != nil {
			return fmt.Errorf("creating summary sheet: %w", err)
		}
		rows := [][]interface{}{
			{"Run ID", summary.RunID.String()},
			{"Label", summary.Label},
			{"Model", summary.Model},
			{"Documents", summary.DocumentCount},
			{"Chunks", summary.ChunkCount},
			{"Batches", summary.BatchCount},
			{"Entries", summary.EntryCount},
			{"Undated entries", summary.UndatedEntryCount},
			{"Indexed dates", summary.IndexedDateCount},
			{"Findings", summary.FindingCount},
		}
		for i := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
				return fmt.Errorf("writing summary row: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
