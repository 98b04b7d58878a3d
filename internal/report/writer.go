package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"medchron/internal/csvexport"
	"medchron/internal/domain"
)

// Artifact file names.
const (
	ChronologyFile   = "chronology.txt"
	VerificationFile = "verification.txt"
	SummaryFile      = "summary.json"
	FindingsXLSXFile = "findings.xlsx"
	FindingsCSVFile  = "findings.csv"
)

// Artifact is one rendered output file.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Bundle is the complete set of run outputs.
type Bundle struct {
	Narrative    string
	Verification string
	Findings     []domain.VerificationFinding
	Summary      *domain.RunSummary
}

// Render converts a bundle into artifacts in a fixed order.
func Render(b *Bundle) ([]Artifact, error) {
	summaryJSON, err := json.MarshalIndent(b.Summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding summary: %w", err)
	}

	var xlsx bytes.Buffer
	if err := WriteFindingsWorkbook(&xlsx, b.Findings, b.Summary); err != nil {
		return nil, err
	}

	var csvBuf bytes.Buffer
	if err := csvexport.Export(&csvBuf, b.Findings); err != nil {
		return nil, fmt.Errorf("encoding findings csv: %w", err)
	}

	return []Artifact{
		{Name: ChronologyFile, ContentType: "text/plain; charset=utf-8", Data: []byte(b.Narrative + "\n")},
		{Name: VerificationFile, ContentType: "text/plain; charset=utf-8", Data: []byte(b.Verification + "\n")},
		{Name: SummaryFile, ContentType: "application/json", Data: append(summaryJSON, '\n')},
		{Name: FindingsXLSXFile, ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Data: xlsx.Bytes()},
		{Name: FindingsCSVFile, ContentType: "text/csv; charset=utf-8", Data: csvBuf.Bytes()},
	}, nil
}

// WriteDir writes artifacts into dir, creating it if needed, and returns the written paths.
func WriteDir(dir string, artifacts []Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		p := filepath.Join(dir, a.Name)
		if err := os.WriteFile(p, a.Data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", a.Name, err)
		}
		log.Printf("report.WriteDir: wrote %s (%d bytes)", p, len(a.Data))
		paths = append(paths, p)
	}
	return paths, nil
}
