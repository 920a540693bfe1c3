package export

import (
	"fmt"
	"io"

	"github.com/mchmarny/sprio/pkg/score"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet = "Sheet1"
)

// WriteXLSX writes the report as a single-sheet workbook with a bold header
// row and numeric cells for all scores.
func WriteXLSX(w io.Writer, sheet string, r *Report) error {
	rows := make([][]any, 0, len(r.Rows))
	for i, s := range r.Rows {
		if s == nil {
			continue
		}
		rows = append(rows, r.Values(i))
	}
	return writeSheet(w, sheet, r.Header(), rows)
}

// WriteCriteriaXLSX writes the human-readable criteria guide.
func WriteCriteriaXLSX(w io.Writer) error {
	list := score.Criteria()
	rows := make([][]any, 0, len(list))
	for _, c := range list {
		rows = append(rows, []any{c.Name, c.Description, c.Scoring})
	}
	return writeSheet(w, SheetCriteria, criteriaHeader(), rows)
}

func criteriaHeader() []string {
	return []string{"Criterion", "Description", "Scoring"}
}

func writeSheet(w io.Writer, sheet string, header []string, rows [][]any) error {
	if sheet == "" {
		sheet = SheetBatch
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return fmt.Errorf("naming sheet %q: %w", sheet, err)
	}

	h := make([]any, len(header))
	for i, v := range header {
		h[i] = v
	}
	if err := f.SetSheetRow(sheet, "A1", &h); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolving cell for row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
