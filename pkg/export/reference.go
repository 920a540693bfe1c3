package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/mchmarny/sprio/pkg/score"
	"github.com/mchmarny/sprio/pkg/table"
)

// WriteSampleCSV writes the sample records as an input template.
func WriteSampleCSV(w io.Writer) error {
	r := NewReport(score.Score(score.SampleRecords()), nil)
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	n := len(table.Columns())
	for i := range r.Rows {
		if err := cw.Write(r.Strings(i)[:n]); err != nil {
			return fmt.Errorf("writing sample row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteCriteriaCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(criteriaHeader()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, c := range score.Criteria() {
		if err := cw.Write([]string{c.Name, c.Description, c.Scoring}); err != nil {
			return fmt.Errorf("writing criterion %s: %w", c.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
