// Package export serializes scored species to CSV, XLSX, JSON, and YAML.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mchmarny/sprio/pkg/score"
	"github.com/mchmarny/sprio/pkg/table"
)

// Format is an output serialization.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"

	SheetBatch    = "Species Prioritization"
	SheetSingle   = "Single Species"
	SheetCriteria = "Criteria"

	ColIUCNScore         = score.ColIUCNScore
	ColEndemismScore     = score.ColEndemismScore
	ColThreatScore       = score.ColThreatScore
	ColAltitudeScore     = score.ColAltitudeScore
	ColExploitationScore = score.ColExploitationScore
	ColHabitatScore      = score.ColHabitatScore
	ColUseScore          = score.ColUseScore
	ColTotalScore        = score.ColTotalScore
	ColPriority          = score.ColPriority
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExport            = errors.New("export error")
)

// ParseFormat maps a name such as "xlsx" or "yml" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath derives the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ScoreColumns returns the computed columns in output order.
func ScoreColumns() []string {
	return score.Columns()
}

// Report is a scored batch ready for serialization. Extra carries the
// pass-through columns read with the input, aligned with Rows.
type Report struct {
	Rows         []*score.Scored
	ExtraColumns []string
	Extra        [][]string
}

// NewReport pairs scored rows with the dataset they were computed from.
// The dataset may be nil when there are no pass-through columns.
func NewReport(rows []*score.Scored, d *table.Dataset) *Report {
	r := &Report{Rows: rows}
	if d != nil && len(d.ExtraColumns) > 0 && len(d.Extra) == len(rows) {
		r.ExtraColumns = d.ExtraColumns
		r.Extra = d.Extra
	}
	return r
}

// Header returns the stable column order: input columns, pass-through
// columns, then the computed columns.
func (r *Report) Header() []string {
	h := make([]string, 0, len(table.Columns())+len(r.ExtraColumns)+len(ScoreColumns()))
	h = append(h, table.Columns()...)
	h = append(h, r.ExtraColumns...)
	h = append(h, ScoreColumns()...)
	return h
}

// Values returns row i in Header order, numbers as float64 or int.
func (r *Report) Values(i int) []any {
	s := r.Rows[i]
	v := make([]any, 0, len(r.Header()))
	v = append(v,
		s.SpeciesName,
		s.IUCNStatus,
		s.Endemism,
		s.ThreatLevel,
		s.AltitudinalRange,
		s.Exploitation,
		s.HabitatSpecificity,
		s.UseValue,
	)
	for j := range r.ExtraColumns {
		v = append(v, r.extra(i, j))
	}
	v = append(v,
		s.IUCNScore,
		s.EndemismScore,
		s.ThreatScore,
		s.AltitudeScore,
		s.ExploitationScore,
		s.HabitatScore,
		s.UseScore,
		s.TotalScore,
		s.Priority.String(),
	)
	return v
}

// Strings returns row i in Header order as text.
func (r *Report) Strings(i int) []string {
	vals := r.Values(i)
	out := make([]string, len(vals))
	for j, v := range vals {
		out[j] = formatValue(v)
	}
	return out
}

func (r *Report) extra(i, j int) string {
	if i >= len(r.Extra) || j >= len(r.Extra[i]) {
		return ""
	}
	return r.Extra[i][j]
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
