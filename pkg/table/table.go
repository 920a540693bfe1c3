package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mchmarny/sprio/pkg/score"
)

const (
	ColSpeciesName        = "species_name"
	ColIUCNStatus         = "iucn_status"
	ColEndemism           = "endemism"
	ColThreatLevel        = "threat_level"
	ColAltitudinalRange   = "altitudinal_range"
	ColExploitation       = "exploitation"
	ColHabitatSpecificity = "habitat_specificity"
	ColUseValue           = "use_value"
)

// ErrSchema is matched by every SchemaError.
var ErrSchema = errors.New("schema error")

// SchemaError reports input that cannot be turned into records.
type SchemaError struct {
	Missing []string
	Line    int
	Field   string
	Reason  string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Reason)
	}
	return e.Reason
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// Columns returns the required input columns in their canonical order.
func Columns() []string {
	return []string{
		ColSpeciesName,
		ColIUCNStatus,
		ColEndemism,
		ColThreatLevel,
		ColAltitudinalRange,
		ColExploitation,
		ColHabitatSpecificity,
		ColUseValue,
	}
}

// Dataset is the result of reading a table. Extra holds the values of any
// non-required columns, aligned with Records, for columns named in ExtraColumns.
type Dataset struct {
	Records      []*score.Record
	ExtraColumns []string
	Extra        [][]string
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// ReadFile reads a CSV file from path, "-" reads stdin.
func ReadFile(path string) (*Dataset, error) {
	if path == "-" {
		return Read(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return d, nil
}

// Read parses CSV with a header row into records. Header names are matched
// case-insensitively; columns not needed for scoring are kept in Extra.
// Computed score columns in the input are dropped, they are recomputed.
// Categorical values are kept verbatim so that padded labels score as
// unrecognized.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Reason: "empty input, header row required"}
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx, extraIdx, extraCols, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	d := &Dataset{
		Records:      make([]*score.Record, 0),
		ExtraColumns: extraCols,
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		line, _ := cr.FieldPos(0)
		if isBlank(row) {
			slog.Debug("skipping blank row", "line", line)
			continue
		}

		rec, err := parseRow(row, idx, line)
		if err != nil {
			return nil, err
		}

		extra := make([]string, len(extraIdx))
		for i, j := range extraIdx {
			if j < len(row) {
				extra[i] = row[j]
			}
		}

		d.Records = append(d.Records, rec)
		d.Extra = append(d.Extra, extra)
	}

	slog.Debug("read table", "records", len(d.Records), "extra_columns", len(extraCols))
	return d, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

func mapHeader(header []string) (map[string]int, []int, []string, error) {
	required := make(map[string]bool, len(Columns()))
	for _, c := range Columns() {
		required[c] = true
	}
	computed := make(map[string]bool, len(score.Columns()))
	for _, c := range score.Columns() {
		computed[c] = true
	}

	idx := make(map[string]int, len(required))
	var extraIdx []int
	var extraCols []string
	for i, h := range header {
		n := normalize(h)
		if required[n] {
			if _, dup := idx[n]; !dup {
				idx[n] = i
			}
			continue
		}
		if computed[n] {
			slog.Debug("dropping computed column", "column", h)
			continue
		}
		extraIdx = append(extraIdx, i)
		extraCols = append(extraCols, strings.TrimSpace(h))
	}

	var missing []string
	for _, c := range Columns() {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, nil, nil, &SchemaError{Missing: missing}
	}

	return idx, extraIdx, extraCols, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string, idx map[string]int, line int) (*score.Record, error) {
	raw := func(col string) (string, error) {
		i := idx[col]
		if i >= len(row) || strings.TrimSpace(row[i]) == "" {
			return "", &SchemaError{Line: line, Field: col, Reason: "value required"}
		}
		return row[i], nil
	}
	val := func(col string) (string, error) {
		v, err := raw(col)
		return strings.TrimSpace(v), err
	}

	var (
		r   score.Record
		err error
		s   string
	)

	if r.SpeciesName, err = val(ColSpeciesName); err != nil {
		return nil, err
	}
	if r.IUCNStatus, err = raw(ColIUCNStatus); err != nil {
		return nil, err
	}
	if r.Endemism, err = raw(ColEndemism); err != nil {
		return nil, err
	}
	if r.AltitudinalRange, err = raw(ColAltitudinalRange); err != nil {
		return nil, err
	}
	if r.Exploitation, err = raw(ColExploitation); err != nil {
		return nil, err
	}

	if s, err = val(ColThreatLevel); err != nil {
		return nil, err
	}
	r.ThreatLevel, err = strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(r.ThreatLevel, 0) || math.IsNaN(r.ThreatLevel) {
		return nil, &SchemaError{Line: line, Field: ColThreatLevel, Reason: fmt.Sprintf("not a number: %q", s)}
	}

	if s, err = val(ColHabitatSpecificity); err != nil {
		return nil, err
	}
	if r.HabitatSpecificity, err = parseCount(s); err != nil {
		return nil, &SchemaError{Line: line, Field: ColHabitatSpecificity, Reason: err.Error()}
	}

	if s, err = val(ColUseValue); err != nil {
		return nil, err
	}
	if r.UseValue, err = parseCount(s); err != nil {
		return nil, &SchemaError{Line: line, Field: ColUseValue, Reason: err.Error()}
	}

	return &r, nil
}

// parseCount accepts integers and integral decimals such as "2.0".
func parseCount(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}
	return int(f), nil
}
