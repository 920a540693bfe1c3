package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mchmarny/sprio/pkg/score"
	"github.com/mchmarny/sprio/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	in := `species_name,iucn_status,endemism,threat_level,altitudinal_range,exploitation,habitat_specificity,use_value,region
Species A,Endangered,Yes,3,501-1000,Local use,2,2,North
Species B,Vulnerable,No,2,1001-1500,Not exploited,1,1,South
`
	d, err := table.Read(strings.NewReader(in))
	require.NoError(t, err)
	return NewReport(score.Score(d.Records), d)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"csv", FormatCSV},
		{".xlsx", FormatXLSX},
		{"Excel", FormatXLSX},
		{"json", FormatJSON},
		{"yml", FormatYAML},
		{" YAML ", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("/tmp/report.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = FormatFromPath("report")
	assert.Error(t, err)
}

func TestReport_Header(t *testing.T) {
	r := sampleReport(t)
	h := r.Header()
	assert.Equal(t, table.Columns(), h[:8])
	assert.Equal(t, "region", h[8])
	assert.Equal(t, ScoreColumns(), h[9:])
	assert.Equal(t, ColPriority, h[len(h)-1])
}

func TestReport_HeaderWithoutDataset(t *testing.T) {
	r := NewReport(score.Score(score.SampleRecords()), nil)
	assert.Len(t, r.Header(), 8+len(ScoreColumns()))
	assert.Empty(t, r.ExtraColumns)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport(t)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"Species A", "Endangered", "Yes", "3", "501-1000", "Local use", "2", "2", "North",
		"12", "4", "9", "3", "4", "4.5", "4.5", "41", "Critical",
	}, rows[1])
	assert.Equal(t, "30", rows[2][16])
	assert.Equal(t, "Medium", rows[2][17])
}

func TestWriteCSV_RoundTripsThroughReader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport(t)))

	d, err := table.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, score.SampleRecords(), d.Records)
	assert.Equal(t, []string{"region"}, d.ExtraColumns)
}

func TestReport_HeaderAfterRescoringReport(t *testing.T) {
	tests := []struct {
		name   string
		passes int
	}{
		{"once", 1},
		{"twice", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleReport(t)
			for range tt.passes {
				var buf bytes.Buffer
				require.NoError(t, WriteCSV(&buf, r))
				d, err := table.Read(&buf)
				require.NoError(t, err)
				r = NewReport(score.Score(d.Records), d)
			}

			h := r.Header()
			assert.Equal(t, sampleReport(t).Header(), h)
			n := 0
			for _, c := range h {
				if c == ColPriority {
					n++
				}
			}
			assert.Equal(t, 1, n)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport(t)))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Species A", got[0]["species_name"])
	assert.Equal(t, "Critical", got[0]["priority"])
	assert.Equal(t, 41.0, got[0]["total_score"])
	assert.Equal(t, map[string]any{"region": "North"}, got[0]["extra"])
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sampleReport(t)))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Species B", got[1]["speciesName"])
	assert.Equal(t, "Medium", got[1]["priority"])
	assert.Equal(t, 4.5, got[0]["useScore"])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, SheetBatch, sampleReport(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetBatch}, f.GetSheetList())

	rows, err := f.GetRows(SheetBatch)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "species_name", rows[0][0])
	assert.Equal(t, "priority", rows[0][len(rows[0])-1])
	assert.Equal(t, "Species A", rows[1][0])
	assert.Equal(t, "41", rows[1][16])
	assert.Equal(t, "Critical", rows[1][17])
}

func TestWriteXLSX_SingleSheetName(t *testing.T) {
	var buf bytes.Buffer
	r := NewReport(score.Score(score.SampleRecords()[:1]), nil)
	require.NoError(t, Write(&buf, FormatXLSX, SheetSingle, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetSingle}, f.GetSheetList())
}

func TestWrite_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Format("pdf"), "", sampleReport(t))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	require.NoError(t, WriteFile(path, FormatCSV, "", sampleReport(t)))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Species A")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFile_FailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	err := WriteFile(path, Format("pdf"), "", sampleReport(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExport))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteFile_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "report.csv")
	err := WriteFile(path, FormatCSV, "", sampleReport(t))
	assert.ErrorIs(t, err, ErrExport)
}

func TestWriteSampleCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSampleCSV(&buf))

	d, err := table.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, score.SampleRecords(), d.Records)
	assert.Empty(t, d.ExtraColumns)
}

func TestWriteCriteriaCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCriteriaCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, []string{"Criterion", "Description", "Scoring"}, rows[0])
	assert.Equal(t, "Use Value", rows[7][0])
}

func TestWriteCriteriaXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCriteriaXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetCriteria)
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, "IUCN Status", rows[1][0])
}
