package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mchmarny/sprio/pkg/export"
	"github.com/mchmarny/sprio/pkg/score"
	urfave "github.com/urfave/cli/v3"
)

const (
	sampleFileName   = "sample_species_data.csv"
	criteriaFileName = "criteria_species_priority.xlsx"
)

func newSampleCmd() *urfave.Command {
	return &urfave.Command{
		Name:   "sample",
		Usage:  "Write a sample input CSV",
		Action: cmdSample,
		Flags: []urfave.Flag{
			outFlag(fmt.Sprintf("Write to this file instead of stdout (e.g. %s)", sampleFileName)),
		},
	}
}

func cmdSample(_ context.Context, cmd *urfave.Command) error {
	return writeTo(cmd, cmd.String(flagOut), export.WriteSampleCSV)
}

func newCriteriaCmd() *urfave.Command {
	return &urfave.Command{
		Name:   "criteria",
		Usage:  "Show the scoring criteria",
		Action: cmdCriteria,
		Flags: []urfave.Flag{
			outFlag(fmt.Sprintf("Write the criteria to this file, .xlsx or .csv (e.g. %s)", criteriaFileName)),
		},
	}
}

func cmdCriteria(_ context.Context, cmd *urfave.Command) error {
	out := cmd.String(flagOut)
	if out == "" {
		return encode(writer(cmd), getConfig(cmd).Output, score.Criteria())
	}

	f, err := export.FormatFromPath(out)
	if err != nil {
		return err
	}

	var fn func(io.Writer) error
	switch f {
	case export.FormatXLSX:
		fn = export.WriteCriteriaXLSX
	case export.FormatCSV:
		fn = export.WriteCriteriaCSV
	default:
		return fmt.Errorf("%w for criteria: %s", export.ErrUnsupportedFormat, f)
	}
	return writeTo(cmd, out, fn)
}
