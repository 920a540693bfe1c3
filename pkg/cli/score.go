package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mchmarny/sprio/pkg/data"
	"github.com/mchmarny/sprio/pkg/export"
	"github.com/mchmarny/sprio/pkg/net"
	"github.com/mchmarny/sprio/pkg/score"
	"github.com/mchmarny/sprio/pkg/table"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagToken        = "token"
	flagWorkers      = "workers"
	flagOut          = "out"
	flagReportFormat = "report-format"
	flagDB           = "db"
	flagSave         = "save"
	flagSummary      = "summary"
)

func outFlag(usage string) *urfave.StringFlag {
	return &urfave.StringFlag{
		Name:    flagOut,
		Aliases: []string{"o"},
		Usage:   usage,
	}
}

func dbFlag() *urfave.StringFlag {
	return &urfave.StringFlag{
		Name:  flagDB,
		Usage: "Sqlite file path or postgres:// DSN (default: from config)",
	}
}

func newScoreCmd() *urfave.Command {
	return &urfave.Command{
		Name:      "score",
		Aliases:   []string{"s"},
		Usage:     "Score every species in a CSV file, stdin, or URL",
		ArgsUsage: "<file|-|url>",
		UsageText: `sprio score species.csv                          # print scored rows
   sprio score --out report.xlsx species.csv        # write an Excel report
   cat species.csv | sprio score --summary -        # summary of stdin
   sprio score --save https://example.com/species.csv`,
		Action: cmdScore,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:    flagToken,
				Usage:   "Bearer token used when the input is a URL",
				Sources: urfave.EnvVars("SPRIO_TOKEN"),
			},
			&urfave.IntFlag{
				Name:  flagWorkers,
				Usage: "Number of concurrent scoring workers (default: from config)",
			},
			outFlag("Write the report to this file (.csv, .xlsx, .json, .yaml)"),
			&urfave.StringFlag{
				Name:  flagReportFormat,
				Usage: "Report format when it can't be derived from --out [csv, xlsx, json, yaml]",
			},
			dbFlag(),
			&urfave.BoolFlag{
				Name:  flagSave,
				Usage: "Export scored rows to the database",
			},
			&urfave.BoolFlag{
				Name:  flagSummary,
				Usage: "Print only the batch summary",
			},
		},
	}
}

type scoreResult struct {
	Source  string         `json:"source" yaml:"source"`
	Output  string         `json:"output,omitempty" yaml:"output,omitempty"`
	RunID   string         `json:"run_id,omitempty" yaml:"runId,omitempty"`
	Summary *score.Summary `json:"summary" yaml:"summary"`
}

func cmdScore(ctx context.Context, cmd *urfave.Command) error {
	src := cmd.Args().First()
	if src == "" {
		return errors.New("input required: file path, - for stdin, or http(s) URL")
	}

	cfg := getConfig(cmd)

	d, err := readSource(ctx, src, cmd.String(flagToken))
	if err != nil {
		return err
	}

	workers := cmd.Int(flagWorkers)
	if workers < 1 {
		workers = cfg.Workers
	}

	rows, err := score.ScoreAll(ctx, d.Records, workers)
	if err != nil {
		return fmt.Errorf("scoring %s: %w", src, err)
	}
	slog.Debug("scored", "source", src, "rows", len(rows), "workers", workers)

	rep := export.NewReport(rows, d)
	res := &scoreResult{Source: src, Summary: score.Summarize(rows)}

	if out := cmd.String(flagOut); out != "" {
		f, err := reportFormat(out, cmd.String(flagReportFormat))
		if err != nil {
			return err
		}
		if err := export.WriteFile(out, f, export.SheetBatch, rep); err != nil {
			return err
		}
		res.Output = out
	}

	if cmd.Bool(flagSave) || cmd.String(flagDB) != "" {
		id, err := saveRows(ctx, cmd, src, rows)
		if err != nil {
			return err
		}
		res.RunID = id
	}

	w := writer(cmd)
	if res.Output != "" || res.RunID != "" || cmd.Bool(flagSummary) {
		return encode(w, cfg.Output, res)
	}

	f := export.FormatJSON
	if cfg.Output == formatYAML {
		f = export.FormatYAML
	}
	return export.Write(w, f, "", rep)
}

func readSource(ctx context.Context, src, token string) (*table.Dataset, error) {
	if !net.IsURL(src) {
		return table.ReadFile(src)
	}

	body, err := net.Fetch(ctx, src, token)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src, err)
	}
	defer body.Close()

	d, err := table.Read(body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src, err)
	}
	return d, nil
}

func reportFormat(path, explicit string) (export.Format, error) {
	if explicit != "" {
		return export.ParseFormat(explicit)
	}
	return export.FormatFromPath(path)
}

func dsn(cmd *urfave.Command) string {
	if v := cmd.String(flagDB); v != "" {
		return v
	}
	cfg := getConfig(cmd)
	if cfg.DB != "" {
		return cfg.DB
	}
	return filepath.Join(cfg.Dir, data.DataFileName)
}

func openStore(ctx context.Context, cmd *urfave.Command) (*data.Store, error) {
	s, err := data.Open(ctx, dsn(cmd))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return s, nil
}

func saveRows(ctx context.Context, cmd *urfave.Command, src string, rows []*score.Scored) (string, error) {
	s, err := openStore(ctx, cmd)
	if err != nil {
		return "", err
	}
	defer s.Close()

	id, err := s.SaveScored(ctx, src, rows)
	if err != nil {
		return "", fmt.Errorf("saving scored rows: %w", err)
	}
	slog.Info("exported", "run", id, "rows", len(rows), "driver", s.Driver())
	return id, nil
}

func writeTo(cmd *urfave.Command, path string, fn func(io.Writer) error) error {
	if path == "" || path == "-" {
		return fn(writer(cmd))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %w", export.ErrExport, path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("%w: writing %s: %w", export.ErrExport, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", export.ErrExport, path, err)
	}
	return nil
}
