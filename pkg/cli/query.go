package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mchmarny/sprio/pkg/data"
	"github.com/mchmarny/sprio/pkg/score"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagPriority = "priority"
	flagRun      = "run"
	flagLike     = "like"
	flagLimit    = "limit"
)

func newQueryCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "List exported species",
		Action:  cmdQuery,
		Flags: []urfave.Flag{
			dbFlag(),
			&urfave.StringFlag{
				Name:  flagPriority,
				Usage: fmt.Sprintf("Priority [%s]", strings.Join(priorityNames(), ", ")),
			},
			&urfave.StringFlag{
				Name:  flagRun,
				Usage: "Export run ID",
			},
			&urfave.StringFlag{
				Name:  flagLike,
				Usage: "Fuzzy species name search",
			},
			&urfave.IntFlag{
				Name:  flagLimit,
				Usage: "Limits number of result returned",
				Value: data.QueryLimitDefault,
			},
		},
		Commands: []*urfave.Command{
			{
				Name:   "runs",
				Usage:  "List export runs",
				Action: cmdQueryRuns,
				Flags: []urfave.Flag{
					dbFlag(),
				},
			},
		},
	}
}

func priorityNames() []string {
	list := make([]string, 0, len(score.AllPriorities()))
	for _, p := range score.AllPriorities() {
		list = append(list, p.String())
	}
	return list
}

func cmdQuery(ctx context.Context, cmd *urfave.Command) error {
	q := data.Query{
		RunID: cmd.String(flagRun),
		Name:  cmd.String(flagLike),
		Limit: cmd.Int(flagLimit),
	}
	if v := cmd.String(flagPriority); v != "" {
		p, err := score.ParsePriority(v)
		if err != nil {
			return err
		}
		q.Priority = p
	}
	if q.Limit <= 0 || q.Limit > data.QueryLimitDefault {
		q.Limit = data.QueryLimitDefault
	}

	slog.Debug("query species", "run", q.RunID, "priority", q.Priority, "like", q.Name, "limit", q.Limit)

	s, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	list, err := s.ListScored(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to query species: %w", err)
	}

	if err := encode(writer(cmd), getConfig(cmd).Output, list); err != nil {
		return fmt.Errorf("error encoding species: %w", err)
	}
	return nil
}

func cmdQueryRuns(ctx context.Context, cmd *urfave.Command) error {
	s, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	list, err := s.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to query runs: %w", err)
	}

	if err := encode(writer(cmd), getConfig(cmd).Output, list); err != nil {
		return fmt.Errorf("error encoding runs: %w", err)
	}
	return nil
}
