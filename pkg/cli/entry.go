package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/mchmarny/sprio/pkg/entry"
	"github.com/mchmarny/sprio/pkg/export"
	"github.com/mchmarny/sprio/pkg/score"
	urfave "github.com/urfave/cli/v3"
)

const (
	flagName         = "name"
	flagIUCN         = "iucn"
	flagEndemism     = "endemism"
	flagThreat       = "threat"
	flagAltitude     = "altitude"
	flagExploitation = "exploitation"
	flagHabitat      = "habitat"
	flagUse          = "use"
)

func newEntryCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "entry",
		Aliases: []string{"e"},
		Usage:   "Score a single species",
		UsageText: `sprio entry --name "Species A" --iucn Endangered --endemism Yes \
     --threat 3 --altitude 501-1000 --exploitation "Local use" --habitat 2 --use 2`,
		Action: cmdEntry,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:     flagName,
				Usage:    "Species name",
				Required: true,
			},
			&urfave.StringFlag{
				Name:  flagIUCN,
				Usage: fmt.Sprintf("IUCN status [%s]", strings.Join(score.IUCNStatuses(), ", ")),
				Value: score.IUCNLeastConcern,
			},
			&urfave.StringFlag{
				Name:  flagEndemism,
				Usage: fmt.Sprintf("Endemic to the region [%s]", strings.Join(score.EndemismValues(), ", ")),
				Value: score.EndemicNo,
			},
			&urfave.IntFlag{
				Name:  flagThreat,
				Usage: fmt.Sprintf("Threat level (%d-%d)", entry.ThreatMin, entry.ThreatMax),
				Value: entry.ThreatDefault,
			},
			&urfave.StringFlag{
				Name:  flagAltitude,
				Usage: fmt.Sprintf("Altitudinal range in meters [%s]", strings.Join(score.AltitudinalRanges(), ", ")),
				Value: score.AltitudeBelow500,
			},
			&urfave.StringFlag{
				Name:  flagExploitation,
				Usage: fmt.Sprintf("Exploitation [%s]", strings.Join(score.ExploitationLevels(), ", ")),
				Value: score.ExploitationNone,
			},
			&urfave.IntFlag{
				Name:  flagHabitat,
				Usage: fmt.Sprintf("Number of habitats (%d-%d)", entry.HabitatMin, entry.HabitatMax),
				Value: entry.HabitatDefault,
			},
			&urfave.IntFlag{
				Name:  flagUse,
				Usage: fmt.Sprintf("Number of uses (%d-%d)", entry.UseMin, entry.UseMax),
				Value: entry.UseDefault,
			},
			outFlag("Write an Excel report to this file"),
		},
	}
}

func cmdEntry(_ context.Context, cmd *urfave.Command) error {
	f := &entry.Form{
		SpeciesName:        strings.TrimSpace(cmd.String(flagName)),
		IUCNStatus:         cmd.String(flagIUCN),
		Endemism:           cmd.String(flagEndemism),
		ThreatLevel:        cmd.Int(flagThreat),
		AltitudinalRange:   cmd.String(flagAltitude),
		Exploitation:       cmd.String(flagExploitation),
		HabitatSpecificity: cmd.Int(flagHabitat),
		UseValue:           cmd.Int(flagUse),
	}

	if err := entry.NewValidator().Validate(f); err != nil {
		return err
	}

	s := score.ScoreOne(f.Record())

	if out := cmd.String(flagOut); out != "" {
		rep := export.NewReport([]*score.Scored{s}, nil)
		if err := export.WriteFile(out, export.FormatXLSX, export.SheetSingle, rep); err != nil {
			return err
		}
	}

	return encode(writer(cmd), getConfig(cmd).Output, s)
}
