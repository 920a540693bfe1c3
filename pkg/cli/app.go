package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mchmarny/sprio/pkg/config"
	"github.com/mchmarny/sprio/pkg/logging"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "sprio"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

// Flags are built per command tree: urfave keeps parsed values on the flag.
const (
	flagDebug     = "debug"
	flagFormat    = "format"
	flagConfigDir = "config"
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger(config.LogLevelDefault)

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Dir    string
	Output string
	Debug  bool
	*config.Config
}

func getConfig(cmd *urfave.Command) *appConfig {
	if c, ok := cmd.Root().Metadata[appConfigKey].(*appConfig); ok {
		return c
	}
	return &appConfig{Output: formatJSON, Config: config.Default()}
}

func newApp() *urfave.Command {
	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Usage:                 "Prioritize species for conservation using a weighted scoring model",
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Metadata:              map[string]any{},
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  flagDebug,
				Usage: "Prints verbose logs (optional, default: false)",
			},
			&urfave.StringFlag{
				Name:  flagFormat,
				Usage: "Output format [json, yaml] (default: from config)",
			},
			&urfave.StringFlag{
				Name:  flagConfigDir,
				Usage: fmt.Sprintf("Path to the config directory (optional, defaults to $HOME/.%s)", appName),
			},
		},
		Commands: []*urfave.Command{
			newScoreCmd(),
			newEntryCmd(),
			newSampleCmd(),
			newCriteriaCmd(),
			newQueryCmd(),
			newServerCmd(),
		},
		Before: before,
	}
}

func before(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
	dir := cmd.String(flagConfigDir)
	if dir == "" {
		d, _, err := config.GetOrCreateHomeDir(appName)
		if err != nil {
			return ctx, fmt.Errorf("resolving config dir: %w", err)
		}
		dir = d
	}

	c, err := config.ReadOrCreate(dir)
	if err != nil {
		return ctx, fmt.Errorf("loading config: %w", err)
	}
	c.ApplyEnv()

	debug := cmd.Bool(flagDebug)
	if debug {
		c.LogLevel = "debug"
	}
	logging.SetDefaultCLILogger(c.LogLevel)

	format := c.Format
	if f := cmd.String(flagFormat); f != "" {
		format = f
	}

	cfg := &appConfig{
		Dir:    dir,
		Output: outputFormat(format),
		Debug:  debug,
		Config: c,
	}
	cmd.Root().Metadata[appConfigKey] = cfg
	slog.Debug("config loaded", "dir", dir, "format", cfg.Output, "workers", c.Workers)
	return ctx, nil
}

func outputFormat(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case formatYAML, "yml":
		return formatYAML
	default:
		return formatJSON
	}
}

func writer(cmd *urfave.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
