package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/perfgo/resulttool/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "resulttool"

type App struct {
	logger zerolog.Logger
	config *config.Config
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		config: config.Default(),
	}
	app.cli = &cli.App{
		Name:  AppName,
		Usage: "Manipulate and compare test result files",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose (debug) logging",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"RESULTTOOL_CONFIG"},
			},
		},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			cfg, err := config.Load(ctx.String("config"))
			if err != nil {
				return err
			}
			app.config = cfg
			return nil
		},
	}

	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "report",
		Usage:     "Summarize passed, failed and skipped tests per run",
		ArgsUsage: "SOURCE...",
		Action:    app.report,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "result-id",
				Aliases: []string{"r"},
				Usage:   "Only report the given run identifiers",
			},
			&cli.BoolFlag{
				Name:  "failed",
				Usage: "List the failed test cases of every run",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the report as JSON",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "regression",
		Usage:     "Compare base results against target results",
		ArgsUsage: "BASE TARGET",
		Action:    app.regression,
		Description: `Pair the runs of BASE and TARGET by configuration and report the tests
whose outcome changed.

BASE and TARGET are testresults.json files or directories containing them.

Examples:
  resulttool regression base/ target/
  resulttool regression -b run_1 -t run_2 base.json target.json
  resulttool regression --guess-metadata --limit 0 base/ target/`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "base-result-id",
				Aliases: []string{"b"},
				Usage:   "Only use the given base run identifiers",
			},
			&cli.StringSliceFlag{
				Name:    "target-result-id",
				Aliases: []string{"t"},
				Usage:   "Only use the given target run identifiers",
			},
			&cli.BoolFlag{
				Name:  "guess-metadata",
				Usage: "Guess selection metadata of oeselftest runs that lack it",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of changed tests printed per pair, 0 prints all",
				Value:   config.DefaultLimit,
			},
			&cli.BoolFlag{
				Name:  "fail-on-regression",
				Usage: "Exit with status 1 when regressions are found",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "merge",
		Usage:     "Merge base and target results into one results tree",
		ArgsUsage: "BASE TARGET",
		Action:    app.merge,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Output directory",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "flatten",
				Usage: "Write every run into a single testresults.json",
			},
			&cli.BoolFlag{
				Name:  "strip-logs",
				Usage: "Drop test logs from the merged output",
			},
		},
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		if len(commit) > 8 {
			commit = commit[:8]
		}
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	}
}
