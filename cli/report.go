package cli

// This file contains the report command for summarizing result files.

import (
	"encoding/json"
	"fmt"

	"github.com/perfgo/resulttool/report"
	"github.com/perfgo/resulttool/resultutils"
	"github.com/urfave/cli/v2"
)

func (a *App) report(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("no results specified: please provide at least one testresults.json file or directory")
	}

	runs, err := resultutils.LoadAll(ctx.Context, a.logger, ctx.Args().Slice()...)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}
	runs = resultutils.Filter(runs, ctx.StringSlice("result-id")...)

	out := ctx.App.Writer
	if runs.Len() == 0 {
		fmt.Fprintln(out, "No test results found")
		return nil
	}

	r := report.Build(runs)
	a.logger.Debug().Int("runs", len(r.Runs)).Int("total", r.Total.Total()).Msg("Aggregated results")

	if ctx.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	if err := report.Render(out, r, ctx.Bool("failed")); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if r.HasFailures() && !ctx.Bool("failed") {
		args := append([]string{"report", "--failed"}, ctx.Args().Slice()...)
		fmt.Fprintf(out, "\nList failed tests: %s\n", commandLine(args...))
	}
	return nil
}
