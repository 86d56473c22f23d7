package cli

// This file contains the merge command for combining result trees.

import (
	"fmt"

	"github.com/perfgo/resulttool/resultutils"
	"github.com/urfave/cli/v2"
)

func (a *App) merge(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return fmt.Errorf("expected BASE and TARGET arguments, got %d argument(s)", ctx.NArg())
	}
	outDir := ctx.String("output")

	base, target, err := a.loadPair(ctx.Context, ctx.Args().Get(0), ctx.Args().Get(1))
	if err != nil {
		return err
	}

	strategy := a.config.StoreKey()
	if ctx.Bool("flatten") {
		strategy = resultutils.FlattenKey
	}

	index := resultutils.Append(nil, base, strategy)
	index = resultutils.Append(index, target, strategy)

	if ctx.Bool("strip-logs") {
		for key, group := range index.All() {
			index.Set(key, resultutils.StripLogs(group))
		}
	}

	written, err := resultutils.WriteIndex(outDir, index)
	if err != nil {
		return fmt.Errorf("failed to write merged results: %w", err)
	}

	a.logger.Info().
		Int("base_runs", base.Len()).
		Int("target_runs", target.Len()).
		Int("files", len(written)).
		Str("output", outDir).
		Msg("Merged results")

	out := ctx.App.Writer
	for _, path := range written {
		fmt.Fprintln(out, path)
	}
	fmt.Fprintf(out, "\nReport merged results: %s\n", commandLine("report", outDir))
	return nil
}
