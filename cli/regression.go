package cli

// This file contains the regression command for comparing base and target
// results.

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/perfgo/resulttool/model"
	"github.com/perfgo/resulttool/regression"
	"github.com/perfgo/resulttool/resultutils"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func (a *App) regression(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return fmt.Errorf("expected BASE and TARGET arguments, got %d argument(s)", ctx.NArg())
	}
	basePath, targetPath := ctx.Args().Get(0), ctx.Args().Get(1)

	base, target, err := a.loadPair(ctx.Context, basePath, targetPath)
	if err != nil {
		return err
	}
	base = resultutils.Filter(base, ctx.StringSlice("base-result-id")...)
	target = resultutils.Filter(target, ctx.StringSlice("target-result-id")...)

	a.logger.Debug().
		Int("base_runs", base.Len()).
		Int("target_runs", target.Len()).
		Str("grouping", a.config.Grouping).
		Msg("Loaded results")

	strategy := a.config.RegressionKey()
	summary := regression.Regress(
		a.logger,
		resultutils.Append(nil, base, strategy),
		resultutils.Append(nil, target, strategy),
		regression.Options{GuessMetadata: ctx.Bool("guess-metadata") || a.config.GuessMetadata},
	)

	limit := *a.config.Limit
	if ctx.IsSet("limit") {
		limit = ctx.Int("limit")
	}

	out := ctx.App.Writer
	printSummary(out, summary, limit)

	if limit > 0 && truncated(summary, limit) {
		fmt.Fprintf(out, "\nShow all changes: %s\n", commandLine("regression", "--limit", "0", basePath, targetPath))
	}

	if ctx.Bool("fail-on-regression") && len(summary.Regressions) > 0 {
		return cli.Exit(fmt.Sprintf("%d regression(s) found", len(summary.Regressions)), 1)
	}
	return nil
}

// loadPair loads base and target results concurrently.
func (a *App) loadPair(ctx context.Context, basePath, targetPath string) (*model.RunSet, *model.RunSet, error) {
	var base, target *model.RunSet

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		base, err = resultutils.LoadAll(ctx, a.logger, basePath)
		if err != nil {
			return fmt.Errorf("failed to load base results: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		target, err = resultutils.LoadAll(ctx, a.logger, targetPath)
		if err != nil {
			return fmt.Errorf("failed to load target results: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return base, target, nil
}

func printSummary(w io.Writer, summary regression.Summary, limit int) {
	if len(summary.Regressions) == 0 {
		fmt.Fprintln(w, "No regressions found")
	} else {
		fmt.Fprintf(w, "\n=== Regressions (%d) ===\n\n", len(summary.Regressions))
		for _, p := range summary.Regressions {
			fmt.Fprint(w, truncateChanges(p.Text, limit))
			fmt.Fprintln(w)
		}
	}

	if len(summary.NotFound) > 0 {
		fmt.Fprintf(w, "\n=== No target results (%d) ===\n\n", len(summary.NotFound))
		for _, key := range summary.NotFound {
			fmt.Fprintf(w, "    %s\n", key)
		}
	}

	if len(summary.Incomparable) > 0 {
		fmt.Fprintf(w, "\n=== No comparable runs (%d) ===\n\n", len(summary.Incomparable))
		for _, key := range summary.Incomparable {
			fmt.Fprintf(w, "    %s\n", key)
		}
	}

	if len(summary.Matches) > 0 {
		fmt.Fprintf(w, "\n=== Matches (%d) ===\n\n", len(summary.Matches))
		for _, p := range summary.Matches {
			fmt.Fprint(w, p.Text)
		}
	}
}

func truncated(summary regression.Summary, limit int) bool {
	for _, p := range summary.Regressions {
		if p.Changes != nil && p.Changes.Len() > limit {
			return true
		}
	}
	return false
}

// isChangeLine reports whether line lists a single test outcome change.
func isChangeLine(line string) bool {
	if len(line) <= 4 || line[:4] != "    " || line[4] == ' ' {
		return false
	}
	return !strings.HasPrefix(line, "    Additionally")
}

// truncateChanges keeps the first limit changed tests of a comparison text.
// The remaining change lines are replaced by a single note. A limit of 0
// keeps everything.
func truncateChanges(text string, limit int) string {
	if limit <= 0 {
		return text
	}

	var sb strings.Builder
	var shown, hidden int
	noted := false
	note := func() {
		if hidden > 0 && !noted {
			fmt.Fprintf(&sb, "    ... %d more change(s)\n", hidden)
			noted = true
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if isChangeLine(line) {
			if shown >= limit {
				hidden++
				continue
			}
			shown++
		} else {
			note()
		}
		sb.WriteString(line)
	}
	note()

	return sb.String()
}
