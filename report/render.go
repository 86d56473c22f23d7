package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/perfgo/resulttool/model"
)

// Report holds the counts of every run and their totals.
type Report struct {
	Runs  []Counts `json:"runs"`
	Total Counts   `json:"total"`
}

// HasFailures reports whether any run had failed or errored tests.
func (r Report) HasFailures() bool {
	return r.Total.Failed > 0
}

// Build aggregates every run in runs, in order. Each run is attributed to its
// MACHINE configuration value.
func Build(runs *model.RunSet) Report {
	var r Report
	if runs == nil {
		return r
	}
	for id, record := range runs.All() {
		var machine string
		if record != nil {
			machine = record.Configuration.Machine
		}
		counts := Aggregate(id, record, machine)
		r.Runs = append(r.Runs, counts)
		r.Total.Add(counts)
	}
	return r
}

// Render writes the report as a table to w. With showFailed set, the failed
// test cases of every run are listed below the table.
func Render(w io.Writer, r Report, showFailed bool) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Test Result Report")

	t.AppendHeader(table.Row{"Run", "Machine", "Passed", "Failed", "Errored", "Skipped", "Total"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Run", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Errored", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Total", Align: text.AlignRight},
	})

	for _, c := range r.Runs {
		t.AppendRow(table.Row{c.RunID, c.Machine, c.Passed, c.Failed, c.Errored, c.Skipped, c.Total()})
	}

	t.AppendFooter(table.Row{"TOTAL", "", r.Total.Passed, r.Total.Failed, r.Total.Errored, r.Total.Skipped, r.Total.Total()})
	t.SetStyle(table.StyleLight)
	t.Render()

	if !showFailed || !r.HasFailures() {
		return nil
	}

	if _, err := fmt.Fprintln(w, "\n=== Failed test cases ==="); err != nil {
		return err
	}
	for _, c := range r.Runs {
		if len(c.FailedTestcases) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s (%s):\n", c.RunID, c.Machine); err != nil {
			return err
		}
		for _, testID := range c.FailedTestcases {
			if _, err := fmt.Fprintf(w, "    %s\n", testID); err != nil {
				return err
			}
		}
	}
	return nil
}
