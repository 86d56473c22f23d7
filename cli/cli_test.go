package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/perfgo/resulttool/regression"
	"github.com/perfgo/resulttool/report"
	"github.com/perfgo/resulttool/resultutils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const baseResults = `{
    "run_base": {
        "configuration": {"TEST_TYPE": "runtime", "DISTRO": "poky", "MACHINE": "qemux86", "IMAGE_BASENAME": "core-image-sato"},
        "result": {
            "ping.PingTest.test_ping": {"status": "PASSED"},
            "ssh.SSHTest.test_ssh": {"status": "PASSED"},
            "scp.ScpTest.test_scp": {"status": "PASSED", "log": "copied"}
        }
    },
    "run_arm": {
        "configuration": {"TEST_TYPE": "runtime", "DISTRO": "poky", "MACHINE": "qemuarm", "IMAGE_BASENAME": "core-image-sato"},
        "result": {
            "ping.PingTest.test_ping": {"status": "PASSED"}
        }
    }
}`

const targetResults = `{
    "run_target": {
        "configuration": {"TEST_TYPE": "runtime", "DISTRO": "poky", "MACHINE": "qemux86", "IMAGE_BASENAME": "core-image-sato"},
        "result": {
            "ping.PingTest.test_ping": {"status": "PASSED"},
            "ssh.SSHTest.test_ssh": {"status": "FAILED"},
            "scp.ScpTest.test_scp": {"status": "ERROR", "log": "connection refused"}
        }
    }
}`

func writeResults(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name, resultutils.ResultsFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestApp() (*App, *bytes.Buffer) {
	app := New()
	app.logger = zerolog.Nop()

	var buf bytes.Buffer
	app.cli.Writer = &buf
	app.cli.ErrWriter = &buf
	app.cli.ExitErrHandler = func(*cli.Context, error) {}
	return app, &buf
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{
			name: "no arguments",
			in:   nil,
			want: "resulttool",
		},
		{
			name: "plain arguments",
			in:   []string{"report", "--failed", "results/testresults.json"},
			want: "resulttool report --failed results/testresults.json",
		},
		{
			name: "argument with spaces",
			in:   []string{"report", "my results"},
			want: "resulttool report 'my results'",
		},
		{
			name: "empty argument",
			in:   []string{"report", ""},
			want: "resulttool report ''",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := commandLine(tt.in...)
			if got != tt.want {
				t.Errorf("commandLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateChanges(t *testing.T) {
	text := "Regression:  base\n" +
		"             target\n" +
		"    a: PASSED -> FAILED\n" +
		"    b: PASSED -> FAILED\n" +
		"    c: FAILED -> PASSED\n" +
		"    Additionally, 1 new test(s) is/are present\n"

	tests := []struct {
		name  string
		limit int
		want  string
	}{
		{
			name:  "no limit",
			limit: 0,
			want:  text,
		},
		{
			name:  "limit above changes",
			limit: 5,
			want:  text,
		},
		{
			name:  "limit one",
			limit: 1,
			want: "Regression:  base\n" +
				"             target\n" +
				"    a: PASSED -> FAILED\n" +
				"    ... 2 more change(s)\n" +
				"    Additionally, 1 new test(s) is/are present\n",
		},
		{
			name:  "note at the end",
			limit: 2,
			want: "Regression:  base\n" +
				"             target\n" +
				"    a: PASSED -> FAILED\n" +
				"    b: PASSED -> FAILED\n" +
				"    ... 1 more change(s)\n" +
				"    Additionally, 1 new test(s) is/are present\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, truncateChanges(text, tt.limit))
		})
	}
}

func TestRegressionCommand(t *testing.T) {
	base := writeResults(t, "base", baseResults)
	target := writeResults(t, "target", targetResults)

	app, out := newTestApp()
	err := app.Run([]string{AppName, "regression", base, target})
	require.NoError(t, err)

	require.Contains(t, out.String(), "=== Regressions (1) ===")
	require.Contains(t, out.String(), "Regression:  run_base")
	require.Contains(t, out.String(), "ssh.SSHTest.test_ssh: PASSED -> FAILED")
	require.Contains(t, out.String(), "scp.ScpTest.test_scp: PASSED -> ERROR")
	require.Contains(t, out.String(), "=== No target results (1) ===")
	require.Contains(t, out.String(), "qemuarm")
	require.NotContains(t, out.String(), "=== Matches")
}

func TestRegressionCommand_Options(t *testing.T) {
	base := writeResults(t, "base", baseResults)
	target := writeResults(t, "target", targetResults)

	configPath := filepath.Join(t.TempDir(), "resulttool.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("grouping: default\nlimit: 1\n"), 0o644))

	app, out := newTestApp()
	err := app.Run([]string{AppName, "--config", configPath, "regression", base, target})
	require.NoError(t, err)
	require.Contains(t, out.String(), "    runtime/poky/qemuarm/core-image-sato\n")
	require.Contains(t, out.String(), "... 1 more change(s)")
	require.Contains(t, out.String(), "Show all changes: resulttool regression --limit 0")

	app, out = newTestApp()
	err = app.Run([]string{AppName, "--config", configPath, "regression", "--limit", "0", base, target})
	require.NoError(t, err)
	require.NotContains(t, out.String(), "more change(s)")

	app, out = newTestApp()
	err = app.Run([]string{AppName, "regression", "-b", "run_arm", base, target})
	require.NoError(t, err)
	require.Contains(t, out.String(), "No regressions found")

	app, _ = newTestApp()
	err = app.Run([]string{AppName, "regression", "--fail-on-regression", base, target})
	require.ErrorContains(t, err, "1 regression(s) found")
}

func TestRegressionCommand_Errors(t *testing.T) {
	base := writeResults(t, "base", baseResults)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing target",
			args:    []string{AppName, "regression", base},
			wantErr: "expected BASE and TARGET arguments",
		},
		{
			name:    "unreadable target",
			args:    []string{AppName, "regression", base, filepath.Join(t.TempDir(), "missing.json")},
			wantErr: "failed to load target results",
		},
		{
			name:    "invalid config",
			args:    []string{AppName, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "regression", base, base},
			wantErr: "failed to read config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp()
			require.ErrorContains(t, app.Run(tt.args), tt.wantErr)
		})
	}
}

func TestReportCommand(t *testing.T) {
	target := writeResults(t, "target", targetResults)

	app, out := newTestApp()
	require.NoError(t, app.Run([]string{AppName, "report", target}))
	require.Contains(t, out.String(), "run_target")
	require.Contains(t, out.String(), "TOTAL")
	require.Contains(t, out.String(), "List failed tests: resulttool report --failed")

	app, out = newTestApp()
	require.NoError(t, app.Run([]string{AppName, "report", "--json", target}))
	var r report.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &r))
	require.Equal(t, report.Counts{
		Passed:          1,
		Failed:          2,
		Errored:         1,
		FailedTestcases: []string{"ssh.SSHTest.test_ssh", "scp.ScpTest.test_scp"},
	}, r.Total)

	app, out = newTestApp()
	require.NoError(t, app.Run([]string{AppName, "report", "-r", "missing", target}))
	require.Contains(t, out.String(), "No test results found")

	app, _ = newTestApp()
	require.ErrorContains(t, app.Run([]string{AppName, "report"}), "no results specified")
}

func TestMergeCommand(t *testing.T) {
	base := writeResults(t, "base", baseResults)
	target := writeResults(t, "target", targetResults)

	outDir := t.TempDir()
	app, out := newTestApp()
	require.NoError(t, app.Run([]string{AppName, "merge", "-o", outDir, "--strip-logs", base, target}))

	x86 := filepath.Join(outDir, "runtime", "poky", "qemux86", "core-image-sato", resultutils.ResultsFileName)
	arm := filepath.Join(outDir, "runtime", "poky", "qemuarm", "core-image-sato", resultutils.ResultsFileName)
	require.Contains(t, out.String(), x86)
	require.Contains(t, out.String(), arm)
	require.Contains(t, out.String(), "Report merged results: resulttool report")

	runs, err := resultutils.LoadFile(x86)
	require.NoError(t, err)
	require.Equal(t, []string{"run_base", "run_target"}, runs.Keys())
	record, _ := runs.Get("run_target")
	scp, _ := record.Result.Get("scp.ScpTest.test_scp")
	require.Empty(t, scp.Log)

	flatDir := t.TempDir()
	app, _ = newTestApp()
	require.NoError(t, app.Run([]string{AppName, "merge", "--output", flatDir, "--flatten", base, target}))
	runs, err = resultutils.LoadFile(filepath.Join(flatDir, resultutils.ResultsFileName))
	require.NoError(t, err)
	require.Equal(t, []string{"run_base", "run_arm", "run_target"}, runs.Keys())
	record, _ = runs.Get("run_target")
	scp, _ = record.Result.Get("scp.ScpTest.test_scp")
	require.Equal(t, "connection refused", scp.Log)
}

func TestSetVersion(t *testing.T) {
	tests := []struct {
		name                  string
		version, commit, date string
		want                  string
	}{
		{"dev build", "dev", "none", "unknown", "dev"},
		{"release", "v1.2.0", "0123456789abcdef", "2024-05-01", "v1.2.0 (commit: 01234567, built: 2024-05-01)"},
		{"short commit", "v1.2.0", "abc", "2024-05-01", "v1.2.0 (commit: abc, built: 2024-05-01)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := New()
			app.SetVersion(tt.version, tt.commit, tt.date)
			require.Equal(t, tt.want, app.cli.Version)
		})
	}
}

func TestPrintSummary_Incomparable(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, regression.Summary{Incomparable: []string{"oeselftest/poky/qemux86/core-image-sato"}}, 0)

	require.Contains(t, buf.String(), "No regressions found")
	require.Contains(t, buf.String(), "=== No comparable runs (1) ===")
	require.Contains(t, buf.String(), "    oeselftest/poky/qemux86/core-image-sato\n")
}
