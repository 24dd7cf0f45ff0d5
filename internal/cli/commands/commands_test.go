package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/marksheet/engine"
	"github.com/spektr-org/marksheet/internal/testutil"
)

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStatsJSON(t *testing.T) {
	t.Setenv("MARKSHEET_OUTPUT", "json")
	out, err := execute(t, NewStatsCommand(), testutil.WriteClass(t), "--columns", "Maths")
	require.NoError(t, err)

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, engine.OpStats, res["operation"])
	rows := res["table"].(map[string]interface{})["rows"].([]interface{})
	assert.InDelta(t, 61.6, rows[0].([]interface{})[0], 1e-9)
}

func TestStatsExtended(t *testing.T) {
	t.Setenv("MARKSHEET_OUTPUT", "json")
	out, err := execute(t, NewStatsCommand(), testutil.WriteClass(t), "--columns", "Maths", "--extended")
	require.NoError(t, err)
	assert.Contains(t, out, `"operation": "`+engine.OpExtendedStats+`"`)
	assert.Contains(t, out, "median")
}

func TestRatesCSV(t *testing.T) {
	t.Setenv("MARKSHEET_OUTPUT", "csv")
	out, err := execute(t, NewRatesCommand(), testutil.WriteClass(t), "--columns", "Maths,Science")
	require.NoError(t, err)
	assert.Equal(t, "Subject,Pass Rate (%)\nMaths,80\nScience,60\n", out)
}

func TestPassFailSummary(t *testing.T) {
	t.Setenv("MARKSHEET_OUTPUT", "csv")
	out, err := execute(t, NewPassFailCommand(), testutil.WriteClass(t),
		"--columns", "Maths,Science,English", "--threshold", "50", "--summary")
	require.NoError(t, err)
	assert.Equal(t, "Status,Count\nFail,3\nPass,2\n", out)
}

func TestMarkdownOutput(t *testing.T) {
	t.Setenv("MARKSHEET_OUTPUT", "markdown")
	path := testutil.WriteClass(t)

	tests := []struct {
		name     string
		cmd      *cobra.Command
		args     []string
		contains []string
		excludes []string
	}{
		{
			name:     "lookup",
			cmd:      NewLookupCommand(),
			args:     []string{"--key", "3"},
			contains: []string{"Chen"},
			excludes: []string{"Bilal"},
		},
		{
			name:     "top",
			cmd:      NewTopCommand(),
			args:     []string{"-n", "2", "--name-column", "Name", "--columns", "Maths,Science,English"},
			contains: []string{"Chen", "Asha"},
			excludes: []string{"Dara"},
		},
		{
			name:     "counts",
			cmd:      NewCountsCommand(),
			args:     []string{"--column", "Section"},
			contains: []string{"| A", "| B"},
		},
		{
			name:     "compare keys",
			cmd:      NewCompareCommand(),
			args:     []string{"--keys", "1,3", "--columns", "Maths"},
			contains: []string{"78", "95"},
		},
		{
			name:     "describe",
			cmd:      NewDescribeCommand(),
			contains: []string{"- **Rows:** 5", "- **Numeric columns:** Roll Number, Maths, Science, English", "| Maths"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.cmd, append([]string{path}, tt.args...)...)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	path := testutil.WriteClass(t)

	tests := []struct {
		name    string
		cmd     *cobra.Command
		args    []string
		wantErr error
		wantMsg string
	}{
		{"unknown column", NewStatsCommand(), []string{path, "--columns", "History"}, engine.ErrColumnNotFound, ""},
		{"missing file", NewStatsCommand(), []string{filepath.Join(t.TempDir(), "none.csv")}, nil, "cannot load"},
		{"no file argument", NewStatsCommand(), nil, nil, "accepts 1 arg"},
		{"trend without group", NewTrendCommand(), []string{path}, nil, "--group is required"},
		{"lookup without key", NewLookupCommand(), []string{path}, nil, "--key is required"},
		{"counts without column", NewCountsCommand(), []string{path}, nil, "--column is required"},
		{"compare without selection", NewCompareCommand(), []string{path}, nil, "--rows or --keys is required"},
		{"compare rows and keys", NewCompareCommand(), []string{path, "--rows", "0", "--keys", "1"}, nil, "cannot be combined"},
		{"grades subject and compare", NewGradesCommand(), []string{path, "--subject", "Maths", "--compare"}, nil, "cannot be combined"},
		{"compare row out of range", NewCompareCommand(), []string{path, "--rows", "0,9"}, engine.ErrRowOutOfRange, ""},
		{"lookup unknown key", NewLookupCommand(), []string{path, "--key", "99"}, engine.ErrKeyNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.cmd, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCleanToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "clean.csv")
	_, err := execute(t, NewCleanCommand(), testutil.WriteClass(t), "--out", out)
	require.NoError(t, err)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Roll Number,Name,Section,Maths,Science,English\n"+
		"1,Asha,A,78,81,90\n"+
		"2,Bilal,B,45,35,60\n"+
		"3,Chen,A,95,88,100\n"+
		"5,Eli,A,60,70,40\n", string(b))
}

func TestExport(t *testing.T) {
	path := testutil.WriteClass(t)
	dir := t.TempDir()

	xlsx := filepath.Join(dir, "rates.xlsx")
	_, err := execute(t, NewExportCommand(), path, "--op", "pass-rates", "--columns", "Maths,Science", "--out", xlsx)
	require.NoError(t, err)
	b, err := os.ReadFile(xlsx)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(b[:2]))

	csvOut := filepath.Join(dir, "trend.out")
	_, err = execute(t, NewExportCommand(), path, "--op", "trend", "--group", "Section", "--columns", "Maths", "--out", csvOut, "--format", "csv")
	require.NoError(t, err)
	b, err = os.ReadFile(csvOut)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Section,Maths\n")

	_, err = execute(t, NewExportCommand(), path, "--out", csvOut)
	assert.ErrorContains(t, err, "--op is required")
}

func TestChart(t *testing.T) {
	path := testutil.WriteClass(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"operation", []string{"--op", "pass-rates"}},
		{"box", []string{"--kind", "box", "--columns", "Maths,Science"}},
		{"histogram", []string{"--kind", "histogram", "--column", "Maths", "--bins", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.name+".png")
			_, err := execute(t, NewChartCommand(), append([]string{path, "--out", out}, tt.args...)...)
			require.NoError(t, err)
			b, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, "\x89PNG", string(b[:4]))
		})
	}

	out := filepath.Join(dir, "bad.png")
	_, err := execute(t, NewChartCommand(), path, "--out", out)
	assert.ErrorContains(t, err, "exactly one of --op or --kind")
	_, err = execute(t, NewChartCommand(), path, "--out", out, "--op", "stats")
	assert.Error(t, err)
	_, err = execute(t, NewChartCommand(), path, "--out", out, "--kind", "histogram")
	assert.ErrorIs(t, err, engine.ErrSelectionRequired)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, NewVersionCommand("1.2.3"))
	require.NoError(t, err)
	assert.Contains(t, out, "marksheet v1.2.3")
}
