package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/marksheet/charts"
	"github.com/spektr-org/marksheet/dataset"
	"github.com/spektr-org/marksheet/engine"
	"github.com/spektr-org/marksheet/export"
)

// ============================================================================
// FILE-PRODUCING COMMANDS — clean, export, chart
// ============================================================================

// NewCleanCommand creates the clean command.
func NewCleanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <file>",
		Short: "Drop duplicate and incomplete rows",
		Long: `Remove exact duplicate rows, coerce the selected columns to numbers
(text cells become missing) and drop rows with a missing value in any
selected column.

Without --out the cleaned rows are printed; with --out they are written to
a CSV or XLSX file chosen by extension.`,
		Example: `  marksheet clean class.csv
  marksheet clean class.csv --columns Maths,Science --out clean.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, args[0])
		},
	}
	addAnalysisFlags(cmd)
	cmd.Flags().String("out", "", "Write the cleaned rows to this file (.csv or .xlsx)")
	return cmd
}

func runClean(cmd *cobra.Command, path string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	a, err := cc.Open(path)
	if err != nil {
		return err
	}
	res, err := engine.Execute(a, cc.Request(cmd, engine.OpClean))
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return cc.Renderer.Result(res)
	}

	// Files get the data columns only, without row positions.
	plain := *res.Table
	plain.RowLabels = nil
	if err := writeTable(out, "", &plain); err != nil {
		return err
	}
	for _, line := range res.Lines {
		cc.Renderer.Muted(line)
	}
	cc.Renderer.Success(fmt.Sprintf("wrote %s", out))
	return nil
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write an operation's result table to a file",
		Long: `Run one operation and write its table to --out. The format follows the
file extension (.csv, .xlsx, .json, .yaml, .md, .txt) unless --format is
given.

Operations: ` + strings.Join(engine.Operations, ", "),
		Example: `  marksheet export class.csv --op stats --out stats.xlsx
  marksheet export class.csv --op trend --group Section --out trend.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0])
		},
	}
	addAnalysisFlags(cmd)
	addRequestFlags(cmd)
	cmd.Flags().String("op", "", "Operation to run (required)")
	cmd.Flags().String("out", "", "Output file (required)")
	cmd.Flags().String("format", "", "Output format; defaults to the --out extension")
	return cmd
}

func runExport(cmd *cobra.Command, path string) error {
	for _, name := range []string{"op", "out"} {
		if err := requireFlag(cmd, name); err != nil {
			return err
		}
	}
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	a, err := cc.Open(path)
	if err != nil {
		return err
	}
	op, _ := cmd.Flags().GetString("op")
	req := cc.Request(cmd, op)
	applyRequestFlags(cmd, &req)

	res, err := engine.Execute(a, req)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")
	if err := writeTable(out, format, res.Table); err != nil {
		return err
	}
	cc.Renderer.Success(fmt.Sprintf("wrote %s (%s)", out, res.Title))
	return nil
}

// writeTable writes t to path in format, or in the format named by the
// path extension when format is empty.
func writeTable(path, format string, t *engine.Table) error {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
		if format == "" {
			format = string(export.FormatCSV)
		}
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, t, f); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// NewChartCommand creates the chart command.
func NewChartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart <file>",
		Short: "Render a PNG chart",
		Long: `Render the chart of an operation (--op) or a column chart (--kind box
or --kind histogram) to a PNG file.

Operations with charts: compare, compare-keys, grades, subject-grades,
grade-comparison, trend, pass-rates, top, passfail, value-counts,
correlation.`,
		Example: `  marksheet chart class.csv --op grade-comparison --out grades.png
  marksheet chart class.csv --kind box --out spread.png
  marksheet chart class.csv --kind histogram --column Maths --out maths.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(cmd, args[0])
		},
	}
	addAnalysisFlags(cmd)
	addRequestFlags(cmd)
	cmd.Flags().String("op", "", "Operation whose chart to draw")
	cmd.Flags().String("kind", "", "Column chart to draw: box or histogram")
	cmd.Flags().Int("bins", 10, "Histogram bins")
	cmd.Flags().String("out", "", "Output PNG file (required)")
	cmd.Flags().Int("width", charts.DefaultWidth, "Image width in pixels")
	cmd.Flags().Int("height", charts.DefaultHeight, "Image height in pixels")
	return cmd
}

func runChart(cmd *cobra.Command, path string) error {
	if err := requireFlag(cmd, "out"); err != nil {
		return err
	}
	op, _ := cmd.Flags().GetString("op")
	kind, _ := cmd.Flags().GetString("kind")
	if (op == "") == (kind == "") {
		return fmt.Errorf("exactly one of --op or --kind is required")
	}

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	a, err := cc.Open(path)
	if err != nil {
		return err
	}
	opts := charts.Options{Width: cc.Cfg.Chart.Width, Height: cc.Cfg.Chart.Height}

	req := cc.Request(cmd, op)
	applyRequestFlags(cmd, &req)
	bins, _ := cmd.Flags().GetInt("bins")

	png, err := drawChart(a, req, kind, bins, opts)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	if err := os.WriteFile(out, png, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	cc.Renderer.Success(fmt.Sprintf("wrote %s", out))
	return nil
}

// drawChart renders the chart of req's operation, or a column chart when
// kind is box or histogram.
func drawChart(a *engine.Analyzer, req engine.Request, kind string, bins int, opts charts.Options) ([]byte, error) {
	switch strings.ToLower(kind) {
	case "":
		res, err := engine.Execute(a, req)
		if err != nil {
			return nil, err
		}
		if res.Chart == nil {
			return nil, fmt.Errorf("%s: %w", res.Operation, charts.ErrNoData)
		}
		return charts.Render(res.Chart, opts)

	case charts.KindBox:
		cols, err := a.SelectColumns(req.Columns)
		if err != nil {
			return nil, err
		}
		return charts.Box(a.Data(), cols, "Score Distribution", opts)

	case charts.KindHistogram:
		column := req.Column
		if column == "" && len(req.Columns) == 1 {
			column = req.Columns[0]
		}
		if column == "" {
			return nil, fmt.Errorf("histogram: %w", engine.ErrSelectionRequired)
		}
		if _, err := a.SelectColumns([]string{column}); err != nil {
			return nil, err
		}
		return charts.Histogram(dataset.Floats(a.Data(), column), "Distribution: "+column, bins, opts)
	}
	return nil, fmt.Errorf("%w: %q (expected box or histogram)", charts.ErrUnsupported, kind)
}
