package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spektr-org/marksheet/engine"
)

// ============================================================================
// ANALYSIS COMMANDS — one subcommand per engine operation
// ============================================================================
// Every analysis command takes the data file as its only argument, builds
// an engine.Request from flags and configuration, runs engine.Execute and
// renders the Result in the configured output mode.
// ============================================================================

type analysisCommand struct {
	use     string
	short   string
	long    string
	example string
	op      string

	// flags registers command-specific flags.
	flags func(cmd *cobra.Command)
	// request adjusts the request from command-specific flags.
	request func(cmd *cobra.Command, req *engine.Request) error
	// result post-processes the result before rendering.
	result func(cmd *cobra.Command, res *engine.Result) error
}

func newAnalysisCommand(def analysisCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:     def.use + " <file>",
		Short:   def.short,
		Long:    def.long,
		Example: def.example,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, args[0], def)
		},
	}
	addAnalysisFlags(cmd)
	if def.flags != nil {
		def.flags(cmd)
	}
	return cmd
}

func runAnalysis(cmd *cobra.Command, path string, def analysisCommand) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	a, err := cc.Open(path)
	if err != nil {
		return err
	}

	req := cc.Request(cmd, def.op)
	if def.request != nil {
		if err := def.request(cmd, &req); err != nil {
			return err
		}
	}
	res, err := engine.Execute(a, req)
	if err != nil {
		return err
	}
	if def.result != nil {
		if err := def.result(cmd, res); err != nil {
			return err
		}
	}
	return cc.Renderer.Result(res)
}

// NewAnalysisCommands creates every single-operation command.
func NewAnalysisCommands() []*cobra.Command {
	return []*cobra.Command{
		NewStatsCommand(),
		NewPassFailCommand(),
		NewTopCommand(),
		NewGradesCommand(),
		NewWeakCommand(),
		NewRatesCommand(),
		NewTrendCommand(),
		NewCompareCommand(),
		NewLookupCommand(),
		NewCorrCommand(),
		NewCountsCommand(),
		NewInsightsCommand(),
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	return newAnalysisCommand(analysisCommand{
		use:   "stats",
		short: "Mean, min and max per column",
		long: `Compute mean, minimum and maximum for each selected column.

With --extended, median and standard deviation are added. Missing cells
are skipped; a column with no numeric values reports "no data".`,
		example: `  marksheet stats class.csv
  marksheet stats class.csv --extended --columns Maths,Science`,
		op: engine.OpStats,
		flags: func(cmd *cobra.Command) {
			cmd.Flags().Bool("extended", false, "Include median and standard deviation")
		},
		request: func(cmd *cobra.Command, req *engine.Request) error {
			if extended, _ := cmd.Flags().GetBool("extended"); extended {
				req.Operation = engine.OpExtendedStats
			}
			return nil
		},
	})
}

// NewPassFailCommand creates the passfail command.
func NewPassFailCommand() *cobra.Command {
	return newAnalysisCommand(analysisCommand{
		use:   "passfail",
		short: "Classify rows as Pass or Fail",
		long: `Label each row Pass when every selected column reaches the threshold
(inclusive) and Fail otherwise. A missing value fails.

With --summary only the Pass/Fail counts are shown.`,
		example: `  marksheet passfail class.csv --threshold 50
  marksheet passfail class.csv --summary -o json`,
		op: engine.OpPassFail,
		flags: func(cmd *cobra.Command) {
			cmd.Flags().Bool("summary", false, "Show only the Pass/Fail counts")
		},
		result: func(cmd *cobra.Command, res *engine.Result) error {
			if summary, _ := cmd.Flags().GetBool("summary"); summary && res.Data != nil {
				res.Table = engine.New(res.Data).PassFailSummary()
				res.Title = res.Table.Title
			}
			return nil
		},
	})
}

// NewTopCommand creates the top command.
func NewTopCommand() *cobra.Command {
	return newAnalysisCommand(analysisCommand{
		use:     "top",
		short:   "Rows with the highest percentage",
		example: `  marksheet top class.csv -n 3 --name-column Name`,
		op:      engine.OpTop,
	})
}

// NewGradesCommand creates the grades command.
func NewGradesCommand() *cobra.Command {
	return newAnalysisCommand(analysisCommand{
		use:   "grades",
		short: "Grade distribution",
		long: `Count rows per grade band (F below 40, D, C, B, A from 90).

By default grades come from the row percentage over the selected columns.
--subject grades a single column; --compare shows one column of counts per
selected subject.`,
		example: `  marksheet grades class.csv
  marksheet grades class.csv --subject Maths
  marksheet grades class.csv --compare --columns Maths,Science`,
		op: engine.OpGrades,
		flags: func(cmd *cobra.Command) {
			cmd.Flags().String("subject", "", "Grade a single column")
			cmd.Flags().Bool("compare", false, "Compare grade counts across columns")
		},
		request: func(cmd *cobra.Command, req *engine.Request) error {
			subject, _ := cmd.Flags().GetString("subject")
			compare, _ := cmd.Flags().GetBool("compare")
			switch {
			case subject != "" && compare:
				return fmt.Errorf("--subject and --compare cannot be combined")
			case subject != "":
				req.Operation = engine.OpSubjectGrades
				req.Column = subject
			case compare:
				req.Operation = engine.OpGradeComparison
			}
			return nil
		},
	})
}

// NewWeakCommand creates the weak command.
func NewWeakCommand() *cobra.Command {
	return newAnalysisCommand(analysisCommand{
		use:     "weak",
		short:   "Rows with any selected column below the threshold",
		example: `  marksheet weak class.csv --threshold 35 --name-column Name`,
		op:      engine.OpWeak,
	})
}

// NewRatesCommand creates the rates command.
func NewRatesCommand() *cobra.Command {
	return newAnalysisCommand(analysisCommand{
		use:     "rates",
		short:   "Pass rate per column at the fixed pass mark",
		example: `  marksheet rates class.csv`,
		op:      engine.OpPassRates,
	})
}

// NewTrendCommand creates the trend command.
func NewTrendCommand() *cobra.Command {
	return newAnalysisCommand(analysisCommand{
		use:     "trend",
		short:   "Column means per group",
		example: `  marksheet trend class.csv --group Section`,
		op:      engine.OpTrend,
		flags: func(cmd *cobra.Command) {
			cmd.Flags().String("group", "", "Column to group by (required)")
		},
		request: func(cmd *cobra.Command, req *engine.Request) error {
			if err := requireFlag(cmd, "group"); err != nil {
				return err
			}
			req.GroupColumn, _ = cmd.Flags().GetString("group")
			return nil
		},
	})
}

// NewCompareCommand creates the compare command.
func NewCompareCommand() *cobra.Command {
	return newAnalysisCommand(analysisCommand{
		use:   "compare",
		short: "Compare rows side by side",
		long: `Compare rows chosen by position (--rows, zero-based) or by key value
(--keys, matched against --key-column).`,
		example: `  marksheet compare class.csv --rows 0,2
  marksheet compare class.csv --keys 1,3 --key-column "Roll Number"`,
		op: engine.OpCompare,
		flags: func(cmd *cobra.Command) {
			cmd.Flags().IntSlice("rows", nil, "Row positions to compare")
			cmd.Flags().StringSlice("keys", nil, "Key values to compare")
		},
		request: func(cmd *cobra.Command, req *engine.Request) error {
			rows, _ := cmd.Flags().GetIntSlice("rows")
			keys, _ := cmd.Flags().GetStringSlice("keys")
			switch {
			case len(rows) > 0 && len(keys) > 0:
				return fmt.Errorf("--rows and --keys cannot be combined")
			case len(keys) > 0:
				req.Operation = engine.OpCompareKeys
				req.Keys = keys
			case len(rows) > 0:
				req.Rows = rows
			default:
				return fmt.Errorf("--rows or --keys is required")
			}
			return nil
		},
	})
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand() *cobra.Command {
	return newAnalysisCommand(analysisCommand{
		use:     "lookup",
		short:   "Show the row matching a key",
		example: `  marksheet lookup class.csv --key 3`,
		op:      engine.OpLookup,
		flags: func(cmd *cobra.Command) {
			cmd.Flags().String("key", "", "Key value to find (required)")
		},
		request: func(cmd *cobra.Command, req *engine.Request) error {
			if err := requireFlag(cmd, "key"); err != nil {
				return err
			}
			key, _ := cmd.Flags().GetString("key")
			req.Keys = []string{key}
			return nil
		},
	})
}

// NewCorrCommand creates the corr command.
func NewCorrCommand() *cobra.Command {
	return newAnalysisCommand(analysisCommand{
		use:     "corr",
		short:   "Pairwise correlation between columns",
		example: `  marksheet corr class.csv --columns Maths,Science,English`,
		op:      engine.OpCorrelation,
	})
}

// NewCountsCommand creates the counts command.
func NewCountsCommand() *cobra.Command {
	return newAnalysisCommand(analysisCommand{
		use:     "counts",
		short:   "Occurrences of each value in a column",
		example: `  marksheet counts class.csv --column Section`,
		op:      engine.OpValueCounts,
		flags: func(cmd *cobra.Command) {
			cmd.Flags().String("column", "", "Column to count (required)")
		},
		request: func(cmd *cobra.Command, req *engine.Request) error {
			if err := requireFlag(cmd, "column"); err != nil {
				return err
			}
			req.Column, _ = cmd.Flags().GetString("column")
			return nil
		},
	})
}

// NewInsightsCommand creates the insights command.
func NewInsightsCommand() *cobra.Command {
	return newAnalysisCommand(analysisCommand{
		use:     "insights",
		short:   "One-line summary per column",
		example: `  marksheet insights class.csv`,
		op:      engine.OpInsights,
	})
}
