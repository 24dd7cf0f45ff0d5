package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/marksheet/engine"
	"github.com/spektr-org/marksheet/internal/cli/output"
)

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <file>",
		Short: "Profile the columns of a data file",
		Long: `Load a CSV or XLSX file and report each column's kind (numeric or text),
its inferred role, distinct and missing counts and sample values.

Columns that are entirely empty or mix numbers with text are listed as
skipped; mixed columns become usable after "marksheet clean".`,
		Example: `  marksheet describe class.csv
  marksheet describe class.xlsx -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd, args[0])
		},
	}
	return cmd
}

func runDescribe(cmd *cobra.Command, path string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	a, err := cc.Open(path)
	if err != nil {
		return err
	}
	profile := a.Describe()
	r := cc.Renderer

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(profile)
	case output.ModeYAML:
		return r.YAML(profile)
	case output.ModeCSV:
		return r.Table(engine.ProfileTable(profile))
	}

	r.Header(1, profile.Name)
	r.KeyValue("Rows", engine.FormatInt(profile.Rows))
	r.KeyValue("Columns", engine.FormatInt(len(profile.Columns)))
	numeric := a.NumericColumns()
	if len(numeric) == 0 {
		r.KeyValue("Numeric columns", "none")
	} else {
		r.KeyValue("Numeric columns", strings.Join(numeric, ", "))
	}
	if name := profile.SuggestedNameColumn(); name != "" {
		r.KeyValue("Suggested name column", name)
	}
	r.Println()

	if err := r.Table(engine.ProfileTable(profile)); err != nil {
		return err
	}
	if skipped := engine.SkippedTable(profile); skipped != nil {
		r.Println()
		return r.Table(skipped)
	}
	return nil
}
