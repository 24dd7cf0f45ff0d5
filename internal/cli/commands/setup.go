// Package commands implements the marksheet subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/spektr-org/marksheet/engine"
	"github.com/spektr-org/marksheet/internal/cli/output"
	"github.com/spektr-org/marksheet/internal/config"
	"github.com/spektr-org/marksheet/loader"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds the context from what the root command stored,
// loading configuration directly when the command runs on its own.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	ctx := cmd.Context()
	cfg, ok := config.Lookup(ctx)
	if !ok {
		var err error
		if cfg, err = config.Load("", cmd.Flags()); err != nil {
			return nil, err
		}
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}, nil
}

// Open loads a data file and binds an analyzer to it.
func (c *CommandContext) Open(path string) (*engine.Analyzer, error) {
	ds, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded dataset", "path", path, "rows", ds.Len(), "columns", ds.Width())
	return engine.New(ds,
		engine.WithLogger(c.Logger),
		engine.WithKeyColumn(c.Cfg.KeyColumn),
		engine.WithTopN(c.Cfg.TopN),
	), nil
}

// Request builds an engine request for op from the configuration and the
// shared column flag.
func (c *CommandContext) Request(cmd *cobra.Command, op string) engine.Request {
	threshold := c.Cfg.Threshold
	return engine.Request{
		Operation:  op,
		Columns:    selectedColumns(cmd),
		Threshold:  &threshold,
		TopN:       c.Cfg.TopN,
		NameColumn: c.Cfg.NameColumn,
		KeyColumn:  c.Cfg.KeyColumn,
	}
}

// ============================================================================
// FLAGS
// ============================================================================

// addAnalysisFlags registers the flags every analysis command shares.
func addAnalysisFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("columns", nil, "Columns to analyse (default: every numeric column)")
	f.Float64("threshold", config.DefaultThreshold, "Pass threshold applied to each selected column")
	f.String("name-column", "", "Column used to label rows (e.g. Name)")
	f.String("key-column", config.DefaultKeyColumn, "Column searched by key lookups")
	f.IntP("top-n", "n", config.DefaultTopN, "Number of rows returned by top")
}

// addRequestFlags registers the per-operation arguments for commands that
// accept any operation.
func addRequestFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("group", "", "Group column for trend")
	f.String("column", "", "Single column for value-counts, subject-grades and histograms")
	f.IntSlice("rows", nil, "Row positions for compare")
	f.StringSlice("keys", nil, "Key values for compare-keys and lookup")
}

// selectedColumns returns nil when --columns was not given so that the
// numeric default applies, and the (possibly empty) list otherwise.
func selectedColumns(cmd *cobra.Command) []string {
	flag := cmd.Flags().Lookup("columns")
	if flag == nil || !flag.Changed {
		return nil
	}
	cols, _ := cmd.Flags().GetStringSlice("columns")
	if cols == nil {
		cols = []string{}
	}
	return cols
}

// applyRequestFlags copies the per-operation flags onto req.
func applyRequestFlags(cmd *cobra.Command, req *engine.Request) {
	f := cmd.Flags()
	if v, err := f.GetString("group"); err == nil && v != "" {
		req.GroupColumn = v
	}
	if v, err := f.GetString("column"); err == nil && v != "" {
		req.Column = v
	}
	if v, err := f.GetIntSlice("rows"); err == nil && len(v) > 0 {
		req.Rows = v
	}
	if v, err := f.GetStringSlice("keys"); err == nil && len(v) > 0 {
		req.Keys = v
	}
}

func requireFlag(cmd *cobra.Command, name string) error {
	if !cmd.Flags().Changed(name) {
		return fmt.Errorf("--%s is required", name)
	}
	return nil
}
