package commands

import (
	"github.com/spf13/cobra"

	"github.com/spektr-org/marksheet/internal/mcpserver"
)

// NewMCPCommand creates the mcp command.
func NewMCPCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve analyses as MCP tools over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout.

Two tools are exposed: describe_dataset profiles a CSV or XLSX file and
analyze_dataset runs one analysis on it. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return mcpserver.New(mcpserver.Options{
				Version:    version,
				KeyColumn:  cc.Cfg.KeyColumn,
				TopN:       cc.Cfg.TopN,
				NameColumn: cc.Cfg.NameColumn,
				Threshold:  &cc.Cfg.Threshold,
				Logger:     cc.Logger,
			}).ServeStdio()
		},
	}
}
