package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spektr-org/marksheet/charts"
	"github.com/spektr-org/marksheet/internal/config"
	"github.com/spektr-org/marksheet/internal/web"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the browser UI",
		Long: `Start the browser UI and JSON API.

Each browser session uploads its own CSV or XLSX file and runs analyses,
exports and charts against it. Sessions are kept in memory and expire
after a day of inactivity.`,
		Example: `  marksheet serve
  marksheet serve --port 9000 --max-upload 64`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			cfg := cc.Cfg

			server, err := web.NewServer(web.Config{
				Port:           cfg.Serve.Port,
				SessionSecret:  cfg.Serve.SessionSecret,
				SecureCookies:  cfg.Serve.SecureCookies,
				MaxUploadBytes: cfg.Serve.MaxUploadBytes(),
				Chart:          charts.Options{Width: cfg.Chart.Width, Height: cfg.Chart.Height},
				KeyColumn:      cfg.KeyColumn,
				TopN:           cfg.TopN,
				NameColumn:     cfg.NameColumn,
				Threshold:      &cfg.Threshold,
				Logger:         cc.Logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cc.Renderer.Success(fmt.Sprintf("marksheet UI listening on http://localhost:%d", cfg.Serve.Port))
			return server.Serve(ctx)
		},
	}
	cmd.Flags().Int("port", config.DefaultPort, "Port to listen on")
	cmd.Flags().Int("max-upload", config.DefaultMaxUploadMB, "Maximum upload size in MB")
	return cmd
}
