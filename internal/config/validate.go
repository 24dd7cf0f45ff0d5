package config

import (
	"fmt"
	"strings"
)

// OutputModes lists the accepted values of the output setting.
var OutputModes = []string{"auto", "text", "markdown", "csv", "json", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !validOutput(c.Output) {
		return fmt.Errorf("invalid output %q (expected one of %s)", c.Output, strings.Join(OutputModes, ", "))
	}
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1, got %d", c.TopN)
	}
	if c.Chart.Width < 1 || c.Chart.Height < 1 {
		return fmt.Errorf("chart size must be positive, got %dx%d", c.Chart.Width, c.Chart.Height)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port out of range: %d", c.Serve.Port)
	}
	if c.Serve.MaxUploadMB < 1 {
		return fmt.Errorf("serve.max_upload_mb must be at least 1, got %d", c.Serve.MaxUploadMB)
	}
	return nil
}

func validOutput(mode string) bool {
	for _, m := range OutputModes {
		if strings.EqualFold(m, mode) {
			return true
		}
	}
	return false
}
