// Package config loads marksheet settings from defaults, marksheet.yaml,
// MARKSHEET_* environment variables and command-line flags.
package config

// Defaults.
const (
	DefaultOutput      = "auto"
	DefaultThreshold   = 40.0
	DefaultTopN        = 5
	DefaultKeyColumn   = "Roll Number"
	DefaultChartWidth  = 600
	DefaultChartHeight = 400
	DefaultPort        = 8501
	DefaultMaxUploadMB = 32
)

// Config holds all marksheet configuration options.
type Config struct {
	Verbose    bool        `koanf:"verbose"`
	Output     string      `koanf:"output"`
	Threshold  float64     `koanf:"threshold"`
	TopN       int         `koanf:"top_n"`
	NameColumn string      `koanf:"name_column"`
	KeyColumn  string      `koanf:"key_column"`
	Chart      ChartConfig `koanf:"chart"`
	Serve      ServeConfig `koanf:"serve"`

	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string `koanf:"-"`
}

// ChartConfig sizes rendered PNG charts.
type ChartConfig struct {
	Width  int `koanf:"width"`
	Height int `koanf:"height"`
}

// ServeConfig holds settings for the browser UI server.
type ServeConfig struct {
	Port          int    `koanf:"port"`
	SessionSecret string `koanf:"session_secret"`
	SecureCookies bool   `koanf:"secure_cookies"`
	MaxUploadMB   int    `koanf:"max_upload_mb"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Output:    DefaultOutput,
		Threshold: DefaultThreshold,
		TopN:      DefaultTopN,
		KeyColumn: DefaultKeyColumn,
		Chart:     ChartConfig{Width: DefaultChartWidth, Height: DefaultChartHeight},
		Serve:     ServeConfig{Port: DefaultPort, MaxUploadMB: DefaultMaxUploadMB},
	}
}

// MaxUploadBytes returns the upload limit in bytes.
func (s ServeConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}
