package engine

import "log/slog"

// ============================================================================
// ENGINE OPTIONS — Functional options for New()
// ============================================================================

const (
	// DefaultKeyColumn is the column LookupByKey searches when none is given.
	DefaultKeyColumn = "Roll Number"
	// DefaultTopN is the row count TopPerformers returns through Execute.
	DefaultTopN = 5
	// DefaultThreshold is the pass threshold Execute uses when none is given.
	DefaultThreshold = 40.0
)

// Option configures an Analyzer.
type Option func(*config)

type config struct {
	Logger    *slog.Logger
	KeyColumn string
	TopN      int
}

// WithLogger routes analyzer debug output to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.Logger = logger
	}
}

// WithKeyColumn sets the default key column for lookups.
func WithKeyColumn(column string) Option {
	return func(c *config) {
		if column != "" {
			c.KeyColumn = column
		}
	}
}

// WithTopN sets the default row count for top performers.
func WithTopN(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.TopN = n
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		KeyColumn: DefaultKeyColumn,
		TopN:      DefaultTopN,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
