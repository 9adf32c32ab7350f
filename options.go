package fileintake

import (
	"log/slog"

	"github.com/gobeaver/fileintake/filevalidator"
)

// Option configures a Processor
type Option func(*Options)

// Options contains every Processor setting
type Options struct {
	// Config is merged over the validation defaults
	Config filevalidator.PartialConfig

	// Logger receives pipeline events, slog.Default() when nil
	Logger *slog.Logger

	// Plugins are registered in order
	Plugins []Plugin

	// IDGenerator produces Metadata.ID, NewID when nil
	IDGenerator func() string

	// Checksum selects the Metadata.Checksum algorithm
	Checksum ChecksumAlgorithm
}

// WithConfig sets the partial validation configuration
func WithConfig(cfg filevalidator.PartialConfig) Option {
	return func(o *Options) {
		o.Config = cfg
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithPlugins appends plugins in order
func WithPlugins(plugins ...Plugin) Option {
	return func(o *Options) {
		o.Plugins = append(o.Plugins, plugins...)
	}
}

// WithIDGenerator sets the metadata id generator
func WithIDGenerator(fn func() string) Option {
	return func(o *Options) {
		o.IDGenerator = fn
	}
}

// WithChecksum sets the checksum algorithm
func WithChecksum(algorithm ChecksumAlgorithm) Option {
	return func(o *Options) {
		o.Checksum = algorithm
	}
}

func buildOptions(opts []Option) Options {
	o := Options{Checksum: ChecksumXXHash}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.IDGenerator == nil {
		o.IDGenerator = NewID
	}
	return o
}
