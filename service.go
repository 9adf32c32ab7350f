package fileintake

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gobeaver/beaver-kit/config"
)

// Global instance
var (
	defaultProcessor *Processor
	defaultOnce      sync.Once
	defaultErr       error
)

// Builder provides a way to create Processor instances with custom env prefixes
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global Processor instance using the builder's prefix
func (b *Builder) Init() error {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return err
	}
	return Init(cfg)
}

// New creates a new Processor instance using the builder's prefix
func (b *Builder) New(opts ...Option) (*Processor, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}

// Init initializes the global processor
func Init(configs ...*Config) error {
	defaultOnce.Do(func() {
		var cfg *Config
		if len(configs) > 0 {
			cfg = configs[0]
		} else {
			cfg, defaultErr = GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultProcessor, defaultErr = NewFromConfig(cfg)
	})

	return defaultErr
}

// NewFromConfig creates a processor from environment settings. opts are
// applied after the settings and may override them.
func NewFromConfig(cfg *Config, opts ...Option) (*Processor, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	base := []Option{
		WithConfig(cfg.Partial()),
		WithChecksum(ChecksumAlgorithm(cfg.Checksum)),
	}
	return New(append(base, opts...)...), nil
}

// validateConfig checks configuration validity
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cfg.MaxFileSize < 0 || cfg.MinFileSize < 0 {
		return errors.New("file size limits must not be negative")
	}
	if cfg.MinFileSize > cfg.MaxFileSize {
		return fmt.Errorf("min file size %d exceeds max file size %d", cfg.MinFileSize, cfg.MaxFileSize)
	}
	if cfg.MaxFiles < 0 {
		return errors.New("max files must not be negative")
	}
	if cfg.Checksum != "" && cfg.Checksum != string(ChecksumNone) {
		if _, err := NewHasher(ChecksumAlgorithm(cfg.Checksum)); err != nil {
			return err
		}
	}
	return nil
}

// Default returns the global instance, initializing if needed with error handling
func Default() (*Processor, error) {
	if defaultProcessor == nil {
		if err := Init(); err != nil {
			return nil, err
		}
	}
	return defaultProcessor, nil
}

// NewFromEnv creates instance from environment variables (convenience constructor)
func NewFromEnv(opts ...Option) (*Processor, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}

// InitFromEnv initializes the global instance from environment variables (convenience method)
func InitFromEnv() error {
	return Init()
}

// Reset clears the global instance (for testing)
func Reset() {
	defaultProcessor = nil
	defaultOnce = sync.Once{}
	defaultErr = nil
}
