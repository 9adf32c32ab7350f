package preview

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gobeaver/fileintake"
)

// Defaults
const (
	DefaultSize    = 200
	DefaultQuality = 0.8
)

// DefaultBackground fills transparent regions
var DefaultBackground color.Color = color.White

// Options controls how previews are rendered
type Options struct {
	// Size is the edge length of the square preview canvas in pixels
	Size int `validate:"gt=0,lte=4096"`

	// Quality is the JPEG quality on a 0-1 scale
	Quality float64 `validate:"gt=0,lte=1"`

	// Background is painted behind the image
	Background color.Color `validate:"-"`

	// MaxSourcePixels rejects larger source images before decoding. Zero disables the check.
	MaxSourcePixels int `validate:"gte=0"`
}

// DefaultOptions returns the documented defaults
func DefaultOptions() Options {
	return Options{
		Size:            DefaultSize,
		Quality:         DefaultQuality,
		Background:      DefaultBackground,
		MaxSourcePixels: 50000000, // 50 megapixels
	}
}

var validate = validator.New()

// Validate checks o, naming every invalid field
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", e.Field(), e.Tag(), e.Param(), e.Value()))
	}
	return fmt.Errorf("invalid preview options: %s", strings.Join(msgs, "; "))
}

// Option configures a Previewer
type Option func(*settings)

type settings struct {
	options  Options
	renderer Renderer
	logger   *slog.Logger
}

// WithSize sets the canvas size
func WithSize(size int) Option {
	return func(s *settings) {
		s.options.Size = size
	}
}

// WithQuality sets the JPEG quality on a 0-1 scale
func WithQuality(q float64) Option {
	return func(s *settings) {
		s.options.Quality = q
	}
}

// WithBackground sets the background color
func WithBackground(c color.Color) Option {
	return func(s *settings) {
		s.options.Background = c
	}
}

// WithMaxSourcePixels bounds the decoded source size
func WithMaxSourcePixels(n int) Option {
	return func(s *settings) {
		s.options.MaxSourcePixels = n
	}
}

// WithRenderer replaces the image renderer
func WithRenderer(r Renderer) Option {
	return func(s *settings) {
		s.renderer = r
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// FromConfig maps the environment settings to options. It does not look at
// PreviewEnabled; use Register for that.
func FromConfig(cfg *fileintake.Config) []Option {
	return []Option{
		WithSize(cfg.PreviewSize),
		WithQuality(float64(cfg.PreviewQuality) / 100),
	}
}

// Register adds a preview plugin to proc when cfg.PreviewEnabled is set. opts
// are applied after the settings taken from cfg. When previews are disabled it
// returns a nil Previewer and registers nothing.
func Register(proc *fileintake.Processor, cfg *fileintake.Config, opts ...Option) (*Previewer, error) {
	if cfg == nil || !cfg.PreviewEnabled {
		return nil, nil
	}
	p, err := New(append(FromConfig(cfg), opts...)...)
	if err != nil {
		return nil, err
	}
	proc.Use(p.Plugin())
	return p, nil
}
