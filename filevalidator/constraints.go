package filevalidator

import "slices"

// Size constants for easier file size configuration
const (
	KB = int64(1024)
	MB = KB * 1024
	GB = MB * 1024
)

// Default configuration values
const (
	DefaultMaxSize  = 10 * MB
	DefaultMinSize  = int64(0)
	DefaultMaxFiles = 1

	// MaxNameLength is the exclusive upper bound on filename length
	MaxNameLength = 255
)

// Config is a fully resolved validation configuration.
// It is a value type: updates produce a new Config, existing values are never
// modified in place.
type Config struct {
	// MaxSize is the maximum allowed file size in bytes (inclusive)
	// Use the provided constants for readable configuration, e.g., 10 * MB for 10 megabytes
	MaxSize int64

	// MinSize is the minimum allowed file size in bytes (inclusive)
	MinSize int64

	// AllowedTypes is a list of allowed MIME types (e.g., "image/jpeg", "application/pdf")
	// Wildcards of the form "image/*" match on the part before the slash
	// If empty, all types are allowed
	AllowedTypes []string

	// AllowedExtensions is a list of allowed file extensions (e.g., "jpg", "pdf")
	// A leading dot is tolerated. If empty, all extensions are allowed
	AllowedExtensions []string

	// MaxFiles is the maximum number of files accepted in one batch
	MaxFiles int

	// ValidateFileName enables the filename rule
	ValidateFileName bool

	// CustomValidators run after the built-in rules, scoped by exact MIME type
	CustomValidators []CustomValidator
}

// PartialConfig is a sparse configuration. Nil fields are unset and keep the
// value of the configuration they are merged onto.
type PartialConfig struct {
	MaxSize           *int64
	MinSize           *int64
	AllowedTypes      []string
	AllowedExtensions []string
	MaxFiles          *int
	ValidateFileName  *bool
	CustomValidators  []CustomValidator
}

// DefaultConfig returns the documented defaults
func DefaultConfig() Config {
	return Config{
		MaxSize:          DefaultMaxSize,
		MinSize:          DefaultMinSize,
		MaxFiles:         DefaultMaxFiles,
		ValidateFileName: true,
	}
}

// Resolve fills every unset field of p with its default
func Resolve(p PartialConfig) Config {
	return DefaultConfig().Merge(p)
}

// Merge returns a new Config with every set field of p overriding c.
// Slices are copied so the result never aliases c or p.
func (c Config) Merge(p PartialConfig) Config {
	out := c.clone()
	if p.MaxSize != nil {
		out.MaxSize = *p.MaxSize
	}
	if p.MinSize != nil {
		out.MinSize = *p.MinSize
	}
	if p.AllowedTypes != nil {
		out.AllowedTypes = slices.Clone(p.AllowedTypes)
	}
	if p.AllowedExtensions != nil {
		out.AllowedExtensions = slices.Clone(p.AllowedExtensions)
	}
	if p.MaxFiles != nil {
		out.MaxFiles = *p.MaxFiles
	}
	if p.ValidateFileName != nil {
		out.ValidateFileName = *p.ValidateFileName
	}
	if p.CustomValidators != nil {
		out.CustomValidators = slices.Clone(p.CustomValidators)
	}
	return out
}

// Partial converts c into a PartialConfig with every field set
func (c Config) Partial() PartialConfig {
	cc := c.clone()
	return PartialConfig{
		MaxSize:           Int64(cc.MaxSize),
		MinSize:           Int64(cc.MinSize),
		AllowedTypes:      nonNil(cc.AllowedTypes),
		AllowedExtensions: nonNil(cc.AllowedExtensions),
		MaxFiles:          Int(cc.MaxFiles),
		ValidateFileName:  Bool(cc.ValidateFileName),
		CustomValidators:  nonNilCustom(cc.CustomValidators),
	}
}

func (c Config) clone() Config {
	c.AllowedTypes = slices.Clone(c.AllowedTypes)
	c.AllowedExtensions = slices.Clone(c.AllowedExtensions)
	c.CustomValidators = slices.Clone(c.CustomValidators)
	return c
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilCustom(s []CustomValidator) []CustomValidator {
	if s == nil {
		return []CustomValidator{}
	}
	return s
}

// Int64 returns a pointer to v, for building a PartialConfig
func Int64(v int64) *int64 { return &v }

// Int returns a pointer to v, for building a PartialConfig
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for building a PartialConfig
func Bool(v bool) *bool { return &v }

// ImageOnlyConfig returns a partial configuration that only allows image files
func ImageOnlyConfig() PartialConfig {
	return PartialConfig{
		AllowedTypes:      []string{string(AllowAllImages)},
		AllowedExtensions: []string{"jpg", "jpeg", "png", "gif", "webp", "svg", "bmp", "tiff", "tif"},
	}
}

// DocumentOnlyConfig returns a partial configuration that only allows document files
func DocumentOnlyConfig() PartialConfig {
	return PartialConfig{
		AllowedTypes:      slices.Clone(mediaTypeGroups[AllowAllDocuments]),
		AllowedExtensions: []string{"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "txt", "csv", "rtf"},
		MaxSize:           Int64(50 * MB),
	}
}

// MediaOnlyConfig returns a partial configuration that only allows audio and video files
func MediaOnlyConfig() PartialConfig {
	return PartialConfig{
		AllowedTypes:      []string{string(AllowAllAudio), string(AllowAllVideo)},
		AllowedExtensions: []string{"mp3", "wav", "ogg", "mp4", "webm", "avi", "mov", "wmv", "flac", "aac", "m4a"},
		MaxSize:           Int64(500 * MB),
	}
}
