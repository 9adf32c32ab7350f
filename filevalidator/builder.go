package filevalidator

// Builder provides a fluent API for constructing validators
type Builder struct {
	partial PartialConfig
}

// NewBuilder creates a builder starting from the default configuration
func NewBuilder() *Builder {
	return &Builder{}
}

// From creates a builder starting from an existing partial configuration
func From(p PartialConfig) *Builder {
	return &Builder{partial: Resolve(p).Partial()}
}

// --- Size constraints ---

// MaxSize sets the maximum allowed file size
func (b *Builder) MaxSize(size int64) *Builder {
	b.partial.MaxSize = Int64(size)
	return b
}

// MinSize sets the minimum required file size
func (b *Builder) MinSize(size int64) *Builder {
	b.partial.MinSize = Int64(size)
	return b
}

// SizeRange sets both minimum and maximum file size
func (b *Builder) SizeRange(minSize, maxSize int64) *Builder {
	return b.MinSize(minSize).MaxSize(maxSize)
}

// --- MIME type constraints ---

// Accept adds accepted MIME types (e.g., "image/png", "image/*")
func (b *Builder) Accept(mimeTypes ...string) *Builder {
	b.partial.AllowedTypes = append(b.partial.AllowedTypes, mimeTypes...)
	return b
}

// AcceptImages allows all image types
func (b *Builder) AcceptImages() *Builder {
	return b.Accept(string(AllowAllImages))
}

// AcceptAudio allows all audio types
func (b *Builder) AcceptAudio() *Builder {
	return b.Accept(string(AllowAllAudio))
}

// AcceptVideo allows all video types
func (b *Builder) AcceptVideo() *Builder {
	return b.Accept(string(AllowAllVideo))
}

// AcceptMedia allows all audio and video types
func (b *Builder) AcceptMedia() *Builder {
	return b.AcceptAudio().AcceptVideo()
}

// --- Extension constraints ---

// Extensions adds allowed file extensions (e.g., "jpg", ".png")
func (b *Builder) Extensions(exts ...string) *Builder {
	b.partial.AllowedExtensions = append(b.partial.AllowedExtensions, exts...)
	return b
}

// --- Batch constraints ---

// MaxFiles sets the maximum number of files per batch
func (b *Builder) MaxFiles(n int) *Builder {
	b.partial.MaxFiles = Int(n)
	return b
}

// --- Filename constraints ---

// ValidateFileName enables or disables the filename rule
func (b *Builder) ValidateFileName(enabled bool) *Builder {
	b.partial.ValidateFileName = Bool(enabled)
	return b
}

// --- Custom validators ---

// Custom adds a custom validator scoped to an exact MIME type
func (b *Builder) Custom(mimeType string, fn CustomValidatorFunc) *Builder {
	b.partial.CustomValidators = append(b.partial.CustomValidators, Custom(mimeType, fn))
	return b
}

// --- Build ---

// Build creates the validator with the configured constraints
func (b *Builder) Build() *Validator {
	return New(b.Config())
}

// Partial returns the configured fields only
func (b *Builder) Partial() PartialConfig {
	return Config{}.Merge(b.partial).Partial().trimTo(b.partial)
}

// Config returns the resolved configuration
func (b *Builder) Config() Config {
	return Resolve(b.partial)
}

// trimTo unsets every field of p that is unset in mask
func (p PartialConfig) trimTo(mask PartialConfig) PartialConfig {
	if mask.MaxSize == nil {
		p.MaxSize = nil
	}
	if mask.MinSize == nil {
		p.MinSize = nil
	}
	if mask.AllowedTypes == nil {
		p.AllowedTypes = nil
	}
	if mask.AllowedExtensions == nil {
		p.AllowedExtensions = nil
	}
	if mask.MaxFiles == nil {
		p.MaxFiles = nil
	}
	if mask.ValidateFileName == nil {
		p.ValidateFileName = nil
	}
	if mask.CustomValidators == nil {
		p.CustomValidators = nil
	}
	return p
}

// --- Presets ---

// ForImages creates a builder pre-configured for image uploads
func ForImages() *Builder {
	return From(ImageOnlyConfig())
}

// ForDocuments creates a builder pre-configured for document uploads
func ForDocuments() *Builder {
	return From(DocumentOnlyConfig())
}

// ForMedia creates a builder pre-configured for audio/video uploads
func ForMedia() *Builder {
	return From(MediaOnlyConfig())
}
