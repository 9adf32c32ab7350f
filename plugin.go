package fileintake

import (
	"context"
	"slices"

	"github.com/gobeaver/fileintake/filevalidator"
)

// Plugin bundles optional lifecycle hooks. A nil hook is skipped. Within one
// Process call hooks run strictly in registration order, one at a time.
type Plugin struct {
	// Name identifies the plugin for RemovePlugin and in errors
	Name    string
	Version string

	// MetadataKeys lists every extension key PostTransform may write
	MetadataKeys []string

	// PreValidation observes the file before validation
	PreValidation func(ctx context.Context, file *filevalidator.File, cfg filevalidator.Config) error

	// PostValidation observes the validation report
	PostValidation func(ctx context.Context, report filevalidator.FileReport, file *filevalidator.File) error

	// PreTransform may replace the content. Returning nil keeps it unchanged.
	PreTransform func(ctx context.Context, content []byte, file *filevalidator.File) ([]byte, error)

	// PostTransform may replace the processed file. Returning nil keeps it unchanged.
	PostTransform func(ctx context.Context, pf ProcessedFile) (*ProcessedFile, error)

	// OnError observes any error leaving Process. It cannot suppress it.
	OnError func(ctx context.Context, err error, ec ErrorContext)
}

// ErrorContext is passed to OnError hooks
type ErrorContext struct {
	File *filevalidator.File

	// Processed is the in-flight result, nil when the error happened before
	// metadata extraction
	Processed *ProcessedFile

	Config filevalidator.Config

	// Scratch is shared by every OnError hook of one failure
	Scratch map[string]any
}

// Declares reports whether key is listed in MetadataKeys
func (p Plugin) Declares(key string) bool {
	return slices.Contains(p.MetadataKeys, key)
}

func (p Plugin) label() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "@" + p.Version
}
