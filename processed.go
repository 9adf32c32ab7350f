package fileintake

import "github.com/gobeaver/fileintake/filevalidator"

// ProcessedFile is the output of the pipeline. Hooks receive it by value and
// return a replacement; the With helpers build modified copies.
type ProcessedFile struct {
	Original *filevalidator.File
	Content  []byte
	Metadata Metadata
}

// WithContent returns a copy of pf carrying content
func (pf ProcessedFile) WithContent(content []byte) ProcessedFile {
	pf.Content = content
	return pf
}

// WithMetadata returns a copy of pf carrying md
func (pf ProcessedFile) WithMetadata(md Metadata) ProcessedFile {
	pf.Metadata = md
	return pf
}

// WithExtension returns a copy of pf with one metadata extension set
func (pf ProcessedFile) WithExtension(key string, v Value) ProcessedFile {
	pf.Metadata.Extensions = pf.Metadata.Extensions.Set(key, v)
	return pf
}
