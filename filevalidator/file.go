package filevalidator

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

// File is an immutable input file. The pipeline never mutates it.
type File struct {
	// Name is the base filename including extension
	Name string

	// Size is the file size in bytes
	Size int64

	// Type is the declared MIME type
	Type string

	// LastModified is the last modification time reported by the source
	LastModified time.Time

	data []byte
}

// NewFile creates a File from in-memory content. Size is taken from data.
// When mimeType is empty it is derived from the extension, then from the
// content itself.
func NewFile(name, mimeType string, data []byte, modTime time.Time) *File {
	if mimeType == "" {
		mimeType = guessType(name, data)
	}
	return &File{
		Name:         name,
		Size:         int64(len(data)),
		Type:         mimeType,
		LastModified: modTime,
		data:         data,
	}
}

// NewFileInfo creates a content-less File from declared attributes only.
// Useful when only the descriptive attributes are available.
func NewFileInfo(name, mimeType string, size int64, modTime time.Time) *File {
	return &File{
		Name:         name,
		Size:         size,
		Type:         mimeType,
		LastModified: modTime,
	}
}

// FileFromHeader reads an uploaded multipart part into a File
func FileFromHeader(header *multipart.FileHeader) (*File, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", header.Filename, err)
	}

	file := NewFile(filepath.Base(header.Filename), stripParams(header.Header.Get("Content-Type")), data, time.Now())
	file.Size = header.Size
	return file, nil
}

// FileFromPath reads a local file into a File
func FileFromPath(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: path is a directory, not a file", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFile(filepath.Base(path), "", data, info.ModTime()), nil
}

// Bytes returns the file content. Callers must not modify the returned slice.
func (f *File) Bytes() []byte {
	return f.data
}

// Open returns a reader over the file content
func (f *File) Open() io.Reader {
	return bytes.NewReader(f.data)
}

// HasContent reports whether the file carries byte content
func (f *File) HasContent() bool {
	return len(f.data) > 0
}

// Extension returns the lowercase extension without the leading dot
func (f *File) Extension() string {
	return Extension(f.Name)
}

func guessType(name string, data []byte) string {
	if t := MIMETypeForExtension(Extension(name)); t != "" {
		return t
	}
	return DetectMIMEFromBytes(data)
}
