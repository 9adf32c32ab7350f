package filevalidator

import (
	"mime"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// MediaTypeGroup is a wildcard MIME pattern covering a whole top-level type
type MediaTypeGroup string

const (
	AllowAllImages MediaTypeGroup = "image/*"
	AllowAllAudio  MediaTypeGroup = "audio/*"
	AllowAllVideo  MediaTypeGroup = "video/*"
	AllowAllText   MediaTypeGroup = "text/*"
	AllowAll       MediaTypeGroup = "*/*"

	// AllowAllDocuments is not a real top-level type; it names the document list
	// used by DocumentOnlyConfig.
	AllowAllDocuments MediaTypeGroup = "document/*"
)

// OctetStream is the type assigned when nothing better is known
const OctetStream = "application/octet-stream"

var mediaTypeGroups = map[MediaTypeGroup][]string{
	AllowAllDocuments: {
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"text/plain",
		"text/csv",
		"text/rtf",
		"application/rtf",
	},
}

var extMu sync.RWMutex

var extensionToMimeType = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"bmp":  "image/bmp",
	"heic": "image/heic",
	"heif": "image/heif",

	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"txt":  "text/plain",
	"csv":  "text/csv",
	"rtf":  "text/rtf",

	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"aac":  "audio/aac",
	"flac": "audio/flac",
	"m4a":  "audio/mp4",

	"mp4":  "video/mp4",
	"mpeg": "video/mpeg",
	"webm": "video/webm",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",

	"json": "application/json",
	"zip":  "application/zip",
	"html": "text/html",
	"css":  "text/css",
	"md":   "text/markdown",
}

// MatchesMIME reports whether mimeType is accepted by pattern.
// A pattern matches on exact equality, or as "prefix/*" on the part of the
// type before the slash. "*/*" matches every type.
func MatchesMIME(pattern, mimeType string) bool {
	if pattern == mimeType || pattern == string(AllowAll) {
		return true
	}
	prefix, ok := strings.CutSuffix(pattern, "/*")
	if !ok {
		return false
	}
	typePrefix, _, found := strings.Cut(mimeType, "/")
	return found && typePrefix == prefix
}

// MatchesAnyMIME reports whether mimeType is accepted by any of patterns
func MatchesAnyMIME(patterns []string, mimeType string) bool {
	for _, p := range patterns {
		if MatchesMIME(p, mimeType) {
			return true
		}
	}
	return false
}

// MIMETypeForExtension returns the MIME type for an extension without the
// leading dot. Returns empty string if the extension is not recognized.
func MIMETypeForExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	extMu.RLock()
	t := extensionToMimeType[ext]
	extMu.RUnlock()
	if t != "" {
		return t
	}
	if t = mime.TypeByExtension("." + ext); t != "" {
		return stripParams(t)
	}
	return ""
}

// AddCustomMediaTypeMapping adds a custom file extension to MIME type mapping
func AddCustomMediaTypeMapping(ext string, mimeType string) {
	extMu.Lock()
	defer extMu.Unlock()
	extensionToMimeType[strings.ToLower(strings.TrimPrefix(ext, "."))] = mimeType
}

// DetectMIMEFromBytes sniffs the MIME type of data from its content
func DetectMIMEFromBytes(data []byte) string {
	if len(data) == 0 {
		return OctetStream
	}
	return stripParams(mimetype.Detect(data).String())
}

// IsImage checks if a content type belongs to the image category
func IsImage(contentType string) bool {
	return MatchesMIME(string(AllowAllImages), contentType)
}

func stripParams(t string) string {
	if idx := strings.Index(t, ";"); idx > 0 {
		t = t[:idx]
	}
	return strings.TrimSpace(t)
}
