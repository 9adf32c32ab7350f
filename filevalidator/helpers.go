package filevalidator

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// invalidNameChars are rejected anywhere in a filename
const invalidNameChars = `<>:"|?*`

// FormatSizeReadable converts a size in bytes to a human-readable string
func FormatSizeReadable(size int64) string {
	if size < KB {
		return fmt.Sprintf("%d B", size)
	}
	if size < MB {
		return formatUnit(size, KB, "KB")
	}
	if size < GB {
		return formatUnit(size, MB, "MB")
	}
	return formatUnit(size, GB, "GB")
}

func formatUnit(size, unit int64, suffix string) string {
	// Round to 1 decimal place
	rounded := math.Round(float64(size)/float64(unit)*10) / 10
	if rounded == math.Trunc(rounded) {
		return fmt.Sprintf("%.0f %s", rounded, suffix)
	}
	return fmt.Sprintf("%.1f %s", rounded, suffix)
}

// Extension returns the lowercase substring after the last dot of name,
// or an empty string when name has no dot.
func Extension(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// normalizeExtension strips a leading dot and lowercases ext
func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// fileNameProblem returns a description of what is wrong with name, or an
// empty string if the name is acceptable.
func fileNameProblem(name string) string {
	if name == "" {
		return "filename is empty"
	}
	if utf8.RuneCountInString(name) >= MaxNameLength {
		return fmt.Sprintf("filename exceeds maximum length of %d characters", MaxNameLength-1)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "filename contains control characters"
		}
		if strings.ContainsRune(invalidNameChars, r) {
			return fmt.Sprintf("filename contains invalid character: %c", r)
		}
	}
	return ""
}
