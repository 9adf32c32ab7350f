package preview

import "errors"

var (
	// ErrUnknownPreview is logged when cleanup names an id with no preview
	ErrUnknownPreview = errors.New("unknown preview id")

	// ErrUnsupportedImage is returned when content cannot be decoded
	ErrUnsupportedImage = errors.New("unsupported image")

	// ErrImageTooLarge is returned when the source exceeds MaxSourcePixels
	ErrImageTooLarge = errors.New("image too large for preview")
)
