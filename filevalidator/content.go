package filevalidator

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageLimits bounds the pixel dimensions of decoded images.
// This is TYPE validation, not security scanning.
type ImageLimits struct {
	MaxWidth  int
	MaxHeight int
	MaxPixels int
	MinWidth  int
	MinHeight int
}

// DefaultImageLimits returns image limits with sensible defaults
func DefaultImageLimits() ImageLimits {
	return ImageLimits{
		MaxWidth:  10000,
		MaxHeight: 10000,
		MaxPixels: 50000000, // 50 megapixels
		MinWidth:  1,
		MinHeight: 1,
	}
}

// imageContentTypes are the raster types image.DecodeConfig can read
var imageContentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/tiff",
}

// ImageContentValidators returns one custom validator per decodable image
// type. Each decodes only the image header and checks dimensions against
// limits. Files without content pass.
func ImageContentValidators(limits ImageLimits) []CustomValidator {
	validators := make([]CustomValidator, 0, len(imageContentTypes))
	for _, t := range imageContentTypes {
		validators = append(validators, Custom(t, limits.check))
	}
	return validators
}

func (l ImageLimits) check(f *File) (bool, string) {
	if !f.HasContent() {
		return true, ""
	}

	img, _, err := image.DecodeConfig(f.Open())
	if err != nil {
		return false, fmt.Sprintf("cannot decode image: %v", err)
	}

	switch {
	case l.MaxWidth > 0 && img.Width > l.MaxWidth:
		return false, fmt.Sprintf("image width %d exceeds maximum %d", img.Width, l.MaxWidth)
	case l.MaxHeight > 0 && img.Height > l.MaxHeight:
		return false, fmt.Sprintf("image height %d exceeds maximum %d", img.Height, l.MaxHeight)
	case img.Width < l.MinWidth:
		return false, fmt.Sprintf("image width %d below minimum %d", img.Width, l.MinWidth)
	case img.Height < l.MinHeight:
		return false, fmt.Sprintf("image height %d below minimum %d", img.Height, l.MinHeight)
	}

	// Decompression bomb protection
	if l.MaxPixels > 0 && img.Width*img.Height > l.MaxPixels {
		return false, fmt.Sprintf("total pixels %d exceeds maximum %d", img.Width*img.Height, l.MaxPixels)
	}

	return true, ""
}

// PDFContentValidator checks the PDF header and end-of-file marker.
// Files without content pass.
func PDFContentValidator() CustomValidator {
	return Custom("application/pdf", func(f *File) (bool, string) {
		if !f.HasContent() {
			return true, ""
		}
		data := f.Bytes()
		if !bytes.HasPrefix(data, []byte("%PDF-")) {
			return false, "invalid PDF header"
		}
		tail := data[max(0, len(data)-1024):]
		if !bytes.Contains(tail, []byte("%%EOF")) {
			return false, "missing PDF end-of-file marker"
		}
		return true, ""
	})
}

// ContentValidators returns every built-in content validator
func ContentValidators() []CustomValidator {
	return append(ImageContentValidators(DefaultImageLimits()), PDFContentValidator())
}
