package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"strings"

	// Registered decoders
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

// Result is a rendered preview
type Result struct {
	// Width and Height are the source image dimensions
	Width  int
	Height int

	// Data is the encoded preview
	Data     []byte
	MIMEType string

	// Bounds is the canvas size of the preview
	Bounds image.Rectangle
}

// Renderer turns image bytes into a preview. The plugin only calls Render
// for files whose type Supports accepts.
type Renderer interface {
	Supports(mimeType string) bool
	Render(ctx context.Context, content []byte, opts Options) (Result, error)
}

// decodable lists the types with a registered decoder
var decodable = map[string]bool{
	"image/png":      true,
	"image/jpeg":     true,
	"image/jpg":      true,
	"image/pjpeg":    true,
	"image/gif":      true,
	"image/webp":     true,
	"image/bmp":      true,
	"image/x-ms-bmp": true,
	"image/tiff":     true,
}

// ImageRenderer decodes gif, jpeg, png, bmp, tiff and webp, scales the image
// onto a square canvas and encodes it as JPEG
type ImageRenderer struct{}

// Supports reports whether mimeType has a registered decoder. Vector and
// HEIF images are not decodable.
func (ImageRenderer) Supports(mimeType string) bool {
	t, _, _ := strings.Cut(mimeType, ";")
	return decodable[strings.ToLower(strings.TrimSpace(t))]
}

// Render implements Renderer
func (ImageRenderer) Render(ctx context.Context, content []byte, opts Options) (Result, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Result{}, fmt.Errorf("%w: empty %s image", ErrUnsupportedImage, format)
	}
	if opts.MaxSourcePixels > 0 && cfg.Width*cfg.Height > opts.MaxSourcePixels {
		return Result{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, opts.MaxSourcePixels)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	src, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(canvas, Fit(src.Bounds().Size(), opts.Size), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	quality := int(math.Round(opts.Quality * 100))
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: quality}); err != nil {
		return Result{}, fmt.Errorf("encode preview: %w", err)
	}

	return Result{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Data:     buf.Bytes(),
		MIMEType: "image/jpeg",
		Bounds:   canvas.Bounds(),
	}, nil
}

// Fit returns the rectangle, centered on a size x size canvas, that src
// occupies once its longer side is scaled to size
func Fit(src image.Point, size int) image.Rectangle {
	w, h := size, size
	if src.X > src.Y {
		h = max(1, int(math.Round(float64(src.Y)*float64(size)/float64(src.X))))
	} else if src.Y > src.X {
		w = max(1, int(math.Round(float64(src.X)*float64(size)/float64(src.Y))))
	}
	x := (size - w) / 2
	y := (size - h) / 2
	return image.Rect(x, y, x+w, y+h)
}
