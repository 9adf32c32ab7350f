package preview

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sync"

	"github.com/gobeaver/fileintake"
	"github.com/gobeaver/fileintake/filevalidator"
)

// PluginName is the name of the plugin returned by Previewer.Plugin
const PluginName = "preview"

// Metadata extension keys written by the plugin
const (
	KeyURL           = "previewURL"
	KeyPreviewWidth  = "previewWidth"
	KeyPreviewHeight = "previewHeight"
	KeyWidth         = "width"
	KeyHeight        = "height"
)

// Previewer renders thumbnails for image files and keeps them until they are
// cleaned up. It is safe for concurrent use.
type Previewer struct {
	opts     Options
	renderer Renderer
	logger   *slog.Logger

	mu       sync.Mutex
	previews map[string]Result
}

// New creates a Previewer. Invalid options are rejected.
func New(opts ...Option) (*Previewer, error) {
	s := settings{
		options:  DefaultOptions(),
		renderer: ImageRenderer{},
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.options.Background == nil {
		s.options.Background = DefaultBackground
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if err := s.options.Validate(); err != nil {
		return nil, err
	}

	return &Previewer{
		opts:     s.options,
		renderer: s.renderer,
		logger:   s.logger.With(slog.String("plugin", PluginName)),
		previews: make(map[string]Result),
	}, nil
}

// Options returns the render options
func (p *Previewer) Options() Options {
	return p.opts
}

// Plugin returns the pipeline plugin. Its PostTransform renders the
// transformed content of image files the renderer supports and records the
// preview under the file's metadata id. Other files, including empty ones and
// image types without a decoder such as SVG, pass through unchanged.
func (p *Previewer) Plugin() fileintake.Plugin {
	return fileintake.Plugin{
		Name:         PluginName,
		Version:      "1.0.0",
		MetadataKeys: []string{KeyURL, KeyPreviewWidth, KeyPreviewHeight, KeyWidth, KeyHeight},
		PostTransform: func(ctx context.Context, pf fileintake.ProcessedFile) (*fileintake.ProcessedFile, error) {
			if !filevalidator.IsImage(pf.Metadata.Type) {
				return nil, nil
			}
			if len(pf.Content) == 0 || !p.renderer.Supports(pf.Metadata.Type) {
				p.logger.Debug("preview skipped",
					slog.String("id", pf.Metadata.ID),
					slog.String("type", pf.Metadata.Type),
					slog.Int("bytes", len(pf.Content)))
				return nil, nil
			}
			return p.render(ctx, pf)
		},
		OnError: func(_ context.Context, _ error, ec fileintake.ErrorContext) {
			if ec.Processed == nil {
				return
			}
			// A later hook failed; the preview will never be handed out
			p.mu.Lock()
			delete(p.previews, ec.Processed.Metadata.ID)
			p.mu.Unlock()
		},
	}
}

func (p *Previewer) render(ctx context.Context, pf fileintake.ProcessedFile) (*fileintake.ProcessedFile, error) {
	res, err := p.renderer.Render(ctx, pf.Content, p.opts)
	if err != nil {
		return nil, err
	}

	id := pf.Metadata.ID
	p.mu.Lock()
	p.previews[id] = res
	p.mu.Unlock()

	p.logger.Debug("preview rendered",
		slog.String("id", id),
		slog.Int("width", res.Width),
		slog.Int("height", res.Height))

	out := pf.
		WithExtension(KeyURL, fileintake.StringValue(DataURL(res))).
		WithExtension(KeyPreviewWidth, fileintake.IntValue(res.Bounds.Dx())).
		WithExtension(KeyPreviewHeight, fileintake.IntValue(res.Bounds.Dy())).
		WithExtension(KeyWidth, fileintake.IntValue(res.Width)).
		WithExtension(KeyHeight, fileintake.IntValue(res.Height))
	return &out, nil
}

// Preview returns the rendered preview for a metadata id
func (p *Previewer) Preview(id string) (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	res, ok := p.previews[id]
	return res, ok
}

// CleanupPreview releases the preview for id. An unknown id is logged and
// ignored.
func (p *Previewer) CleanupPreview(id string) bool {
	p.mu.Lock()
	_, ok := p.previews[id]
	delete(p.previews, id)
	p.mu.Unlock()

	if !ok {
		p.logger.Error("cleanup failed", slog.String("id", id), slog.Any("error", ErrUnknownPreview))
	}
	return ok
}

// Cleanup releases every preview and returns how many were released
func (p *Previewer) Cleanup() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.previews)
	clear(p.previews)
	return n
}

// Len returns the number of retained previews
func (p *Previewer) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.previews)
}

// DataURL encodes a preview as a data: URL
func DataURL(res Result) string {
	return "data:" + res.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(res.Data)
}
