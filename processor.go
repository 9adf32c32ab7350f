package fileintake

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/gobeaver/fileintake/filevalidator"
	"golang.org/x/sync/errgroup"
)

// Processor runs files through validation and the plugin hook pipeline.
// It is safe for concurrent use. Each Process call works on a snapshot of the
// plugins and validator taken when it starts.
type Processor struct {
	mu        sync.RWMutex
	cfg       filevalidator.Config
	validator *filevalidator.Validator
	plugins   []Plugin

	logger   *slog.Logger
	newID    func() string
	checksum ChecksumAlgorithm
}

// New creates a processor
func New(opts ...Option) *Processor {
	o := buildOptions(opts)
	cfg := filevalidator.Resolve(o.Config)

	p := &Processor{
		cfg:       cfg,
		validator: filevalidator.New(cfg),
		logger:    o.Logger,
		newID:     o.IDGenerator,
		checksum:  o.Checksum,
	}
	for _, plugin := range o.Plugins {
		p.Use(plugin)
	}
	return p
}

// Use appends plugin. Names are not de-duplicated.
func (p *Processor) Use(plugin Plugin) *Processor {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, existing := range p.plugins {
		for _, key := range plugin.MetadataKeys {
			if existing.Declares(key) {
				p.logger.Warn("metadata key declared by more than one plugin",
					slog.String("key", key),
					slog.String("plugin", plugin.Name),
					slog.String("other", existing.Name))
			}
		}
	}

	p.plugins = append(p.plugins, plugin)
	p.logger.Debug("plugin registered", slog.String("plugin", plugin.label()))
	return p
}

// RemovePlugin removes every plugin named name and returns how many were removed
func (p *Processor) RemovePlugin(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	before := len(p.plugins)
	p.plugins = slices.DeleteFunc(slices.Clone(p.plugins), func(pl Plugin) bool {
		return pl.Name == name
	})
	return before - len(p.plugins)
}

// Plugins returns the registered plugins in order
func (p *Processor) Plugins() []Plugin {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.plugins)
}

// Config returns the current resolved configuration
func (p *Processor) Config() filevalidator.Config {
	return p.Validator().Config()
}

// Validator returns the current validator
func (p *Processor) Validator() *filevalidator.Validator {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.validator
}

// UpdateConfig merges cfg over the current configuration and swaps in a
// fresh validator. Calls already in flight keep the old one.
func (p *Processor) UpdateConfig(cfg filevalidator.PartialConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = p.cfg.Merge(cfg)
	p.validator = filevalidator.New(p.cfg)
}

func (p *Processor) snapshot() ([]Plugin, *filevalidator.Validator) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	// plugins is never modified in place, so sharing the backing array is safe
	return p.plugins, p.validator
}

// Process validates file and runs it through every hook stage. On failure
// every plugin's OnError hook is called before the error is returned.
func (p *Processor) Process(ctx context.Context, file *filevalidator.File) (*ProcessedFile, error) {
	pf, _, err := p.process(ctx, file)
	return pf, err
}

func (p *Processor) process(ctx context.Context, file *filevalidator.File) (*ProcessedFile, *pipeline, error) {
	plugins, validator := p.snapshot()
	run := &pipeline{
		proc:      p,
		plugins:   plugins,
		validator: validator,
		cfg:       validator.Config(),
		file:      file,
		logger:    p.logger.With(slog.String("file", file.Name)),
	}

	pf, err := run.execute(ctx)
	if err != nil {
		run.dispatchError(ctx, err)
		return nil, run, err
	}
	return pf, run, nil
}

// ProcessMany validates the batch, then processes every file concurrently.
// Results are in input order. The first error cancels the remaining files,
// and files that had already finished get their OnError hooks called with
// ErrBatchAborted so plugins can release what they hold for them.
func (p *Processor) ProcessMany(ctx context.Context, files []*filevalidator.File) ([]*ProcessedFile, error) {
	report := p.Validator().ValidateFiles(files)
	if !report.Valid {
		err := &ValidationFailedError{Errors: report.Errors}
		p.logger.Warn("batch rejected",
			slog.Int("files", len(files)),
			slog.Any("errors", err.Messages()))
		return nil, err
	}

	results := make([]*ProcessedFile, len(files))
	runs := make([]*pipeline, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			pf, run, err := p.process(gctx, file)
			if err != nil {
				return err
			}
			results[i], runs[i] = pf, run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.rollback(ctx, runs, err)
		return nil, err
	}
	return results, nil
}

// rollback notifies the plugins of every completed file in an aborted batch
func (p *Processor) rollback(ctx context.Context, runs []*pipeline, cause error) {
	aborted := fmt.Errorf("%w: %w", ErrBatchAborted, cause)
	n := 0
	for _, run := range runs {
		if run == nil {
			continue
		}
		run.dispatchError(ctx, aborted)
		n++
	}
	if n > 0 {
		p.logger.Warn("batch aborted", slog.Int("completed", n), slog.Any("error", cause))
	}
}

// pipeline holds the state of one Process call
type pipeline struct {
	proc      *Processor
	plugins   []Plugin
	validator *filevalidator.Validator
	cfg       filevalidator.Config
	file      *filevalidator.File
	logger    *slog.Logger

	// processed is set once metadata has been extracted
	processed *ProcessedFile
}

func (r *pipeline) execute(ctx context.Context) (*ProcessedFile, error) {
	// 1. preValidation
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, pl := range r.plugins {
		if pl.PreValidation == nil {
			continue
		}
		if err := r.call(pl, StagePreValidation, func() error {
			return pl.PreValidation(ctx, r.file, r.cfg)
		}); err != nil {
			return nil, err
		}
	}

	// 2. validation
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report := r.validator.ValidateFile(r.file)

	// 3. postValidation
	for _, pl := range r.plugins {
		if pl.PostValidation == nil {
			continue
		}
		if err := r.call(pl, StagePostValidation, func() error {
			return pl.PostValidation(ctx, report, r.file)
		}); err != nil {
			return nil, err
		}
	}

	// 4. reject invalid files
	if !report.Valid {
		r.logger.Warn("file rejected", slog.Any("rules", report.FailedRules()))
		return nil, &ValidationFailedError{Errors: report.Errors}
	}

	// 5. preTransform, each hook sees the previous hook's content
	content := r.file.Bytes()
	for _, pl := range r.plugins {
		if pl.PreTransform == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := r.call(pl, StagePreTransform, func() error {
			next, err := pl.PreTransform(ctx, content, r.file)
			if err != nil {
				return err
			}
			if next != nil {
				content = next
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	// 6. metadata
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	md, err := ExtractMetadata(r.file, r.proc.newID, r.proc.checksum)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageMetadata, err)
	}
	r.processed = &ProcessedFile{Original: r.file, Content: content, Metadata: md}
	r.logger.Debug("metadata extracted", slog.String("id", md.ID))

	// 7. postTransform, each hook sees the previous hook's result
	for _, pl := range r.plugins {
		if pl.PostTransform == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := *r.processed
		err := r.call(pl, StagePostTransform, func() error {
			next, err := pl.PostTransform(ctx, current)
			if err != nil {
				return err
			}
			if next == nil {
				return nil
			}
			if key, ok := undeclaredKey(pl, current.Metadata.Extensions, next.Metadata.Extensions); !ok {
				return fmt.Errorf("%w: %q", ErrUndeclaredMetadataKey, key)
			}
			r.processed = next
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	r.logger.Debug("file processed", slog.String("id", r.processed.Metadata.ID))
	return r.processed, nil
}

// call runs one hook, converting errors and panics into a *HookError
func (r *pipeline) call(pl Plugin, stage Stage, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &HookError{Plugin: pl.Name, Stage: stage, Err: fmt.Errorf("panic: %v", rec)}
		}
		if err != nil {
			r.logger.Error("hook failed",
				slog.String("plugin", pl.label()),
				slog.String("stage", string(stage)),
				slog.Any("error", err))
		}
	}()

	if err := fn(); err != nil {
		return &HookError{Plugin: pl.Name, Stage: stage, Err: err}
	}
	return nil
}

// dispatchError runs every OnError hook in order. Panics are logged and
// swallowed so each hook gets its turn.
func (r *pipeline) dispatchError(ctx context.Context, err error) {
	ec := ErrorContext{
		File:    r.file,
		Config:  r.cfg,
		Scratch: map[string]any{},
	}
	if r.processed != nil {
		snapshot := *r.processed
		ec.Processed = &snapshot
	}

	for _, pl := range r.plugins {
		if pl.OnError == nil {
			continue
		}
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("onError hook panicked",
						slog.String("plugin", pl.label()),
						slog.Any("panic", rec))
				}
			}()
			pl.OnError(ctx, err, ec)
		}()
	}
}

// undeclaredKey returns the first key pl added, changed or removed between
// before and after without declaring it
func undeclaredKey(pl Plugin, before, after Extensions) (string, bool) {
	for key, v := range after.All() {
		if pl.Declares(key) {
			continue
		}
		if old, ok := before.Get(key); ok && old.Equal(v) {
			continue
		}
		return key, false
	}
	for key := range before.All() {
		if !pl.Declares(key) && !after.Has(key) {
			return key, false
		}
	}
	return "", true
}
