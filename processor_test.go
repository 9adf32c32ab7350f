package fileintake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gobeaver/fileintake/filevalidator"
)

var modTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestProcessor(opts ...Option) *Processor {
	return New(append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)...)
}

func textFile(name, content string) *filevalidator.File {
	return filevalidator.NewFile(name, "text/plain", []byte(content), modTime)
}

// recorder collects hook invocations from concurrent pipelines
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

func tracingPlugin(name string, rec *recorder) Plugin {
	return Plugin{
		Name: name,
		PreValidation: func(context.Context, *filevalidator.File, filevalidator.Config) error {
			rec.add(name + ":preValidation")
			return nil
		},
		PostValidation: func(context.Context, filevalidator.FileReport, *filevalidator.File) error {
			rec.add(name + ":postValidation")
			return nil
		},
		PreTransform: func(context.Context, []byte, *filevalidator.File) ([]byte, error) {
			rec.add(name + ":preTransform")
			return nil, nil
		},
		PostTransform: func(context.Context, ProcessedFile) (*ProcessedFile, error) {
			rec.add(name + ":postTransform")
			return nil, nil
		},
		OnError: func(context.Context, error, ErrorContext) {
			rec.add(name + ":onError")
		},
	}
}

func appendingPlugin(name, suffix string) Plugin {
	return Plugin{
		Name: name,
		PreTransform: func(_ context.Context, content []byte, _ *filevalidator.File) ([]byte, error) {
			return append(slices.Clone(content), suffix...), nil
		},
	}
}

func TestProcess_StageOrder(t *testing.T) {
	rec := &recorder{}
	proc := newTestProcessor(WithPlugins(tracingPlugin("a", rec), tracingPlugin("b", rec)))

	if _, err := proc.Process(context.Background(), textFile("a.txt", "x")); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := []string{
		"a:preValidation", "b:preValidation",
		"a:postValidation", "b:postValidation",
		"a:preTransform", "b:preTransform",
		"a:postTransform", "b:postTransform",
	}
	if got := rec.list(); !slices.Equal(got, want) {
		t.Errorf("calls = %v\nwant   %v", got, want)
	}
}

func TestProcess_PreTransformPropagation(t *testing.T) {
	proc := newTestProcessor(WithPlugins(
		appendingPlugin("A", "A"),
		appendingPlugin("B", "B"),
		appendingPlugin("C", "C"),
	))

	pf, err := proc.Process(context.Background(), textFile("a.txt", "x"))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if string(pf.Content) != "xABC" {
		t.Errorf("Content = %q, want %q", pf.Content, "xABC")
	}
	if string(pf.Original.Bytes()) != "x" {
		t.Errorf("original content changed to %q", pf.Original.Bytes())
	}
}

func TestProcess_NilReturnKeepsValue(t *testing.T) {
	var seen []string
	proc := newTestProcessor(WithPlugins(
		appendingPlugin("A", "A"),
		Plugin{
			Name: "noop",
			PreTransform: func(context.Context, []byte, *filevalidator.File) ([]byte, error) {
				return nil, nil
			},
			PostTransform: func(context.Context, ProcessedFile) (*ProcessedFile, error) {
				return nil, nil
			},
		},
		Plugin{
			Name: "observer",
			PreTransform: func(_ context.Context, content []byte, _ *filevalidator.File) ([]byte, error) {
				seen = append(seen, string(content))
				return nil, nil
			},
		},
	))

	pf, err := proc.Process(context.Background(), textFile("a.txt", "x"))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(seen, []string{"xA"}) {
		t.Errorf("observer saw %v, want [xA]", seen)
	}
	if string(pf.Content) != "xA" {
		t.Errorf("Content = %q", pf.Content)
	}
}

func TestProcess_PostTransformPropagation(t *testing.T) {
	stamp := func(name, key string, v Value) Plugin {
		return Plugin{
			Name:         name,
			MetadataKeys: []string{key},
			PostTransform: func(_ context.Context, pf ProcessedFile) (*ProcessedFile, error) {
				out := pf.WithExtension(key, v)
				return &out, nil
			},
		}
	}
	var sawFirst bool
	proc := newTestProcessor(WithPlugins(
		stamp("first", "first", StringValue("1")),
		Plugin{
			Name: "check",
			PostTransform: func(_ context.Context, pf ProcessedFile) (*ProcessedFile, error) {
				sawFirst = pf.Metadata.Extensions.Has("first")
				return nil, nil
			},
		},
		stamp("second", "second", IntValue(2)),
	))

	pf, err := proc.Process(context.Background(), textFile("a.txt", "x"))
	if err != nil {
		t.Fatal(err)
	}
	if !sawFirst {
		t.Error("later hook did not see the earlier hook's result")
	}
	if got := pf.Metadata.Extensions.Keys(); !slices.Equal(got, []string{"first", "second"}) {
		t.Errorf("extension keys = %v", got)
	}
}

func TestProcess_ValidationShortCircuit(t *testing.T) {
	rec := &recorder{}
	var ec ErrorContext
	var hookErr error
	plugin := tracingPlugin("p", rec)
	plugin.OnError = func(_ context.Context, err error, c ErrorContext) {
		rec.add("p:onError")
		hookErr = err
		ec = c
	}
	proc := newTestProcessor(
		WithConfig(filevalidator.PartialConfig{AllowedExtensions: []string{"png"}}),
		WithPlugins(plugin),
	)

	pf, err := proc.Process(context.Background(), textFile("a.txt", "x"))
	if pf != nil {
		t.Error("expected nil result on validation failure")
	}
	if !IsValidationFailed(err) {
		t.Fatalf("error = %v, want validation failure", err)
	}
	var vErr *ValidationFailedError
	if !errors.As(err, &vErr) || len(vErr.Errors) != 1 || vErr.Errors[0].Rule != filevalidator.RuleExtension {
		t.Errorf("ValidationFailedError = %+v", vErr)
	}

	want := []string{"p:preValidation", "p:postValidation", "p:onError"}
	if got := rec.list(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if hookErr != err {
		t.Error("OnError did not receive the returned error")
	}
	if ec.Processed != nil {
		t.Error("Processed should be nil before metadata extraction")
	}
	if ec.File == nil || ec.File.Name != "a.txt" {
		t.Error("ErrorContext should carry the file")
	}
	if ec.Scratch == nil {
		t.Error("ErrorContext should carry a scratch map")
	}
}

func TestProcess_PostValidationSeesReport(t *testing.T) {
	var got filevalidator.FileReport
	proc := newTestProcessor(
		WithConfig(filevalidator.PartialConfig{MaxSize: filevalidator.Int64(1)}),
		WithPlugins(Plugin{
			Name: "inspect",
			PostValidation: func(_ context.Context, report filevalidator.FileReport, _ *filevalidator.File) error {
				got = report
				return nil
			},
		}),
	)

	_, err := proc.Process(context.Background(), textFile("a.txt", "too long"))
	if !IsValidationFailed(err) {
		t.Fatalf("error = %v", err)
	}
	if got.Valid || !slices.Equal(got.FailedRules(), []string{filevalidator.RuleSize}) {
		t.Errorf("report = %+v", got)
	}
}

func TestProcess_HookFailureAborts(t *testing.T) {
	cause := errors.New("disk on fire")
	rec := &recorder{}
	var ec ErrorContext

	proc := newTestProcessor(WithPlugins(
		Plugin{
			Name: "failing",
			PostTransform: func(context.Context, ProcessedFile) (*ProcessedFile, error) {
				return nil, cause
			},
			OnError: func(_ context.Context, _ error, c ErrorContext) {
				c.Scratch["seen"] = true
				ec = c
			},
		},
		tracingPlugin("after", rec),
	))

	_, err := proc.Process(context.Background(), textFile("a.txt", "x"))
	if !IsHookFailure(err) || !errors.Is(err, cause) {
		t.Fatalf("error = %v, want hook failure wrapping cause", err)
	}
	var hookErr *HookError
	if errors.As(err, &hookErr) {
		if hookErr.Plugin != "failing" || hookErr.Stage != StagePostTransform {
			t.Errorf("HookError = %+v", hookErr)
		}
	}

	for _, call := range rec.list() {
		if call == "after:postTransform" {
			t.Error("later postTransform ran after a failure")
		}
	}
	if last := rec.list()[len(rec.list())-1]; last != "after:onError" {
		t.Errorf("last call = %q, want after:onError", last)
	}
	if ec.Processed == nil || ec.Processed.Metadata.ID == "" {
		t.Error("OnError should receive the in-flight ProcessedFile")
	}
	if ec.Scratch["seen"] != true {
		t.Error("scratch map not shared")
	}
}

func TestProcess_PreValidationFailure(t *testing.T) {
	validated := false
	proc := newTestProcessor(WithPlugins(
		Plugin{
			Name: "gate",
			PreValidation: func(context.Context, *filevalidator.File, filevalidator.Config) error {
				return errors.New("quota exceeded")
			},
		},
		Plugin{
			Name: "observer",
			PostValidation: func(context.Context, filevalidator.FileReport, *filevalidator.File) error {
				validated = true
				return nil
			},
		},
	))

	_, err := proc.Process(context.Background(), textFile("a.txt", "x"))
	if !IsHookFailure(err) {
		t.Fatalf("error = %v", err)
	}
	if validated {
		t.Error("pipeline continued after a preValidation failure")
	}
}

func TestProcess_PanicRecovered(t *testing.T) {
	var onErrorCalls int
	proc := newTestProcessor(WithPlugins(
		Plugin{
			Name: "panicky",
			PreTransform: func(context.Context, []byte, *filevalidator.File) ([]byte, error) {
				panic("unexpected")
			},
			OnError: func(context.Context, error, ErrorContext) {
				onErrorCalls++
				panic("again")
			},
		},
		Plugin{
			Name: "second",
			OnError: func(context.Context, error, ErrorContext) {
				onErrorCalls++
			},
		},
	))

	_, err := proc.Process(context.Background(), textFile("a.txt", "x"))
	if !IsHookFailure(err) {
		t.Fatalf("error = %v, want hook failure", err)
	}
	if !strings.Contains(err.Error(), "unexpected") {
		t.Errorf("error %q should carry the panic value", err)
	}
	if onErrorCalls != 2 {
		t.Errorf("OnError calls = %d, want 2", onErrorCalls)
	}
}

func TestProcess_UndeclaredMetadataKey(t *testing.T) {
	proc := newTestProcessor(WithPlugins(Plugin{
		Name:         "sneaky",
		MetadataKeys: []string{"allowed"},
		PostTransform: func(_ context.Context, pf ProcessedFile) (*ProcessedFile, error) {
			out := pf.WithExtension("allowed", BoolValue(true)).WithExtension("other", BoolValue(true))
			return &out, nil
		},
	}))

	_, err := proc.Process(context.Background(), textFile("a.txt", "x"))
	if !errors.Is(err, ErrUndeclaredMetadataKey) {
		t.Fatalf("error = %v, want ErrUndeclaredMetadataKey", err)
	}
	if !IsHookFailure(err) {
		t.Error("undeclared key should surface as a hook failure")
	}
}

func TestProcess_RemovedMetadataKey(t *testing.T) {
	writer := Plugin{
		Name:         "writer",
		MetadataKeys: []string{"owned"},
		PostTransform: func(_ context.Context, pf ProcessedFile) (*ProcessedFile, error) {
			out := pf.WithExtension("owned", StringValue("v"))
			return &out, nil
		},
	}
	wiper := Plugin{
		Name: "wiper",
		PostTransform: func(_ context.Context, pf ProcessedFile) (*ProcessedFile, error) {
			md := pf.Metadata
			md.Extensions = Extensions{}
			out := pf.WithMetadata(md)
			return &out, nil
		},
	}

	proc := newTestProcessor(WithPlugins(writer, wiper))
	_, err := proc.Process(context.Background(), textFile("a.txt", "x"))
	if !errors.Is(err, ErrUndeclaredMetadataKey) {
		t.Fatalf("error = %v, want ErrUndeclaredMetadataKey", err)
	}
	var hookErr *HookError
	if !errors.As(err, &hookErr) || hookErr.Plugin != "wiper" {
		t.Errorf("error = %v, want hook failure of wiper", err)
	}
	if !strings.Contains(err.Error(), `"owned"`) {
		t.Errorf("error %q should name the removed key", err)
	}

	// Removing a key the plugin declared itself is allowed
	owner := Plugin{
		Name:          "owner",
		MetadataKeys:  []string{"owned"},
		PostTransform: wiper.PostTransform,
	}
	proc = newTestProcessor(WithPlugins(writer, owner))
	pf, err := proc.Process(context.Background(), textFile("a.txt", "x"))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if pf.Metadata.Extensions.Has("owned") {
		t.Error("owned key should have been removed")
	}
}

func TestProcess_Metadata(t *testing.T) {
	var n atomic.Int32
	proc := newTestProcessor(WithIDGenerator(func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}))

	pf, err := proc.Process(context.Background(), textFile("Notes.TXT", "hello"))
	if err != nil {
		t.Fatal(err)
	}
	md := pf.Metadata
	if md.ID != "id-1" || md.Name != "Notes.TXT" || md.Extension != "txt" || md.Size != 5 {
		t.Errorf("metadata = %+v", md)
	}
	if !md.LastModified.Equal(modTime) {
		t.Errorf("LastModified = %v", md.LastModified)
	}
	if md.Checksum != "26c7827d889f6da3" {
		t.Errorf("Checksum = %q", md.Checksum)
	}

	// No id is consumed by a rejected file
	proc.UpdateConfig(filevalidator.PartialConfig{MaxSize: filevalidator.Int64(1)})
	if _, err := proc.Process(context.Background(), textFile("b.txt", "hello")); err == nil {
		t.Fatal("expected validation failure")
	}
	if n.Load() != 1 {
		t.Errorf("id generator called %d times, want 1", n.Load())
	}
}

func TestProcess_UniqueIDs(t *testing.T) {
	proc := newTestProcessor(WithConfig(filevalidator.PartialConfig{MaxFiles: filevalidator.Int(50)}))
	files := make([]*filevalidator.File, 50)
	for i := range files {
		files[i] = textFile(fmt.Sprintf("f%d.txt", i), "same content")
	}

	results, err := proc.ProcessMany(context.Background(), files)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool, len(results))
	for _, pf := range results {
		if seen[pf.Metadata.ID] {
			t.Fatalf("duplicate id %s", pf.Metadata.ID)
		}
		seen[pf.Metadata.ID] = true
	}
}

func TestProcess_ContextCanceled(t *testing.T) {
	rec := &recorder{}
	proc := newTestProcessor(WithPlugins(tracingPlugin("p", rec)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := proc.Process(ctx, textFile("a.txt", "x"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if got := rec.list(); !slices.Equal(got, []string{"p:onError"}) {
		t.Errorf("calls = %v, want only onError", got)
	}
}

func TestProcessMany_PositionalResults(t *testing.T) {
	delays := map[string]time.Duration{
		"slow.txt":   30 * time.Millisecond,
		"medium.txt": 15 * time.Millisecond,
		"fast.txt":   0,
	}
	proc := newTestProcessor(
		WithConfig(filevalidator.PartialConfig{MaxFiles: filevalidator.Int(3)}),
		WithPlugins(Plugin{
			Name: "delay",
			PreTransform: func(ctx context.Context, _ []byte, f *filevalidator.File) ([]byte, error) {
				select {
				case <-time.After(delays[f.Name]):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				return nil, nil
			},
		}),
	)

	files := []*filevalidator.File{
		textFile("slow.txt", "1"),
		textFile("medium.txt", "2"),
		textFile("fast.txt", "3"),
	}
	results, err := proc.ProcessMany(context.Background(), files)
	if err != nil {
		t.Fatalf("ProcessMany() error = %v", err)
	}
	if len(results) != len(files) {
		t.Fatalf("got %d results, want %d", len(results), len(files))
	}
	for i, pf := range results {
		if pf.Original != files[i] {
			t.Errorf("result %d is %s, want %s", i, pf.Metadata.Name, files[i].Name)
		}
	}
}

func TestProcessMany_BatchRejected(t *testing.T) {
	rec := &recorder{}
	proc := newTestProcessor(
		WithConfig(filevalidator.PartialConfig{MaxFiles: filevalidator.Int(1)}),
		WithPlugins(tracingPlugin("p", rec)),
	)

	results, err := proc.ProcessMany(context.Background(), []*filevalidator.File{
		textFile("a.txt", "1"),
		textFile("b.txt", "2"),
	})
	if results != nil {
		t.Error("expected no results")
	}
	var vErr *ValidationFailedError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want ValidationFailedError", err)
	}
	if len(vErr.Errors) != 1 || vErr.Errors[0].Rule != filevalidator.RuleMaxFiles {
		t.Errorf("errors = %+v", vErr.Errors)
	}
	if !strings.Contains(err.Error(), "2") {
		t.Errorf("error %q should mention the file count", err)
	}
	if calls := rec.list(); len(calls) != 0 {
		t.Errorf("hooks ran for a rejected batch: %v", calls)
	}
}

func TestProcessMany_InvalidFileInBatch(t *testing.T) {
	proc := newTestProcessor(WithConfig(filevalidator.PartialConfig{
		MaxFiles:          filevalidator.Int(2),
		AllowedExtensions: []string{"txt"},
	}))

	_, err := proc.ProcessMany(context.Background(), []*filevalidator.File{
		textFile("a.txt", "1"),
		textFile("b.csv", "2"),
	})
	if !IsValidationFailed(err) {
		t.Fatalf("error = %v, want validation failure", err)
	}
}

func TestProcessMany_FirstErrorCancelsOthers(t *testing.T) {
	cause := errors.New("bad file")
	var canceled atomic.Bool
	proc := newTestProcessor(
		WithConfig(filevalidator.PartialConfig{MaxFiles: filevalidator.Int(2)}),
		WithPlugins(Plugin{
			Name: "p",
			PreTransform: func(ctx context.Context, _ []byte, f *filevalidator.File) ([]byte, error) {
				if f.Name == "bad.txt" {
					return nil, cause
				}
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(5 * time.Second):
					return nil, nil
				}
			},
			OnError: func(_ context.Context, err error, ec ErrorContext) {
				if ec.File.Name == "good.txt" && errors.Is(err, context.Canceled) {
					canceled.Store(true)
				}
			},
		}),
	)

	_, err := proc.ProcessMany(context.Background(), []*filevalidator.File{
		textFile("good.txt", "1"),
		textFile("bad.txt", "2"),
	})
	if !errors.Is(err, cause) {
		t.Fatalf("error = %v, want %v", err, cause)
	}
	if !canceled.Load() {
		t.Error("sibling pipeline was not canceled")
	}
}

func TestProcessMany_FailureRollsBackCompleted(t *testing.T) {
	cause := errors.New("bad file")
	goodDone := make(chan struct{})
	rec := &recorder{}

	proc := newTestProcessor(
		WithIDGenerator(func() string { return "id" }),
		WithConfig(filevalidator.PartialConfig{MaxFiles: filevalidator.Int(2)}),
		WithPlugins(Plugin{
			Name: "p",
			PostTransform: func(ctx context.Context, pf ProcessedFile) (*ProcessedFile, error) {
				if pf.Metadata.Name == "good.txt" {
					close(goodDone)
					return nil, nil
				}
				select {
				case <-goodDone:
				case <-time.After(5 * time.Second):
				}
				return nil, cause
			},
			OnError: func(_ context.Context, err error, ec ErrorContext) {
				switch {
				case errors.Is(err, ErrBatchAborted):
					if !errors.Is(err, cause) || ec.Processed == nil {
						t.Errorf("rollback of %s: err = %v, processed = %v", ec.File.Name, err, ec.Processed)
					}
					rec.add(ec.File.Name + ":aborted")
				case errors.Is(err, cause):
					rec.add(ec.File.Name + ":failed")
				}
			},
		}),
	)

	results, err := proc.ProcessMany(context.Background(), []*filevalidator.File{
		textFile("good.txt", "1"),
		textFile("bad.txt", "2"),
	})
	if !errors.Is(err, cause) || errors.Is(err, ErrBatchAborted) {
		t.Fatalf("error = %v, want %v", err, cause)
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}

	got := rec.list()
	slices.Sort(got)
	want := []string{"bad.txt:failed", "good.txt:aborted"}
	if !slices.Equal(got, want) {
		t.Errorf("onError calls = %v, want %v", got, want)
	}
}

func TestProcessor_PluginManagement(t *testing.T) {
	proc := newTestProcessor()
	proc.Use(Plugin{Name: "a"}).Use(Plugin{Name: "b"}).Use(Plugin{Name: "a", Version: "2"})

	names := func() []string {
		var out []string
		for _, p := range proc.Plugins() {
			out = append(out, p.Name)
		}
		return out
	}

	if got := names(); !slices.Equal(got, []string{"a", "b", "a"}) {
		t.Errorf("plugins = %v", got)
	}
	if n := proc.RemovePlugin("a"); n != 2 {
		t.Errorf("RemovePlugin(a) = %d, want 2", n)
	}
	if got := names(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("plugins after remove = %v", got)
	}
	if n := proc.RemovePlugin("missing"); n != 0 {
		t.Errorf("RemovePlugin(missing) = %d, want 0", n)
	}
}

func TestProcessor_UpdateConfig(t *testing.T) {
	proc := newTestProcessor(WithConfig(filevalidator.PartialConfig{MaxSize: filevalidator.Int64(2)}))
	before := proc.Validator()

	if _, err := proc.Process(context.Background(), textFile("a.txt", "hello")); !IsValidationFailed(err) {
		t.Fatalf("expected failure with MaxSize 2, got %v", err)
	}

	proc.UpdateConfig(filevalidator.PartialConfig{MaxSize: filevalidator.Int64(100)})

	if _, err := proc.Process(context.Background(), textFile("a.txt", "hello")); err != nil {
		t.Errorf("expected success after update, got %v", err)
	}
	if proc.Validator() == before {
		t.Error("UpdateConfig should install a fresh validator")
	}
	if before.Config().MaxSize != 2 {
		t.Error("old validator must keep its configuration")
	}
	if proc.Config().MaxSize != 100 {
		t.Errorf("Config().MaxSize = %d", proc.Config().MaxSize)
	}
}
