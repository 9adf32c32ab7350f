// Package fileintake accepts files, validates them and runs them through an
// ordered plugin hook pipeline that produces a [ProcessedFile] with metadata.
//
// Validation rules live in the filevalidator package. This package adds the
// [Processor], which owns a validator plus a list of [Plugin] values.
//
// # Pipeline
//
// [Processor.Process] runs these stages for one file:
//
//  1. PreValidation hooks, in registration order
//  2. Validation against the current configuration
//  3. PostValidation hooks
//  4. Rejection with a [*ValidationFailedError] if any rule failed
//  5. PreTransform hooks; each may replace the content seen by the next
//  6. Metadata extraction; the id is assigned here
//  7. PostTransform hooks; each may replace the ProcessedFile seen by the next
//
// Any error leaving Process is first passed to every OnError hook. OnError
// observes; it cannot suppress the error.
//
// # Basic Usage
//
//	proc := fileintake.New(
//	    fileintake.WithConfig(filevalidator.PartialConfig{
//	        MaxSize:           filevalidator.Int64(5 * filevalidator.MB),
//	        AllowedTypes:      []string{"image/*"},
//	        MaxFiles:          filevalidator.Int(10),
//	    }),
//	    fileintake.WithLogger(slog.Default()),
//	)
//
//	pf, err := proc.Process(ctx, file)
//	if fileintake.IsValidationFailed(err) {
//	    // report to the user
//	}
//
// # Plugins
//
// A plugin is a struct with optional hook fields. Keys a plugin adds to
// [Metadata.Extensions] must be listed in MetadataKeys:
//
//	proc.Use(fileintake.Plugin{
//	    Name:         "watermark",
//	    MetadataKeys: []string{"watermarked"},
//	    PostTransform: func(ctx context.Context, pf fileintake.ProcessedFile) (*fileintake.ProcessedFile, error) {
//	        out := pf.WithExtension("watermarked", fileintake.BoolValue(true))
//	        return &out, nil
//	    },
//	})
//
// # Batches
//
// [Processor.ProcessMany] validates the batch size first, then processes
// every file concurrently and returns results in input order. If any file
// fails, the files that already finished are handed to OnError with
// [ErrBatchAborted] and no results are returned.
//
// # Configuration
//
// [Config] is loaded from environment variables with beaver-kit/config:
//
//	BEAVER_INTAKE_MAX_FILE_SIZE=5242880
//	BEAVER_INTAKE_ALLOWED_MIME_TYPES=image/jpeg,image/png
//	BEAVER_INTAKE_MAX_FILES=10
//
// Use [WithPrefix] for a different prefix, and [Init] / [Default] for a
// package-level processor.
package fileintake
