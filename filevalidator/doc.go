// Package filevalidator provides rule-based validation for incoming files.
//
// FileValidator is part of [FileIntake] but can be used as a standalone
// package.
//
// [FileIntake]: https://github.com/gobeaver/fileintake
//
// # Rules
//
// A [Rule] pairs a pure predicate with a message builder. The built-in rules
// run in a fixed order:
//
//   - fileSize: MinSize <= size <= MaxSize
//   - fileType: declared MIME type matches an allowed type or "prefix/*" wildcard
//   - fileExtension: lowercase extension is in the allowed set
//   - fileName: non-empty, shorter than 255 characters, no control characters
//     and none of < > : " | ? *
//
// Every rule runs for every file. Failures are collected into a [FileReport],
// never returned as errors.
//
// # Quick Start
//
// Using the builder API:
//
//	validator := filevalidator.NewBuilder().
//	    MaxSize(10 * filevalidator.MB).
//	    Accept("image/*").
//	    Extensions("jpg", "png", "webp").
//	    Build()
//
//	report := validator.ValidateFile(file)
//	if !report.Valid {
//	    fmt.Println(report.Summary())
//	}
//
// Using presets:
//
//	validator := filevalidator.ForImages().MaxSize(5 * filevalidator.MB).Build()
//
// # Custom Validators
//
// Custom validators are scoped to one exact MIME type and run after the
// built-in rules:
//
//	validator := filevalidator.NewBuilder().
//	    Custom("image/png", func(f *filevalidator.File) (bool, string) {
//	        if !bytes.HasPrefix(f.Bytes(), pngMagic) {
//	            return false, "not a real PNG"
//	        }
//	        return true, ""
//	    }).
//	    Build()
//
// A validator whose type does not equal the file's declared type is skipped
// for that file.
//
// # Batches
//
// [Validator.ValidateFiles] checks the batch size against MaxFiles first. An
// oversized batch yields a single "maxFiles" error and no per-file reports.
//
// # Configuration
//
// [Config] is a fully resolved value. [PartialConfig] carries only the fields
// a caller wants to change; [Resolve] fills the rest from [DefaultConfig] and
// [Validator.UpdateConfig] merges a partial config over the current one.
package filevalidator
