package filevalidator

import (
	"fmt"
	"strings"
)

// Built-in rule names
const (
	RuleSize      = "fileSize"
	RuleType      = "fileType"
	RuleExtension = "fileExtension"
	RuleName      = "fileName"
	RuleMaxFiles  = "maxFiles"
)

// CheckFunc is a pure predicate evaluated against a file and configuration
type CheckFunc func(file *File, cfg Config) bool

// DescribeFunc builds the failure message. It is only called when the
// matching CheckFunc returned false.
type DescribeFunc func(file *File, cfg Config) string

// Rule pairs a named predicate with a message builder.
// Rules express failure through Outcome.Passed, never through panics or errors.
type Rule struct {
	Name     string
	Check    CheckFunc
	Describe DescribeFunc
}

// NewRule creates a rule. It panics when name is empty or check is nil,
// since that is a programming error rather than a validation failure.
func NewRule(name string, check CheckFunc, describe DescribeFunc) Rule {
	if name == "" {
		panic("filevalidator: rule name must not be empty")
	}
	if check == nil {
		panic(fmt.Sprintf("filevalidator: rule %q has nil check", name))
	}
	if describe == nil {
		describe = func(*File, Config) string {
			return fmt.Sprintf("%s check failed", name)
		}
	}
	return Rule{Name: name, Check: check, Describe: describe}
}

// Evaluate runs the rule against file and cfg
func (r Rule) Evaluate(file *File, cfg Config) Outcome {
	if r.Check(file, cfg) {
		return Outcome{Rule: r.Name, Passed: true, FileName: file.Name}
	}
	return Outcome{Rule: r.Name, Passed: false, FileName: file.Name, Message: r.Describe(file, cfg)}
}

// BuiltinRules returns the built-in rules in evaluation order
func BuiltinRules() []Rule {
	return []Rule{SizeRule(), TypeRule(), ExtensionRule(), NameRule()}
}

// SizeRule passes iff MinSize <= size <= MaxSize
func SizeRule() Rule {
	return NewRule(RuleSize,
		func(f *File, cfg Config) bool {
			return f.Size >= cfg.MinSize && f.Size <= cfg.MaxSize
		},
		func(f *File, cfg Config) string {
			return fmt.Sprintf("file size %s must be between %s and %s",
				FormatSizeReadable(f.Size),
				FormatSizeReadable(cfg.MinSize),
				FormatSizeReadable(cfg.MaxSize),
			)
		},
	)
}

// TypeRule passes iff no types are configured or the declared type matches one
func TypeRule() Rule {
	return NewRule(RuleType,
		func(f *File, cfg Config) bool {
			return len(cfg.AllowedTypes) == 0 || MatchesAnyMIME(cfg.AllowedTypes, f.Type)
		},
		func(f *File, cfg Config) string {
			return fmt.Sprintf("file type %q is not accepted; allowed types: %s",
				f.Type, strings.Join(cfg.AllowedTypes, ", "))
		},
	)
}

// ExtensionRule passes iff no extensions are configured or the file's
// extension is in the set, compared case-insensitively
func ExtensionRule() Rule {
	return NewRule(RuleExtension,
		func(f *File, cfg Config) bool {
			if len(cfg.AllowedExtensions) == 0 {
				return true
			}
			ext := f.Extension()
			for _, allowed := range cfg.AllowedExtensions {
				if normalizeExtension(allowed) == ext {
					return true
				}
			}
			return false
		},
		func(f *File, cfg Config) string {
			ext := f.Extension()
			if ext == "" {
				return fmt.Sprintf("file %q has no extension; allowed extensions: %s",
					f.Name, strings.Join(cfg.AllowedExtensions, ", "))
			}
			return fmt.Sprintf("file extension %q is not allowed; allowed extensions: %s",
				ext, strings.Join(cfg.AllowedExtensions, ", "))
		},
	)
}

// NameRule passes iff filename validation is off or the name is acceptable
func NameRule() Rule {
	return NewRule(RuleName,
		func(f *File, cfg Config) bool {
			return !cfg.ValidateFileName || fileNameProblem(f.Name) == ""
		},
		func(f *File, _ Config) string {
			return fileNameProblem(f.Name)
		},
	)
}
