package filevalidator

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Validator evaluates files against an ordered rule set and a resolved
// configuration. It is safe for concurrent use.
type Validator struct {
	mu    sync.RWMutex
	cfg   Config
	rules []Rule
}

// New creates a new validator for a resolved configuration
func New(cfg Config) *Validator {
	return &Validator{
		cfg:   cfg.clone(),
		rules: BuiltinRules(),
	}
}

// NewDefault creates a new validator with the default configuration
func NewDefault() *Validator {
	return New(DefaultConfig())
}

// NewFromPartial resolves p against the defaults and creates a validator
func NewFromPartial(p PartialConfig) *Validator {
	return New(Resolve(p))
}

// Config returns the current resolved configuration
func (v *Validator) Config() Config {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cfg.clone()
}

// Rules returns the built-in rules in evaluation order
func (v *Validator) Rules() []Rule {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.rules)
}

// UpdateConfig merges p over the current configuration. The rule set is
// rebuilt against the new configuration; reports already returned are not
// affected.
func (v *Validator) UpdateConfig(p PartialConfig) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cfg = v.cfg.Merge(p)
	v.rules = BuiltinRules()
}

func (v *Validator) snapshot() (Config, []Rule) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cfg, v.rules
}

// ValidateFile runs every built-in rule, then every applicable custom
// validator, against file. All outcomes are collected; nothing short-circuits.
func (v *Validator) ValidateFile(file *File) FileReport {
	cfg, rules := v.snapshot()
	return validateFile(file, cfg, rules)
}

func validateFile(file *File, cfg Config, rules []Rule) FileReport {
	b := newReportBuilder(file, len(rules)+len(cfg.CustomValidators))
	for _, rule := range rules {
		b.add(rule.Evaluate(file, cfg))
	}
	for _, custom := range cfg.CustomValidators {
		if !custom.Applies(file) {
			continue
		}
		b.add(custom.evaluate(file))
	}
	return b.build()
}

// ValidateFiles validates a batch. When len(files) exceeds MaxFiles the
// batch is rejected with a single synthetic error and no file is validated.
func (v *Validator) ValidateFiles(files []*File) BatchReport {
	cfg, rules := v.snapshot()

	if len(files) > cfg.MaxFiles {
		return BatchReport{
			Valid: false,
			Errors: []Outcome{{
				Rule:    RuleMaxFiles,
				Passed:  false,
				Message: fmt.Sprintf("too many files: maximum is %d, got %d", cfg.MaxFiles, len(files)),
			}},
		}
	}

	reports := lo.Map(files, func(f *File, _ int) FileReport {
		return validateFile(f, cfg, rules)
	})

	return BatchReport{
		Valid:  lo.EveryBy(reports, func(r FileReport) bool { return r.Valid }),
		Errors: lo.FlatMap(reports, func(r FileReport, _ int) []Outcome { return r.Errors }),
		Files:  reports,
	}
}
