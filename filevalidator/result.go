package filevalidator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Outcome is the result of evaluating one rule against one file.
// Message is empty iff Passed is true.
type Outcome struct {
	Rule     string
	Passed   bool
	FileName string
	Message  string
}

// Err returns the outcome as a *ValidationError, or nil if it passed
func (o Outcome) Err() error {
	if o.Passed {
		return nil
	}
	return &ValidationError{Rule: o.Rule, FileName: o.FileName, Message: o.Message}
}

// FileReport contains every outcome for a single file
type FileReport struct {
	// Valid is true iff no outcome failed
	Valid bool

	// Outcomes holds every evaluated outcome, in rule order
	Outcomes []Outcome

	// Errors is the failing subsequence of Outcomes
	Errors []Outcome

	// File is the validated file
	File *File
}

// Messages returns the failure messages in order
func (r FileReport) Messages() []string {
	return messages(r.Errors)
}

// FailedRules returns the names of the rules that failed
func (r FileReport) FailedRules() []string {
	return lo.Map(r.Errors, func(o Outcome, _ int) string { return o.Rule })
}

// Err returns all failures joined into one error, or nil if valid
func (r FileReport) Err() error {
	return joinErrors(r.Errors)
}

// Summary returns a human-readable summary of the report
func (r FileReport) Summary() string {
	name := ""
	if r.File != nil {
		name = r.File.Name
	}
	if r.Valid {
		return fmt.Sprintf("✓ %s passed %d checks", name, len(r.Outcomes))
	}
	return fmt.Sprintf("✗ %s failed: %s", name, strings.Join(r.Messages(), "; "))
}

// BatchReport aggregates the per-file reports of a batch.
// When the batch exceeds MaxFiles, Files is nil and Errors holds a single
// synthetic maxFiles outcome.
type BatchReport struct {
	Valid  bool
	Errors []Outcome
	Files  []FileReport
}

// Messages returns every failure message across the batch, in order
func (r BatchReport) Messages() []string {
	return messages(r.Errors)
}

// Err returns all failures joined into one error, or nil if valid
func (r BatchReport) Err() error {
	return joinErrors(r.Errors)
}

// InvalidFiles returns the reports of files that failed validation
func (r BatchReport) InvalidFiles() []FileReport {
	return lo.Reject(r.Files, func(fr FileReport, _ int) bool { return fr.Valid })
}

func messages(outcomes []Outcome) []string {
	return lo.Map(outcomes, func(o Outcome, _ int) string { return o.Message })
}

func joinErrors(outcomes []Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	return errors.Join(lo.Map(outcomes, func(o Outcome, _ int) error { return o.Err() })...)
}

// reportBuilder accumulates outcomes for one file
type reportBuilder struct {
	report FileReport
}

func newReportBuilder(file *File, capacity int) *reportBuilder {
	return &reportBuilder{
		report: FileReport{
			Valid:    true, // Assume valid until proven otherwise
			Outcomes: make([]Outcome, 0, capacity),
			Errors:   []Outcome{},
			File:     file,
		},
	}
}

func (b *reportBuilder) add(o Outcome) *reportBuilder {
	b.report.Outcomes = append(b.report.Outcomes, o)
	if !o.Passed {
		b.report.Valid = false
		b.report.Errors = append(b.report.Errors, o)
	}
	return b
}

func (b *reportBuilder) build() FileReport {
	return b.report
}
