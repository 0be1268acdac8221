// =============================================================================
// Back-office Extract - Issue Reporting
// =============================================================================
//
// This module collects everything that did not go through cleanly so it can
// be followed up by hand:
//   - Skipped blocks, windows and rows inside a document
//   - Catalog conflicts and duplicate products
//   - Documents no supplier matched, categories without a page range
//   - Input files that could not be read at all
//
// SEVERITIES:
//   - skip:    one record was left out, the document was still processed
//   - warning: the run continued but the result needs a look
//   - fatal:   a document or input file was not processed at all
//
// Issues are collected, never thrown. Every issue carries enough context
// (document, code, category) to find the source by hand.
//
// =============================================================================

package report

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// ISSUE TYPES
// =============================================================================

// Severity grades an issue.
type Severity string

const (
	SeveritySkip    Severity = "skip"
	SeverityWarning Severity = "warning"
	SeverityFatal   Severity = "fatal"
)

// Kind classifies where an issue came from.
type Kind string

const (
	// KindStructural is a block or line that does not fit a grammar.
	KindStructural Kind = "structural"

	// KindCatalog is a duplicate or conflicting reference entry.
	KindCatalog Kind = "catalog"

	// KindClassification is a document or category that could not be
	// assigned.
	KindClassification Kind = "classification"

	// KindInput is a missing or unreadable input.
	KindInput Kind = "input"

	// KindUnmatched is a scanned barcode without a product.
	KindUnmatched Kind = "unmatched"
)

// Issue is a single reported problem.
type Issue struct {
	Severity Severity
	Kind     Kind

	// Document is the input file name, when known.
	Document string

	// Code is the product code or barcode involved, when known.
	Code string

	// Category is the promo category involved, when known.
	Category string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (i *Issue) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(string(i.Severity)), i.Kind)
	if i.Document != "" {
		fmt.Fprintf(&b, ", document '%s'", i.Document)
	}
	if i.Category != "" {
		fmt.Fprintf(&b, ", category '%s'", i.Category)
	}
	if i.Code != "" {
		fmt.Fprintf(&b, ", code '%s'", i.Code)
	}
	fmt.Fprintf(&b, ": %s", i.Message)
	return b.String()
}

// =============================================================================
// COLLECTOR
// =============================================================================

// Summary counts issues per severity.
type Summary struct {
	Skips    int
	Warnings int
	Fatals   int
}

// Total returns the number of issues.
func (s Summary) Total() int {
	return s.Skips + s.Warnings + s.Fatals
}

// Collector accumulates issues in the order they are reported and logs each
// one as it arrives.
type Collector struct {
	issues []*Issue
	logger *zap.Logger
}

// NewCollector creates an empty collector.
func NewCollector(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger}
}

// Add records an issue.
func (c *Collector) Add(issue Issue) {
	c.issues = append(c.issues, &issue)

	fields := []zap.Field{zap.String("kind", string(issue.Kind))}
	if issue.Document != "" {
		fields = append(fields, zap.String("document", issue.Document))
	}
	if issue.Category != "" {
		fields = append(fields, zap.String("category", issue.Category))
	}
	if issue.Code != "" {
		fields = append(fields, zap.String("code", issue.Code))
	}

	switch issue.Severity {
	case SeverityFatal:
		c.logger.Error(issue.Message, fields...)
	case SeverityWarning:
		c.logger.Warn(issue.Message, fields...)
	default:
		c.logger.Debug(issue.Message, fields...)
	}
}

// Skip records a skipped record.
func (c *Collector) Skip(kind Kind, document, code, message string) {
	c.Add(Issue{Severity: SeveritySkip, Kind: kind, Document: document, Code: code, Message: message})
}

// Warn records a warning.
func (c *Collector) Warn(kind Kind, document, message string) {
	c.Add(Issue{Severity: SeverityWarning, Kind: kind, Document: document, Message: message})
}

// Fatal records an input that could not be processed.
func (c *Collector) Fatal(kind Kind, document string, err error) {
	c.Add(Issue{Severity: SeverityFatal, Kind: kind, Document: document, Message: err.Error()})
}

// Issues returns the collected issues.
func (c *Collector) Issues() []*Issue {
	return c.issues
}

// Summary counts the collected issues per severity.
func (c *Collector) Summary() Summary {
	var s Summary
	for _, i := range c.issues {
		switch i.Severity {
		case SeverityFatal:
			s.Fatals++
		case SeverityWarning:
			s.Warnings++
		default:
			s.Skips++
		}
	}
	return s
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatIssues formats issues for display or logging.
//
// PARAMETERS:
//   - issues: The issues to format.
//
// RETURNS:
//   - A formatted string containing all issues.
func FormatIssues(issues []*Issue) string {
	if len(issues) == 0 {
		return "No issues."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Run completed with %d issue(s):\n\n", len(issues)))

	for i, issue := range issues {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, issue.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes issues to a log file.
//
// PARAMETERS:
//   - issues: The issues to write.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(issues []*Issue, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "Issue Log - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(writer, "%s\n\n", strings.Repeat("=", 80))
	writer.WriteString(FormatIssues(issues))

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
