package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tordrt/schemaevolve/internal/evolution"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
)

// Formatter renders a plan to a single stream.
type Formatter interface {
	Format(plan *evolution.Plan) error
}

// New returns the formatter for format ("text" or "markdown").
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case formatText:
		return NewTextFormatter(w), nil
	case formatMarkdown:
		return NewMarkdownFormatter(w), nil
	default:
		return nil, fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", format)
	}
}

// MultiFileFormatter writes a plan to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes an overview file plus one file per namespace
func (f *MultiFileFormatter) Format(plan *evolution.Plan) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(plan); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, ns := range plan.Namespaces() {
		if err := f.writeNamespaceFile(ns, plan.StepsFor(ns)); err != nil {
			return fmt.Errorf("failed to write namespace file for %s: %w", ns, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeOverview(plan *evolution.Plan) error {
	file, err := os.Create(filepath.Join(f.OutputDir, "_overview"+f.getFileExtension()))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == formatMarkdown {
		_, _ = fmt.Fprintf(file, "# Evolution Overview (%s)\n\n", plan.Dialect)
		_, _ = fmt.Fprintf(file, "Each namespace has a corresponding file: `<namespace>%s`\n\n", f.getFileExtension())
		newSummary(file, plan).RenderMarkdown()
		return nil
	}

	_, _ = fmt.Fprintf(file, "EVOLUTION OVERVIEW (%s)\n", plan.Dialect)
	_, _ = fmt.Fprintf(file, "Each namespace has a file: <namespace>%s\n\n", f.getFileExtension())
	WriteSummary(file, plan)
	return nil
}

func (f *MultiFileFormatter) writeNamespaceFile(ns string, steps []evolution.Step) error {
	file, err := os.Create(filepath.Join(f.OutputDir, fileName(ns)+f.getFileExtension()))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == formatMarkdown {
		_, _ = fmt.Fprintf(file, "## %s\n\n", ns)
		NewMarkdownFormatter(file).FormatSteps(steps)
		return nil
	}
	NewTextFormatter(file).formatNamespace(ns, steps)
	return nil
}

// fileName makes a namespace usable as a file name.
func fileName(ns string) string {
	return strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(ns)
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".sql"
}
