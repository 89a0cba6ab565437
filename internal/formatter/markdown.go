package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/schemaevolve/internal/evolution"
)

// MarkdownFormatter formats a plan as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the plan in markdown format
func (f *MarkdownFormatter) Format(plan *evolution.Plan) error {
	_, _ = fmt.Fprintf(f.writer, "# Evolution Plan (%s)\n\n", plan.Dialect)

	if plan.Empty() {
		_, _ = fmt.Fprintln(f.writer, "No changes.")
		return nil
	}

	newSummary(f.writer, plan).RenderMarkdown()
	_, _ = fmt.Fprintln(f.writer)

	for _, ns := range plan.Namespaces() {
		_, _ = fmt.Fprintf(f.writer, "## %s\n\n", ns)
		f.FormatSteps(plan.StepsFor(ns))
	}
	return nil
}

// FormatSteps writes a numbered section per step (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatSteps(steps []evolution.Step) {
	for i, step := range steps {
		_, _ = fmt.Fprintf(f.writer, "### %d. `%s`\n\n", i+1, step.Mutation)
		if len(step.SQL) == 0 {
			_, _ = fmt.Fprintln(f.writer, "No statements.")
			_, _ = fmt.Fprintln(f.writer)
			continue
		}
		_, _ = fmt.Fprintln(f.writer, "```sql")
		for _, stmt := range step.SQL {
			_, _ = fmt.Fprintln(f.writer, stmt)
		}
		_, _ = fmt.Fprintln(f.writer, "```")
		_, _ = fmt.Fprintln(f.writer)
	}
}
