package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/schemaevolve/internal/evolution"
)

// TextFormatter formats a plan as an SQL script with comment headers
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the plan as a runnable script
func (f *TextFormatter) Format(plan *evolution.Plan) error {
	if plan.Empty() {
		_, _ = fmt.Fprintln(f.writer, "-- No changes")
		return nil
	}

	for i, ns := range plan.Namespaces() {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between namespaces
		}
		f.formatNamespace(ns, plan.StepsFor(ns))
	}
	return nil
}

func (f *TextFormatter) formatNamespace(ns string, steps []evolution.Step) {
	_, _ = fmt.Fprintf(f.writer, "-- NAMESPACE %s\n", ns)
	for _, step := range steps {
		_, _ = fmt.Fprintf(f.writer, "-- %s\n", step.Mutation)
		if len(step.SQL) == 0 {
			_, _ = fmt.Fprintln(f.writer, "--   (no statements)")
		}
		for _, stmt := range step.SQL {
			_, _ = fmt.Fprintln(f.writer, stmt)
		}
	}
}
