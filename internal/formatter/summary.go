package formatter

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tordrt/schemaevolve/internal/evolution"
	"github.com/tordrt/schemaevolve/internal/history"
)

func newSummary(w io.Writer, plan *evolution.Plan) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Namespace", "Mutations", "Statements"})
	for _, ns := range plan.Namespaces() {
		steps := plan.StepsFor(ns)
		stmts := 0
		for _, step := range steps {
			stmts += len(step.SQL)
		}
		t.AppendRow(table.Row{ns, len(steps), stmts})
	}
	t.AppendFooter(table.Row{"Total", len(plan.Steps), len(plan.Statements())})
	return t
}

// WriteSummary renders per-namespace mutation and statement counts.
func WriteSummary(w io.Writer, plan *evolution.Plan) {
	newSummary(w, plan).Render()
}

// WriteVersions renders recorded history versions, newest first.
func WriteVersions(w io.Writer, versions []history.Version) {
	if len(versions) == 0 {
		_, _ = io.WriteString(w, "(no recorded versions)\n")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Version", "Dialect", "Applied", "Steps"})
	for _, v := range versions {
		t.AppendRow(table.Row{v.ID, v.Dialect, v.CreatedAt.Format("2006-01-02 15:04:05"), v.StepCount})
	}
	t.Render()
}
