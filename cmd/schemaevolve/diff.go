package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemaevolve"
	"github.com/tordrt/schemaevolve/internal/mutation"
)

func (a *app) newDiffCmd() *cobra.Command {
	var report bool

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "List the mutations between two signatures",
		Long: `Compare two signature files and list the mutations carrying OLD to NEW,
per namespace. Mutations still waiting for an initial value show
<<USER VALUE REQUIRED>>; provide one with --initial.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := loadPair(args[0], args[1])
			if err != nil {
				return err
			}

			d := schemaevolve.Diff(from, to)
			if d.IsEmpty() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No changes")
				return nil
			}
			if report {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.String())
				return nil
			}

			opts, err := a.options(cmd)
			if err != nil {
				return err
			}
			muts, err := schemaevolve.Mutations(from, to, opts)
			if err != nil {
				return err
			}

			writeEvolution(cmd.OutOrStdout(), muts)
			return nil
		},
	}

	cmd.Flags().BoolVar(&report, "report", false, "Print the property-level difference report instead of mutations")
	return cmd
}

// writeEvolution lists the mutations per namespace, namespaces sorted.
func writeEvolution(w io.Writer, muts map[string][]mutation.Mutation) {
	namespaces := make([]string, 0, len(muts))
	for ns := range muts {
		namespaces = append(namespaces, ns)
	}
	slices.Sort(namespaces)

	for _, ns := range namespaces {
		_, _ = fmt.Fprintf(w, "%s:\n", ns)
		for _, m := range muts[ns] {
			_, _ = fmt.Fprintf(w, "    %s\n", m)
		}
	}
}
