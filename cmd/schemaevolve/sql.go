package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemaevolve"
)

func (a *app) newSQLCmd() *cobra.Command {
	var (
		outputFile string
		outputDir  string
	)

	cmd := &cobra.Command{
		Use:   "sql OLD NEW",
		Short: "Print the DDL evolving OLD into NEW",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir != "" && outputFile != "" {
				return fmt.Errorf("cannot use both --output-dir and --output flags")
			}

			from, to, err := loadPair(args[0], args[1])
			if err != nil {
				return err
			}
			opts, err := a.options(cmd)
			if err != nil {
				return err
			}
			plan, err := schemaevolve.Plan(from, to, opts)
			if err != nil {
				return err
			}

			out := &schemaevolve.OutputOptions{
				Writer:    cmd.OutOrStdout(),
				OutputDir: outputDir,
				Format:    a.cfg.Format,
			}
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer func() {
					if err := f.Close(); err != nil {
						a.logger.Warn("failed to close output file", slog.Any("error", err))
					}
				}()
				out.Writer = f
			}

			if err := schemaevolve.FormatPlan(plan, out); err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for one file per namespace")
	return cmd
}
