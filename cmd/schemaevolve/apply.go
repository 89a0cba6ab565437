package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemaevolve"
	"github.com/tordrt/schemaevolve/internal/formatter"
	"github.com/tordrt/schemaevolve/internal/history"
	"github.com/tordrt/schemaevolve/internal/signature"
)

func (a *app) newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply [OLD] NEW",
		Short: "Evolve the database to NEW and record it in the history",
		Long: `Plan the evolution from OLD to NEW, verify it and execute it against
--db-url. Without OLD the latest recorded version of the history database is
the base, or an empty signature when nothing was recorded yet. The SQL dialect
always follows the database.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if a.cfg.DatabaseURL == "" {
				return fmt.Errorf("--db-url (or database_url in the config) must be specified")
			}

			store, err := a.openHistory(cmd)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					a.logger.Warn("failed to close history database", slog.Any("error", err))
				}
			}()

			var from *signature.Project
			if len(args) == 2 {
				from, err = schemaevolve.LoadSignature(args[0])
				if err != nil {
					return err
				}
			} else {
				latest, err := store.Latest(ctx)
				switch {
				case errors.Is(err, history.ErrNoHistory):
					from = signature.NewProject()
				case err != nil:
					return err
				default:
					a.logger.Info("using latest recorded version", slog.String("version", latest.ID))
					if from, err = latest.Project(); err != nil {
						return fmt.Errorf("failed to decode recorded signature: %w", err)
					}
				}
			}
			to, err := schemaevolve.LoadSignature(args[len(args)-1])
			if err != nil {
				return err
			}

			opts, err := a.options(cmd)
			if err != nil {
				return err
			}
			opts.Dialect = ""

			plan, err := schemaevolve.Evolve(ctx, a.cfg.DatabaseURL, from, to, opts)
			if err != nil {
				return err
			}
			if plan.Empty() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No changes")
				return nil
			}

			version, err := store.Record(ctx, to, plan)
			if err != nil {
				return err
			}
			formatter.WriteSummary(cmd.OutOrStdout(), plan)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Recorded version %s\n", version.ID)
			return nil
		},
	}
}

func (a *app) openHistory(cmd *cobra.Command) (*history.Store, error) {
	if a.cfg.History != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(a.cfg.History), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	return history.Open(cmd.Context(), a.cfg.History, a.logger)
}
