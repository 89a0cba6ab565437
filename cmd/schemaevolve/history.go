package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemaevolve/internal/formatter"
	"github.com/tordrt/schemaevolve/internal/signature"
)

func (a *app) newHistoryCmd() *cobra.Command {
	var showLatest bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the versions recorded by apply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openHistory(cmd)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					a.logger.Warn("failed to close history database", slog.Any("error", err))
				}
			}()

			if showLatest {
				latest, err := store.Latest(cmd.Context())
				if err != nil {
					return err
				}
				p, err := latest.Project()
				if err != nil {
					return err
				}
				return signature.Encode(cmd.OutOrStdout(), p)
			}

			versions, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			formatter.WriteVersions(cmd.OutOrStdout(), versions)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showLatest, "latest", false, "Print the signature of the latest version")
	return cmd
}
