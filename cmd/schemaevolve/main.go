package main

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemaevolve"
	"github.com/tordrt/schemaevolve/internal/config"
	"github.com/tordrt/schemaevolve/internal/evolution"
	"github.com/tordrt/schemaevolve/internal/signature"
)

// app carries the state shared by all subcommands.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "schemaevolve",
		Short: "Diff schema signatures and evolve databases",
		Long: `schemaevolve compares two schema signatures, derives the mutations between
them and renders or applies the DDL for PostgreSQL, MySQL or SQLite.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(a.cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			level, err := cfg.Level()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			if cfg.File != "" {
				a.logger.Debug("using config file", slog.String("path", cfg.File))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./schemaevolve.yaml)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("dialect", "", "SQL dialect: postgres, mysql or sqlite (default: postgres)")
	flags.StringP("format", "f", "", "Output format: text or markdown (default: text)")
	flags.String("db-url", "", "Database URL (postgres://, mysql:// or sqlite://)")
	flags.String("history", "", "History database path")
	flags.StringSlice("rename", nil, "Rename hint namespace.Model.old=new (repeatable)")
	flags.StringArray("initial", nil, "Initial value namespace.Model.field=value (repeatable)")

	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"postgres", "mysql", "sqlite"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "markdown"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(a.newDiffCmd())
	rootCmd.AddCommand(a.newSQLCmd())
	rootCmd.AddCommand(a.newApplyCmd())
	rootCmd.AddCommand(a.newHistoryCmd())
	rootCmd.AddCommand(a.newWatchCmd())

	return rootCmd
}

// options builds the planning options from the config and the --initial flags.
func (a *app) options(cmd *cobra.Command) (*schemaevolve.Options, error) {
	opts := &schemaevolve.Options{
		Dialect:  a.cfg.Dialect,
		Renames:  slices.Clone(a.cfg.Renames),
		Initials: make(map[string]any),
		Logger:   a.logger,
	}

	raw := make([]string, 0, len(a.cfg.Initials))
	for ref, value := range a.cfg.Initials {
		raw = append(raw, ref+"="+value)
	}
	flagValues, err := cmd.Flags().GetStringArray("initial")
	if err != nil {
		return nil, err
	}
	raw = append(raw, flagValues...)

	for _, s := range raw {
		ref, value, err := evolution.ParseInitial(s)
		if err != nil {
			return nil, err
		}
		opts.Initials[ref.String()] = value
	}
	return opts, nil
}

func loadPair(oldPath, newPath string) (*signature.Project, *signature.Project, error) {
	from, err := schemaevolve.LoadSignature(oldPath)
	if err != nil {
		return nil, nil, err
	}
	to, err := schemaevolve.LoadSignature(newPath)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
