package main

import (
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/tordrt/schemaevolve"
)

func (a *app) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch OLD NEW",
		Short: "Print the DDL again whenever NEW changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldPath, newPath := args[0], args[1]
			opts, err := a.options(cmd)
			if err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			defer func() { _ = watcher.Close() }()

			if err := watcher.Add(newPath); err != nil {
				return fmt.Errorf("failed to watch file %s: %w", newPath, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			a.render(out, oldPath, newPath, opts)
			a.logger.Info("watching for changes", slog.String("path", newPath))

			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
						_, _ = fmt.Fprintf(out, "\n-- [%s] %s changed\n", time.Now().Format(time.RFC3339), newPath)
						a.render(out, oldPath, newPath, opts)
					}
					// Editors that replace the file drop the watch.
					if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
						_ = watcher.Add(newPath)
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					a.logger.Error("watcher error", slog.Any("error", err))
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
}

// render prints the plan, or logs why there is none. Errors never stop the
// watch loop.
func (a *app) render(w io.Writer, oldPath, newPath string, opts *schemaevolve.Options) {
	if err := a.renderPlan(w, oldPath, newPath, opts); err != nil {
		a.logger.Error("failed to plan evolution", slog.Any("error", err))
	}
}

func (a *app) renderPlan(w io.Writer, oldPath, newPath string, opts *schemaevolve.Options) error {
	from, to, err := loadPair(oldPath, newPath)
	if err != nil {
		return err
	}
	plan, err := schemaevolve.Plan(from, to, opts)
	if err != nil {
		return err
	}
	return schemaevolve.FormatPlan(plan, &schemaevolve.OutputOptions{Writer: w, Format: a.cfg.Format})
}
