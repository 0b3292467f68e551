package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/simp-lee/coachsync/internal/app"
	"github.com/simp-lee/coachsync/internal/config"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "coachctl",
		Short:         "coachctl manages clients, diets and workouts on the coaching API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at the configured level instead of errors only")

	cmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newListCmd(opts),
		newGetCmd(opts),
		newDeleteCmd(opts),
		newStatsCmd(opts),
		newNotificationsCmd(opts),
		newReportsCmd(opts),
	)
	return cmd
}

// withState loads the configuration, opens the session database and runs fn
// with a fully wired application state.
func withState(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, s *app.State) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if !opts.verbose {
		cfg.Log.Level = "error"
	}

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() {
		if err := log.Close(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "logger close error:", err)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := config.SetupDatabase(ctx, &cfg.Database, log.Logger)
	if err != nil {
		return fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error("database close error", slog.Any("error", err))
			}
		}
	}()

	state, err := app.NewState(ctx, cfg, db, log.Logger, nil)
	if err != nil {
		return err
	}
	return fn(ctx, state)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
