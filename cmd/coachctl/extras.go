package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/simp-lee/coachsync/internal/app"
)

func newNotificationsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Mark notifications as read",
	}

	read := &cobra.Command{
		Use:   "read <id>",
		Short: "Mark one notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return withState(cmd, opts, func(ctx context.Context, s *app.State) error {
				if err := s.Notifications.MarkAsRead(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Marked notification %s as read\n", id)
				return nil
			})
		},
	}

	readAll := &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd, opts, func(ctx context.Context, s *app.State) error {
				if err := s.Notifications.MarkAllAsRead(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Marked all notifications as read")
				return nil
			})
		},
	}

	cmd.AddCommand(read, readAll)
	return cmd
}

func newReportsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Report statistics",
	}

	var out string
	var filters []string
	export := &cobra.Command{
		Use:   "export",
		Short: "Fetch report statistics and write them as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilters(filters)
			if err != nil {
				return err
			}
			return withState(cmd, opts, func(ctx context.Context, s *app.State) error {
				if _, err := s.Reports.FetchStats(ctx, filter); err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := s.Reports.Export(ctx, &buf); err != nil {
					return err
				}
				if out == "-" {
					_, err := cmd.OutOrStdout().Write(buf.Bytes())
					return err
				}
				if out == "" {
					out = "relatorio-" + time.Now().Format("2006-01-02") + ".json"
				}
				if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
				return nil
			})
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "", `Output file ("-" for stdout; default relatorio-<date>.json)`)
	export.Flags().StringArrayVar(&filters, "filter", nil, "Query filter as key=value (repeatable)")

	cmd.AddCommand(export)
	return cmd
}
