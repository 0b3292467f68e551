package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simp-lee/coachsync/internal/app"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var filters []string
	cmd := &cobra.Command{
		Use:   "list <domain>",
		Short: "Fetch a page of a domain, e.g. list clients --filter status=1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilters(filters)
			if err != nil {
				return err
			}
			return withState(cmd, opts, func(ctx context.Context, s *app.State) error {
				ops, err := lookup(s, args[0])
				if err != nil {
					return err
				}
				result, err := ops.fetch(ctx, filter)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Query filter as key=value (repeatable)")
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <domain> <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[1])
			if err != nil {
				return err
			}
			return withState(cmd, opts, func(ctx context.Context, s *app.State) error {
				ops, err := lookup(s, args[0])
				if err != nil {
					return err
				}
				item, err := ops.get(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), item)
			})
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <domain> <id>",
		Short: "Delete one item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[1])
			if err != nil {
				return err
			}
			return withState(cmd, opts, func(ctx context.Context, s *app.State) error {
				ops, err := lookup(s, args[0])
				if err != nil {
					return err
				}
				if err := ops.delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", args[0], id)
				return nil
			})
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var filters []string
	cmd := &cobra.Command{
		Use:   "stats <domain>",
		Short: "Show the statistics of a domain, or of the dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilters(filters)
			if err != nil {
				return err
			}
			return withState(cmd, opts, func(ctx context.Context, s *app.State) error {
				if args[0] == "dashboard" {
					stats, err := s.Dashboard.FetchStats(ctx, filter)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), stats)
				}
				ops, err := lookup(s, args[0])
				if err != nil {
					return err
				}
				stats, err := ops.stats(ctx, filter)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Query filter as key=value (repeatable)")
	return cmd
}
