package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simp-lee/coachsync/internal/app"
	"github.com/simp-lee/coachsync/internal/domain"
)

// passwordEnv is read when --password is not given.
const passwordEnv = "COACHCTL_PASSWORD"

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if password == "" {
				return errors.New("--password or " + passwordEnv + " is required")
			}
			return withState(cmd, opts, func(ctx context.Context, s *app.State) error {
				if _, err := s.Auth.Login(ctx, email, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (or set "+passwordEnv+")")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd, opts, func(ctx context.Context, s *app.State) error {
				if err := s.Auth.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the claims of the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd, opts, func(ctx context.Context, s *app.State) error {
				claims, err := s.Session.Claims(ctx)
				if domain.IsUnauthorized(err) {
					fmt.Fprintln(cmd.OutOrStdout(), domain.ErrorMessage(err, domain.MsgNotAuthenticated))
					return nil
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), claims)
			})
		},
	}
}
