package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Graziano10/referral-admin/client"
)

func (a *app) newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("REFERRAL_PASSWORD")
			}
			profile, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", profile.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (default $REFERRAL_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func (a *app) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the stored session is still accepted",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !a.sess.Authenticated() {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}
			page, err := a.client.ListProfiles(cmd.Context(), client.DefaultProfileQuery())
			switch {
			case client.IsUnauthorized(err):
				fmt.Fprintln(out, "Session expired")
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintf(out, "Logged in at %s (%d profiles)\n", a.client.BaseURL(), page.TotalDocs)
			return nil
		},
	}
}
