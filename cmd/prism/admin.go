package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var (
	resetEmail    string
	resetPassword string
)

var adminResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Set an admin password, creating the account if needed",
	Long: `Sets the password of the account with the given email. When no such
account exists an admin is created. The password may also be passed in
PRISM_ADMIN_PASSWORD.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := resetPassword
		if password == "" {
			password = os.Getenv("PRISM_ADMIN_PASSWORD")
		}
		if password == "" {
			return errors.New("a password is required (--password or PRISM_ADMIN_PASSWORD)")
		}

		backend, reg, err := openRegistry()
		if err != nil {
			return err
		}
		defer backend.Close()

		created, err := reg.Auth.ResetPassword(cmd.Context(), resetEmail, password)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s\n", resetEmail)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", resetEmail)
		}
		return nil
	},
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, reg, err := openRegistry()
		if err != nil {
			return err
		}
		defer backend.Close()

		users, err := reg.Auth.Users(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tROLE")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Email, u.Role)
		}
		return w.Flush()
	},
}

func init() {
	adminResetCmd.Flags().StringVar(&resetEmail, "email", "", "Account email (required)")
	adminResetCmd.Flags().StringVar(&resetPassword, "password", "", "New password")
	adminResetCmd.MarkFlagRequired("email")

	adminCmd.AddCommand(adminResetCmd)
	adminCmd.AddCommand(adminListCmd)
}
