package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/quatton/jobsched/pkg/qauth"
	"github.com/quatton/jobsched/pkg/qsdk"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

var userPassword string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API accounts in the database",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create an account or reset its password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFrom(cmd)
		if err != nil {
			return err
		}
		return withDatabase(cmd.Context(), func(ctx context.Context, database *bun.DB) error {
			u, err := qauth.NewDBStore(database).Upsert(ctx, args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved user %s (%s)\n", u.Username, u.ID)
			return nil
		})
	},
}

var userDisableCmd = &cobra.Command{
	Use:   "disable <username>",
	Short: "Reject further requests from an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, database *bun.DB) error {
			if err := qauth.NewDBStore(database).Disable(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Disabled user %s\n", args[0])
			return nil
		})
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <username>",
	Short: "Print an AUTH_USERS entry for the static backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFrom(cmd)
		if err != nil {
			return err
		}
		hash, err := qauth.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\n", args[0], hash)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{userAddCmd, hashPasswordCmd} {
		c.Flags().StringVarP(&userPassword, "password", "p", "", "Password (prompted when omitted)")
	}
	userCmd.AddCommand(userAddCmd, userDisableCmd)
	rootCmd.AddCommand(userCmd, hashPasswordCmd)
}

func passwordFrom(cmd *cobra.Command) (string, error) {
	if userPassword != "" {
		return userPassword, nil
	}
	return qsdk.ReadPassword(os.Stdin, cmd.ErrOrStderr(), "Password: ")
}
