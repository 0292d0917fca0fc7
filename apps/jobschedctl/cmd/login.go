package cmd

import (
	"fmt"
	"os"

	"github.com/quatton/jobsched/pkg/qsdk"
	"github.com/spf13/cobra"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify and store credentials for the gateway",
	Long: `Verify a username and password against the gateway and store the password
in the OS keyring, keyed by user and base URL.

Examples:
	# prompt for the password
	jobschedctl login -u alice

	# non-interactive
	echo "$PASSWORD" | jobschedctl login -u alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Username == "" {
			return fmt.Errorf("username required: pass -u or set username in jobsched.yaml")
		}

		password := loginPassword
		if password == "" {
			password, err = qsdk.ReadPassword(os.Stdin, cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return err
			}
		}

		sdk := qsdk.New(cfg.BaseURL, cfg.Username, password)
		me, err := sdk.Me(cmd.Context())
		if err != nil {
			return sdkError(err)
		}

		if err := qsdk.SavePassword(cfg.BaseURL, cfg.Username, password); err != nil {
			return fmt.Errorf("failed to save credentials to keyring: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s\n", cfg.BaseURL, me.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := getSdk(cmd)
		if err != nil {
			return err
		}
		if err := sdk.ClearCredentials(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the authenticated account",
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := getSdk(cmd)
		if err != nil {
			return err
		}
		me, err := sdk.Me(cmd.Context())
		if err != nil {
			return sdkError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), me.Username)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the gateway is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := getSdk(cmd)
		if err != nil {
			return err
		}
		status, err := sdk.Health(cmd.Context())
		if err != nil {
			return sdkError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), status)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd, meCmd, healthCmd)
}
