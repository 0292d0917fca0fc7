package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/quatton/jobsched/pkg/qsdk"
	"github.com/spf13/cobra"
)

type contextKey string

const configContextKey contextKey = "jobschedconfig"

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "jobschedctl",
		Short: "CLI for a jobsched gateway (login, qsub, qstat)",
		Long: `jobschedctl submits and inspects PBS jobs through a running jobsched
gateway. Use login to store credentials in the OS keyring, qsub to submit a
JSON job description and qstat to read a job's status.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := qsdk.LoadConfig(cfgFile)
			if err != nil {
				return err
			}

			v := cfg.Viper()
			if err := v.BindPFlag(qsdk.BaseUrlKey, cmd.Flags().Lookup("base-url")); err != nil {
				return err
			}
			if err := v.BindPFlag(qsdk.UsernameKey, cmd.Flags().Lookup("username")); err != nil {
				return err
			}
			if err := v.Unmarshal(cfg); err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configContextKey, cfg)
			cmd.SetContext(ctx)

			return nil
		},
	}
)

// GetConfig retrieves the Config from the command context
func GetConfig(cmd *cobra.Command) (*qsdk.Config, error) {
	cfg, ok := cmd.Context().Value(configContextKey).(*qsdk.Config)
	if !ok {
		return nil, errors.New("no config in context")
	}
	return cfg, nil
}

// getSdk builds a client from the command's config.
func getSdk(cmd *cobra.Command) (*qsdk.Sdk, error) {
	cfg, err := GetConfig(cmd)
	if err != nil {
		return nil, err
	}
	return qsdk.NewSdk(cfg)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML). Searches: jobsched.yaml, .jobsched/config.yaml")
	rootCmd.PersistentFlags().String("base-url", "", "Base URL of the gateway, including APPLICATION_ROOT (overrides config)")
	rootCmd.PersistentFlags().StringP("username", "u", "", "Account name (overrides config)")
}
