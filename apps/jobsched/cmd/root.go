package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jobsched",
	Short: "HTTP gateway to a PBS scheduler",
	Long: `jobsched exposes qsub and qstat over an authenticated JSON API.

Configuration is read from the environment (and .env in development).
Run "jobsched serve" to start the gateway.`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
