package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var qsubCmd = &cobra.Command{
	Use:   "qsub [file]",
	Short: "Submit a JSON job description",
	Long: `Submit a job. The description is read from file, or from stdin when file
is omitted or "-". Public field names and PBS attribute names are both
accepted.

Example:
	echo '{"name":"hello","queue":"workq","submit_args":"-- /bin/hostname"}' | jobschedctl qsub`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := readSubmission(cmd, args)
		if err != nil {
			return err
		}
		sdk, err := getSdk(cmd)
		if err != nil {
			return err
		}
		id, err := sdk.Submit(cmd.Context(), body)
		if err != nil {
			return sdkError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var qstatCmd = &cobra.Command{
	Use:   "qstat <job_id>",
	Short: "Print the status of a job as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := getSdk(cmd)
		if err != nil {
			return err
		}
		st, err := sdk.Stat(cmd.Context(), args[0])
		if err != nil {
			return sdkError(err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	},
}

func init() {
	rootCmd.AddCommand(qsubCmd, qstatCmd)
}

func readSubmission(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}
