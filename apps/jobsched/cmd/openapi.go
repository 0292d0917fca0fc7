package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/quatton/jobsched/pkg/qapi"
	"github.com/quatton/jobsched/pkg/qapi/routes"
	"github.com/quatton/jobsched/pkg/qapi/services"
	"github.com/quatton/jobsched/pkg/qlog"
	"github.com/spf13/cobra"
)

var openapiCmd = &cobra.Command{
	Use:     "openapi",
	Aliases: []string{"spec"},
	Short:   "Generate the OpenAPI document",
	Long:    `Outputs the OpenAPI document of the gateway without touching PBS, the database or the cache.`,
	RunE:    generateOpenAPI,
}

var (
	openapiOutput    string
	openapiDowngrade bool
	openapiPrefix    string
)

func init() {
	rootCmd.AddCommand(openapiCmd)
	openapiCmd.Flags().StringVarP(&openapiOutput, "output", "o", "", "Write output to file (default stdout)")
	openapiCmd.Flags().BoolVar(&openapiDowngrade, "downgrade", true, "Downgrade OpenAPI to 3.0 when generating the document")
	openapiCmd.Flags().StringVar(&openapiPrefix, "prefix", "", "Mount routes below this path, as APPLICATION_ROOT does")
}

func generateOpenAPI(cmd *cobra.Command, args []string) error {
	api := qapi.NewApi(qapi.Options{Prefix: openapiPrefix, Quiet: true})
	routes.RegisterAPI(api.Api, services.EmptyServices(), qlog.NewQuiet().Logger)

	var (
		spec []byte
		err  error
	)
	if openapiDowngrade {
		spec, err = api.Api.OpenAPI().Downgrade()
	} else {
		spec, err = json.Marshal(api.Api.OpenAPI())
	}
	if err != nil {
		return fmt.Errorf("failed to generate OpenAPI document: %w", err)
	}

	if openapiOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(spec))
		return nil
	}
	if err := os.WriteFile(openapiOutput, spec, 0644); err != nil {
		return fmt.Errorf("failed to write OpenAPI document to %s: %w", openapiOutput, err)
	}
	return nil
}
