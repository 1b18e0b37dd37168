package cli

import (
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/mapsmith/internal/output"
)

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe MANIFEST",
		Short: "List the resources and methods of a manifest",
		Long: `Load a manifest, build a client from it and list every resource method
with its HTTP verb and URL template.`,
		Example: `  mapsmith describe api.yaml
  mapsmith describe api.yaml --var host=https://staging.example.com -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.buildClient(cmd, args[0])
			if err != nil {
				return err
			}

			out, err := a.formatter().FormatMethods(output.Summarize(client))
			if err != nil {
				return err
			}
			a.print(out)
			return nil
		},
	}
}
