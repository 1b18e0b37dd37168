package cli

import (
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/mapsmith/mapper"
)

func newRenderCmd(a *app) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "render MANIFEST Resource.method",
		Short: "Show the request a method call would send without sending it",
		Example: `  mapsmith render api.yaml User.byId -p id=7
  mapsmith render api.yaml User.create -d '{"name":"Ann"}' --json -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.buildClient(cmd, args[0])
			if err != nil {
				return err
			}

			resource, method, err := lookup(client, args[1])
			if err != nil {
				return err
			}
			descriptor, _ := resource.Descriptor(method)

			callArgs, err := flags.args()
			if err != nil {
				return err
			}

			out, err := a.formatter().FormatRequest(mapper.NewRequest(descriptor, callArgs))
			if err != nil {
				return err
			}
			a.print(out)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}
