package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	http "github.com/wesleyorama2/mapsmith/http"
	"github.com/wesleyorama2/mapsmith/internal/output"
	"github.com/wesleyorama2/mapsmith/pkg/jsonpath"
)

func newCallCmd(a *app) *cobra.Command {
	var flags requestFlags
	var extracts []string
	var failOnError bool

	cmd := &cobra.Command{
		Use:   "call MANIFEST Resource.method",
		Short: "Execute a method call and print the response",
		Example: `  mapsmith call api.yaml User.byId -p id=7
  mapsmith call api.yaml User.all -p page=2 -e first='$.users[0].name'
  mapsmith call api.yaml User.create -d @user.json --json --fail`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractPaths, err := parseVariables(extracts)
			if err != nil {
				return err
			}

			client, err := a.buildClient(cmd, args[0])
			if err != nil {
				return err
			}

			resource, methodName, err := lookup(client, args[1])
			if err != nil {
				return err
			}
			method, _ := resource.Method(methodName)

			callArgs, err := flags.args()
			if err != nil {
				return err
			}

			resp, err := method(cmd.Context(), callArgs)
			if err != nil {
				return fmt.Errorf("%s failed: %w", args[1], err)
			}
			a.logger.WithFields(logrus.Fields{
				"target": args[1],
				"status": resp.StatusCode,
			}).Info("call completed")

			extracted, err := extractValues(resp, extractPaths)
			if err != nil {
				return err
			}

			if err := a.printCall(resp, extracted); err != nil {
				return err
			}

			if failOnError && resp.IsError() {
				return fmt.Errorf("%s returned %s", args[1], resp.Status)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringArrayVarP(&extracts, "extract", "e", nil,
		"extract a value from a JSON response as name=$.path (can be used multiple times)")
	cmd.Flags().BoolVar(&failOnError, "fail", false, "exit with an error on 4xx and 5xx responses")

	return cmd
}

// extractValues applies every JSONPath in paths to the response body.
func extractValues(resp *http.Response, paths map[string]string) (map[string]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	body, err := resp.GetBodyAsString()
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	return jsonpath.ExtractAll(body, paths)
}

func (a *app) printCall(resp *http.Response, extracted map[string]string) error {
	formatter := a.formatter()

	if a.settings.Output.Format != output.FormatText {
		request, err := output.NewRequestData(resp.Request)
		if err != nil {
			return err
		}
		response, err := output.NewResponseData(resp, a.settings.Output.Verbose)
		if err != nil {
			return err
		}

		out, err := formatter.FormatValue(output.CallResult{
			Request:   request,
			Response:  response,
			Extracted: extracted,
		})
		if err != nil {
			return err
		}
		a.print(out)
		return nil
	}

	if a.settings.Output.Verbose {
		out, err := formatter.FormatRequest(resp.Request)
		if err != nil {
			return err
		}
		a.print(out)
	}

	out, err := formatter.FormatResponse(resp)
	if err != nil {
		return err
	}
	a.print(out)

	if len(extracted) > 0 {
		out, err := formatter.FormatValues(extracted)
		if err != nil {
			return err
		}
		a.print(out)
	}
	return nil
}
