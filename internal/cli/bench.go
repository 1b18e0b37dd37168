package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	http "github.com/wesleyorama2/mapsmith/http"
	"github.com/wesleyorama2/mapsmith/internal/bench"
	"github.com/wesleyorama2/mapsmith/internal/log"
)

func newBenchCmd(a *app) *cobra.Command {
	var flags requestFlags
	var config bench.Config
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "bench MANIFEST Resource.method",
		Short: "Call a method repeatedly and report latency and throughput",
		Example: `  mapsmith bench api.yaml User.all -n 1000 -c 20
  mapsmith bench api.yaml User.byId -p id=7 --rate 50 --metrics-file bench.prom`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Target = args[1]
			if err := config.Validate(); err != nil {
				return err
			}

			var extra []http.ClientOption
			var registry *prometheus.Registry
			if metricsFile != "" {
				registry = prometheus.NewRegistry()
				extra = append(extra, http.WithMetrics(http.NewMetricsCollectorWithRegistry(registry)))
			}

			client, err := a.buildClient(cmd, args[0], extra...)
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

			runner, err := bench.NewRunner(config, log.ForComponent(a.logger, "bench"))
			if err != nil {
				return err
			}

			report := runner.Run(cmd.Context(), func(ctx context.Context) (int, error) {
				resp, err := method(ctx, callArgs)
				if err != nil {
					return 0, err
				}
				return resp.StatusCode, nil
			})

			if registry != nil {
				if err := prometheus.WriteToTextfile(metricsFile, registry); err != nil {
					return fmt.Errorf("failed to write metrics file: %w", err)
				}
			}

			out, err := a.formatter().FormatValue(report)
			if err != nil {
				return err
			}
			a.print(out)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&config.Requests, "requests", "n", 100, "total number of calls")
	cmd.Flags().IntVarP(&config.Concurrency, "concurrency", "c", 10, "number of concurrent workers")
	cmd.Flags().Float64Var(&config.Rate, "rate", 0, "maximum calls started per second (0 means unlimited)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics of the run to this file")

	return cmd
}
