package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wesleyorama2/mapsmith/config"
	http "github.com/wesleyorama2/mapsmith/http"
	"github.com/wesleyorama2/mapsmith/internal/log"
	"github.com/wesleyorama2/mapsmith/internal/output"
	"github.com/wesleyorama2/mapsmith/mapper"
)

var version = "0.1.0"

// app carries the state shared by every command of one invocation.
type app struct {
	v        *viper.Viper
	settings *Settings
	logger   *logrus.Logger
	out      io.Writer
	errOut   io.Writer
}

// NewRootCommand builds the mapsmith command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) (*cobra.Command, error) {
	a := &app{
		v:        newViper(),
		settings: &Settings{},
		logger:   log.Discard(),
		out:      out,
		errOut:   errOut,
	}

	root := &cobra.Command{
		Use:     "mapsmith",
		Short:   "Build and call HTTP clients from a resource manifest",
		Version: version,
		Long: `mapsmith reads a manifest describing a remote HTTP API as resources and
methods, builds a client from it, and renders or executes the requests the
client produces.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	if err := a.settings.Bind(a.v, root); err != nil {
		return nil, err
	}

	root.AddCommand(newDescribeCmd(a))
	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newCallCmd(a))
	root.AddCommand(newBenchCmd(a))

	return root, nil
}

// Execute runs the command line and reports the error on stderr.
func Execute() error {
	root, err := NewRootCommand(os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *app) configure() error {
	if err := a.settings.Configure(a.v); err != nil {
		return err
	}

	logger, err := log.New(&a.settings.Log, a.errOut)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// variables merges manifest variables from the settings file with --var.
func (a *app) variables(cmd *cobra.Command) (map[string]string, error) {
	values, err := cmd.Flags().GetStringArray("var")
	if err != nil {
		return nil, err
	}
	flagVars, err := parseVariables(values)
	if err != nil {
		return nil, err
	}
	return config.MergeVariables(a.settings.Vars, flagVars), nil
}

// buildClient loads the manifest and builds a client on the HTTP gateway.
func (a *app) buildClient(cmd *cobra.Command, manifestPath string, extra ...http.ClientOption) (*mapper.Client[*http.Response], error) {
	vars, err := a.variables(cmd)
	if err != nil {
		return nil, err
	}

	manifest, err := config.LoadManifest(manifestPath, vars)
	if err != nil {
		return nil, err
	}
	a.logger.WithFields(logrus.Fields{
		"manifest":  manifestPath,
		"resources": len(manifest.Resources),
	}).Info("manifest loaded")

	settings := a.settings.Client
	options := []http.ClientOption{
		http.WithTimeout(settings.Timeout),
		http.WithHeader("User-Agent", "mapsmith/"+version),
		http.WithLogger(log.ForComponent(a.logger, "gateway")),
	}
	if settings.Insecure {
		options = append(options, http.WithInsecureSkipVerify())
	}
	if settings.BaseURL != "" {
		options = append(options, http.WithBaseURL(settings.BaseURL))
	}
	options = append(options, extra...)

	gateway := http.NewClient(options...)
	builder, err := mapper.NewClientBuilder(manifest, gateway.Factory())
	if err != nil {
		return nil, err
	}

	client, err := builder.Build()
	if err != nil {
		return nil, err
	}
	a.logger.Debug("client built")
	return client, nil
}

// lookup resolves a "Resource.method" target on client.
func lookup[R any](client *mapper.Client[R], target string) (*mapper.Resource[R], string, error) {
	resourceName, methodName, err := parseTarget(target)
	if err != nil {
		return nil, "", err
	}

	resource, ok := client.Resource(resourceName)
	if !ok {
		return nil, "", &mapper.UnknownResourceError{Resource: resourceName}
	}
	if _, ok := resource.Method(methodName); !ok {
		return nil, "", &mapper.UnknownMethodError{Resource: resourceName, Method: methodName}
	}
	return resource, methodName, nil
}

func (a *app) formatter() output.FormatProvider {
	noColor := output.ShouldDisableColor(a.settings.Output.NoColor, a.out)
	return output.GetFormatter(a.settings.Output.Format, a.settings.Output.Verbose, noColor)
}

// print writes s followed by exactly one newline.
func (a *app) print(s string) {
	fmt.Fprint(a.out, strings.TrimSuffix(s, "\n")+"\n")
}
