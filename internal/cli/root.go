package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/specialistvlad/buildplan/internal/app"
	"github.com/specialistvlad/buildplan/internal/hcl"
	"github.com/spf13/cobra"
)

// DefaultDescription is the description file used when -f is not given.
const DefaultDescription = "build.hcl"

// globalOptions are the flags shared by every command.
type globalOptions struct {
	files           []string
	logLevel        string
	logFormat       string
	incremental     bool
	healthcheckPort int
	timeout         time.Duration
}

func newRootCommand(outW, errW io.Writer) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "buildplan",
		Short: "buildplan turns a declarative Android build description into a deterministic build plan",
		Long: `buildplan reads a build description (HCL), validates it and produces a build plan:
ordered repositories, pinned plugins, uniform compiler options, a relocated
output root, the subproject evaluation order and an idempotent clean action.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf(err)
	})

	flags := root.PersistentFlags()
	flags.StringArrayVarP(&opts.files, "file", "f", []string{DefaultDescription}, "Build description file or directory (repeatable).")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.BoolVar(&opts.incremental, "incremental", false, "Override the incremental compilation policy of the description.")
	flags.IntVar(&opts.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Timeout for each repository lookup (default 15s).")

	root.AddCommand(
		newPlanCommand(opts),
		newOrderCommand(opts),
		newResolveCommand(opts),
		newCleanCommand(opts),
	)
	return root
}

// appConfig translates the flags into a validated app.Config.
func (o *globalOptions) appConfig(cmd *cobra.Command) (*app.Config, error) {
	cfg := app.Config{
		DescriptionPaths: o.files,
		LogLevel:         strings.ToLower(o.logLevel),
		LogFormat:        strings.ToLower(o.logFormat),
		HealthcheckPort:  o.healthcheckPort,
		ProbeTimeout:     o.timeout,
	}
	if cmd.Flags().Changed("incremental") {
		incremental := o.incremental
		cfg.Incremental = &incremental
	}

	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageErrorf(err)
	}
	return validated, nil
}

// withApp builds the application, starts its health check server for the
// duration of fn and tears everything down afterwards. A shutdown failure is
// reported when fn itself succeeded.
func (o *globalOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) (err error) {
	cfg, err := o.appConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a := app.NewApp(cmd.ErrOrStderr(), cfg, hcl.NewLoader())
	if err := a.Start(ctx); err != nil {
		return &commandError{err: err}
	}
	defer func() {
		if cerr := a.Close(ctx); cerr != nil && err == nil {
			err = &commandError{err: cerr}
		}
	}()

	if err := fn(ctx, a); err != nil {
		return &commandError{err: err}
	}
	return nil
}
