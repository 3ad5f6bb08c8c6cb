package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/buildplan/internal/app"
	"github.com/specialistvlad/buildplan/internal/lockfile"
	"github.com/specialistvlad/buildplan/internal/plan"
	"github.com/spf13/cobra"
)

func newPlanCommand(opts *globalOptions) *cobra.Command {
	var (
		format  string
		watchIt bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Resolve the description into a build plan and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(lockfile.Formats, format) {
				return usageErrorf(fmt.Errorf("invalid format %q: must be one of %v", format, lockfile.Formats))
			}
			out := cmd.OutOrStdout()

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if !watchIt {
					p, err := a.Plan(ctx)
					if err != nil {
						return err
					}
					return lockfile.RenderPlan(out, p, format)
				}

				return a.Watch(ctx, func(p *plan.Plan, err error) {
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "plan failed: %v\n", err)
						return
					}
					if format == lockfile.FormatYAML {
						fmt.Fprintln(out, "---")
					}
					if err := lockfile.RenderPlan(out, p, format); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "render failed: %v\n", err)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", lockfile.FormatYAML, "Output format. Options: 'yaml' or 'json'.")
	cmd.Flags().BoolVar(&watchIt, "watch", false, "Re-plan whenever the description changes.")
	return cmd
}

func newOrderCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "order",
		Short: "Print the subproject evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				order, err := a.Order(ctx)
				if err != nil {
					return err
				}
				for _, name := range order {
					fmt.Fprintf(cmd.OutOrStdout(), ":%s\n", name)
				}
				return nil
			})
		},
	}
}

func newResolveCommand(opts *globalOptions) *cobra.Command {
	var lockPath string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve plugins and dependencies against the ordered repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				lf, changes, err := a.Resolve(ctx, lockPath)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, e := range lf.Plugins {
					fmt.Fprintf(out, "plugin     %s:%s from %s\n", e.Module, e.Version, e.Repository)
				}
				for _, e := range lf.Dependencies {
					fmt.Fprintf(out, "dependency %s:%s from %s\n", e.Module, e.Version, e.Repository)
				}
				for _, c := range changes {
					fmt.Fprintln(out, c)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&lockPath, "lockfile", "", "Write the resolved artifacts to this lockfile.")
	return cmd
}

func newCleanCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Delete the relocated output root (safe to repeat)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				root, err := a.Clean(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleaned %s\n", root)
				return nil
			})
		},
	}
}
