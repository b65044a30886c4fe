// Package cmd wires the CLI surface: one root command whose step flags
// and interactive menu both dispatch through the installer's ordered step
// table.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"setup-station/internal/config"
	"setup-station/internal/distro"
	"setup-station/internal/installer"
	"setup-station/internal/logger"
	"setup-station/internal/state"
)

// options holds the parsed flag values for one invocation.
type options struct {
	debug          bool
	configPath     string
	nonInteractive bool
	all            bool
	selected       map[string]*bool // step name -> flag value
}

// runFunc executes the resolved step names; injected so tests can parse
// flags without provisioning anything.
type runFunc func(names []string, opts *options) error

// newRootCmd builds the root command. One boolean flag per step, in step
// order, plus --all, --non-interactive, --debug and --config.
func newRootCmd(run runFunc) *cobra.Command {
	opts := &options{selected: make(map[string]*bool)}

	root := &cobra.Command{
		Use:   "setup-station",
		Short: "Provision a Linux developer workstation",
		Long: `setup-station detects the distribution's package manager and runs a
fixed menu of idempotent setup steps: system update, tool installation,
shell and editor setup, font installation, dotfile synchronization and
repository cloning.

With no step flags it opens an interactive numbered menu.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(opts.debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected arguments: %v\n\n%s", args, cmd.UsageString())
			}
			names := selectedSteps(opts)
			if len(names) == 0 && opts.nonInteractive {
				return fmt.Errorf("no steps selected: pass step flags (e.g. --all) with --non-interactive\n\n%s", cmd.UsageString())
			}
			return run(names, opts)
		},
	}

	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	root.Flags().StringVar(&opts.configPath, "config", "", "Path to configuration file")
	root.Flags().BoolVarP(&opts.all, "all", "a", false, "Run every step in order")
	root.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Never prompt; step flags are required")

	for _, step := range installer.Steps() {
		v := new(bool)
		opts.selected[step.Name] = v
		root.Flags().BoolVarP(v, step.Flag, step.Shorthand, false, step.Summary)
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%v\n\n%s", err, cmd.UsageString())
	})

	return root
}

// selectedSteps returns the step names picked by flags, in the canonical
// execution order regardless of flag order on the command line. --all
// selects everything.
func selectedSteps(opts *options) []string {
	if opts.all {
		return installer.Names()
	}
	var names []string
	for _, name := range installer.Names() {
		if v := opts.selected[name]; v != nil && *v {
			names = append(names, name)
		}
	}
	return names
}

// Execute parses flags and runs the selected steps, returning the process
// exit code: 0 on success or help, 1 on any error.
func Execute() int {
	root := newRootCmd(provision)
	if err := root.Execute(); err != nil {
		logger.Init(false)
		logger.Error("[ERROR] %v\n", err)
		return 1
	}
	return 0
}

// provision is the production runFunc: detect the distribution, load
// config and state, then dispatch the steps (or the menu when none were
// selected).
func provision(names []string, opts *options) error {
	profile, err := distro.Detect()
	if err != nil {
		return err
	}
	logger.Info("[INFO] Detected %s (%s family, installs via %s)\n",
		profile.Name, profile.Family, profile.Install[0])

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	statePath := state.DefaultPath()
	st := state.Load(statePath)

	ctx := installer.NewContext(profile, cfg, st)
	if err := installer.CheckPrerequisites(ctx.Runner); err != nil {
		return err
	}

	// State is written even when a step fails partway: completed
	// downloads stay recorded so the next run resumes past them.
	defer state.Save(statePath, st)

	if len(names) == 0 {
		return runMenu(ctx, os.Stdin, os.Stdout)
	}

	toRun, err := installer.Resolve(names)
	if err != nil {
		return err
	}
	return installer.RunSteps(ctx, toRun)
}
