package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type cleanOptions struct {
	state bool
}

func newCleanCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &cleanOptions{}

	cmd := &cobra.Command{
		Use:   "clean <challenge>",
		Short: "Remove terraform working files for a challenge",
		Long:  "Removes the .terraform directory, the dependency lock file and the generated terraform.tfvars. With --state it also deletes local state files, abandoning any deployed resources.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, rootFlags, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.state, "state", false, "Also delete local state files (resources become untracked)")

	return cmd
}

func runClean(cmd *cobra.Command, rootFlags *rootFlags, opts *cleanOptions, name string) error {
	app, err := buildAppContext(rootFlags)
	if err != nil {
		return err
	}

	d, err := app.Registry.Descriptor(name)
	if err != nil {
		return err
	}

	if opts.state {
		fmt.Fprintln(cmd.OutOrStdout(), "Warning: deleting local state; any deployed resources become untracked.")
	}

	if err := app.Manager.Clean(d, opts.state); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleaned terraform working files for %q\n", d.Name)
	return nil
}
