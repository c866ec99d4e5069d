package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPlanCmd(rootFlags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <challenge>",
		Short: "Show the terraform plan for a challenge without applying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, rootFlags, args[0])
		},
	}
}

func runPlan(cmd *cobra.Command, rootFlags *rootFlags, name string) error {
	app, err := buildAppContext(rootFlags)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	d, err := app.Registry.Descriptor(name)
	if err != nil {
		return err
	}

	if _, err := app.Engine.WriteVarsFile(ctx, d); err != nil {
		return err
	}

	plan, err := app.Manager.Plan(ctx, d)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), plan)
	return nil
}
