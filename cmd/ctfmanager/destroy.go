package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/orchestrator"
)

type destroyOptions struct {
	all         bool
	autoApprove bool
}

func newDestroyCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &destroyOptions{}

	cmd := &cobra.Command{
		Use:   "destroy [challenge]",
		Short: "Destroy one challenge, or every deployed challenge",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDestroy(cmd, rootFlags, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.all, "all", false, "Destroy every deployed challenge")
	cmd.Flags().BoolVar(&opts.autoApprove, "auto-approve", false, "Skip confirmation prompts")

	return cmd
}

func runDestroy(cmd *cobra.Command, rootFlags *rootFlags, opts *destroyOptions, args []string) error {
	if (len(args) == 0) == !opts.all {
		return fmt.Errorf("specify either a challenge name or --all")
	}

	app, err := buildAppContext(rootFlags)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if opts.all {
		result, err := app.Orch.DestroyAll(ctx, opts.autoApprove)
		if errors.Is(err, orchestrator.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(result.Failed) > 0 {
			return fmt.Errorf("%d of %d destroys failed", len(result.Failed), result.Total)
		}
		return nil
	}

	return app.Orch.Destroy(ctx, args[0], opts.autoApprove)
}
