package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/challenge"
)

type deployOptions struct {
	provider    string
	autoApprove bool
}

func newDeployCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &deployOptions{}

	cmd := &cobra.Command{
		Use:   "deploy [challenge]",
		Short: "Deploy one challenge, or every challenge of a provider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, rootFlags, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.provider, "provider", "", "Deploy all challenges for one provider (aws, azure, gcp)")
	cmd.Flags().BoolVar(&opts.autoApprove, "auto-approve", false, "Skip terraform's interactive approval")

	return cmd
}

func runDeploy(cmd *cobra.Command, rootFlags *rootFlags, opts *deployOptions, args []string) error {
	if (len(args) == 0) == (opts.provider == "") {
		return fmt.Errorf("specify either a challenge name or --provider")
	}

	app, err := buildAppContext(rootFlags)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if opts.provider != "" {
		provider, err := challenge.ParseProvider(opts.provider)
		if err != nil {
			return err
		}
		result, err := app.Orch.DeployProvider(ctx, provider, opts.autoApprove)
		if err != nil {
			return err
		}
		if len(result.Failed) > 0 {
			return fmt.Errorf("%d of %d deployments failed", len(result.Failed), result.Total)
		}
		return nil
	}

	return app.Orch.Deploy(ctx, args[0], opts.autoApprove)
}
