package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose   bool
	configDir string
	basePath  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "ctf-manager",
		Short:         "ctf-manager deploys and tears down HackTheCloud25 cloud challenges",
		Long:          "ctf-manager orchestrates Terraform to deploy, inspect and destroy cloud-security training challenges across AWS, Azure and GCP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flags.configDir, "config-dir", "config", "Directory holding challenges.yaml and credentials.yaml")
	cmd.PersistentFlags().StringVar(&flags.basePath, "base-path", ".", "Base path challenge directories are declared relative to")

	cmd.AddCommand(newListCmd(flags))
	cmd.AddCommand(newStatusCmd(flags))
	cmd.AddCommand(newDeployCmd(flags))
	cmd.AddCommand(newDestroyCmd(flags))
	cmd.AddCommand(newOutputCmd(flags))
	cmd.AddCommand(newPlanCmd(flags))
	cmd.AddCommand(newCleanCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
