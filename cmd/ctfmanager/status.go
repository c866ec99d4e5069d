package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/challenge"
)

type statusOptions struct {
	doctor bool
}

func newStatusCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &statusOptions{}

	cmd := &cobra.Command{
		Use:   "status [challenge]",
		Short: "Show deployment status for one or all challenges",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, rootFlags, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.doctor, "doctor", false, "Also report terraform and credential readiness per provider")

	return cmd
}

func runStatus(cmd *cobra.Command, rootFlags *rootFlags, opts *statusOptions, args []string) error {
	app, err := buildAppContext(rootFlags)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		d, err := app.Registry.Descriptor(args[0])
		if err != nil {
			return err
		}

		status := app.Prober.Status(ctx, d)
		fmt.Fprintf(out, "Challenge: %s\n", d.Name)
		fmt.Fprintf(out, "Provider:  %s\n", strings.ToUpper(string(d.Provider)))
		fmt.Fprintf(out, "Status:    %s\n", formatStatus(status, supportsUnicode(out)))

		check := app.Manager.CheckDeployment(ctx, d)
		fmt.Fprintf(out, "\nDeployment validation:\n")
		fmt.Fprintf(out, "  Initialized:       %t\n", check.Initialized)
		fmt.Fprintf(out, "  State exists:      %t\n", check.StateExists)
		fmt.Fprintf(out, "  Resources:         %d\n", check.ResourceCount)
		fmt.Fprintf(out, "  Outputs available: %t\n", check.OutputsAvailable)
		for _, problem := range check.Problems {
			fmt.Fprintf(out, "  - %s\n", problem)
		}
		return nil
	}

	counts := map[challenge.Status]int{}
	useUnicode := supportsUnicode(out)

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tPROVIDER\tSTATUS")
	for _, d := range app.Registry.All() {
		status := app.Prober.Status(ctx, d)
		counts[status]++
		fmt.Fprintf(writer, "%s\t%s\t%s\n", d.Name, strings.ToUpper(string(d.Provider)), formatStatus(status, useUnicode))
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTotals: %d deployed, %d not deployed, %d unknown\n",
		counts[challenge.StatusDeployed], counts[challenge.StatusNotDeployed], counts[challenge.StatusUnknown])

	if opts.doctor {
		printDoctor(cmd, app)
	}
	return nil
}

func printDoctor(cmd *cobra.Command, app *AppContext) {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	fmt.Fprintf(out, "\nEnvironment readiness:\n")
	for _, provider := range challenge.Providers() {
		readiness := app.Creds.CheckEnvironment(ctx, provider)

		state := "ready"
		if !readiness.Ready {
			state = "not ready"
		}
		fmt.Fprintf(out, "  %s: %s\n", strings.ToUpper(string(provider)), state)
		if readiness.TerraformInstalled {
			fmt.Fprintf(out, "    terraform: %s\n", readiness.TerraformVersion)
		} else {
			fmt.Fprintf(out, "    terraform: not installed\n")
		}
		for _, missing := range readiness.Missing {
			fmt.Fprintf(out, "    missing: %s\n", missing)
		}
		if readiness.AmbientAWSSource != "" {
			fmt.Fprintf(out, "    aws default chain: %s\n", readiness.AmbientAWSSource)
		}
	}
}
