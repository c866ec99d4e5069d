package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/challenge"
)

type outputOptions struct {
	format string
}

func newOutputCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &outputOptions{}

	cmd := &cobra.Command{
		Use:   "output <challenge>",
		Short: "Show terraform outputs of a deployed challenge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutput(cmd, rootFlags, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "table", "Output format: table or json")

	return cmd
}

func runOutput(cmd *cobra.Command, rootFlags *rootFlags, opts *outputOptions, name string) error {
	if opts.format != "table" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q (want table or json)", opts.format)
	}

	app, err := buildAppContext(rootFlags)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	d, err := app.Registry.Descriptor(name)
	if err != nil {
		return err
	}

	if status := app.Prober.Status(ctx, d); status != challenge.StatusDeployed {
		return fmt.Errorf("challenge %q is %s; outputs are only available for deployed challenges", d.Name, status)
	}

	outputs, err := app.Manager.Outputs(ctx, d)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(outputs)
	}

	if len(outputs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No outputs defined.")
		return nil
	}

	names := make([]string, 0, len(outputs))
	for n := range outputs {
		names = append(names, n)
	}
	sort.Strings(names)

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "OUTPUT\tVALUE")
	for _, n := range names {
		fmt.Fprintf(writer, "%s\t%v\n", n, outputs[n])
	}
	return writer.Flush()
}
