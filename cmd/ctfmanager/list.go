package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/challenge"
)

type listOptions struct {
	provider   string
	difficulty string
	details    bool
}

func newListCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List declared challenges and their deployment status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, rootFlags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.provider, "provider", "", "Only challenges for one provider (aws, azure, gcp)")
	cmd.Flags().StringVar(&opts.difficulty, "difficulty", "", "Only challenges at one difficulty (basic, intermediate, advanced)")
	cmd.Flags().BoolVar(&opts.details, "details", false, "Show paths, tags and validation problems")

	return cmd
}

func runList(cmd *cobra.Command, rootFlags *rootFlags, opts *listOptions) error {
	app, err := buildAppContext(rootFlags)
	if err != nil {
		return err
	}

	descriptors := app.Registry.All()
	if opts.provider != "" {
		provider, err := challenge.ParseProvider(opts.provider)
		if err != nil {
			return err
		}
		descriptors = app.Registry.ByProvider(provider)
	}
	if opts.difficulty != "" {
		filtered := descriptors[:0:0]
		for _, d := range descriptors {
			if string(d.Difficulty) == opts.difficulty {
				filtered = append(filtered, d)
			}
		}
		descriptors = filtered
	}

	if len(descriptors) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No challenges match the given filters.")
		return nil
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tPROVIDER\tDIFFICULTY\tSTATUS\tDESCRIPTION")

	useUnicode := supportsUnicode(cmd.OutOrStdout())
	ctx := cmd.Context()

	for _, d := range descriptors {
		status := app.Prober.Status(ctx, d)
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			d.Name,
			strings.ToUpper(string(d.Provider)),
			valueOrFallback(string(d.Difficulty), "-"),
			formatStatus(status, useUnicode),
			valueOrFallback(d.Description, "-"),
		)
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	if !opts.details {
		return nil
	}

	for _, d := range descriptors {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", d.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "  Directory: %s\n", d.Dir)
		fmt.Fprintf(cmd.OutOrStdout(), "  Backend:   %s\n", d.BackendConfigPath)
		if len(d.Tags) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "  Tags:      %s\n", strings.Join(d.Tags, ", "))
		}
		if problems := d.Validate(); len(problems) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "  Problems:  %s\n", strings.Join(problems, "; "))
		}
	}
	return nil
}

func supportsUnicode(writer any) bool {
	if file, ok := writer.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

func formatStatus(status challenge.Status, useUnicode bool) string {
	if useUnicode {
		style := lipgloss.NewStyle().Foreground(status.Color())
		return fmt.Sprintf("%s %s", status.Icon(), style.Render(status.String()))
	}
	return fmt.Sprintf("%s %s", status.IconFallback(), status.String())
}

func valueOrFallback(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
