package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/challenge"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/execx"
)

// prepTimeout bounds each preparation script run.
const prepTimeout = 300 * time.Second

// prepScriptNames lists the recognized preparation scripts in execution
// order. Only these names are picked up; anything else in the challenge
// directory is ignored.
var prepScriptNames = []string{
	"install_dependencies.sh",
	"setup.sh",
	"prepare.sh",
	"build.sh",
}

func detectPreparationScripts(d *challenge.Descriptor) []string {
	var scripts []string
	for _, name := range prepScriptNames {
		info, err := os.Stat(filepath.Join(d.Dir, name))
		if err == nil && info.Mode().IsRegular() {
			scripts = append(scripts, name)
		}
	}
	return scripts
}

// runPreparationScripts detects, confirms and executes the challenge's
// preparation scripts. A declined script is skipped with a warning; a
// failed script aborts the deployment.
func (o *Orchestrator) runPreparationScripts(ctx context.Context, d *challenge.Descriptor) error {
	for _, name := range detectPreparationScripts(d) {
		if !o.confirmPreparationScript(name) {
			fmt.Fprintf(o.out, "Skipping preparation script: %s\n", name)
			o.log.WithFields(map[string]any{"challenge": d.Name, "script": name}).Warn("preparation script skipped by operator")
			continue
		}

		fmt.Fprintf(o.out, "\nExecuting preparation script: %s\n", name)
		if err := o.runPreparationScript(ctx, d, name); err != nil {
			return err
		}
		fmt.Fprintf(o.out, "Preparation script %s completed successfully\n", name)
	}
	return nil
}

// confirmPreparationScript prompts the operator; empty input means yes.
// Unreadable input counts as a declinature, not an error.
func (o *Orchestrator) confirmPreparationScript(name string) bool {
	fmt.Fprintf(o.out, "\nDetected preparation script: %s\n", name)
	if name == "install_dependencies.sh" {
		fmt.Fprintln(o.out, "This script builds the deployment packages the challenge requires.")
	} else {
		fmt.Fprintln(o.out, "This script prepares necessary dependencies for the challenge.")
	}
	fmt.Fprint(o.out, "Execute preparation script before deployment? [Y/n]: ")

	line, err := o.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}

func (o *Orchestrator) runPreparationScript(ctx context.Context, d *challenge.Descriptor, name string) error {
	path := filepath.Join(d.Dir, name)
	if err := os.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("making %s executable: %w", name, err)
	}

	o.log.WithFields(map[string]any{"challenge": d.Name, "script": name}).Info("executing preparation script")

	result, err := o.runner.Run(ctx, execx.Spec{
		Name:    "bash",
		Args:    []string{path},
		Dir:     d.Dir,
		Timeout: prepTimeout,
	})
	if err != nil {
		return fmt.Errorf("preparation script %s: %w", name, err)
	}

	if result.Stdout != "" {
		fmt.Fprintln(o.out, result.Stdout)
	}
	return nil
}
