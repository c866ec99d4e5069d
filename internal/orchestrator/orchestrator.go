// Package orchestrator sequences challenge lifecycles: deploy walks
// validate, readiness, init, preparation scripts, variable generation,
// apply and outputs; destroy tears a deployed challenge down. Batch
// operations continue past individual failures and report a tally.
package orchestrator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/challenge"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/config"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/creds"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/execx"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/logger"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/resolve"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/terraform"
	ctferrors "github.com/Spartan-Cybersecurity/HackTheCloud25/pkg/errors"
)

// ErrCancelled reports that the operator declined a confirmation prompt.
// It is a deliberate outcome, not a failure.
var ErrCancelled = errors.New("operation cancelled")

// Options wires an Orchestrator. Stdin and Stdout default to the process
// streams; tests inject buffers.
type Options struct {
	Registry    *config.Registry
	Credentials *creds.Resolver
	Manager     *terraform.Manager
	Prober      *terraform.Prober
	Engine      *resolve.Engine
	Runner      execx.Runner
	Log         *logger.Logger
	Stdin       io.Reader
	Stdout      io.Writer
}

// Orchestrator drives challenge lifecycles end to end.
type Orchestrator struct {
	registry *config.Registry
	creds    *creds.Resolver
	manager  *terraform.Manager
	prober   *terraform.Prober
	engine   *resolve.Engine
	runner   execx.Runner
	log      *logger.Logger
	in       *bufio.Reader
	out      io.Writer
}

// New constructs an Orchestrator.
func New(opts Options) *Orchestrator {
	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	return &Orchestrator{
		registry: opts.Registry,
		creds:    opts.Credentials,
		manager:  opts.Manager,
		prober:   opts.Prober,
		engine:   opts.Engine,
		runner:   opts.Runner,
		log:      opts.Log,
		in:       bufio.NewReader(stdin),
		out:      stdout,
	}
}

// BatchResult tallies a multi-challenge operation.
type BatchResult struct {
	Total     int
	Succeeded int
	Failed    []string
}

// Deploy provisions one challenge. autoApprove skips terraform's own
// confirmation prompt; without it, apply inherits the terminal.
func (o *Orchestrator) Deploy(ctx context.Context, name string, autoApprove bool) error {
	d, err := o.registry.Descriptor(name)
	if err != nil {
		return err
	}

	if problems := d.Validate(); len(problems) > 0 {
		return ctferrors.NewValidationError(name, strings.Join(problems, "; "), nil)
	}

	readiness := o.creds.CheckEnvironment(ctx, d.Provider)
	if !readiness.Ready {
		message := "environment not ready"
		if !readiness.TerraformInstalled {
			message = "terraform is not installed"
		}
		return ctferrors.NewEnvironmentError(string(d.Provider), message, readiness.Missing)
	}

	fmt.Fprintf(o.out, "\nDeploying challenge: %s (%s)\n", d.Name, d.Provider)

	if err := o.manager.Init(ctx, d, false); err != nil {
		return err
	}

	if err := o.runPreparationScripts(ctx, d); err != nil {
		return err
	}

	if _, err := o.engine.WriteVarsFile(ctx, d); err != nil {
		return err
	}

	if err := o.manager.Apply(ctx, d, autoApprove); err != nil {
		return err
	}

	if outputs, err := o.manager.Outputs(ctx, d); err == nil && len(outputs) > 0 {
		fmt.Fprintf(o.out, "\nDeployment outputs:\n")
		o.printOutputs(outputs)
	}

	fmt.Fprintf(o.out, "\nChallenge %q deployed successfully\n", d.Name)
	return nil
}

// DeployProvider deploys every challenge declared for one provider,
// sequentially, continuing past failures.
func (o *Orchestrator) DeployProvider(ctx context.Context, provider challenge.Provider, autoApprove bool) (BatchResult, error) {
	descriptors := o.registry.ByProvider(provider)
	if len(descriptors) == 0 {
		return BatchResult{}, fmt.Errorf("no challenges declared for provider %s", provider)
	}

	result := BatchResult{Total: len(descriptors)}
	for _, d := range descriptors {
		if err := o.Deploy(ctx, d.Name, autoApprove); err != nil {
			o.log.Error(err, "challenge deployment failed")
			result.Failed = append(result.Failed, d.Name)
			continue
		}
		result.Succeeded++
	}

	fmt.Fprintf(o.out, "\nDeployed %d/%d challenges successfully\n", result.Succeeded, result.Total)
	return result, nil
}

// Destroy tears one challenge down. Destroying a challenge that is not
// deployed is a no-op success.
func (o *Orchestrator) Destroy(ctx context.Context, name string, autoApprove bool) error {
	d, err := o.registry.Descriptor(name)
	if err != nil {
		return err
	}

	if o.prober.Status(ctx, d) == challenge.StatusNotDeployed {
		fmt.Fprintf(o.out, "Challenge %q is not deployed\n", d.Name)
		return nil
	}

	fmt.Fprintf(o.out, "\nDestroying challenge: %s (%s)\n", d.Name, d.Provider)

	if err := o.manager.Destroy(ctx, d, autoApprove); err != nil {
		return err
	}

	fmt.Fprintf(o.out, "\nChallenge %q destroyed successfully\n", d.Name)
	return nil
}

// DestroyAll tears down every deployed challenge. Without autoApprove the
// operator must type exactly "yes"; anything else — including interrupted
// input — cancels before any subprocess runs.
func (o *Orchestrator) DestroyAll(ctx context.Context, autoApprove bool) (BatchResult, error) {
	var deployed []*challenge.Descriptor
	for _, d := range o.registry.All() {
		if o.prober.Status(ctx, d) == challenge.StatusDeployed {
			deployed = append(deployed, d)
		}
	}

	if len(deployed) == 0 {
		fmt.Fprintln(o.out, "No deployed challenges found")
		return BatchResult{}, nil
	}

	fmt.Fprintf(o.out, "\nDestroying all challenges (%d deployed)\n", len(deployed))

	if !autoApprove {
		fmt.Fprint(o.out, "\nThis will destroy ALL deployed challenges. Continue? (yes/no): ")
		line, err := o.in.ReadString('\n')
		if err != nil || strings.ToLower(strings.TrimSpace(line)) != "yes" {
			fmt.Fprintln(o.out, "Operation cancelled")
			return BatchResult{}, ErrCancelled
		}
	}

	result := BatchResult{Total: len(deployed)}
	for _, d := range deployed {
		if err := o.manager.Destroy(ctx, d, true); err != nil {
			o.log.Error(err, "challenge destroy failed")
			result.Failed = append(result.Failed, d.Name)
			continue
		}
		result.Succeeded++
	}

	fmt.Fprintf(o.out, "\nDestroyed %d/%d challenges\n", result.Succeeded, result.Total)
	return result, nil
}

func (o *Orchestrator) printOutputs(outputs map[string]any) {
	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(o.out, "  %s = %v\n", name, outputs[name])
	}
}
