// Package terraform drives the terraform binary for one challenge working
// directory at a time: init, plan, apply, destroy, output, plus the state
// prober and working-file cleanup. It never parses state files itself; all
// state knowledge comes from terraform's own CLI surface.
package terraform

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/challenge"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/creds"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/execx"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/logger"
)

const (
	// defaultTimeout bounds init, plan and output commands.
	defaultTimeout = 600 * time.Second
	// applyTimeout bounds apply and destroy.
	applyTimeout = 1200 * time.Second
	// heavyApplyTimeout applies to the Windows domain-controller challenge,
	// whose instance provisioning alone can exceed 20 minutes.
	heavyApplyTimeout = 2400 * time.Second

	// heavyweightChallenge is the one challenge that gets heavyApplyTimeout.
	heavyweightChallenge = "challenge-04-aws-only"

	stateDirName = ".terraform"
	lockFileName = ".terraform.lock.hcl"
)

// Manager sequences terraform commands for challenges. Credentials and
// TF_VAR_ variables are injected into every subprocess environment.
type Manager struct {
	runner execx.Runner
	creds  *creds.Resolver
	log    *logger.Logger
}

// NewManager constructs a Manager.
func NewManager(runner execx.Runner, credentials *creds.Resolver, log *logger.Logger) *Manager {
	return &Manager{runner: runner, creds: credentials, log: log}
}

// Init runs terraform init with the challenge's backend configuration.
func (m *Manager) Init(ctx context.Context, d *challenge.Descriptor, reconfigure bool) error {
	args := []string{"init", "-backend-config=" + d.BackendConfigPath}
	if reconfigure {
		args = append(args, "-reconfigure")
	}

	_, err := m.run(ctx, d, args, defaultTimeout, false)
	if err != nil {
		return fmt.Errorf("terraform init for %s: %w", d.Name, err)
	}
	m.log.WithFields(map[string]any{"challenge": d.Name}).Info("terraform init successful")
	return nil
}

// Plan runs terraform plan and returns the captured plan text. The
// variables file, when present, is passed with -var-file; the caller is
// responsible for regenerating it first.
func (m *Manager) Plan(ctx context.Context, d *challenge.Descriptor) (string, error) {
	args := append([]string{"plan"}, m.varFileArgs(d)...)

	result, err := m.run(ctx, d, args, defaultTimeout, false)
	if err != nil {
		return "", fmt.Errorf("terraform plan for %s: %w", d.Name, err)
	}
	return result.Stdout, nil
}

// Apply runs terraform apply. Without autoApprove the subprocess inherits
// the terminal so terraform can prompt for confirmation itself; nothing is
// captured in that mode and success is known only from the exit code.
func (m *Manager) Apply(ctx context.Context, d *challenge.Descriptor, autoApprove bool) error {
	args := []string{"apply"}
	if autoApprove {
		args = append(args, "-auto-approve")
	}
	args = append(args, m.varFileArgs(d)...)

	_, err := m.run(ctx, d, args, m.applyTimeout(d), !autoApprove)
	if err != nil {
		return fmt.Errorf("terraform apply for %s: %w", d.Name, err)
	}
	m.log.WithFields(map[string]any{"challenge": d.Name}).Info("terraform apply successful")
	return nil
}

// Destroy runs terraform destroy. The variables file is reused as-is when
// it exists — destroy never regenerates it, so a challenge stays
// destroyable even when its variable references no longer resolve.
func (m *Manager) Destroy(ctx context.Context, d *challenge.Descriptor, autoApprove bool) error {
	args := []string{"destroy"}
	if autoApprove {
		args = append(args, "-auto-approve")
	}
	args = append(args, m.varFileArgs(d)...)

	_, err := m.run(ctx, d, args, m.applyTimeout(d), !autoApprove)
	if err != nil {
		return fmt.Errorf("terraform destroy for %s: %w", d.Name, err)
	}
	m.log.WithFields(map[string]any{"challenge": d.Name}).Info("terraform destroy successful")
	return nil
}

// Outputs fetches terraform output -json and flattens each entry to its
// value.
func (m *Manager) Outputs(ctx context.Context, d *challenge.Descriptor) (map[string]any, error) {
	result, err := m.run(ctx, d, []string{"output", "-json"}, defaultTimeout, false)
	if err != nil {
		return nil, fmt.Errorf("terraform output for %s: %w", d.Name, err)
	}

	if strings.TrimSpace(result.Stdout) == "" {
		return map[string]any{}, nil
	}

	var raw map[string]struct {
		Value any `json:"value"`
	}
	if err := json.Unmarshal([]byte(result.Stdout), &raw); err != nil {
		return nil, fmt.Errorf("decoding terraform outputs for %s: %w", d.Name, err)
	}

	outputs := make(map[string]any, len(raw))
	for name, entry := range raw {
		outputs[name] = entry.Value
	}
	return outputs, nil
}

func (m *Manager) applyTimeout(d *challenge.Descriptor) time.Duration {
	if d.Name == heavyweightChallenge {
		return heavyApplyTimeout
	}
	return applyTimeout
}

func (m *Manager) varFileArgs(d *challenge.Descriptor) []string {
	path := d.VarsFilePath()
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return []string{"-var-file", path}
}

func (m *Manager) run(ctx context.Context, d *challenge.Descriptor, args []string, timeout time.Duration, interactive bool) (execx.Result, error) {
	env, err := m.creds.BuildEnv(ctx, d.Provider, d.Variables)
	if err != nil {
		return execx.Result{}, err
	}

	m.log.WithFields(map[string]any{
		"challenge": d.Name,
		"command":   "terraform " + strings.Join(args, " "),
	}).Debug("running terraform")

	result, err := m.runner.Run(ctx, execx.Spec{
		Name:        "terraform",
		Args:        args,
		Dir:         d.Dir,
		Env:         env,
		Timeout:     timeout,
		Interactive: interactive,
	})

	if !interactive {
		m.relayOutput(d.Name, result.Stdout)
	}
	return result, err
}

// DeploymentCheck summarizes how healthy a challenge deployment looks.
type DeploymentCheck struct {
	Initialized      bool
	StateExists      bool
	ResourceCount    int
	OutputsAvailable bool
	Problems         []string
}

// CheckDeployment inspects a challenge's working directory and state to
// report whether it is fully deployed.
func (m *Manager) CheckDeployment(ctx context.Context, d *challenge.Descriptor) DeploymentCheck {
	check := DeploymentCheck{}

	if _, err := os.Stat(filepath.Join(d.Dir, stateDirName)); err == nil {
		check.Initialized = true
	}

	if check.Initialized {
		result, err := m.runner.Run(ctx, execx.Spec{
			Name:    "terraform",
			Args:    []string{"state", "list"},
			Dir:     d.Dir,
			Timeout: stateTimeout,
		})
		if err == nil {
			check.StateExists = true
			check.ResourceCount = len(splitResourceLines(result.Stdout))
		}

		if outputs, err := m.Outputs(ctx, d); err == nil && len(outputs) > 0 {
			check.OutputsAvailable = true
		}
	}

	if !check.Initialized {
		check.Problems = append(check.Problems, "Terraform not initialized")
	}
	if !check.StateExists {
		check.Problems = append(check.Problems, "No Terraform state found")
	}
	if check.ResourceCount == 0 {
		check.Problems = append(check.Problems, "No resources deployed")
	}
	return check
}

// Clean removes terraform working files for a challenge: the .terraform
// directory, the dependency lock file and the generated variables file.
// removeState additionally deletes local state files, which abandons any
// deployed resources.
func (m *Manager) Clean(d *challenge.Descriptor, removeState bool) error {
	fields := map[string]any{"challenge": d.Name}

	if err := os.RemoveAll(filepath.Join(d.Dir, stateDirName)); err != nil {
		return fmt.Errorf("removing %s for %s: %w", stateDirName, d.Name, err)
	}

	for _, name := range []string{lockFileName, challenge.VarsFileName} {
		if err := os.Remove(filepath.Join(d.Dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s for %s: %w", name, d.Name, err)
		}
	}
	m.log.WithFields(fields).Info("removed terraform working files")

	if removeState {
		for _, name := range []string{"terraform.tfstate", "terraform.tfstate.backup"} {
			if err := os.Remove(filepath.Join(d.Dir, name)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing %s for %s: %w", name, d.Name, err)
			}
		}
		m.log.WithFields(fields).Warn("removed local state files")
	}
	return nil
}

func splitResourceLines(stdout string) []string {
	var resources []string
	for _, line := range strings.Split(stdout, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			resources = append(resources, trimmed)
		}
	}
	return resources
}
