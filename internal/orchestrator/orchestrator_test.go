package orchestrator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/challenge"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/config"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/creds"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/execx"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/logger"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/resolve"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/terraform"
	ctferrors "github.com/Spartan-Cybersecurity/HackTheCloud25/pkg/errors"
)

const orchestratorChallenges = `
challenges:
  challenge-01-aws-only:
    provider: aws
    difficulty: basic
    directory: challenges/challenge-01-aws-only
    backend_config: config/backends/challenge-01.hcl
    variables:
      bucket_prefix: htc25
  challenge-04-aws-only:
    provider: aws
    difficulty: advanced
    directory: challenges/challenge-04-aws-only
    backend_config: config/backends/challenge-04.hcl
`

type testHarness struct {
	orch     *Orchestrator
	runner   *execx.FakeRunner
	registry *config.Registry
	stdout   *bytes.Buffer
	base     string
}

// newHarness wires a full orchestrator over a fake runner and a temp
// challenge tree. Static AWS credentials keep the environment check off
// the network.
func newHarness(t *testing.T, stdin string) *testHarness {
	t.Helper()

	t.Setenv("AWS_ACCESS_KEY_ID", "AKIATESTKEY")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "testsecret")
	t.Setenv("AWS_SESSION_TOKEN", "")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	base := t.TempDir()
	configDir := filepath.Join(base, "config")
	require.NoError(t, os.MkdirAll(filepath.Join(configDir, "backends"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, config.ChallengesFileName), []byte(orchestratorChallenges), 0o644))

	for _, name := range []string{"challenge-01-aws-only", "challenge-04-aws-only"} {
		dir := filepath.Join(base, "challenges", name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, challenge.RootDefinitionFile), []byte("# root\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "backends", "challenge-01.hcl"), []byte("key = \"challenge-01\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "backends", "challenge-04.hcl"), []byte("key = \"challenge-04\"\n"), 0o644))

	registry, err := config.Load(configDir, base)
	require.NoError(t, err)

	log, err := logger.New(logger.Options{Level: "error"})
	require.NoError(t, err)

	runner := execx.NewFakeRunner()
	runner.Stub("terraform version", execx.Result{Stdout: "Terraform v1.9.5\n"}, nil)

	resolver := creds.NewResolver(nil, runner, log)
	manager := terraform.NewManager(runner, resolver, log)
	prober := terraform.NewProber(runner, log)
	engine := resolve.NewEngine(registry, resolver, prober, manager, log)

	stdout := &bytes.Buffer{}
	orch := New(Options{
		Registry:    registry,
		Credentials: resolver,
		Manager:     manager,
		Prober:      prober,
		Engine:      engine,
		Runner:      runner,
		Log:         log,
		Stdin:       strings.NewReader(stdin),
		Stdout:      stdout,
	})

	return &testHarness{orch: orch, runner: runner, registry: registry, stdout: stdout, base: base}
}

func (h *testHarness) challengeDir(name string) string {
	return filepath.Join(h.base, "challenges", name)
}

// markDeployed makes the prober see a challenge as deployed.
func (h *testHarness) markDeployed(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(h.challengeDir(name), ".terraform"), 0o755))
	h.runner.Stub("terraform state list", execx.Result{Stdout: "aws_s3_bucket.loot\n"}, nil)
}

func callIndex(calls []execx.Spec, name, firstArg string) int {
	for i, call := range calls {
		if call.Name == name && (firstArg == "" || (len(call.Args) > 0 && call.Args[0] == firstArg)) {
			return i
		}
	}
	return -1
}

func TestDeployRunsLifecycleInOrder(t *testing.T) {
	h := newHarness(t, "\n")
	dir := h.challengeDir("challenge-01-aws-only")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "setup.sh"), []byte("#!/bin/bash\n"), 0o644))

	require.NoError(t, h.orch.Deploy(context.Background(), "challenge-01-aws-only", true))

	calls := h.runner.Calls()
	initIdx := callIndex(calls, "terraform", "init")
	prepIdx := callIndex(calls, "bash", "")
	applyIdx := callIndex(calls, "terraform", "apply")

	require.NotEqual(t, -1, initIdx)
	require.NotEqual(t, -1, prepIdx)
	require.NotEqual(t, -1, applyIdx)
	assert.True(t, initIdx < prepIdx && prepIdx < applyIdx, "expected init, then prep, then apply")

	assert.Equal(t, 300*time.Second, calls[prepIdx].Timeout)
	assert.Contains(t, calls[applyIdx].Args, "-auto-approve")
	assert.Contains(t, calls[applyIdx].Args, "-var-file")
	assert.FileExists(t, filepath.Join(dir, challenge.VarsFileName), "tfvars must be generated before apply")
}

func TestDeployHeavyweightChallengeGetsExtendedTimeout(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.orch.Deploy(context.Background(), "challenge-04-aws-only", true))

	calls := h.runner.Calls()
	applyIdx := callIndex(calls, "terraform", "apply")
	require.NotEqual(t, -1, applyIdx)
	assert.Equal(t, 2400*time.Second, calls[applyIdx].Timeout)
}

func TestDeployAbortsWhenPreparationScriptFails(t *testing.T) {
	h := newHarness(t, "y\n")
	dir := h.challengeDir("challenge-01-aws-only")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "install_dependencies.sh"), []byte("#!/bin/bash\nexit 1\n"), 0o644))
	h.runner.Stub("bash", execx.Result{ExitCode: 1}, ctferrors.NewExecutionError("bash install_dependencies.sh", "pip failed", assert.AnError))

	err := h.orch.Deploy(context.Background(), "challenge-01-aws-only", true)
	require.Error(t, err)
	assert.ErrorContains(t, err, "install_dependencies.sh")

	assert.Equal(t, -1, callIndex(h.runner.Calls(), "terraform", "apply"), "apply must not run after a failed preparation script")
}

func TestDeployDeclinedPreparationScriptContinues(t *testing.T) {
	h := newHarness(t, "n\n")
	dir := h.challengeDir("challenge-01-aws-only")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "setup.sh"), []byte("#!/bin/bash\n"), 0o644))

	require.NoError(t, h.orch.Deploy(context.Background(), "challenge-01-aws-only", true))

	calls := h.runner.Calls()
	assert.Equal(t, -1, callIndex(calls, "bash", ""), "declined script must not execute")
	assert.NotEqual(t, -1, callIndex(calls, "terraform", "apply"), "deployment continues past a declined script")
	assert.Contains(t, h.stdout.String(), "Skipping preparation script: setup.sh")
}

func TestDeployRejectsInvalidChallenge(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, os.Remove(filepath.Join(h.challengeDir("challenge-01-aws-only"), challenge.RootDefinitionFile)))

	err := h.orch.Deploy(context.Background(), "challenge-01-aws-only", true)
	require.Error(t, err)

	var validationErr *ctferrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, -1, callIndex(h.runner.Calls(), "terraform", "init"))
}

func TestDeployRequiresTerraform(t *testing.T) {
	h := newHarness(t, "")
	h.runner.Stub("terraform version", execx.Result{}, assert.AnError)

	err := h.orch.Deploy(context.Background(), "challenge-01-aws-only", true)
	require.Error(t, err)

	var envErr *ctferrors.EnvironmentError
	assert.ErrorAs(t, err, &envErr)
}

func TestDestroyNotDeployedIsNoOp(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.orch.Destroy(context.Background(), "challenge-01-aws-only", true))

	assert.Equal(t, -1, callIndex(h.runner.Calls(), "terraform", "destroy"))
	assert.Contains(t, h.stdout.String(), "is not deployed")
}

func TestDestroyAllDeclinedRunsNoDestroys(t *testing.T) {
	h := newHarness(t, "no\n")
	h.markDeployed(t, "challenge-01-aws-only")
	h.markDeployed(t, "challenge-04-aws-only")

	result, err := h.orch.DestroyAll(context.Background(), false)
	require.ErrorIs(t, err, ErrCancelled)
	assert.Zero(t, result.Total)

	for _, call := range h.runner.Calls() {
		if call.Name == "terraform" {
			require.NotEqual(t, "destroy", call.Args[0], "declined confirmation must not destroy anything")
		}
	}
	assert.Contains(t, h.stdout.String(), "Operation cancelled")
}

func TestDestroyAllTargetsOnlyDeployedChallenges(t *testing.T) {
	h := newHarness(t, "yes\n")
	h.markDeployed(t, "challenge-04-aws-only")

	result, err := h.orch.DestroyAll(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, BatchResult{Total: 1, Succeeded: 1}, result)

	calls := h.runner.Calls()
	destroyIdx := callIndex(calls, "terraform", "destroy")
	require.NotEqual(t, -1, destroyIdx)
	assert.Contains(t, calls[destroyIdx].Args, "-auto-approve")
	assert.Contains(t, calls[destroyIdx].Dir, "challenge-04-aws-only")
}

func TestDestroyAllWithNothingDeployedSucceeds(t *testing.T) {
	h := newHarness(t, "")

	result, err := h.orch.DestroyAll(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, result.Total)
	assert.Contains(t, h.stdout.String(), "No deployed challenges found")
}

func TestDeployProviderContinuesPastFailures(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, os.Remove(filepath.Join(h.challengeDir("challenge-01-aws-only"), challenge.RootDefinitionFile)))

	result, err := h.orch.DeployProvider(context.Background(), challenge.ProviderAWS, true)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, []string{"challenge-01-aws-only"}, result.Failed)
}

func TestDeployProviderWithoutChallengesFails(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.orch.DeployProvider(context.Background(), challenge.ProviderGCP, true)
	assert.ErrorContains(t, err, "no challenges declared")
}
