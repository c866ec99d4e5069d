package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/challenge"
	ctferrors "github.com/Spartan-Cybersecurity/HackTheCloud25/pkg/errors"
)

const sampleChallenges = `
global:
  default_region: us-east-1
  log_level: debug

challenges:
  challenge-01-aws-only:
    provider: aws
    difficulty: basic
    directory: challenges/challenge-01-aws-only
    backend_config: config/backends/challenge-01.hcl
    variables:
      bucket_prefix: htc25
      admin_email: "${ADMIN_EMAIL}"
    outputs:
      - bucket_name
  challenge-02-azure-entra:
    provider: azure
    difficulty: intermediate
    directory: challenges/challenge-02-azure-entra
    backend_config: config/backends/challenge-02.hcl
`

func writeConfigDir(t *testing.T, challengesYAML string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ChallengesFileName), []byte(challengesYAML), 0o644))
	return dir
}

func TestLoadParsesChallengesAndGlobals(t *testing.T) {
	t.Parallel()

	dir := writeConfigDir(t, sampleChallenges)

	registry, err := Load(dir, "/ctf/root")
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", registry.Global().DefaultRegion)
	assert.Equal(t, []string{"challenge-01-aws-only", "challenge-02-azure-entra"}, registry.Names())
}

func TestLoadReportsLineOnMalformedYAML(t *testing.T) {
	t.Parallel()

	dir := writeConfigDir(t, "challenges:\n  broken: [\n")

	_, err := Load(dir, ".")
	require.Error(t, err)

	var parseErr *ctferrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.NotZero(t, parseErr.Line)
}

func TestLoadRejectsEmptyChallengeSet(t *testing.T) {
	t.Parallel()

	dir := writeConfigDir(t, "global:\n  log_level: info\n")

	_, err := Load(dir, ".")
	require.Error(t, err)

	var parseErr *ctferrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestDescriptorIsBuiltFreshWithAnchoredPaths(t *testing.T) {
	t.Parallel()

	dir := writeConfigDir(t, sampleChallenges)

	registry, err := Load(dir, "/ctf/root")
	require.NoError(t, err)

	first, err := registry.Descriptor("challenge-01-aws-only")
	require.NoError(t, err)
	second, err := registry.Descriptor("challenge-01-aws-only")
	require.NoError(t, err)

	assert.NotSame(t, first, second, "descriptors must be rebuilt per lookup")
	assert.Equal(t, filepath.Join("/ctf/root", "challenges", "challenge-01-aws-only"), first.Dir)
	assert.Equal(t, filepath.Join("/ctf/root", "config", "backends", "challenge-01.hcl"), first.BackendConfigPath)

	_, err = registry.Descriptor("challenge-99-missing")
	assert.ErrorContains(t, err, "not declared")
}

func TestFiltersSelectByProviderAndDifficulty(t *testing.T) {
	t.Parallel()

	dir := writeConfigDir(t, sampleChallenges)

	registry, err := Load(dir, ".")
	require.NoError(t, err)

	aws := registry.ByProvider(challenge.ProviderAWS)
	require.Len(t, aws, 1)
	assert.Equal(t, "challenge-01-aws-only", aws[0].Name)

	intermediate := registry.ByDifficulty(challenge.DifficultyIntermediate)
	require.Len(t, intermediate, 1)
	assert.Equal(t, "challenge-02-azure-entra", intermediate[0].Name)

	assert.Empty(t, registry.ByProvider(challenge.ProviderGCP))
}

func TestLoadCredentialsToleratesMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadCredentials(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadCredentialsParsesProviderSections(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "aws:\n  profile: htc25\nazure:\n  subscription_id: sub-123\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, CredentialsFileName), []byte(content), 0o600))

	cfg, err := LoadCredentials(dir)
	require.NoError(t, err)

	assert.Equal(t, "htc25", cfg["aws"]["profile"])
	assert.Equal(t, "sub-123", cfg["azure"]["subscription_id"])
}
