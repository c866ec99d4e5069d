package creds

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/challenge"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/execx"
)

// providerEnvKeys maps a credential field to the environment variable that
// Terraform providers (and prep scripts) read it from.
var providerEnvKeys = map[challenge.Provider]map[string]string{
	challenge.ProviderAWS: {
		"profile":           "AWS_PROFILE",
		"region":            "AWS_DEFAULT_REGION",
		"access_key_id":     "AWS_ACCESS_KEY_ID",
		"secret_access_key": "AWS_SECRET_ACCESS_KEY",
		"session_token":     "AWS_SESSION_TOKEN",
	},
	challenge.ProviderAzure: {
		"subscription_id": "ARM_SUBSCRIPTION_ID",
		"tenant_id":       "ARM_TENANT_ID",
		"client_id":       "ARM_CLIENT_ID",
		"client_secret":   "ARM_CLIENT_SECRET",
	},
	challenge.ProviderGCP: {
		"project_id":       "GOOGLE_PROJECT",
		"region":           "GOOGLE_REGION",
		"credentials_file": "GOOGLE_APPLICATION_CREDENTIALS",
	},
}

// BuildEnv returns the environment overrides for a terraform subprocess:
// the provider credential variables plus TF_VAR_ entries for every
// declared challenge variable that can be satisfied without resolution.
// Dependency references are skipped here; they are satisfied through the
// generated variables file instead.
func (r *Resolver) BuildEnv(ctx context.Context, provider challenge.Provider, vars challenge.Variables) (map[string]string, error) {
	set, err := r.ForProvider(ctx, provider)
	if err != nil {
		return nil, err
	}

	env := map[string]string{}
	for field, key := range providerEnvKeys[provider] {
		if value := set[field]; value != "" {
			env[key] = value
		}
	}

	for _, v := range vars {
		switch v.Value.Kind {
		case challenge.KindLiteral:
			env["TF_VAR_"+v.Name] = fmt.Sprint(v.Value.Literal)
		case challenge.KindEnvRef, challenge.KindCredRef:
			if value := os.Getenv(v.Value.Token); value != "" {
				env["TF_VAR_"+v.Name] = value
			}
		case challenge.KindDependencyRef:
			// handled by the variables file
		}
	}

	return env, nil
}

// TerraformVersion probes the terraform binary. It returns the first line
// of `terraform version` output, or ok=false when the binary is missing
// or unresponsive.
func (r *Resolver) TerraformVersion(ctx context.Context) (string, bool) {
	result, err := r.runner.Run(ctx, execx.Spec{
		Name:    "terraform",
		Args:    []string{"version"},
		Timeout: cliTimeout,
	})
	if err != nil {
		return "", false
	}

	line := result.Stdout
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line), true
}

// Readiness describes whether the environment can run deployments for a
// provider. AmbientAWSSource is diagnostic only: it names the SDK default
// chain source that produced credentials, when one did.
type Readiness struct {
	Provider           challenge.Provider
	TerraformInstalled bool
	TerraformVersion   string
	Missing            []string
	AmbientAWSSource   string
	Ready              bool
}

// CheckEnvironment validates that terraform is installed and the provider
// credential requirements are met.
func (r *Resolver) CheckEnvironment(ctx context.Context, provider challenge.Provider) Readiness {
	readiness := Readiness{Provider: provider}

	readiness.TerraformVersion, readiness.TerraformInstalled = r.TerraformVersion(ctx)
	readiness.Missing = r.MissingFor(ctx, provider)

	if provider == challenge.ProviderAWS {
		if source, ok := r.ambientAWSCredentials(ctx); ok {
			readiness.AmbientAWSSource = source
		}
	}

	readiness.Ready = readiness.TerraformInstalled && len(readiness.Missing) == 0
	return readiness
}
