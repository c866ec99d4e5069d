// Package creds assembles cloud provider credentials from the layered
// sources the manager supports: the credentials file, process environment
// variables, and (for azure/gcp) the ambient authenticated CLI session.
// Credential sets are rebuilt on every request and never persisted.
package creds

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/challenge"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/execx"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/logger"
)

// cliTimeout bounds credential-discovery CLI calls (az, gcloud, terraform
// version checks).
const cliTimeout = 10 * time.Second

// Set maps credential field keys to resolved values for one provider.
// Absent fields are omitted, never empty strings.
type Set map[string]string

// FileConfig is the decoded credentials.yaml: provider name to field map.
type FileConfig map[string]map[string]string

// Resolver builds per-provider credential sets. It holds no cached state
// beyond its inputs; every lookup re-reads the environment and, where
// needed, queries the provider CLI.
type Resolver struct {
	file   FileConfig
	runner execx.Runner
	log    *logger.Logger
}

// NewResolver constructs a Resolver. file may be nil when no credentials
// file exists; the environment and CLI tiers still apply.
func NewResolver(file FileConfig, runner execx.Runner, log *logger.Logger) *Resolver {
	return &Resolver{file: file, runner: runner, log: log}
}

// ForProvider assembles the credential set for one provider.
func (r *Resolver) ForProvider(ctx context.Context, provider challenge.Provider) (Set, error) {
	switch provider {
	case challenge.ProviderAWS:
		return r.awsCredentials(), nil
	case challenge.ProviderAzure:
		return r.azureCredentials(ctx), nil
	case challenge.ProviderGCP:
		return r.gcpCredentials(ctx), nil
	}
	return nil, fmt.Errorf("unsupported provider: %s", provider)
}

func (r *Resolver) fileField(provider, field string) string {
	if r.file == nil {
		return ""
	}
	return r.file[provider][field]
}

// layered returns the first non-empty candidate value.
func layered(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

func (r *Resolver) awsCredentials() Set {
	set := Set{}
	setIf := func(key, value string) {
		if value != "" {
			set[key] = value
		}
	}

	setIf("profile", layered(r.fileField("aws", "profile"), os.Getenv("AWS_PROFILE"), "default"))
	setIf("region", layered(r.fileField("aws", "region"), os.Getenv("AWS_DEFAULT_REGION"), "us-east-1"))
	setIf("access_key_id", os.Getenv("AWS_ACCESS_KEY_ID"))
	setIf("secret_access_key", os.Getenv("AWS_SECRET_ACCESS_KEY"))
	setIf("session_token", os.Getenv("AWS_SESSION_TOKEN"))

	return set
}

func (r *Resolver) azureCredentials(ctx context.Context) Set {
	subscriptionID := layered(r.fileField("azure", "subscription_id"), os.Getenv("AZURE_SUBSCRIPTION_ID"))
	tenantID := layered(r.fileField("azure", "tenant_id"), os.Getenv("AZURE_TENANT_ID"))

	if subscriptionID == "" || tenantID == "" {
		if account, ok := r.azureAccount(ctx); ok {
			if subscriptionID == "" && account.ID != "" {
				subscriptionID = account.ID
				r.log.Info("detected Azure subscription ID from Azure CLI")
			}
			if tenantID == "" && account.TenantID != "" {
				tenantID = account.TenantID
				r.log.Info("detected Azure tenant ID from Azure CLI")
			}
		}
	}

	set := Set{}
	setIf := func(key, value string) {
		if value != "" {
			set[key] = value
		}
	}
	setIf("subscription_id", subscriptionID)
	setIf("tenant_id", tenantID)
	setIf("client_id", layered(r.fileField("azure", "client_id"), os.Getenv("AZURE_CLIENT_ID")))
	setIf("client_secret", layered(r.fileField("azure", "client_secret"), os.Getenv("AZURE_CLIENT_SECRET")))
	setIf("location", layered(r.fileField("azure", "location"), "East US"))

	return set
}

type azureAccountInfo struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
}

func (r *Resolver) azureAccount(ctx context.Context) (azureAccountInfo, bool) {
	result, err := r.runner.Run(ctx, execx.Spec{
		Name:    "az",
		Args:    []string{"account", "show", "--output", "json"},
		Timeout: cliTimeout,
	})
	if err != nil {
		r.log.Warn("Azure CLI not authenticated or available")
		return azureAccountInfo{}, false
	}

	var account azureAccountInfo
	if err := json.Unmarshal([]byte(result.Stdout), &account); err != nil {
		r.log.Error(err, "could not parse Azure CLI account output")
		return azureAccountInfo{}, false
	}
	return account, true
}

func (r *Resolver) gcpCredentials(ctx context.Context) Set {
	projectID := layered(r.fileField("gcp", "project_id"), os.Getenv("GCP_PROJECT_ID"))
	userEmail := layered(r.fileField("gcp", "user_email"), os.Getenv("GCP_USER_EMAIL"))

	if projectID == "" {
		if value, ok := r.gcloudConfigValue(ctx, "project"); ok {
			projectID = value
			r.log.Info("detected GCP project ID from gcloud CLI")
		}
	}
	if userEmail == "" {
		if value, ok := r.gcloudConfigValue(ctx, "account"); ok {
			userEmail = value
			r.log.Info("detected GCP user email from gcloud CLI")
		}
	}

	set := Set{}
	setIf := func(key, value string) {
		if value != "" {
			set[key] = value
		}
	}
	setIf("project_id", projectID)
	setIf("region", layered(r.fileField("gcp", "region"), os.Getenv("GCP_REGION"), "us-central1"))
	setIf("user_email", userEmail)
	setIf("credentials_file", layered(r.fileField("gcp", "credentials_file"), os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")))

	return set
}

func (r *Resolver) gcloudConfigValue(ctx context.Context, key string) (string, bool) {
	result, err := r.runner.Run(ctx, execx.Spec{
		Name:    "gcloud",
		Args:    []string{"config", "get-value", key},
		Timeout: cliTimeout,
	})
	if err != nil {
		r.log.Warn("gcloud CLI not configured or authenticated")
		return "", false
	}

	value := strings.TrimSpace(result.Stdout)
	if value == "" || value == "(unset)" {
		return "", false
	}
	return value, true
}

// MissingFor returns the credential requirements a provider still lacks.
// AWS accepts either a profile or an access key pair.
func (r *Resolver) MissingFor(ctx context.Context, provider challenge.Provider) []string {
	var missing []string

	switch provider {
	case challenge.ProviderAWS:
		set := r.awsCredentials()
		hasKeys := set["access_key_id"] != "" && set["secret_access_key"] != ""
		if set["profile"] == "" && !hasKeys {
			missing = append(missing, "AWS_PROFILE or (AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY)")
		}
	case challenge.ProviderAzure:
		set := r.azureCredentials(ctx)
		for _, field := range []string{"subscription_id", "tenant_id"} {
			if set[field] == "" {
				missing = append(missing, "AZURE_"+strings.ToUpper(field))
			}
		}
	case challenge.ProviderGCP:
		set := r.gcpCredentials(ctx)
		if set["project_id"] == "" {
			missing = append(missing, "GCP_PROJECT_ID")
		}
	}

	return missing
}
