// Package resolve implements variable resolution for challenge
// deployments. Declared values resolve through three tiers — provider
// credentials, process environment, deployed-challenge outputs — and a
// value that cannot be resolved passes through as its original `${...}`
// reference so terraform surfaces the gap instead of receiving an empty
// string.
package resolve

import (
	"context"
	"fmt"
	"os"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/challenge"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/config"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/creds"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/logger"
	ctferrors "github.com/Spartan-Cybersecurity/HackTheCloud25/pkg/errors"
)

// StatusProber reports whether a challenge is deployed. Satisfied by
// *terraform.Prober.
type StatusProber interface {
	Status(ctx context.Context, d *challenge.Descriptor) challenge.Status
}

// OutputReader fetches a deployed challenge's terraform outputs.
// Satisfied by *terraform.Manager.
type OutputReader interface {
	Outputs(ctx context.Context, d *challenge.Descriptor) (map[string]any, error)
}

// CredentialSource supplies provider credential sets. Satisfied by
// *creds.Resolver.
type CredentialSource interface {
	ForProvider(ctx context.Context, provider challenge.Provider) (creds.Set, error)
}

// Engine resolves declared challenge variables to concrete values.
type Engine struct {
	registry *config.Registry
	creds    CredentialSource
	prober   StatusProber
	outputs  OutputReader
	log      *logger.Logger
}

// NewEngine constructs an Engine.
func NewEngine(registry *config.Registry, credentials CredentialSource, prober StatusProber, outputs OutputReader, log *logger.Logger) *Engine {
	return &Engine{
		registry: registry,
		creds:    credentials,
		prober:   prober,
		outputs:  outputs,
		log:      log,
	}
}

// Resolve resolves one declared value in the context of its challenge.
// It never fails: unresolvable references come back verbatim.
func (e *Engine) Resolve(ctx context.Context, d *challenge.Descriptor, v challenge.Value) any {
	switch v.Kind {
	case challenge.KindLiteral:
		return v.Literal

	case challenge.KindCredRef:
		if set, err := e.creds.ForProvider(ctx, d.Provider); err == nil {
			if value := set[v.CredField]; value != "" {
				e.log.WithFields(map[string]any{"reference": v.Token}).Debug("resolved from provider credentials")
				return value
			}
		}
		return e.resolveFromEnv(v)

	case challenge.KindEnvRef:
		return e.resolveFromEnv(v)

	case challenge.KindDependencyRef:
		value, err := e.resolveDependency(ctx, v)
		if err != nil {
			e.log.Error(err, "could not resolve challenge dependency")
			return v.Reference()
		}
		return value
	}
	return v.Literal
}

func (e *Engine) resolveFromEnv(v challenge.Value) any {
	if value := os.Getenv(v.Token); value != "" {
		e.log.WithFields(map[string]any{"reference": v.Token}).Debug("resolved from environment")
		return value
	}
	e.log.WithFields(map[string]any{"reference": v.Token}).Warn("could not resolve variable, keeping original reference")
	return v.Reference()
}

// resolveDependency follows a single cross-challenge reference. The
// dependency must itself be declared, currently deployed, and expose the
// named output; its own variables are never resolved in turn.
func (e *Engine) resolveDependency(ctx context.Context, v challenge.Value) (string, error) {
	dep, err := e.registry.Descriptor(v.Challenge)
	if err != nil {
		return "", ctferrors.NewResolutionError(v.Reference(), "dependency challenge is not declared")
	}

	if status := e.prober.Status(ctx, dep); status != challenge.StatusDeployed {
		return "", ctferrors.NewResolutionError(v.Reference(), fmt.Sprintf("dependency challenge is %s", status))
	}

	outputs, err := e.outputs.Outputs(ctx, dep)
	if err != nil {
		return "", ctferrors.NewResolutionError(v.Reference(), "dependency outputs are unavailable")
	}

	value, ok := outputs[v.Output]
	if !ok {
		return "", ctferrors.NewResolutionError(v.Reference(), fmt.Sprintf("dependency has no output %q", v.Output))
	}

	e.log.WithFields(map[string]any{"reference": v.Reference()}).Info("resolved challenge dependency")
	return fmt.Sprint(value), nil
}

// ResolveAll resolves every declared variable of a challenge, preserving
// declaration order.
func (e *Engine) ResolveAll(ctx context.Context, d *challenge.Descriptor) []challenge.ResolvedVariable {
	resolved := make([]challenge.ResolvedVariable, 0, len(d.Variables))
	for _, v := range d.Variables {
		resolved = append(resolved, challenge.ResolvedVariable{
			Name:  v.Name,
			Value: e.Resolve(ctx, d, v.Value),
		})
	}
	return resolved
}

// WriteVarsFile resolves all variables and overwrites the challenge's
// terraform.tfvars with the result.
func (e *Engine) WriteVarsFile(ctx context.Context, d *challenge.Descriptor) (string, error) {
	content := challenge.RenderVarsFile(d, e.ResolveAll(ctx, d))

	path := d.VarsFilePath()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing variables file for %s: %w", d.Name, err)
	}

	e.log.WithFields(map[string]any{"challenge": d.Name, "path": path}).Debug("variables file generated")
	return path, nil
}
