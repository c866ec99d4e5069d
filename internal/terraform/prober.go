package terraform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/challenge"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/execx"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/logger"
	ctferrors "github.com/Spartan-Cybersecurity/HackTheCloud25/pkg/errors"
)

// stateTimeout bounds the state probe; probing is a read-only operation
// and must stay fast even across many challenges.
const stateTimeout = 30 * time.Second

// emptyStateMarkers are the stderr fragments terraform emits when a
// backend is reachable but holds no state. Both mean "nothing deployed",
// not "probe failed".
var emptyStateMarkers = []string{
	"No state file was found",
	"Failed to load state",
}

// Prober determines a challenge's deployment status from terraform state.
// It is deliberately conservative: any probe outcome it cannot classify
// reports StatusUnknown rather than guessing.
type Prober struct {
	runner execx.Runner
	log    *logger.Logger
}

// NewProber constructs a Prober.
func NewProber(runner execx.Runner, log *logger.Logger) *Prober {
	return &Prober{runner: runner, log: log}
}

// Status probes one challenge. A challenge whose working directory was
// never initialized is reported not deployed without spawning a
// subprocess.
func (p *Prober) Status(ctx context.Context, d *challenge.Descriptor) challenge.Status {
	if d.Dir == "" {
		return challenge.StatusUnknown
	}
	if _, err := os.Stat(filepath.Join(d.Dir, stateDirName)); err != nil {
		return challenge.StatusNotDeployed
	}

	result, err := p.runner.Run(ctx, execx.Spec{
		Name:    "terraform",
		Args:    []string{"state", "list"},
		Dir:     d.Dir,
		Timeout: stateTimeout,
	})
	if err == nil {
		if strings.TrimSpace(result.Stdout) != "" {
			return challenge.StatusDeployed
		}
		return challenge.StatusNotDeployed
	}

	var timeoutErr *ctferrors.TimeoutError
	if errors.As(err, &timeoutErr) {
		p.log.WithFields(map[string]any{"challenge": d.Name}).Warn("terraform state probe timed out")
		return challenge.StatusUnknown
	}

	var execErr *ctferrors.ExecutionError
	if errors.As(err, &execErr) {
		for _, marker := range emptyStateMarkers {
			if strings.Contains(execErr.Stderr, marker) {
				return challenge.StatusNotDeployed
			}
		}
		p.log.WithFields(map[string]any{
			"challenge": d.Name,
			"stderr":    execErr.Stderr,
		}).Warn("terraform state probe failed")
	}
	return challenge.StatusUnknown
}
