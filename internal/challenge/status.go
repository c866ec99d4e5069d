package challenge

import "github.com/charmbracelet/lipgloss"

// Status represents the deployment state of a challenge as derived from the
// Terraform working directory.
type Status string

const (
	StatusNotDeployed Status = "not_deployed"
	StatusDeployed    Status = "deployed"
	StatusUnknown     Status = "unknown"

	// Reserved states. Probing never produces these today; they exist so a
	// future lock-file based detector can report in-progress operations.
	StatusDeploying  Status = "deploying"
	StatusDestroying Status = "destroying"
	StatusFailed     Status = "failed"
)

// Icon returns the Unicode icon for the status.
func (s Status) Icon() string {
	switch s {
	case StatusDeployed:
		return "🟢"
	case StatusNotDeployed:
		return "🔴"
	case StatusFailed:
		return "❌"
	default:
		return "🟡"
	}
}

// IconFallback returns ASCII fallback when Unicode is not supported.
func (s Status) IconFallback() string {
	switch s {
	case StatusDeployed:
		return "[OK]"
	case StatusNotDeployed:
		return "[--]"
	case StatusFailed:
		return "[XX]"
	default:
		return "[??]"
	}
}

// Color returns the Lipgloss color for the status.
func (s Status) Color() lipgloss.Color {
	switch s {
	case StatusDeployed:
		return lipgloss.Color("42") // green
	case StatusNotDeployed:
		return lipgloss.Color("196") // red
	default:
		return lipgloss.Color("226") // yellow
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}
