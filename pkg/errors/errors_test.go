package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewParseError("challenges.yaml", 12, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "challenges.yaml", parseErr.Path)
	require.Equal(t, 12, parseErr.Line)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "challenges.yaml")
}

func TestValidationErrorNamesField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("challenge-01-aws-only.backend_config", "backend config file not found", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "challenge-01-aws-only.backend_config", validationErr.Field)
	require.Contains(t, err.Error(), "backend config file not found")
}

func TestEnvironmentErrorListsMissingCredentials(t *testing.T) {
	t.Parallel()

	err := NewEnvironmentError("azure", "credentials incomplete", []string{"AZURE_SUBSCRIPTION_ID", "AZURE_TENANT_ID"})

	var envErr *EnvironmentError
	require.ErrorAs(t, err, &envErr)
	require.Equal(t, "azure", envErr.Provider)
	require.Contains(t, err.Error(), "AZURE_TENANT_ID")
}

func TestExecutionErrorCarriesStderr(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("exit status 1")
	err := NewExecutionError("terraform apply", "Error: resource already exists", underlying)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, "terraform apply", execErr.Command)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "resource already exists")
}

func TestTimeoutErrorIsDistinctFromExecutionError(t *testing.T) {
	t.Parallel()

	err := NewTimeoutError("terraform apply", 20*time.Minute)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	require.Equal(t, 20*time.Minute, timeoutErr.Timeout)

	var execErr *ExecutionError
	require.False(t, stdErrors.As(err, &execErr))
	require.Contains(t, err.Error(), "timed out after 20m0s")
}

func TestResolutionErrorKeepsReferenceText(t *testing.T) {
	t.Parallel()

	err := NewResolutionError("${challenge-x.db_password}", "dependency challenge is not deployed")

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	require.Equal(t, "${challenge-x.db_password}", resErr.Reference)
	require.Contains(t, err.Error(), "not deployed")
}
