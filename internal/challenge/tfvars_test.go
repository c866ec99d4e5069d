package challenge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderVarsFileQuotesByType(t *testing.T) {
	t.Parallel()

	d := New("challenge-03-gcp-only", Spec{Provider: ProviderGCP}, t.TempDir())

	content := RenderVarsFile(d, []ResolvedVariable{
		{Name: "project_id", Value: "medicloudx-lab"},
		{Name: "enable_audit", Value: false},
		{Name: "instance_count", Value: 3},
		{Name: "cpu_ratio", Value: 0.5},
		{Name: "port", Value: int64(8443)},
		{Name: "weird", Value: []string{"a"}},
	})

	require.Contains(t, content, "# Challenge: challenge-03-gcp-only")
	require.Contains(t, content, "# Provider: gcp")
	require.Contains(t, content, "project_id = \"medicloudx-lab\"\n")
	require.Contains(t, content, "enable_audit = false\n")
	require.Contains(t, content, "instance_count = 3\n")
	require.Contains(t, content, "cpu_ratio = 0.5\n")
	require.Contains(t, content, "port = 8443\n")
	require.Contains(t, content, "weird = \"[a]\"\n")
}

func TestRenderVarsFileKeepsDeclarationOrder(t *testing.T) {
	t.Parallel()

	d := New("challenge-01-aws-only", Spec{Provider: ProviderAWS}, t.TempDir())

	content := RenderVarsFile(d, []ResolvedVariable{
		{Name: "zeta", Value: "1"},
		{Name: "alpha", Value: "2"},
	})

	zeta := strings.Index(content, "zeta = ")
	alpha := strings.Index(content, "alpha = ")
	require.GreaterOrEqual(t, zeta, 0)
	require.GreaterOrEqual(t, alpha, 0)
	require.Less(t, zeta, alpha)
}

func TestRenderVarsFilePassesUnresolvedReferenceThrough(t *testing.T) {
	t.Parallel()

	d := New("challenge-02-aws-only", Spec{Provider: ProviderAWS}, t.TempDir())

	content := RenderVarsFile(d, []ResolvedVariable{
		{Name: "db_pass", Value: "${challenge-x.db_password}"},
	})

	require.Contains(t, content, "db_pass = \"${challenge-x.db_password}\"\n")
}
