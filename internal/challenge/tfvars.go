package challenge

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// VarsFileName is the generated variable-assignment file written into each
// challenge directory before plan and apply.
const VarsFileName = "terraform.tfvars"

// VarsFilePath returns the location of the generated tfvars file.
func (d *Descriptor) VarsFilePath() string {
	return filepath.Join(d.Dir, VarsFileName)
}

// ResolvedVariable is a declared variable after reference resolution. Value
// may still be the original ${...} text when resolution failed; the
// provisioning tool then rejects it, which surfaces the configuration defect.
type ResolvedVariable struct {
	Name  string
	Value any
}

// RenderVarsFile produces the tfvars content for a challenge, one assignment
// per declared variable in declaration order.
func RenderVarsFile(d *Descriptor, values []ResolvedVariable) string {
	var b strings.Builder
	b.WriteString("# Auto-generated variables file for CTF Manager\n")
	fmt.Fprintf(&b, "# Challenge: %s\n", d.Name)
	fmt.Fprintf(&b, "# Provider: %s\n", d.Provider)
	b.WriteString("\n")

	for _, v := range values {
		fmt.Fprintf(&b, "%s = %s\n", v.Name, formatTFValue(v.Value))
	}

	return b.String()
}

// formatTFValue renders a resolved value in Terraform assignment syntax:
// strings quoted, booleans and numbers bare, anything else coerced to a
// quoted string.
func formatTFValue(value any) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strconv.Quote(fmt.Sprint(v))
	}
}
