package challenge

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValueKind discriminates the parsed form of a declared variable value.
type ValueKind int

const (
	// KindLiteral is a plain scalar used as-is.
	KindLiteral ValueKind = iota
	// KindEnvRef is a ${TOKEN} reference resolved from the process environment.
	KindEnvRef
	// KindCredRef is a ${TOKEN} reference whose token names a known credential
	// field; it resolves from the provider's credential set before the
	// environment.
	KindCredRef
	// KindDependencyRef is a ${challenge.output} reference to another
	// challenge's Terraform output.
	KindDependencyRef
)

var refPattern = regexp.MustCompile(`^\$\{([^}]+)\}$`)

// credentialFields maps canonical environment-style reference tokens to the
// field keys used in a provider credential set. Declared variable references
// matching one of these resolve from credentials before the environment.
var credentialFields = map[string]string{
	"AWS_ACCESS_KEY_ID":     "access_key_id",
	"AWS_SECRET_ACCESS_KEY": "secret_access_key",
	"AZURE_SUBSCRIPTION_ID": "subscription_id",
	"AZURE_TENANT_ID":       "tenant_id",
	"AZURE_CLIENT_ID":       "client_id",
	"AZURE_CLIENT_SECRET":   "client_secret",
	"GCP_PROJECT_ID":        "project_id",
	"GCP_REGION":            "region",
	"GCP_USER_EMAIL":        "user_email",
}

// CredentialField reports the credential-set key for a canonical reference
// token, if one exists.
func CredentialField(token string) (string, bool) {
	field, ok := credentialFields[token]
	return field, ok
}

// Value is a declared variable value parsed into a tagged variant at
// configuration load time, so consumers never pattern-match raw strings.
type Value struct {
	Kind    ValueKind
	Literal any

	// Token is the reference text between ${ and } for non-literal kinds.
	Token string
	// CredField is set for KindCredRef.
	CredField string
	// Challenge and Output are set for KindDependencyRef.
	Challenge string
	Output    string
}

// UnmarshalYAML classifies the declared value once during config decoding.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}

	s, ok := raw.(string)
	if !ok {
		*v = Value{Kind: KindLiteral, Literal: raw}
		return nil
	}

	match := refPattern.FindStringSubmatch(s)
	if match == nil {
		*v = Value{Kind: KindLiteral, Literal: s}
		return nil
	}

	*v = parseReference(match[1])
	return nil
}

func parseReference(token string) Value {
	if strings.Contains(token, ".") {
		parts := strings.SplitN(token, ".", 2)
		return Value{Kind: KindDependencyRef, Token: token, Challenge: parts[0], Output: parts[1]}
	}

	if field, ok := credentialFields[token]; ok {
		return Value{Kind: KindCredRef, Token: token, CredField: field}
	}

	return Value{Kind: KindEnvRef, Token: token}
}

// Reference reconstructs the original ${...} text for an unresolved value.
func (v Value) Reference() string {
	return "${" + v.Token + "}"
}

// IsLiteral reports whether the value needs no resolution.
func (v Value) IsLiteral() bool {
	return v.Kind == KindLiteral
}

// String renders the declared value for display.
func (v Value) String() string {
	if v.Kind == KindLiteral {
		return fmt.Sprint(v.Literal)
	}
	return v.Reference()
}

// Variable pairs a declared variable name with its parsed value.
type Variable struct {
	Name  string
	Value Value
}

// Variables preserves the declaration order of a challenge's variables, which
// YAML maps would otherwise lose. The generated tfvars file follows this
// order.
type Variables []Variable

// UnmarshalYAML decodes a YAML mapping while retaining key order.
func (vs *Variables) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("variables must be a mapping, got %s", node.Tag)
	}

	out := make(Variables, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value Value
		if err := node.Content[i+1].Decode(&value); err != nil {
			return err
		}
		out = append(out, Variable{Name: node.Content[i].Value, Value: value})
	}

	*vs = out
	return nil
}

// Lookup returns the declared value for a variable name.
func (vs Variables) Lookup(name string) (Value, bool) {
	for _, v := range vs {
		if v.Name == name {
			return v.Value, true
		}
	}
	return Value{}, false
}
