package challenge

import "fmt"

// Provider identifies the cloud platform a challenge targets.
type Provider string

const (
	ProviderAWS   Provider = "aws"
	ProviderAzure Provider = "azure"
	ProviderGCP   Provider = "gcp"
)

// Providers lists every supported cloud provider.
func Providers() []Provider {
	return []Provider{ProviderAWS, ProviderAzure, ProviderGCP}
}

// ParseProvider validates a provider name supplied on the command line.
func ParseProvider(name string) (Provider, error) {
	switch Provider(name) {
	case ProviderAWS, ProviderAzure, ProviderGCP:
		return Provider(name), nil
	}
	return "", fmt.Errorf("unsupported provider %q (must be one of aws, azure, gcp)", name)
}

func (p Provider) String() string {
	return string(p)
}

// Difficulty grades a challenge for operators browsing the catalogue.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) String() string {
	return string(d)
}
