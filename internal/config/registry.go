// Package config loads the manager's YAML configuration: challenges.yaml
// (challenge declarations plus global settings) and credentials.yaml. The
// Registry it produces is passed explicitly to every consumer; nothing in
// this package caches configuration at package level.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/challenge"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/creds"
	ctferrors "github.com/Spartan-Cybersecurity/HackTheCloud25/pkg/errors"
)

const (
	// ChallengesFileName is the challenge declaration file inside the
	// configuration directory.
	ChallengesFileName = "challenges.yaml"
	// CredentialsFileName is the optional credentials file inside the
	// configuration directory.
	CredentialsFileName = "credentials.yaml"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Global holds the settings that apply across all challenges.
type Global struct {
	DefaultRegion string `yaml:"default_region,omitempty"`
	LogLevel      string `yaml:"log_level,omitempty"`
	LogDir        string `yaml:"log_dir,omitempty"`
}

// file mirrors the on-disk layout of challenges.yaml.
type file struct {
	Global     Global                    `yaml:"global,omitempty"`
	Challenges map[string]challenge.Spec `yaml:"challenges"`
}

// Registry is the loaded challenge configuration. Descriptors are built
// fresh on every lookup so that filesystem validation always reflects the
// current state of the challenge tree.
type Registry struct {
	global     Global
	challenges map[string]challenge.Spec
	basePath   string
}

// Load reads and decodes challenges.yaml from configDir. basePath anchors
// the relative paths declared by each challenge (the repository root in
// normal operation).
func Load(configDir, basePath string) (*Registry, error) {
	path := filepath.Join(configDir, ChallengesFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ctferrors.NewParseError(path, 0, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, ctferrors.NewParseError(path, extractLine(err), err)
	}

	if len(f.Challenges) == 0 {
		return nil, ctferrors.NewParseError(path, 0, fmt.Errorf("no challenges declared"))
	}

	return &Registry{
		global:     f.Global,
		challenges: f.Challenges,
		basePath:   basePath,
	}, nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}
	return line
}

// Global returns the cross-challenge settings.
func (r *Registry) Global() Global {
	return r.global
}

// Names returns every declared challenge name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.challenges))
	for name := range r.challenges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptor builds a fresh descriptor for one challenge. It returns an
// error when the challenge is not declared.
func (r *Registry) Descriptor(name string) (*challenge.Descriptor, error) {
	spec, ok := r.challenges[name]
	if !ok {
		return nil, fmt.Errorf("challenge %q is not declared in %s", name, ChallengesFileName)
	}
	return challenge.New(name, spec, r.basePath), nil
}

// All returns fresh descriptors for every declared challenge, sorted by
// name.
func (r *Registry) All() []*challenge.Descriptor {
	descriptors := make([]*challenge.Descriptor, 0, len(r.challenges))
	for _, name := range r.Names() {
		descriptors = append(descriptors, challenge.New(name, r.challenges[name], r.basePath))
	}
	return descriptors
}

// ByProvider returns the declared challenges for one provider, sorted by
// name.
func (r *Registry) ByProvider(provider challenge.Provider) []*challenge.Descriptor {
	var descriptors []*challenge.Descriptor
	for _, d := range r.All() {
		if d.Provider == provider {
			descriptors = append(descriptors, d)
		}
	}
	return descriptors
}

// ByDifficulty returns the declared challenges at one difficulty, sorted
// by name.
func (r *Registry) ByDifficulty(difficulty challenge.Difficulty) []*challenge.Descriptor {
	var descriptors []*challenge.Descriptor
	for _, d := range r.All() {
		if d.Difficulty == difficulty {
			descriptors = append(descriptors, d)
		}
	}
	return descriptors
}

// LoadCredentials reads credentials.yaml from configDir. A missing file is
// not an error: the environment and CLI credential tiers still apply, so
// the caller receives a nil FileConfig.
func LoadCredentials(configDir string) (creds.FileConfig, error) {
	path := filepath.Join(configDir, CredentialsFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ctferrors.NewParseError(path, 0, err)
	}

	var cfg creds.FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ctferrors.NewParseError(path, extractLine(err), err)
	}
	return cfg, nil
}
