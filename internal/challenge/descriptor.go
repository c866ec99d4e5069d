package challenge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// RootDefinitionFile is the Terraform entrypoint every challenge directory
// must contain.
const RootDefinitionFile = "main.tf"

// Spec holds the declared configuration of one challenge as loaded from the
// challenges registry. Paths are relative to the repository base path.
type Spec struct {
	Provider      Provider   `yaml:"provider" validate:"required,provider"`
	Difficulty    Difficulty `yaml:"difficulty,omitempty" validate:"omitempty,difficulty"`
	Description   string     `yaml:"description,omitempty"`
	Directory     string     `yaml:"directory" validate:"required"`
	BackendConfig string     `yaml:"backend_config" validate:"required"`
	WebContent    string     `yaml:"web_content,omitempty"`
	Variables     Variables  `yaml:"variables,omitempty"`
	Outputs       []string   `yaml:"outputs,omitempty"`
	Tags          []string   `yaml:"tags,omitempty"`
}

// Descriptor is the in-memory representation of one challenge: its declared
// spec plus absolute filesystem paths computed at construction. Descriptors
// are built fresh on every registry lookup and never mutated afterwards; all
// persistent state lives in the Terraform working directory.
type Descriptor struct {
	Name string `validate:"required"`
	Spec `validate:"required"`

	// Absolute paths derived from the base path.
	Dir               string
	BackendConfigPath string
	WebContentPath    string
}

// New constructs a Descriptor, joining relative spec paths with basePath.
func New(name string, spec Spec, basePath string) *Descriptor {
	d := &Descriptor{Name: name, Spec: spec}
	if spec.Directory != "" {
		d.Dir = filepath.Join(basePath, spec.Directory)
	}
	if spec.BackendConfig != "" {
		d.BackendConfigPath = filepath.Join(basePath, spec.BackendConfig)
	}
	if spec.WebContent != "" {
		d.WebContentPath = filepath.Join(basePath, spec.WebContent)
	}
	return d
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("provider", func(fl validator.FieldLevel) bool {
			switch Provider(fl.Field().String()) {
			case ProviderAWS, ProviderAzure, ProviderGCP:
				return true
			}
			return false
		})

		_ = v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
			switch Difficulty(fl.Field().String()) {
			case DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced:
				return true
			}
			return false
		})

		validateInst = v
	})

	return validateInst
}

// Validate checks the descriptor invariants and returns every problem found,
// so an operator sees the full list instead of fixing one issue per run.
func (d *Descriptor) Validate() []string {
	var problems []string

	if err := validatorInstance().Struct(d); err != nil {
		if ves, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range ves {
				problems = append(problems, describeFieldError(ve))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	if d.Dir != "" {
		if !dirExists(d.Dir) {
			problems = append(problems, fmt.Sprintf("challenge directory not found: %s", d.Dir))
		} else if !fileExists(filepath.Join(d.Dir, RootDefinitionFile)) {
			problems = append(problems, fmt.Sprintf("%s not found in challenge directory: %s", RootDefinitionFile, d.Dir))
		}
	}

	if d.BackendConfigPath != "" && !fileExists(d.BackendConfigPath) {
		problems = append(problems, fmt.Sprintf("backend config file not found: %s", d.BackendConfigPath))
	}

	if d.WebContentPath != "" && !dirExists(d.WebContentPath) {
		problems = append(problems, fmt.Sprintf("web content directory not found: %s", d.WebContentPath))
	}

	return problems
}

func describeFieldError(ve validator.FieldError) string {
	field := strings.ToLower(ve.Field())
	switch ve.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "provider":
		return fmt.Sprintf("invalid provider: %s", ve.Value())
	case "difficulty":
		return fmt.Sprintf("invalid difficulty: %s", ve.Value())
	}
	return fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("Challenge(name=%q, provider=%q)", d.Name, d.Provider)
}
