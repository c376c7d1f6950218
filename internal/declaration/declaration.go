// Package declaration loads the static target list that ships with taskline.
package declaration

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tyemirov/taskline/internal/targets"
)

const (
	invalidDeclarationMessageConstant = "invalid target declaration"
	decodeFailedTemplateConstant      = "%w: %w"
	emptyDocumentMessageConstant      = "no targets declared"
	emptyStepTemplateConstant         = "target %q step %d has no command"
)

//go:embed targets.yaml
var embeddedTargets []byte

// ErrInvalidDeclaration marks declarations that cannot be decoded into targets.
var ErrInvalidDeclaration = errors.New(invalidDeclarationMessageConstant)

type document struct {
	Default string              `yaml:"default"`
	Targets []targetDeclaration `yaml:"targets"`
}

type targetDeclaration struct {
	Name          string     `yaml:"name"`
	Description   string     `yaml:"description"`
	Prerequisites []string   `yaml:"prerequisites"`
	Steps         [][]string `yaml:"steps"`
}

// Default returns the validated registry built from the embedded target list.
func Default() (*targets.Registry, error) {
	return Decode(bytes.NewReader(embeddedTargets))
}

// EmbeddedDocument returns a copy of the embedded YAML document.
func EmbeddedDocument() []byte {
	return append([]byte(nil), embeddedTargets...)
}

// Decode reads a target declaration document and returns a validated registry.
// Unknown fields, empty step argv lists, undeclared prerequisites and cycles are rejected.
func Decode(reader io.Reader) (*targets.Registry, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	var parsed document
	if decodeError := decoder.Decode(&parsed); decodeError != nil {
		if errors.Is(decodeError, io.EOF) {
			return nil, fmt.Errorf(decodeFailedTemplateConstant, ErrInvalidDeclaration, errors.New(emptyDocumentMessageConstant))
		}
		return nil, fmt.Errorf(decodeFailedTemplateConstant, ErrInvalidDeclaration, decodeError)
	}
	if len(parsed.Targets) == 0 {
		return nil, fmt.Errorf(decodeFailedTemplateConstant, ErrInvalidDeclaration, errors.New(emptyDocumentMessageConstant))
	}

	registry := targets.NewRegistry()
	for _, declared := range parsed.Targets {
		target, buildError := declared.build()
		if buildError != nil {
			return nil, buildError
		}
		if registrationError := registry.Register(target); registrationError != nil {
			return nil, registrationError
		}
	}

	if defaultName := strings.TrimSpace(parsed.Default); len(defaultName) > 0 {
		if defaultError := registry.SetDefault(defaultName); defaultError != nil {
			return nil, defaultError
		}
	}

	if validationError := registry.Validate(); validationError != nil {
		return nil, validationError
	}
	return registry, nil
}

// IsDeclarationError reports whether the error describes a broken target declaration.
func IsDeclarationError(err error) bool {
	return errors.Is(err, ErrInvalidDeclaration) || targets.IsConfigurationError(err)
}

func (declared targetDeclaration) build() (targets.Target, error) {
	target := targets.Target{
		Name:          declared.Name,
		Description:   strings.TrimSpace(declared.Description),
		Prerequisites: declared.Prerequisites,
		Steps:         make([]targets.Step, 0, len(declared.Steps)),
	}
	for stepIndex, argv := range declared.Steps {
		if len(argv) == 0 || len(strings.TrimSpace(argv[0])) == 0 {
			return targets.Target{}, fmt.Errorf(decodeFailedTemplateConstant, ErrInvalidDeclaration,
				fmt.Errorf(emptyStepTemplateConstant, strings.TrimSpace(declared.Name), stepIndex+1))
		}
		target.Steps = append(target.Steps, targets.NewStep(argv...))
	}
	return target, nil
}
