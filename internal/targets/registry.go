package targets

import (
	"strings"
)

// Registry maps target names to targets, preserving declaration order.
type Registry struct {
	targets           map[string]Target
	declarationOrder  []string
	defaultTargetName string
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{targets: make(map[string]Target)}
}

// Register adds a target. Prerequisite names are trimmed and deduplicated while
// keeping their declared order; references are checked by Resolve and Validate.
func (registry *Registry) Register(target Target) error {
	name := strings.TrimSpace(target.Name)
	if len(name) == 0 {
		return ErrTargetNameMissing
	}
	if _, exists := registry.targets[name]; exists {
		return DuplicateTargetError{TargetName: name}
	}

	registered := target.clone()
	registered.Name = name
	registered.Prerequisites = sanitizePrerequisites(target.Prerequisites)

	registry.targets[name] = registered
	registry.declarationOrder = append(registry.declarationOrder, name)
	return nil
}

// SetDefault records the target that runs when none is requested.
func (registry *Registry) SetDefault(targetName string) error {
	name := strings.TrimSpace(targetName)
	if _, exists := registry.targets[name]; !exists {
		return UnknownTargetError{TargetName: name}
	}
	registry.defaultTargetName = name
	return nil
}

// DefaultTargetName returns the explicit default target, or the first declared
// target when no default was set.
func (registry *Registry) DefaultTargetName() string {
	if len(registry.defaultTargetName) > 0 {
		return registry.defaultTargetName
	}
	if len(registry.declarationOrder) == 0 {
		return ""
	}
	return registry.declarationOrder[0]
}

// Lookup returns a copy of the named target.
func (registry *Registry) Lookup(targetName string) (Target, bool) {
	target, exists := registry.targets[strings.TrimSpace(targetName)]
	if !exists {
		return Target{}, false
	}
	return target.clone(), true
}

// Names lists registered target names in declaration order.
func (registry *Registry) Names() []string {
	return append([]string(nil), registry.declarationOrder...)
}

// Validate resolves every registered target so that undeclared references and
// cycles surface before anything executes.
func (registry *Registry) Validate() error {
	for _, name := range registry.declarationOrder {
		if _, resolveError := registry.Resolve(name); resolveError != nil {
			return resolveError
		}
	}
	return nil
}

func sanitizePrerequisites(prerequisites []string) []string {
	if len(prerequisites) == 0 {
		return nil
	}
	sanitized := make([]string, 0, len(prerequisites))
	seen := make(map[string]struct{}, len(prerequisites))
	for _, prerequisite := range prerequisites {
		name := strings.TrimSpace(prerequisite)
		if len(name) == 0 {
			continue
		}
		if _, duplicate := seen[name]; duplicate {
			continue
		}
		seen[name] = struct{}{}
		sanitized = append(sanitized, name)
	}
	return sanitized
}
