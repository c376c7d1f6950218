package targets

import (
	"strings"
)

type resolution struct {
	registry   *Registry
	visited    map[string]struct{}
	inProgress map[string]struct{}
	path       []string
	order      []Target
}

// Resolve returns the linear execution order for the named target: a depth-first
// walk of prerequisites in declared order where every reachable target appears
// once, at its first visit, and the requested target comes last.
func (registry *Registry) Resolve(targetName string) ([]Target, error) {
	walk := &resolution{
		registry:   registry,
		visited:    make(map[string]struct{}),
		inProgress: make(map[string]struct{}),
	}
	if visitError := walk.visit(strings.TrimSpace(targetName), ""); visitError != nil {
		return nil, visitError
	}
	return walk.order, nil
}

func (walk *resolution) visit(targetName string, referencedBy string) error {
	if _, done := walk.visited[targetName]; done {
		return nil
	}
	if _, active := walk.inProgress[targetName]; active {
		return CyclicDependencyError{Path: walk.cyclePath(targetName)}
	}

	target, exists := walk.registry.targets[targetName]
	if !exists {
		return UnknownTargetError{TargetName: targetName, ReferencedBy: referencedBy}
	}

	walk.inProgress[targetName] = struct{}{}
	walk.path = append(walk.path, targetName)

	for _, prerequisite := range target.Prerequisites {
		if visitError := walk.visit(prerequisite, targetName); visitError != nil {
			return visitError
		}
	}

	walk.path = walk.path[:len(walk.path)-1]
	delete(walk.inProgress, targetName)
	walk.visited[targetName] = struct{}{}
	walk.order = append(walk.order, target.clone())
	return nil
}

func (walk *resolution) cyclePath(reentered string) []string {
	startIndex := 0
	for index, name := range walk.path {
		if name == reentered {
			startIndex = index
			break
		}
	}
	cycle := append([]string(nil), walk.path[startIndex:]...)
	return append(cycle, reentered)
}
