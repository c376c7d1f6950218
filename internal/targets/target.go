package targets

import (
	"strings"
)

// Step is a single external command invocation with a fixed argument list.
type Step struct {
	Command   string
	Arguments []string
}

// Argv returns the command followed by its arguments.
func (step Step) Argv() []string {
	argv := make([]string, 0, len(step.Arguments)+1)
	argv = append(argv, step.Command)
	return append(argv, step.Arguments...)
}

// String renders the step the way a shell user would type it.
func (step Step) String() string {
	return strings.Join(step.Argv(), " ")
}

// NewStep builds a step from an argv list. The first entry is the command.
func NewStep(argv ...string) Step {
	if len(argv) == 0 {
		return Step{}
	}
	arguments := make([]string, len(argv)-1)
	copy(arguments, argv[1:])
	return Step{Command: argv[0], Arguments: arguments}
}

// Target is a named unit of work. Prerequisites complete before Steps run.
type Target struct {
	Name          string
	Description   string
	Prerequisites []string
	Steps         []Step
}

func (target Target) clone() Target {
	cloned := Target{
		Name:          target.Name,
		Description:   target.Description,
		Prerequisites: append([]string(nil), target.Prerequisites...),
		Steps:         make([]Step, 0, len(target.Steps)),
	}
	for _, step := range target.Steps {
		cloned.Steps = append(cloned.Steps, Step{
			Command:   step.Command,
			Arguments: append([]string(nil), step.Arguments...),
		})
	}
	return cloned
}
