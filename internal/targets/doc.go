// Package targets holds the task runner core: a registry of named targets with
// ordered prerequisites and steps, depth-first resolution of a requested target
// into a linear plan, and a fail-fast sequential runner that executes each
// planned step through an injected StepExecutor.
package targets
