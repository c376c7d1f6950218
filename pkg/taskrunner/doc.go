// Package taskrunner wires the target runner for command-line use. BuildDependencies
// resolves the logger, the target registry and the process-spawning step executor
// once, Resolve turns them into an Executor, and the returned Executor prints a
// one-line run summary after every run. Tests swap in fakes through Factory.
package taskrunner
