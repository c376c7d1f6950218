package main

import (
	"fmt"
	"os"

	"github.com/tyemirov/taskline/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the taskline command-line application and exits with the run's status.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(cli.ExitCode(executionError))
	}
}
