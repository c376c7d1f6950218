package taskrunner

import (
	"fmt"
	"strings"
	"time"

	"github.com/tyemirov/taskline/internal/targets"
)

// RenderSummaryLine returns the line printed after every run.
func RenderSummaryLine(result targets.ExecutionResult) string {
	durationHuman := "0s"
	if result.Duration > 0 {
		durationHuman = result.Duration.Round(time.Millisecond).String()
	}

	parts := []string{
		fmt.Sprintf("Summary: targets=%d", len(result.ExecutedTargetNames())),
		fmt.Sprintf("steps=%d", result.StartedStepCount()),
		fmt.Sprintf("exit_code=%d", result.ExitCode),
	}
	if result.DryRun {
		parts = append(parts, "dry_run=true")
	}
	parts = append(parts, fmt.Sprintf("duration_human=%s", durationHuman))
	parts = append(parts, fmt.Sprintf("duration_ms=%d", result.Duration.Milliseconds()))

	return strings.Join(parts, " ")
}
