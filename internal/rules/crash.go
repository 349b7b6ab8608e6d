package rules

import (
	"fmt"

	"github.com/logdoctor/logdoctor-go/internal/matcher"
	"github.com/logdoctor/logdoctor-go/pkg/logdoctor/check"
)

// Matches the head of a vanilla crash report:
//
//	---- Minecraft Crash Report ----
//	// <joke>
//
//	Time: <time>
//	Description: <description>
//
//	<first line of the stack trace>
//
// Captures: (1) description, (2) proximate error
var crashReportPattern = matcher.MustCompile(
	`---- Minecraft Crash Report ----\n// .+\n\nTime: .+\nDescription: (.+)\n\n(.+)\n`,
)

// CrashReport summarizes the description and proximate error of a crash report.
var CrashReport = define("crash-report",
	"Summarizes the description and first error line of a crash report",
	crashReport)

func crashReport(log string, _ *check.Environment) (*check.Report, error) {
	m := crashReportPattern.Find(log)
	if m == nil {
		return nil, nil
	}
	g, err := m.Groups(1, 2)
	if err != nil {
		return nil, err
	}
	description, proximate := g[0], g[1]

	return &check.Report{
		Title:       "Crash report analysis",
		Description: fmt.Sprintf("Context: `%s`\n```\n%s\n```", description, proximate),
		Severity:    check.None,
	}, nil
}
