package main

import (
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"atelier/internal/workflow"
)

var titler = cases.Title(language.English)

// displayLabel turns snake_case identifiers into operator-facing labels.
func displayLabel(value string) string {
	return titler.String(strings.ReplaceAll(value, "_", " "))
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatAssignee(task *workflow.Task) string {
	if !task.Assigned() {
		return "-"
	}
	if task.AssignedStaffName != "" {
		return task.AssignedStaffName
	}
	return task.AssignedStaffID
}

func formatMandatory(mandatory bool) string {
	if mandatory {
		return "yes"
	}
	return "no"
}

func shortTaskID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
