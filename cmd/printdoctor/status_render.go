package main

import (
	"fmt"
	"strings"

	"printdoctor/internal/deps"
	"printdoctor/internal/preflight"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 18
	statusIndent     = "  "
)

// statusKind is the bracketed tag of a status line and its colour.
type statusKind struct {
	label string
	color string
}

var (
	statusInfo  = statusKind{label: "INFO", color: ansiBlue}
	statusOK    = statusKind{label: "OK", color: ansiGreen}
	statusWarn  = statusKind{label: "WARN", color: ansiYellow}
	statusError = statusKind{label: "ERROR", color: ansiRed}
)

func paint(color, s string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

// renderStatusLine formats "  Label:   [KIND] message".
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	tag := "[" + kind.label + "]"
	if message != "" {
		tag += " " + message
	}
	return paint(kind.color, fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", tag), colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	return []string{paint(ansiBlue, line, colorize), paint(ansiBlue, strings.Repeat("-", len(line)), colorize)}
}

func checkStatusLine(result preflight.Result, colorize bool) string {
	if result.Passed {
		return renderStatusLine(result.Name, statusOK, result.Detail, colorize)
	}
	return renderStatusLine(result.Name, statusError, result.Detail, colorize)
}

// dependencyLines renders a summary line, one line per program, and a list of
// the unavailable ones. Missing optional programs are warnings.
func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+2)
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		lines = append(lines, renderStatusLine("Summary", statusError, fmt.Sprintf("%d required program(s) missing", len(missing)), colorize))
	} else {
		lines = append(lines, renderStatusLine("Summary", statusOK, "All required programs available", colorize))
	}

	var unavailable []string
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Path != "" {
				message = fmt.Sprintf("Ready (%s)", dep.Path)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		unavailable = append(unavailable, dep.Name)
	}
	if len(unavailable) > 0 {
		lines = append(lines, renderStatusLine("Missing programs", statusWarn, strings.Join(unavailable, ", "), colorize))
	}
	return lines
}
