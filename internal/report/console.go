package report

import (
	"fmt"
	"io"
	"strings"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

// ConsoleWriter prints human-readable output with tables.
type ConsoleWriter struct {
	out      io.Writer
	colorize bool
}

// NewConsoleWriter creates a ConsoleWriter. colorize enables ANSI colours.
func NewConsoleWriter(out io.Writer, colorize bool) *ConsoleWriter {
	return &ConsoleWriter{out: out, colorize: colorize}
}

func (w *ConsoleWriter) Write(r *Report) error {
	var b strings.Builder

	if r.Queue != "" {
		fmt.Fprintf(&b, "Queue: %s\n", r.Queue)
	}
	if len(r.Pages) == 0 && r.Answers != nil {
		b.WriteString(w.paint(ansiGreen, "No problems found.") + "\n")
	}
	for _, shown := range r.Pages {
		b.WriteString("\n")
		for _, line := range w.sectionHeader(shown.Page.Title) {
			b.WriteString(line + "\n")
		}
		b.WriteString(strings.TrimRight(shown.Page.Text, "\n") + "\n")
		for _, action := range shown.Page.Actions {
			fmt.Fprintf(&b, "%s\n", w.paint(ansiYellow, fmt.Sprintf("  [%s] %s", action.ID, action.Label)))
		}
	}

	if rows := answerRows(r.Answers); len(rows) > 0 {
		b.WriteString("\n")
		b.WriteString(Table(Columns("Fact", "Value"), rows) + "\n")
	}
	if rows := defaultRows(r.Defaults); len(rows) > 0 {
		b.WriteString("\n")
		b.WriteString(Table(Columns("Group", "Subgroup", "Option", "Default"), rows) + "\n")
	}

	_, err := io.WriteString(w.out, b.String())
	return err
}

func (w *ConsoleWriter) sectionHeader(title string) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len([]rune(line)))
	return []string{w.paint(ansiBlue, line), w.paint(ansiBlue, rule)}
}

func (w *ConsoleWriter) paint(color, s string) string {
	if !w.colorize {
		return s
	}
	return color + s + ansiReset
}
