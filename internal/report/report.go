package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"printdoctor/internal/drivers"
	"printdoctor/internal/ppd"
	"printdoctor/internal/ppdcheck"
	"printdoctor/internal/troubleshoot"
)

// Supported formats.
const (
	FormatConsole  = "console"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// Formats lists the accepted format names.
var Formats = []string{FormatConsole, FormatJSON, FormatYAML, FormatMarkdown}

// Report is everything a run has to say.
type Report struct {
	Queue     string               `json:"queue,omitempty" yaml:"queue,omitempty"`
	SessionID string               `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Pages     []troubleshoot.Shown `json:"pages" yaml:"pages"`
	Answers   troubleshoot.Answers `json:"answers,omitempty" yaml:"answers,omitempty"`
	Defaults  ppd.Defaults         `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

// FromResult builds a report from a troubleshooter run.
func FromResult(queue, sessionID string, result troubleshoot.Result) *Report {
	r := &Report{
		Queue:     queue,
		SessionID: sessionID,
		Pages:     result.Shown,
		Answers:   result.Answers,
	}
	if defaults, ok := result.Answers[troubleshoot.KeyPPDDefaults].(ppd.Defaults); ok {
		r.Defaults = defaults
	}
	return r
}

// Writer renders a report.
type Writer interface {
	Write(r *Report) error
}

// New returns a Writer for format.
func New(format string, out io.Writer) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatConsole:
		return NewConsoleWriter(out, ShouldColorize(out)), nil
	case FormatJSON:
		return NewJSONWriter(out), nil
	case FormatYAML:
		return NewYAMLWriter(out), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(out), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// ShouldColorize reports whether writer is a terminal that takes ANSI colours.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// answerRows flattens answers into sorted key/value rows. Defaults are left
// to the defaults table.
func answerRows(answers troubleshoot.Answers) [][]string {
	keys := make([]string, 0, len(answers))
	for key := range answers {
		if key == troubleshoot.KeyPPDDefaults {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, formatAnswer(answers[key])})
	}
	return rows
}

func formatAnswer(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case string:
		return v
	case []string:
		if len(v) == 0 {
			return "-"
		}
		return strings.Join(v, ", ")
	case drivers.Missing:
		return fmt.Sprintf("packages: %s; executables: %s", joinOrDash(v.Packages), joinOrDash(v.Executables))
	case ppdcheck.CheckerOutput:
		lines := strings.Count(strings.TrimRight(v.Stdout, "\n"), "\n")
		if v.Stdout != "" {
			lines++
		}
		return fmt.Sprintf("%d line(s) of diagnostics", lines)
	case ppd.Defaults:
		return fmt.Sprintf("%d group(s)", len(v))
	default:
		return fmt.Sprint(v)
	}
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

// defaultRows lists defaults as group, subgroup, option, choice rows sorted
// by group then subgroup then option.
func defaultRows(defaults ppd.Defaults) [][]string {
	groups := make([]string, 0, len(defaults))
	for name := range defaults {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	var rows [][]string
	for _, group := range groups {
		gd := defaults[group]
		for _, option := range sortedKeys(gd.Options) {
			rows = append(rows, []string{group, "", option, gd.Options[option]})
		}
		subgroups := make([]string, 0, len(gd.Subgroups))
		for name := range gd.Subgroups {
			subgroups = append(subgroups, name)
		}
		sort.Strings(subgroups)
		for _, sub := range subgroups {
			options := gd.Subgroups[sub]
			for _, option := range sortedKeys(options) {
				rows = append(rows, []string{group, sub, option, options[option]})
			}
		}
	}
	return rows
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
