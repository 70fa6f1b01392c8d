package report

import (
	"io"
	"strings"

	"github.com/nao1215/markdown"
)

// MarkdownWriter renders the report as GitHub-flavoured Markdown, suitable
// for attaching to a bug report.
type MarkdownWriter struct {
	out io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(out io.Writer) *MarkdownWriter {
	return &MarkdownWriter{out: out}
}

func (w *MarkdownWriter) Write(r *Report) error {
	md := markdown.NewMarkdown(w.out)

	md.H1("Printer Troubleshooting Report")
	md.PlainText("")
	props := [][]string{}
	if r.Queue != "" {
		props = append(props, []string{"Queue", "`" + r.Queue + "`"})
	}
	if r.SessionID != "" {
		props = append(props, []string{"Session", "`" + r.SessionID + "`"})
	}
	if len(props) > 0 {
		md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: props})
		md.PlainText("")
	}

	md.H2("Problems")
	md.PlainText("")
	if len(r.Pages) == 0 {
		md.Tip("No problems found.")
		md.PlainText("")
	}
	for _, shown := range r.Pages {
		md.H3(shown.Page.Title)
		md.PlainText("")
		summary, detail, _ := strings.Cut(shown.Page.Text, "\n")
		md.Warning(summary)
		md.PlainText("")
		if detail = strings.TrimRight(detail, "\n"); detail != "" {
			md.CodeBlocks(markdown.SyntaxHighlight("text"), detail)
			md.PlainText("")
		}
		if len(shown.Page.Actions) > 0 {
			labels := make([]string, 0, len(shown.Page.Actions))
			for _, action := range shown.Page.Actions {
				labels = append(labels, action.Label)
			}
			md.BulletList(labels...)
			md.PlainText("")
		}
	}

	if rows := answerRows(r.Answers); len(rows) > 0 {
		md.H2("Facts")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"Fact", "Value"}, Rows: rows})
		md.PlainText("")
	}
	if rows := defaultRows(r.Defaults); len(rows) > 0 {
		md.H2("PPD Defaults")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"Group", "Subgroup", "Option", "Default"}, Rows: rows})
		md.PlainText("")
	}

	md.HorizontalRule()
	return md.Build()
}
