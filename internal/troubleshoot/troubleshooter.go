package troubleshoot

import (
	"context"
	"log/slog"

	"printdoctor/internal/logging"
	"printdoctor/internal/services"
)

// Shown records a question that displayed a page.
type Shown struct {
	Question string `json:"question" yaml:"question"`
	Page     Page   `json:"page" yaml:"page"`
}

// Result is the outcome of a troubleshooter run.
type Result struct {
	Answers Answers `json:"answers" yaml:"answers"`
	Shown   []Shown `json:"shown" yaml:"shown"`
}

// Troubleshooter runs questions in order.
type Troubleshooter struct {
	questions []Question
	logger    *slog.Logger
}

// New constructs a Troubleshooter.
func New(logger *slog.Logger, questions ...Question) *Troubleshooter {
	return &Troubleshooter{
		questions: questions,
		logger:    logging.NewComponentLogger(logger, "troubleshoot"),
	}
}

// Run asks every question once. Each question sees the initial answers plus
// everything produced before it, whether or not earlier questions displayed.
func (t *Troubleshooter) Run(ctx context.Context, initial Answers) Result {
	answers := initial.Clone()
	if answers == nil {
		answers = Answers{}
	}
	var shown []Shown
	for _, q := range t.questions {
		if ctx.Err() != nil {
			break
		}
		qctx := services.WithCheck(ctx, q.Name())
		displayed := q.Display(qctx, answers.Clone())
		answers = answers.Merge(q.CollectAnswer())
		logging.WithContext(qctx, t.logger).Debug("question evaluated",
			logging.Args(logging.DecisionAttrs("display", boolLabel(displayed), q.Name())...)...)
		if displayed {
			shown = append(shown, Shown{Question: q.Name(), Page: q.Page()})
		}
	}
	return Result{Answers: answers, Shown: shown}
}

func boolLabel(v bool) string {
	if v {
		return "shown"
	}
	return "skipped"
}
