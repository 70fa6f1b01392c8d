package troubleshoot

import (
	"context"
	"log/slog"

	"printdoctor/internal/logging"
)

// QueueChecker reports whether a print queue exists.
type QueueChecker interface {
	QueueExists(ctx context.Context, queue string) (bool, error)
}

// QueueFacts fills in the queue facts later questions depend on. Facts
// already present in the answers are kept; cups_queue_listed is asked of the
// print server otherwise. It never displays a page.
type QueueFacts struct {
	Queue   string
	Remote  bool
	Checker QueueChecker
	Logger  *slog.Logger

	answers Answers
}

func (q *QueueFacts) Name() string { return "queue-facts" }

func (q *QueueFacts) Display(ctx context.Context, answers Answers) bool {
	q.answers = Answers{}
	if !answers.Has(KeyQueue) && q.Queue != "" {
		q.answers[KeyQueue] = q.Queue
	}
	if !answers.Has(KeyPrinterRemote) {
		q.answers[KeyPrinterRemote] = q.Remote
	}
	if answers.Has(KeyQueueListed) {
		return false
	}
	queue, _ := answers.Merge(q.answers).String(KeyQueue)
	listed := false
	if q.Checker != nil && queue != "" {
		exists, err := q.Checker.QueueExists(ctx, queue)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, logging.NewComponentLogger(q.Logger, "troubleshoot")),
				"queue lookup failed", "queue_lookup",
				logging.String(logging.FieldQueue, queue),
				logging.Error(err),
				logging.String(logging.FieldImpact, "queue treated as not listed"),
			)
		} else {
			listed = exists
		}
	}
	q.answers[KeyQueueListed] = listed
	return false
}

func (q *QueueFacts) CollectAnswer() Answers { return q.answers }

func (q *QueueFacts) Page() Page { return Page{} }
