package troubleshoot_test

import (
	"context"
	"errors"
	"testing"

	"printdoctor/internal/logging"
	"printdoctor/internal/troubleshoot"
)

type scriptedQuestion struct {
	name    string
	show    bool
	produce troubleshoot.Answers
	seen    troubleshoot.Answers
}

func (q *scriptedQuestion) Name() string { return q.name }

func (q *scriptedQuestion) Display(ctx context.Context, answers troubleshoot.Answers) bool {
	q.seen = answers
	return q.show
}

func (q *scriptedQuestion) CollectAnswer() troubleshoot.Answers { return q.produce }

func (q *scriptedQuestion) Page() troubleshoot.Page {
	return troubleshoot.Page{Title: q.name + " title"}
}

type stubQueues struct {
	exists bool
	err    error
	asked  []string
}

func (s *stubQueues) QueueExists(ctx context.Context, queue string) (bool, error) {
	s.asked = append(s.asked, queue)
	return s.exists, s.err
}

func TestAnswersTypedGetters(t *testing.T) {
	a := troubleshoot.Answers{"b": true, "s": "x", "l": []string{"p"}}
	if v, ok := a.Bool("b"); !ok || !v {
		t.Fatal("expected bool")
	}
	if _, ok := a.Bool("s"); ok {
		t.Fatal("string must not read as bool")
	}
	if v, ok := a.String("s"); !ok || v != "x" {
		t.Fatal("expected string")
	}
	if v, ok := a.Strings("l"); !ok || len(v) != 1 {
		t.Fatal("expected strings")
	}
	merged := a.Merge(troubleshoot.Answers{"s": "y"})
	if v, _ := merged.String("s"); v != "y" {
		t.Fatalf("merge should overlay, got %q", v)
	}
	if v, _ := a.String("s"); v != "x" {
		t.Fatal("merge must not modify receiver")
	}
}

func TestRunMergesAnswersFromHiddenQuestions(t *testing.T) {
	first := &scriptedQuestion{name: "first", produce: troubleshoot.Answers{"a": 1}}
	second := &scriptedQuestion{name: "second", show: true, produce: troubleshoot.Answers{"b": 2}}
	ts := troubleshoot.New(logging.NewNop(), first, second)

	result := ts.Run(context.Background(), troubleshoot.Answers{"start": true})

	if !second.seen.Has("a") || !second.seen.Has("start") {
		t.Fatalf("second question should see earlier answers, got %v", second.seen)
	}
	if len(result.Answers) != 3 {
		t.Fatalf("unexpected answers %v", result.Answers)
	}
	if len(result.Shown) != 1 || result.Shown[0].Question != "second" || result.Shown[0].Page.Title != "second title" {
		t.Fatalf("unexpected shown pages %+v", result.Shown)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	q := &scriptedQuestion{name: "q", show: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := troubleshoot.New(nil, q).Run(ctx, nil)
	if q.seen != nil || len(result.Shown) != 0 {
		t.Fatal("expected no questions to run")
	}
}

func TestQueueFactsAsksServerWhenNotListed(t *testing.T) {
	queues := &stubQueues{exists: true}
	facts := &troubleshoot.QueueFacts{Queue: "office", Remote: true, Checker: queues}

	if facts.Display(context.Background(), troubleshoot.Answers{}) {
		t.Fatal("queue facts never display")
	}
	got := facts.CollectAnswer()
	if v, _ := got.Bool(troubleshoot.KeyQueueListed); !v {
		t.Fatalf("expected listed, got %v", got)
	}
	if v, _ := got.Bool(troubleshoot.KeyPrinterRemote); !v {
		t.Fatal("expected remote fact")
	}
	if v, _ := got.String(troubleshoot.KeyQueue); v != "office" {
		t.Fatalf("unexpected queue %q", v)
	}
	if len(queues.asked) != 1 || queues.asked[0] != "office" {
		t.Fatalf("unexpected queries %v", queues.asked)
	}
}

func TestQueueFactsKeepsProvidedAnswers(t *testing.T) {
	queues := &stubQueues{exists: true}
	facts := &troubleshoot.QueueFacts{Queue: "other", Checker: queues}

	facts.Display(context.Background(), troubleshoot.Answers{
		troubleshoot.KeyQueue:       "office",
		troubleshoot.KeyQueueListed: false,
	})
	got := facts.CollectAnswer()
	if got.Has(troubleshoot.KeyQueue) || got.Has(troubleshoot.KeyQueueListed) {
		t.Fatalf("provided facts must not be overwritten, got %v", got)
	}
	if len(queues.asked) != 0 {
		t.Fatal("server must not be asked when listed fact is given")
	}
}

func TestQueueFactsTreatsLookupErrorAsUnlisted(t *testing.T) {
	facts := &troubleshoot.QueueFacts{Queue: "office", Checker: &stubQueues{exists: true, err: errors.New("refused")}}
	facts.Display(context.Background(), troubleshoot.Answers{})
	if v, ok := facts.CollectAnswer().Bool(troubleshoot.KeyQueueListed); !ok || v {
		t.Fatalf("expected listed=false, got %v (%v)", v, ok)
	}
}
