package troubleshoot

import "context"

// Action is a button offered on a page.
type Action struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Page is what a displayed question shows.
type Page struct {
	Title   string   `json:"title" yaml:"title"`
	Text    string   `json:"text" yaml:"text"`
	Actions []Action `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Question is one step of the troubleshooter.
type Question interface {
	// Name identifies the question in logs and reports.
	Name() string
	// Display inspects the system given the answers so far and reports
	// whether the question has something to show.
	Display(ctx context.Context, answers Answers) bool
	// CollectAnswer returns the facts produced by the last Display.
	CollectAnswer() Answers
	// Page returns the content to show after Display returned true.
	Page() Page
}
