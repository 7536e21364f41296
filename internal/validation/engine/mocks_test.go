package engine

import (
	"context"

	"lcvet/internal/events"
	rulemodels "lcvet/internal/rules/models"
	"lcvet/internal/validation/models"
)

type failingFinder struct {
	err error
}

func (f *failingFinder) Find(context.Context, rulemodels.Filter) ([]rulemodels.Rule, error) {
	return nil, f.err
}

type failingAppender struct {
	err   error
	calls int
}

func (f *failingAppender) Append(context.Context, *models.Record) error {
	f.calls++
	return f.err
}

type capturingPublisher struct {
	events []events.RunCompleted
}

func (p *capturingPublisher) RunCompleted(_ context.Context, event events.RunCompleted) {
	p.events = append(p.events, event)
}
