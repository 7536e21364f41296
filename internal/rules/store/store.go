// Package store persists rules. The postgres implementation is the production
// path; the in-memory implementation backs unit tests.
package store

import (
	"context"
	"errors"

	"lcvet/internal/rules/models"
)

var (
	// ErrNotFound is returned when no rule matches the given rule id.
	ErrNotFound = errors.New("rule not found")
	// ErrDuplicate is returned when a rule id already exists.
	ErrDuplicate = errors.New("rule already exists")
)

// Store is the full rule persistence contract.
type Store interface {
	Create(ctx context.Context, rule *models.Rule) error
	FindByRuleID(ctx context.Context, ruleID string) (*models.Rule, error)
	Find(ctx context.Context, filter models.Filter) ([]models.Rule, error)
	Update(ctx context.Context, rule *models.Rule) error
	Delete(ctx context.Context, ruleID string) error
}
