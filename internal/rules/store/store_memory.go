package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"lcvet/internal/rules/models"
)

// InMemoryStore keeps rules in insertion order, matching the postgres store's
// iteration contract.
type InMemoryStore struct {
	mu    sync.RWMutex
	rules []models.Rule
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Create(_ context.Context, rule *models.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rules {
		if r.RuleID == rule.RuleID {
			return ErrDuplicate
		}
	}
	rule.Normalize()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}
	s.rules = append(s.rules, *rule)
	return nil
}

func (s *InMemoryStore) FindByRuleID(_ context.Context, ruleID string) (*models.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.rules {
		if s.rules[i].RuleID == ruleID {
			rule := s.rules[i]
			return &rule, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) Find(_ context.Context, filter models.Filter) ([]models.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Rule
	domainSources := filter.DomainSources()
	for _, rule := range s.rules {
		if filter.Source != "" && rule.Source != filter.Source {
			continue
		}
		if domainSources != nil && !slices.Contains(domainSources, rule.Source) {
			continue
		}
		if filter.Kind != "" && rule.Kind != filter.Kind {
			continue
		}
		matched = append(matched, rule)
	}

	if filter.Skip > 0 {
		if filter.Skip >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Skip:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return slices.Clone(matched), nil
}

func (s *InMemoryStore) Update(_ context.Context, rule *models.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].RuleID == rule.RuleID {
			rule.Normalize()
			now := time.Now().UTC()
			rule.UpdatedAt = &now
			rule.ID = s.rules[i].ID
			rule.CreatedAt = s.rules[i].CreatedAt
			s.rules[i] = *rule
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryStore) Delete(_ context.Context, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].RuleID == ruleID {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
