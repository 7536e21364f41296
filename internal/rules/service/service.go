// Package service orchestrates rule management: CRUD, ingestion with oracle
// classification, and plain-language explanations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lcvet/internal/ingest"
	"lcvet/internal/oracle"
	"lcvet/internal/platform/metrics"
	"lcvet/internal/rules/models"
	"lcvet/internal/rules/store"
	dErrors "lcvet/pkg/domain-errors"
)

// classifyConcurrency bounds concurrent oracle calls during batch ingestion.
const classifyConcurrency = 4

// Classifier is the slice of the oracle this service needs.
type Classifier interface {
	Classify(ctx context.Context, ruleText, ruleID string) (oracle.Classification, error)
	Explain(ctx context.Context, ruleText string) (string, error)
}

// Service manages the rule catalog.
type Service struct {
	store      store.Store
	classifier Classifier
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(st store.Store, classifier Classifier, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("rule store is required")
	}
	if classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	s := &Service{store: st, classifier: classifier}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Get returns one rule by its public rule id.
func (s *Service) Get(ctx context.Context, ruleID string) (*models.Rule, error) {
	rule, err := s.store.FindByRuleID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "rule not found")
		}
		return nil, fmt.Errorf("find rule: %w", err)
	}
	return rule, nil
}

// List returns rules matching the filter.
func (s *Service) List(ctx context.Context, filter models.Filter) ([]models.Rule, error) {
	rules, err := s.store.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

// UpdatePatch carries the mutable rule fields; nil means leave unchanged.
type UpdatePatch struct {
	Title   *string
	Text    *string
	Kind    *models.Kind
	Logic   *string
	Version *string
}

// Update applies a patch to an existing rule, preserving the kind/logic
// invariant.
func (s *Service) Update(ctx context.Context, ruleID string, patch UpdatePatch) (*models.Rule, error) {
	rule, err := s.Get(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		rule.Title = *patch.Title
	}
	if patch.Text != nil {
		rule.Text = *patch.Text
	}
	if patch.Kind != nil {
		rule.Kind = *patch.Kind
	}
	if patch.Logic != nil {
		rule.Logic = patch.Logic
	}
	if patch.Version != nil {
		rule.Version = *patch.Version
	}
	rule.Normalize()

	if err := s.store.Update(ctx, rule); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "rule not found")
		}
		return nil, fmt.Errorf("update rule: %w", err)
	}
	return rule, nil
}

// Delete removes a rule. Audit records referencing it keep their internal
// reference; history reads simply stop including it.
func (s *Service) Delete(ctx context.Context, ruleID string) error {
	if err := s.store.Delete(ctx, ruleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "rule not found")
		}
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}

// Explain returns a plain-English explanation of a rule.
func (s *Service) Explain(ctx context.Context, ruleID string) (string, error) {
	rule, err := s.Get(ctx, ruleID)
	if err != nil {
		return "", err
	}
	explanation, err := s.classifier.Explain(ctx, rule.Text)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeUnavailable, "explanation unavailable", err)
	}
	return explanation, nil
}

// IngestSummary reports the outcome of one ingestion.
type IngestSummary struct {
	Created int
	Skipped int
	Rules   []models.Rule
}

// Ingest extracts rule candidates from rulebook text, classifies them
// through the oracle, and stores the new ones. Classification failures fall
// back to ai_assisted with no logic; existing rule ids are skipped.
func (s *Service) Ingest(ctx context.Context, source, text string) (*IngestSummary, error) {
	candidates := ingest.ExtractRules(text, source)
	if len(candidates) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no rules found in document text")
	}

	// Each goroutine writes only its own slot; no coordination needed.
	classifications := make([]oracle.Classification, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(classifyConcurrency)
	for i, candidate := range candidates {
		g.Go(func() error {
			classification, err := s.classifier.Classify(gctx, candidate.Text, candidate.RuleID)
			if err != nil {
				s.logger.WarnContext(gctx, "rule classification failed, defaulting to ai_assisted",
					"rule_id", candidate.RuleID,
					"error", err.Error(),
				)
				classification = oracle.Classification{Kind: models.KindAiAssisted}
			}
			classifications[i] = classification
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classify rules: %w", err)
	}

	summary := &IngestSummary{}
	for i, candidate := range candidates {
		rule := &models.Rule{
			ID:      uuid.New(),
			RuleID:  candidate.RuleID,
			Source:  candidate.Source,
			Article: candidate.Article,
			Title:   candidate.Title,
			Text:    candidate.Text,
			Kind:    classifications[i].Kind,
			Logic:   classifications[i].Logic,
		}
		if err := s.store.Create(ctx, rule); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				summary.Skipped++
				continue
			}
			return nil, fmt.Errorf("store rule %s: %w", rule.RuleID, err)
		}
		summary.Created++
		summary.Rules = append(summary.Rules, *rule)
	}

	s.metrics.AddRulesCreated(summary.Created)
	s.logger.InfoContext(ctx, "rule ingestion completed",
		"source", source,
		"created", summary.Created,
		"skipped", summary.Skipped,
	)
	return summary, nil
}
