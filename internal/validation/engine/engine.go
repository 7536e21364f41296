// Package engine orchestrates validation runs: select applicable rules,
// dispatch each to the right evaluation strategy, persist the audit trail,
// and aggregate a document-level report.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lcvet/internal/events"
	"lcvet/internal/oracle"
	"lcvet/internal/platform/metrics"
	rulemodels "lcvet/internal/rules/models"
	"lcvet/internal/validation/logic"
	"lcvet/internal/validation/models"
)

// RuleFinder selects applicable rules for a run.
type RuleFinder interface {
	Find(ctx context.Context, filter rulemodels.Filter) ([]rulemodels.Rule, error)
}

// RecordAppender persists one per-rule verdict.
type RecordAppender interface {
	Append(ctx context.Context, record *models.Record) error
}

// Judge is the slice of the oracle the engine needs.
type Judge interface {
	Judge(ctx context.Context, ruleText string, documentData map[string]any) (oracle.Verdict, error)
}

// EventPublisher announces finished runs. Implementations must be
// best-effort; the engine never checks for delivery.
type EventPublisher interface {
	RunCompleted(ctx context.Context, event events.RunCompleted)
}

// Engine is the validation dispatcher.
type Engine struct {
	rules     RuleFinder
	records   RecordAppender
	judge     Judge
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher EventPublisher
	logicOpts logic.Options
}

// Option configures the Engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithEventPublisher(p EventPublisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithLogicOptions tunes the pseudo-logic interpreter, notably strict
// handling of unrecognized logic.
func WithLogicOptions(opts logic.Options) Option {
	return func(e *Engine) { e.logicOpts = opts }
}

// New constructs an Engine.
func New(rules RuleFinder, records RecordAppender, judge Judge, opts ...Option) (*Engine, error) {
	if rules == nil {
		return nil, fmt.Errorf("rule finder is required")
	}
	if records == nil {
		return nil, fmt.Errorf("record appender is required")
	}
	if judge == nil {
		return nil, fmt.Errorf("judge is required")
	}
	e := &Engine{rules: rules, records: records, judge: judge}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

// Validate runs every applicable rule against the document and persists one
// audit record per rule. Only a rule-store failure aborts the run; every
// per-rule failure is folded into that rule's verdict.
func (e *Engine) Validate(ctx context.Context, documentID string, documentData map[string]any, filter rulemodels.Filter) (*models.Report, error) {
	return e.run(ctx, documentID, documentData, filter, true)
}

// QuickValidate produces the same report without writing audit records.
func (e *Engine) QuickValidate(ctx context.Context, documentID string, documentData map[string]any, filter rulemodels.Filter) (*models.Report, error) {
	return e.run(ctx, documentID, documentData, filter, false)
}

func (e *Engine) run(ctx context.Context, documentID string, documentData map[string]any, filter rulemodels.Filter, persist bool) (*models.Report, error) {
	start := time.Now()

	rules, err := e.rules.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("select applicable rules: %w", err)
	}

	var (
		results  = make([]models.Result, 0, len(rules))
		passed   int
		failed   int
		warnings int
	)

	// Rules are evaluated sequentially in store order; the oracle call
	// dominates latency and rule sets are small.
	for _, rule := range rules {
		result := e.evaluate(ctx, rule, documentData)
		e.metrics.ObserveRuleResult(string(result.Status), string(rule.Kind))

		if persist {
			e.persist(ctx, rule, documentID, result)
		}

		switch result.Status {
		case models.StatusPass:
			passed++
		case models.StatusFail:
			failed++
		default:
			warnings++
		}
		results = append(results, result)
	}

	report := &models.Report{
		DocumentID:        documentID,
		OverallStatus:     ResolveOverall(passed, failed, warnings),
		TotalRulesChecked: len(rules),
		Passed:            passed,
		Failed:            failed,
		Warnings:          warnings,
		Results:           results,
		Timestamp:         time.Now().UTC(),
	}

	e.metrics.ObserveRun(string(report.OverallStatus), time.Since(start).Seconds())
	if persist && e.publisher != nil {
		e.publisher.RunCompleted(ctx, events.RunCompleted{
			DocumentID:        report.DocumentID,
			OverallStatus:     string(report.OverallStatus),
			TotalRulesChecked: report.TotalRulesChecked,
			Passed:            report.Passed,
			Failed:            report.Failed,
			Warnings:          report.Warnings,
			Timestamp:         report.Timestamp,
		})
	}
	return report, nil
}

// evaluate dispatches one rule to the strategy its kind demands.
func (e *Engine) evaluate(ctx context.Context, rule rulemodels.Rule, documentData map[string]any) models.Result {
	if rule.Kind == rulemodels.KindCodable {
		return e.evaluateCodable(rule, documentData)
	}
	return e.evaluateAiAssisted(ctx, rule, documentData)
}

func (e *Engine) evaluateCodable(rule rulemodels.Rule, documentData map[string]any) models.Result {
	ruleText := models.TruncateText(rule.Text, 200)

	var logicStr string
	if rule.Logic != nil {
		logicStr = *rule.Logic
	}

	outcome, err := logic.Evaluate(logicStr, documentData, e.logicOpts)
	if err != nil {
		// Only strict mode produces interpreter errors today; treat any
		// future error the same way: a warning, not a crash.
		return models.Result{
			RuleID:     rule.RuleID,
			RuleText:   ruleText,
			Status:     models.StatusWarning,
			Details:    fmt.Sprintf("Error executing rule logic: %v", err),
			Confidence: models.ConfidenceLow,
		}
	}

	status := models.StatusFail
	if outcome.Complied {
		status = models.StatusPass
	}
	// Deterministic checks always carry high confidence.
	return models.Result{
		RuleID:     rule.RuleID,
		RuleText:   ruleText,
		Status:     status,
		Details:    outcome.Details,
		Confidence: models.ConfidenceHigh,
	}
}

func (e *Engine) evaluateAiAssisted(ctx context.Context, rule rulemodels.Rule, documentData map[string]any) models.Result {
	ruleText := models.TruncateText(rule.Text, 200)

	verdict, err := e.judge.Judge(ctx, rule.Text, documentData)
	if err != nil {
		e.metrics.IncOracleFailure()
		e.logger.WarnContext(ctx, "oracle judgment failed",
			"rule_id", rule.RuleID,
			"error", err.Error(),
		)
		return models.Result{
			RuleID:     rule.RuleID,
			RuleText:   ruleText,
			Status:     models.StatusWarning,
			Details:    fmt.Sprintf("Error in AI validation: %v", err),
			Confidence: models.ConfidenceLow,
		}
	}

	details := verdict.Details
	if details == "" {
		details = "AI validation completed"
	}
	confidence := verdict.Confidence
	if confidence == "" {
		confidence = models.ConfidenceMedium
	}
	return models.Result{
		RuleID:     rule.RuleID,
		RuleText:   ruleText,
		Status:     models.MapOracleStatus(verdict.Status),
		Details:    details,
		Confidence: confidence,
	}
}

// persist writes one audit record. Failures are logged and swallowed: audit
// writes are best-effort and never abort or alter the run.
func (e *Engine) persist(ctx context.Context, rule rulemodels.Rule, documentID string, result models.Result) {
	record := &models.Record{
		ID:         uuid.New(),
		RuleRef:    rule.ID,
		DocumentID: documentID,
		Status:     result.Status,
		Details:    result.Details,
		Confidence: result.Confidence,
	}
	if err := e.records.Append(ctx, record); err != nil {
		e.metrics.IncRecordWriteFailure()
		e.logger.ErrorContext(ctx, "validation record write failed",
			"document_id", documentID,
			"rule_id", rule.RuleID,
			"error", err.Error(),
		)
	}
}
