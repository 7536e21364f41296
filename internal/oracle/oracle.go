// Package oracle is the judgment capability the validation engine delegates
// to for rules that cannot be checked deterministically. It is modeled as a
// narrow interface so the test suite can substitute a deterministic stub and
// never touch the network.
package oracle

import (
	"context"

	rulemodels "lcvet/internal/rules/models"
)

// Classification is the oracle's verdict on how a rule should be checked.
// Logic is non-nil iff Kind is codable.
type Classification struct {
	Kind      rulemodels.Kind
	Reasoning string
	Logic     *string
}

// Verdict is the oracle's compliance judgment for one rule. Status and
// Confidence are raw strings: the engine tolerates anything here and maps
// unrecognized statuses to warnings.
type Verdict struct {
	Status     string
	Details    string
	Confidence string
}

// Oracle is the external judgment contract.
type Oracle interface {
	// Classify decides whether a rule is codable and, if so, proposes logic.
	Classify(ctx context.Context, ruleText, ruleID string) (Classification, error)
	// Judge evaluates document data against a rule requiring interpretation.
	Judge(ctx context.Context, ruleText string, documentData map[string]any) (Verdict, error)
	// Explain renders a rule in plain language.
	Explain(ctx context.Context, ruleText string) (string, error)
}
