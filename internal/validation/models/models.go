// Package models holds the validation domain types: per-rule verdicts, run
// reports, and the append-only audit records behind the history view.
package models

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Status is a per-rule or document-level verdict.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusWarning Status = "warning"
)

// Confidence labels qualify how certain a verdict is. The field is free text
// on the wire; unrecognized labels from the oracle pass through untouched.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// TruncateText shortens rule text for display, appending an ellipsis when
// anything was cut. The cut never splits a multibyte rune.
func TruncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// MapOracleStatus maps the oracle's status string into a Status. Unrecognized
// strings become warnings, never errors.
func MapOracleStatus(s string) Status {
	switch Status(s) {
	case StatusPass:
		return StatusPass
	case StatusFail:
		return StatusFail
	default:
		return StatusWarning
	}
}

// Result is one rule's verdict within a run.
type Result struct {
	RuleID     string `json:"rule_id"`
	RuleText   string `json:"rule_text"`
	Status     Status `json:"status"`
	Details    string `json:"details,omitempty"`
	Confidence string `json:"confidence_score,omitempty"`
}

// Report is the full outcome of one validation run. It is returned to the
// caller and never persisted as a whole.
type Report struct {
	DocumentID        string    `json:"document_id"`
	OverallStatus     Status    `json:"overall_status"`
	TotalRulesChecked int       `json:"total_rules_checked"`
	Passed            int       `json:"passed"`
	Failed            int       `json:"failed"`
	Warnings          int       `json:"warnings"`
	Results           []Result  `json:"results"`
	Timestamp         time.Time `json:"timestamp"`
}

// Record is one persisted per-rule verdict. Records are append-only: the
// engine writes them once and nothing ever updates or deletes them.
type Record struct {
	ID         uuid.UUID
	RuleRef    uuid.UUID // internal rule identity, not the public rule id
	RuleID     string    // joined at read time
	RuleText   string    // joined at read time
	DocumentID string
	Status     Status
	Details    string
	Confidence string
	Timestamp  time.Time // server-assigned at write time
}

// SessionEntry is one rule's verdict inside a history session.
type SessionEntry struct {
	RuleID     string `json:"rule_id"`
	RuleText   string `json:"rule_text"`
	Status     Status `json:"status"`
	Details    string `json:"details,omitempty"`
	Confidence string `json:"confidence_score,omitempty"`
}

// Session groups records sharing a minute-truncated timestamp: one logical
// validation run as reconstructed from the audit trail.
type Session struct {
	Timestamp time.Time      `json:"timestamp"`
	Results   []SessionEntry `json:"results"`
}

// History is the grouped audit trail for one document id.
type History struct {
	DocumentID    string    `json:"document_id"`
	TotalSessions int       `json:"total_sessions"`
	Sessions      []Session `json:"sessions"`
}
