package handler

import (
	"time"

	"lcvet/internal/rules/models"
)

type ingestRequest struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

type updateRequest struct {
	Title   *string `json:"title"`
	Text    *string `json:"rule_text"`
	Kind    *string `json:"rule_type"`
	Logic   *string `json:"logic"`
	Version *string `json:"version"`
}

type ruleResponse struct {
	ID        string     `json:"id"`
	RuleID    string     `json:"rule_id"`
	Source    string     `json:"source"`
	Article   string     `json:"article"`
	Title     string     `json:"title,omitempty"`
	Text      string     `json:"rule_text"`
	Kind      string     `json:"rule_type"`
	Logic     *string    `json:"logic,omitempty"`
	Version   string     `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type ingestResponse struct {
	RulesCreated int            `json:"rules_created"`
	RulesSkipped int            `json:"rules_skipped"`
	Rules        []ruleResponse `json:"rules"`
}

type explainResponse struct {
	RuleID      string `json:"rule_id"`
	RuleText    string `json:"rule_text"`
	Explanation string `json:"explanation"`
}

func toRuleResponse(rule models.Rule) ruleResponse {
	return ruleResponse{
		ID:        rule.ID.String(),
		RuleID:    rule.RuleID,
		Source:    rule.Source,
		Article:   rule.Article,
		Title:     rule.Title,
		Text:      rule.Text,
		Kind:      string(rule.Kind),
		Logic:     rule.Logic,
		Version:   rule.Version,
		CreatedAt: rule.CreatedAt,
		UpdatedAt: rule.UpdatedAt,
	}
}
