package handler

import (
	"time"

	"lcvet/internal/validation/models"
)

type quickSummary struct {
	TotalRules int `json:"total_rules"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	Warnings   int `json:"warnings"`
}

type quickResponse struct {
	DocumentID    string        `json:"document_id"`
	OverallStatus models.Status `json:"overall_status"`
	Summary       quickSummary  `json:"summary"`
	Timestamp     time.Time     `json:"timestamp"`
}
