// Package handler is the thin HTTP layer over the validation engine and the
// audit-trail read path. It validates request shape and delegates; business
// logic stays in the engine.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lcvet/internal/platform/metrics"
	"lcvet/internal/platform/middleware"
	rulemodels "lcvet/internal/rules/models"
	"lcvet/internal/transport/http/shared"
	"lcvet/internal/validation/models"
	dErrors "lcvet/pkg/domain-errors"
)

// Validator runs validations.
type Validator interface {
	Validate(ctx context.Context, documentID string, documentData map[string]any, filter rulemodels.Filter) (*models.Report, error)
	QuickValidate(ctx context.Context, documentID string, documentData map[string]any, filter rulemodels.Filter) (*models.Report, error)
}

// Historian serves grouped validation history.
type Historian interface {
	History(ctx context.Context, documentID string) (*models.History, error)
}

// Handler handles validation endpoints.
type Handler struct {
	logger    *slog.Logger
	validator Validator
	historian Historian
	metrics   *metrics.Metrics
}

// New creates a validation Handler.
func New(validator Validator, historian Historian, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		validator: validator,
		historian: historian,
		metrics:   m,
	}
}

// Register mounts the validation routes.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(120 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(h.metrics))
	router.Post("/", h.handleValidate)
	router.Post("/quick", h.handleQuickValidate)
	router.Get("/history/{documentID}", h.handleHistory)

	r.Mount("/validate", router)
}

type validateRequest struct {
	DocumentID   string            `json:"document_id"`
	DocumentData map[string]any    `json:"document_data"`
	RuleFilters  map[string]string `json:"rule_filters"`
}

// decode parses and checks the request body; empty document id or data is a
// client error, not an empty report.
func (h *Handler) decode(r *http.Request) (*validateRequest, error) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	if req.DocumentID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "document_id is required")
	}
	if len(req.DocumentData) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "document_data is required")
	}
	return &req, nil
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := h.decode(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	report, err := h.validator.Validate(ctx, req.DocumentID, req.DocumentData, toFilter(req.RuleFilters))
	if err != nil {
		h.logger.ErrorContext(ctx, "validation run failed",
			"request_id", middleware.GetRequestID(ctx),
			"document_id", req.DocumentID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "error during validation"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, report)
}

// handleQuickValidate returns only the summary and persists nothing.
func (h *Handler) handleQuickValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := h.decode(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	report, err := h.validator.QuickValidate(ctx, req.DocumentID, req.DocumentData, toFilter(req.RuleFilters))
	if err != nil {
		h.logger.ErrorContext(ctx, "quick validation failed",
			"request_id", middleware.GetRequestID(ctx),
			"document_id", req.DocumentID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "error during validation"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, quickResponse{
		DocumentID:    report.DocumentID,
		OverallStatus: report.OverallStatus,
		Summary: quickSummary{
			TotalRules: report.TotalRulesChecked,
			Passed:     report.Passed,
			Failed:     report.Failed,
			Warnings:   report.Warnings,
		},
		Timestamp: report.Timestamp,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID := chi.URLParam(r, "documentID")

	hist, err := h.historian.History(ctx, documentID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "history lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"document_id", documentID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "error retrieving validation history"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, hist)
}

func toFilter(filters map[string]string) rulemodels.Filter {
	return rulemodels.Filter{
		Source: filters["source"],
		Domain: filters["domain"],
	}
}
