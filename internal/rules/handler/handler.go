// Package handler exposes rule management over HTTP. Reads are open;
// mutations require an operator bearer token.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lcvet/internal/platform/metrics"
	"lcvet/internal/platform/middleware"
	"lcvet/internal/rules/models"
	"lcvet/internal/rules/service"
	"lcvet/internal/transport/http/shared"
	dErrors "lcvet/pkg/domain-errors"
)

// Service defines the rule operations the handler needs.
type Service interface {
	Get(ctx context.Context, ruleID string) (*models.Rule, error)
	List(ctx context.Context, filter models.Filter) ([]models.Rule, error)
	Update(ctx context.Context, ruleID string, patch service.UpdatePatch) (*models.Rule, error)
	Delete(ctx context.Context, ruleID string) error
	Explain(ctx context.Context, ruleID string) (string, error)
	Ingest(ctx context.Context, source, text string) (*service.IngestSummary, error)
}

// Handler handles rule management endpoints.
type Handler struct {
	logger       *slog.Logger
	rules        Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a rules Handler.
func New(rules Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		rules:        rules,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the rule routes.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(h.metrics))

	router.Get("/", h.handleList)
	router.Get("/{ruleID}", h.handleGet)
	router.Get("/{ruleID}/explain", h.handleExplain)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		protected.Post("/ingest", h.handleIngest)
		protected.Put("/{ruleID}", h.handleUpdate)
		protected.Delete("/{ruleID}", h.handleDelete)
	})

	r.Mount("/rules", router)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	rules, err := h.rules.List(r.Context(), filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "rule listing failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "error listing rules"))
		return
	}

	out := make([]ruleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toRuleResponse(rule))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rule, err := h.rules.Get(r.Context(), chi.URLParam(r, "ruleID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toRuleResponse(*rule))
}

func (h *Handler) handleExplain(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleID")

	rule, err := h.rules.Get(r.Context(), ruleID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	explanation, err := h.rules.Explain(r.Context(), ruleID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, explainResponse{
		RuleID:      rule.RuleID,
		RuleText:    rule.Text,
		Explanation: explanation,
	})
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Source == "" || req.Text == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "source and text are required"))
		return
	}

	summary, err := h.rules.Ingest(ctx, req.Source, req.Text)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "rule ingestion failed",
			"request_id", middleware.GetRequestID(ctx),
			"source", req.Source,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "error ingesting rules"))
		return
	}

	out := make([]ruleResponse, 0, len(summary.Rules))
	for _, rule := range summary.Rules {
		out = append(out, toRuleResponse(rule))
	}
	shared.WriteJSON(w, http.StatusCreated, ingestResponse{
		RulesCreated: summary.Created,
		RulesSkipped: summary.Skipped,
		Rules:        out,
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	patch := service.UpdatePatch{
		Title:   req.Title,
		Text:    req.Text,
		Logic:   req.Logic,
		Version: req.Version,
	}
	if req.Kind != nil {
		kind, err := models.ParseKind(*req.Kind)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid rule kind"))
			return
		}
		patch.Kind = &kind
	}

	rule, err := h.rules.Update(r.Context(), chi.URLParam(r, "ruleID"), patch)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toRuleResponse(*rule))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleID")
	if err := h.rules.Delete(r.Context(), ruleID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "rule " + ruleID + " deleted successfully",
	})
}

func filterFromQuery(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	filter := models.Filter{
		Source: q.Get("source"),
		Domain: q.Get("domain"),
		Limit:  100,
	}

	if kind := q.Get("rule_type"); kind != "" {
		parsed, err := models.ParseKind(kind)
		if err != nil {
			return models.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid rule_type")
		}
		filter.Kind = parsed
	}
	if skip := q.Get("skip"); skip != "" {
		n, err := strconv.Atoi(skip)
		if err != nil || n < 0 {
			return models.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid skip")
		}
		filter.Skip = n
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > 1000 {
			return models.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid limit")
		}
		filter.Limit = n
	}
	return filter, nil
}
