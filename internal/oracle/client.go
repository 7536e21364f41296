package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lcvet/internal/platform/config"
	rulemodels "lcvet/internal/rules/models"
)

// ChatClient talks to an OpenAI-compatible chat-completions endpoint. It owns
// its timeout; callers treat a timeout like any other oracle failure.
type ChatClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewChatClient constructs the production oracle client.
func NewChatClient(cfg config.OracleConfig) *ChatClient {
	return &ChatClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *ChatClient) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.1,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("oracle request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read oracle response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode oracle response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("oracle returned %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("oracle returned %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("oracle response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

const classifySystemPrompt = "You are an expert in ICC trade finance rules and document validation."

const classifyPromptTemplate = `Analyze the following ICC trade finance rule and classify it.

Rule ID: %s
Rule Text: %s

Classify this rule as either:
1. "codable" - Can be checked deterministically with code (dates, amounts, currencies, document presence, etc.)
2. "ai_assisted" - Requires human judgment or AI interpretation (content quality, authenticity, compliance nuances)

If codable, provide pseudo-code logic using variables like:
- expiry_date, shipment_date, presentation_date
- amount, currency
- documents (array of document types)
- beneficiary, applicant

Respond in JSON format:
{"type": "codable" or "ai_assisted", "reasoning": "brief explanation", "logic": "pseudo-code if codable, null if ai_assisted"}`

type classifyPayload struct {
	Type      string  `json:"type"`
	Reasoning string  `json:"reasoning"`
	Logic     *string `json:"logic"`
}

// Classify asks the oracle how a rule should be checked. Callers fall back to
// an ai_assisted classification when this errors.
func (c *ChatClient) Classify(ctx context.Context, ruleText, ruleID string) (Classification, error) {
	content, err := c.complete(ctx, classifySystemPrompt, fmt.Sprintf(classifyPromptTemplate, ruleID, ruleText), 500)
	if err != nil {
		return Classification{}, err
	}

	var payload classifyPayload
	if err := decodeJSONContent(content, &payload); err != nil {
		return Classification{}, fmt.Errorf("parse classification: %w", err)
	}
	kind, err := rulemodels.ParseKind(payload.Type)
	if err != nil {
		return Classification{}, fmt.Errorf("parse classification: %w", err)
	}

	classification := Classification{Kind: kind, Reasoning: payload.Reasoning}
	if kind == rulemodels.KindCodable {
		classification.Logic = payload.Logic
	}
	return classification, nil
}

const judgeSystemPrompt = "You are an expert trade finance document examiner following ICC rules strictly."

const judgePromptTemplate = `You are validating a Letter of Credit document against ICC rules.

Rule: %s

Document Data: %s

Evaluate if the document complies with this rule. Consider:
- Does the document content meet the rule requirements?
- Are there any discrepancies or issues?
- What is your confidence level?

Respond in JSON format:
{"status": "pass", "fail", or "warning", "details": "specific explanation of compliance or discrepancies", "confidence_score": "high", "medium", or "low"}`

type judgePayload struct {
	Status     string `json:"status"`
	Details    string `json:"details"`
	Confidence string `json:"confidence_score"`
}

// Judge asks the oracle for a compliance verdict on one rule.
func (c *ChatClient) Judge(ctx context.Context, ruleText string, documentData map[string]any) (Verdict, error) {
	data, err := json.Marshal(documentData)
	if err != nil {
		return Verdict{}, fmt.Errorf("marshal document data: %w", err)
	}

	content, err := c.complete(ctx, judgeSystemPrompt, fmt.Sprintf(judgePromptTemplate, ruleText, data), 300)
	if err != nil {
		return Verdict{}, err
	}

	var payload judgePayload
	if err := decodeJSONContent(content, &payload); err != nil {
		return Verdict{}, fmt.Errorf("parse verdict: %w", err)
	}
	return Verdict{Status: payload.Status, Details: payload.Details, Confidence: payload.Confidence}, nil
}

const explainSystemPrompt = "You are a trade finance expert who explains complex rules in simple terms."

// Explain returns a plain-English rendering of a rule.
func (c *ChatClient) Explain(ctx context.Context, ruleText string) (string, error) {
	prompt := fmt.Sprintf("Explain this ICC trade finance rule in simple, clear language:\n\n%s\n\nProvide a concise explanation that a non-expert could understand.", ruleText)
	content, err := c.complete(ctx, explainSystemPrompt, prompt, 200)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// decodeJSONContent parses a JSON object out of a model reply, tolerating
// surrounding prose and markdown fences.
func decodeJSONContent(content string, v any) error {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return fmt.Errorf("no JSON object in oracle reply")
	}
	return json.Unmarshal([]byte(content[start:end+1]), v)
}
